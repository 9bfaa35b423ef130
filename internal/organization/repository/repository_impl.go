package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/D0Nater/organization-manager/internal/organization/domain"
	"github.com/D0Nater/organization-manager/pkg/pagination"
	"github.com/D0Nater/organization-manager/pkg/repository"
	"github.com/D0Nater/organization-manager/pkg/spec"
)

type organizationRepository struct {
	repository.Repository[domain.Organization]
}

// NewRepository builds the organization store.
func NewRepository(db *gorm.DB) domain.Repository {
	return &organizationRepository{
		Repository: repository.ProvideStore[domain.Organization](db),
	}
}

type associationRepository struct {
	store repository.Repository[domain.OrganizationActivity]
	db    *gorm.DB
}

// NewAssociationRepository builds the store for the organization-activity
// join table.
func NewAssociationRepository(db *gorm.DB) domain.AssociationRepository {
	return &associationRepository{
		store: repository.ProvideStore[domain.OrganizationActivity](db),
		db:    db,
	}
}

func (r *associationRepository) WithTx(tx *gorm.DB) domain.AssociationRepository {
	return &associationRepository{
		store: r.store.WithTx(tx),
		db:    tx,
	}
}

func (r *associationRepository) BatchCreate(ctx context.Context, rows []*domain.OrganizationActivity) error {
	return r.store.BatchCreate(ctx, rows)
}

func (r *associationRepository) ListByOrganizationIDs(ctx context.Context, organizationIDs []uuid.UUID) ([]*domain.OrganizationActivity, error) {
	if len(organizationIDs) == 0 {
		return nil, nil
	}

	fields := []*spec.Field{spec.InList("organization_id").WithValue(organizationIDs)}
	return r.store.GetList(ctx, pagination.All(), fields, nil, nil)
}

func (r *associationRepository) DeleteByOrganizationID(ctx context.Context, organizationID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Delete(&domain.OrganizationActivity{}).Error
}
