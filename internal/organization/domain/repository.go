package domain

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/D0Nater/organization-manager/pkg/repository"
)

// Repository provides organization persistence.
type Repository interface {
	repository.Repository[Organization]
}

// AssociationRepository manages rows of the organization-activity join table.
type AssociationRepository interface {
	WithTx(tx *gorm.DB) AssociationRepository
	BatchCreate(ctx context.Context, rows []*OrganizationActivity) error
	ListByOrganizationIDs(ctx context.Context, organizationIDs []uuid.UUID) ([]*OrganizationActivity, error)
	DeleteByOrganizationID(ctx context.Context, organizationID uuid.UUID) error
}
