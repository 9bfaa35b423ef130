// Package repository provides the generic persistence store shared by every
// entity: CRUD plus paginated, specification-driven listing. Concrete
// repositories instantiate it with their model type and add entity-specific
// queries on top.
package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/D0Nater/organization-manager/pkg/pagination"
	"github.com/D0Nater/organization-manager/pkg/spec"
)

// Repository is the generic store contract. GetByID returns (nil, nil) for
// a missing row; callers translate that into their own not-found error.
// Delete is idempotent: removing an absent id is not an error here.
type Repository[E any] interface {
	WithTx(tx *gorm.DB) Repository[E]

	Create(ctx context.Context, entity *E) (*E, error)
	GetByID(ctx context.Context, id uuid.UUID) (*E, error)
	Update(ctx context.Context, entity *E) (*E, error)
	Delete(ctx context.Context, id uuid.UUID) error

	GetList(ctx context.Context, p pagination.Request, specs []*spec.Field, sorts []*spec.Sort, filters []spec.Filter) ([]*E, error)
	GetCount(ctx context.Context, specs []*spec.Field, filters []spec.Filter) (int64, error)
	GetPage(ctx context.Context, p pagination.Request, specs []*spec.Field, sorts []*spec.Sort, filters []spec.Filter) (pagination.Page[*E], error)

	BatchCreate(ctx context.Context, entities []*E) error
}
