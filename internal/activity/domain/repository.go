package domain

import (
	"context"

	"github.com/google/uuid"

	"github.com/D0Nater/organization-manager/pkg/repository"
)

// Repository provides activity persistence plus tree traversal queries.
type Repository interface {
	repository.Repository[Activity]

	// ExpandDescendants returns the given ids together with every transitive
	// descendant id, in one recursive query.
	ExpandDescendants(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)
}
