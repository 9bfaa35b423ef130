package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/D0Nater/organization-manager/pkg/pagination"
	"github.com/D0Nater/organization-manager/pkg/spec"
)

type Service interface {
	Create(ctx context.Context, req CreateActivityRequest) (*ActivityResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*ActivityResponse, error)
	GetPage(ctx context.Context, req ListActivitiesRequest) (*pagination.Page[*ActivityResponse], error)
	Update(ctx context.Context, id uuid.UUID, req UpdateActivityRequest) (*ActivityResponse, error)
	Patch(ctx context.Context, id uuid.UUID, req PatchActivityRequest) (*ActivityResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type CreateActivityRequest struct {
	Name     string
	ParentID *uuid.UUID
}

type UpdateActivityRequest struct {
	Name     string
	ParentID *uuid.UUID
}

// PatchActivityRequest applies only the fields the caller provided.
// ParentIDSet distinguishes "parent_id": null (move to root) from an
// absent key (leave unchanged).
type PatchActivityRequest struct {
	Name        *string
	ParentID    *uuid.UUID
	ParentIDSet bool
}

type ListActivitiesRequest struct {
	Pagination pagination.Request
	IDs        []uuid.UUID
	ParentID   *uuid.UUID
	NameILike  string
	Sorts      []*spec.Sort
}

type ActivityResponse struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	ParentID  *uuid.UUID `json:"parent_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewActivityResponse maps a stored activity onto the wire shape.
func NewActivityResponse(a *Activity) *ActivityResponse {
	if a == nil {
		return nil
	}
	return &ActivityResponse{
		ID:        a.ID,
		Name:      a.Name,
		ParentID:  a.ParentID,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

var (
	ErrInvalidName      = errors.New("activity_invalid_name")
	ErrActivityNotFound = errors.New("activity_not_found")
	ErrMaximumNesting   = errors.New("activity_maximum_nesting")
)

// NotFoundError lists the activity ids a request referenced that the store
// does not hold.
type NotFoundError struct {
	IDs []uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("activity not found: %v", e.IDs)
}

func (e *NotFoundError) Unwrap() error { return ErrActivityNotFound }
