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
	Create(ctx context.Context, req CreateBuildingRequest) (*BuildingResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*BuildingResponse, error)
	GetPage(ctx context.Context, req ListBuildingsRequest) (*pagination.Page[*BuildingResponse], error)
	Update(ctx context.Context, id uuid.UUID, req UpdateBuildingRequest) (*BuildingResponse, error)
	Patch(ctx context.Context, id uuid.UUID, req PatchBuildingRequest) (*BuildingResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type CreateBuildingRequest struct {
	Address   string
	Latitude  float64
	Longitude float64
}

type UpdateBuildingRequest struct {
	Address   string
	Latitude  float64
	Longitude float64
}

// PatchBuildingRequest applies only the fields the caller provided.
type PatchBuildingRequest struct {
	Address   *string
	Latitude  *float64
	Longitude *float64
}

type ListBuildingsRequest struct {
	Pagination   pagination.Request
	IDs          []uuid.UUID
	AddressILike string
	LatitudeGTE  *float64
	LatitudeLTE  *float64
	LongitudeGTE *float64
	LongitudeLTE *float64
	Sorts        []*spec.Sort
}

type BuildingResponse struct {
	ID        uuid.UUID `json:"id"`
	Address   string    `json:"address"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewBuildingResponse maps a stored building onto the wire shape.
func NewBuildingResponse(b *Building) *BuildingResponse {
	if b == nil {
		return nil
	}
	return &BuildingResponse{
		ID:        b.ID,
		Address:   b.Address,
		Latitude:  b.Latitude,
		Longitude: b.Longitude,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

var (
	ErrInvalidAddress     = errors.New("building_invalid_address")
	ErrInvalidLatitude    = errors.New("building_invalid_latitude")
	ErrInvalidLongitude   = errors.New("building_invalid_longitude")
	ErrInvalidBoundingBox = errors.New("invalid_bounding_box")
	ErrBuildingNotFound   = errors.New("building_not_found")
)

// NotFoundError lists the building ids a request referenced that the store
// does not hold.
type NotFoundError struct {
	IDs []uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("building not found: %v", e.IDs)
}

func (e *NotFoundError) Unwrap() error { return ErrBuildingNotFound }
