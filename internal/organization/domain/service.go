package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	buildingdomain "github.com/D0Nater/organization-manager/internal/building/domain"
	"github.com/D0Nater/organization-manager/pkg/pagination"
	"github.com/D0Nater/organization-manager/pkg/spec"
)

type Service interface {
	Create(ctx context.Context, req CreateOrganizationRequest) (*OrganizationResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*OrganizationResponse, error)
	GetPage(ctx context.Context, req ListOrganizationsRequest) (*pagination.Page[*OrganizationResponse], error)
	Update(ctx context.Context, id uuid.UUID, req UpdateOrganizationRequest) (*OrganizationResponse, error)
	Patch(ctx context.Context, id uuid.UUID, req PatchOrganizationRequest) (*OrganizationResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type CreateOrganizationRequest struct {
	Name         string
	PhoneNumbers []string
	BuildingID   uuid.UUID
	ActivityIDs  []uuid.UUID
}

type UpdateOrganizationRequest struct {
	Name         string
	PhoneNumbers []string
	BuildingID   uuid.UUID
	ActivityIDs  []uuid.UUID
}

// PatchOrganizationRequest applies only the fields the caller provided. The
// Set flags distinguish an explicit empty list from an absent key.
type PatchOrganizationRequest struct {
	Name            *string
	PhoneNumbers    []string
	PhoneNumbersSet bool
	BuildingID      *uuid.UUID
	ActivityIDs     []uuid.UUID
	ActivityIDsSet  bool
}

// ListOrganizationsRequest collects the supported list filters.
// ActivityIDsWithChildren matches organizations tagged with the given
// activities or any of their descendants.
type ListOrganizationsRequest struct {
	Pagination              pagination.Request
	IDs                     []uuid.UUID
	BuildingIDs             []uuid.UUID
	ActivityIDs             []uuid.UUID
	ActivityIDsWithChildren []uuid.UUID
	NameILike               string
	Box                     *buildingdomain.BoundingBox
	Sorts                   []*spec.Sort
}

type OrganizationResponse struct {
	ID           uuid.UUID   `json:"id"`
	Name         string      `json:"name"`
	PhoneNumbers []string    `json:"phone_numbers"`
	BuildingID   uuid.UUID   `json:"building_id"`
	ActivityIDs  []uuid.UUID `json:"activity_ids"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// NewOrganizationResponse maps a stored organization onto the wire shape.
func NewOrganizationResponse(o *Organization) *OrganizationResponse {
	if o == nil {
		return nil
	}
	phones := make([]string, 0, len(o.PhoneNumbers))
	for _, number := range o.PhoneNumbers {
		phones = append(phones, string(number))
	}
	activityIDs := o.ActivityIDs
	if activityIDs == nil {
		activityIDs = []uuid.UUID{}
	}
	return &OrganizationResponse{
		ID:           o.ID,
		Name:         o.Name,
		PhoneNumbers: phones,
		BuildingID:   o.BuildingID,
		ActivityIDs:  activityIDs,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}

var (
	ErrInvalidName          = errors.New("organization_invalid_name")
	ErrInvalidPhoneNumber   = errors.New("invalid_phone_number")
	ErrOrganizationNotFound = errors.New("organization_not_found")
)

// NotFoundError lists the organization ids a request referenced that the
// store does not hold.
type NotFoundError struct {
	IDs []uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("organization not found: %v", e.IDs)
}

func (e *NotFoundError) Unwrap() error { return ErrOrganizationNotFound }
