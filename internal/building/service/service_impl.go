package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/D0Nater/organization-manager/internal/building/domain"
	"github.com/D0Nater/organization-manager/internal/observability/logger"
	obsmetrics "github.com/D0Nater/organization-manager/internal/observability/metrics"
	"github.com/D0Nater/organization-manager/pkg/pagination"
	"github.com/D0Nater/organization-manager/pkg/spec"
)

type service struct {
	repo    domain.Repository
	metrics *obsmetrics.Metrics
}

// NewService builds the building service.
func NewService(repo domain.Repository, metrics *obsmetrics.Metrics) domain.Service {
	return &service{repo: repo, metrics: metrics}
}

func (s *service) Create(ctx context.Context, req domain.CreateBuildingRequest) (*domain.BuildingResponse, error) {
	address := strings.TrimSpace(req.Address)
	if address == "" {
		return nil, domain.ErrInvalidAddress
	}
	coordinate, err := domain.NewCoordinate(req.Latitude, req.Longitude)
	if err != nil {
		return nil, err
	}

	building, err := s.repo.Create(ctx, &domain.Building{
		Address:    address,
		Coordinate: coordinate,
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordEntityWrite(ctx, "building", "create")
	logger.FromContext(ctx).Info("building created", zap.String("building_id", building.ID.String()))
	return domain.NewBuildingResponse(building), nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*domain.BuildingResponse, error) {
	building, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if building == nil {
		return nil, &domain.NotFoundError{IDs: []uuid.UUID{id}}
	}
	return domain.NewBuildingResponse(building), nil
}

func (s *service) GetPage(ctx context.Context, req domain.ListBuildingsRequest) (*pagination.Page[*domain.BuildingResponse], error) {
	fields := make([]*spec.Field, 0, 6)
	if len(req.IDs) > 0 {
		fields = append(fields, spec.InList("id").WithValue(req.IDs))
	}
	if address := strings.TrimSpace(req.AddressILike); address != "" {
		fields = append(fields, spec.ILike("address").WithValue(address))
	}
	if req.LatitudeGTE != nil {
		fields = append(fields, spec.GreaterOrEqual("latitude").WithValue(*req.LatitudeGTE))
	}
	if req.LatitudeLTE != nil {
		fields = append(fields, spec.LessOrEqual("latitude").WithValue(*req.LatitudeLTE))
	}
	if req.LongitudeGTE != nil {
		fields = append(fields, spec.GreaterOrEqual("longitude").WithValue(*req.LongitudeGTE))
	}
	if req.LongitudeLTE != nil {
		fields = append(fields, spec.LessOrEqual("longitude").WithValue(*req.LongitudeLTE))
	}

	page, err := s.repo.GetPage(ctx, req.Pagination, fields, req.Sorts, nil)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordListQuery(ctx, "building")

	items := make([]*domain.BuildingResponse, 0, len(page.Items))
	for _, building := range page.Items {
		items = append(items, domain.NewBuildingResponse(building))
	}
	resp := pagination.NewPage(items, page.Total, req.Pagination)
	return &resp, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req domain.UpdateBuildingRequest) (*domain.BuildingResponse, error) {
	building, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if building == nil {
		return nil, &domain.NotFoundError{IDs: []uuid.UUID{id}}
	}

	address := strings.TrimSpace(req.Address)
	if address == "" {
		return nil, domain.ErrInvalidAddress
	}
	coordinate, err := domain.NewCoordinate(req.Latitude, req.Longitude)
	if err != nil {
		return nil, err
	}

	building.Address = address
	building.Coordinate = coordinate

	updated, err := s.repo.Update(ctx, building)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordEntityWrite(ctx, "building", "update")
	return domain.NewBuildingResponse(updated), nil
}

func (s *service) Patch(ctx context.Context, id uuid.UUID, req domain.PatchBuildingRequest) (*domain.BuildingResponse, error) {
	building, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if building == nil {
		return nil, &domain.NotFoundError{IDs: []uuid.UUID{id}}
	}

	if req.Address != nil {
		address := strings.TrimSpace(*req.Address)
		if address == "" {
			return nil, domain.ErrInvalidAddress
		}
		building.Address = address
	}

	latitude := building.Latitude
	longitude := building.Longitude
	if req.Latitude != nil {
		latitude = *req.Latitude
	}
	if req.Longitude != nil {
		longitude = *req.Longitude
	}
	coordinate, err := domain.NewCoordinate(latitude, longitude)
	if err != nil {
		return nil, err
	}
	building.Coordinate = coordinate

	updated, err := s.repo.Update(ctx, building)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordEntityWrite(ctx, "building", "patch")
	return domain.NewBuildingResponse(updated), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	building, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if building == nil {
		return &domain.NotFoundError{IDs: []uuid.UUID{id}}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.metrics.RecordEntityWrite(ctx, "building", "delete")
	logger.FromContext(ctx).Info("building deleted", zap.String("building_id", id.String()))
	return nil
}
