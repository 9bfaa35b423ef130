package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/D0Nater/organization-manager/internal/activity/domain"
	"github.com/D0Nater/organization-manager/internal/observability/logger"
	obsmetrics "github.com/D0Nater/organization-manager/internal/observability/metrics"
	"github.com/D0Nater/organization-manager/pkg/pagination"
	"github.com/D0Nater/organization-manager/pkg/spec"
)

type service struct {
	repo    domain.Repository
	metrics *obsmetrics.Metrics
}

// NewService builds the activity service.
func NewService(repo domain.Repository, metrics *obsmetrics.Metrics) domain.Service {
	return &service{repo: repo, metrics: metrics}
}

func (s *service) Create(ctx context.Context, req domain.CreateActivityRequest) (*domain.ActivityResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	if req.ParentID != nil {
		if err := s.validateNesting(ctx, *req.ParentID); err != nil {
			return nil, err
		}
	}

	activity, err := s.repo.Create(ctx, &domain.Activity{
		Name:     name,
		ParentID: req.ParentID,
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordEntityWrite(ctx, "activity", "create")
	logger.FromContext(ctx).Info("activity created", zap.String("activity_id", activity.ID.String()))
	return domain.NewActivityResponse(activity), nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*domain.ActivityResponse, error) {
	activity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if activity == nil {
		return nil, &domain.NotFoundError{IDs: []uuid.UUID{id}}
	}
	return domain.NewActivityResponse(activity), nil
}

func (s *service) GetPage(ctx context.Context, req domain.ListActivitiesRequest) (*pagination.Page[*domain.ActivityResponse], error) {
	fields := make([]*spec.Field, 0, 3)
	if len(req.IDs) > 0 {
		fields = append(fields, spec.InList("id").WithValue(req.IDs))
	}
	if req.ParentID != nil {
		fields = append(fields, spec.Equals("parent_id").WithValue(*req.ParentID))
	}
	if name := strings.TrimSpace(req.NameILike); name != "" {
		fields = append(fields, spec.ILike("name").WithValue(name))
	}

	page, err := s.repo.GetPage(ctx, req.Pagination, fields, req.Sorts, nil)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordListQuery(ctx, "activity")

	items := make([]*domain.ActivityResponse, 0, len(page.Items))
	for _, activity := range page.Items {
		items = append(items, domain.NewActivityResponse(activity))
	}
	resp := pagination.NewPage(items, page.Total, req.Pagination)
	return &resp, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req domain.UpdateActivityRequest) (*domain.ActivityResponse, error) {
	activity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if activity == nil {
		return nil, &domain.NotFoundError{IDs: []uuid.UUID{id}}
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	if req.ParentID != nil {
		if err := s.validateNesting(ctx, *req.ParentID); err != nil {
			return nil, err
		}
	}

	activity.Name = name
	activity.ParentID = req.ParentID

	updated, err := s.repo.Update(ctx, activity)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordEntityWrite(ctx, "activity", "update")
	return domain.NewActivityResponse(updated), nil
}

func (s *service) Patch(ctx context.Context, id uuid.UUID, req domain.PatchActivityRequest) (*domain.ActivityResponse, error) {
	activity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if activity == nil {
		return nil, &domain.NotFoundError{IDs: []uuid.UUID{id}}
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		activity.Name = name
	}
	if req.ParentIDSet {
		if req.ParentID != nil {
			if err := s.validateNesting(ctx, *req.ParentID); err != nil {
				return nil, err
			}
		}
		activity.ParentID = req.ParentID
	}

	updated, err := s.repo.Update(ctx, activity)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordEntityWrite(ctx, "activity", "patch")
	return domain.NewActivityResponse(updated), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	activity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if activity == nil {
		return &domain.NotFoundError{IDs: []uuid.UUID{id}}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.metrics.RecordEntityWrite(ctx, "activity", "delete")
	logger.FromContext(ctx).Info("activity deleted", zap.String("activity_id", id.String()))
	return nil
}

// validateNesting walks the parent chain upward counting the parent itself
// as level 1. The walk fails once the counter hits MaxNestingLevel with
// ancestors still remaining, so a parent at MaxNestingLevel-1 may still
// take children and the tree tops out at exactly MaxNestingLevel.
func (s *service) validateNesting(ctx context.Context, parentID uuid.UUID) error {
	current, err := s.repo.GetByID(ctx, parentID)
	if err != nil {
		return err
	}
	if current == nil {
		return &domain.NotFoundError{IDs: []uuid.UUID{parentID}}
	}

	level := 1
	for current.ParentID != nil {
		level++
		if level >= domain.MaxNestingLevel {
			return domain.ErrMaximumNesting
		}

		nextID := *current.ParentID
		current, err = s.repo.GetByID(ctx, nextID)
		if err != nil {
			return err
		}
		if current == nil {
			return &domain.NotFoundError{IDs: []uuid.UUID{nextID}}
		}
	}
	return nil
}
