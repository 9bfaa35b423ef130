package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	activitydomain "github.com/D0Nater/organization-manager/internal/activity/domain"
	buildingdomain "github.com/D0Nater/organization-manager/internal/building/domain"
	"github.com/D0Nater/organization-manager/internal/observability/logger"
	obsmetrics "github.com/D0Nater/organization-manager/internal/observability/metrics"
	"github.com/D0Nater/organization-manager/internal/organization/domain"
	"github.com/D0Nater/organization-manager/pkg/pagination"
	"github.com/D0Nater/organization-manager/pkg/spec"
)

type service struct {
	db         *gorm.DB
	repo       domain.Repository
	assoc      domain.AssociationRepository
	buildings  buildingdomain.Repository
	activities activitydomain.Repository
	metrics    *obsmetrics.Metrics
}

// NewService builds the organization service.
func NewService(
	db *gorm.DB,
	repo domain.Repository,
	assoc domain.AssociationRepository,
	buildings buildingdomain.Repository,
	activities activitydomain.Repository,
	metrics *obsmetrics.Metrics,
) domain.Service {
	return &service{
		db:         db,
		repo:       repo,
		assoc:      assoc,
		buildings:  buildings,
		activities: activities,
		metrics:    metrics,
	}
}

func (s *service) Create(ctx context.Context, req domain.CreateOrganizationRequest) (*domain.OrganizationResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	phones, err := domain.NewPhoneNumbers(req.PhoneNumbers)
	if err != nil {
		return nil, err
	}

	org := &domain.Organization{
		Name:         name,
		BuildingID:   req.BuildingID,
		PhoneNumbers: datatypes.NewJSONSlice(phones),
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.validateReferences(ctx, tx, req.BuildingID, req.ActivityIDs); err != nil {
			return err
		}

		created, err := s.repo.WithTx(tx).Create(ctx, org)
		if err != nil {
			return err
		}
		org = created

		return s.insertAssociations(ctx, tx, created.ID, req.ActivityIDs)
	})
	if err != nil {
		return nil, err
	}

	org.ActivityIDs = req.ActivityIDs
	s.metrics.RecordEntityWrite(ctx, "organization", "create")
	logger.FromContext(ctx).Info("organization created", zap.String("organization_id", org.ID.String()))
	return domain.NewOrganizationResponse(org), nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*domain.OrganizationResponse, error) {
	org, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, &domain.NotFoundError{IDs: []uuid.UUID{id}}
	}

	if err := s.loadActivityIDs(ctx, []*domain.Organization{org}); err != nil {
		return nil, err
	}
	return domain.NewOrganizationResponse(org), nil
}

func (s *service) GetPage(ctx context.Context, req domain.ListOrganizationsRequest) (*pagination.Page[*domain.OrganizationResponse], error) {
	fields := make([]*spec.Field, 0, 3)
	if len(req.IDs) > 0 {
		fields = append(fields, spec.InList("id").WithValue(req.IDs))
	}
	if len(req.BuildingIDs) > 0 {
		fields = append(fields, spec.InList("building_id").WithValue(req.BuildingIDs))
	}
	if name := strings.TrimSpace(req.NameILike); name != "" {
		fields = append(fields, spec.ILike("name").WithValue(name))
	}

	var filters []spec.Filter
	if len(req.ActivityIDs) > 0 {
		filters = append(filters, domain.ActivityFilter{IDs: req.ActivityIDs})
	}
	if len(req.ActivityIDsWithChildren) > 0 {
		expanded, err := s.activities.ExpandDescendants(ctx, req.ActivityIDsWithChildren)
		if err != nil {
			return nil, err
		}
		s.metrics.RecordTreeExpansion(ctx, len(req.ActivityIDsWithChildren))
		filters = append(filters, domain.ActivityFilter{IDs: expanded})
	}
	if req.Box != nil {
		filters = append(filters, domain.BoundingBoxFilter{Box: *req.Box})
	}

	page, err := s.repo.GetPage(ctx, req.Pagination, fields, req.Sorts, filters)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordListQuery(ctx, "organization")

	if err := s.loadActivityIDs(ctx, page.Items); err != nil {
		return nil, err
	}

	items := make([]*domain.OrganizationResponse, 0, len(page.Items))
	for _, org := range page.Items {
		items = append(items, domain.NewOrganizationResponse(org))
	}
	resp := pagination.NewPage(items, page.Total, req.Pagination)
	return &resp, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req domain.UpdateOrganizationRequest) (*domain.OrganizationResponse, error) {
	return s.applyUpdate(ctx, id, req, "update")
}

func (s *service) Patch(ctx context.Context, id uuid.UUID, req domain.PatchOrganizationRequest) (*domain.OrganizationResponse, error) {
	org, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, &domain.NotFoundError{IDs: []uuid.UUID{id}}
	}
	if err := s.loadActivityIDs(ctx, []*domain.Organization{org}); err != nil {
		return nil, err
	}

	merged := domain.UpdateOrganizationRequest{
		Name:         org.Name,
		PhoneNumbers: phoneStrings(org.PhoneNumbers),
		BuildingID:   org.BuildingID,
		ActivityIDs:  org.ActivityIDs,
	}
	if req.Name != nil {
		merged.Name = *req.Name
	}
	if req.PhoneNumbersSet {
		merged.PhoneNumbers = req.PhoneNumbers
	}
	if req.BuildingID != nil {
		merged.BuildingID = *req.BuildingID
	}
	if req.ActivityIDsSet {
		merged.ActivityIDs = req.ActivityIDs
	}

	return s.applyUpdate(ctx, id, merged, "patch")
}

// applyUpdate runs the full update path: reference validation, row update
// and association replacement, all in one transaction.
func (s *service) applyUpdate(ctx context.Context, id uuid.UUID, req domain.UpdateOrganizationRequest, operation string) (*domain.OrganizationResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	phones, err := domain.NewPhoneNumbers(req.PhoneNumbers)
	if err != nil {
		return nil, err
	}

	var updated *domain.Organization
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		org, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if org == nil {
			return &domain.NotFoundError{IDs: []uuid.UUID{id}}
		}

		if err := s.validateReferences(ctx, tx, req.BuildingID, req.ActivityIDs); err != nil {
			return err
		}

		org.Name = name
		org.BuildingID = req.BuildingID
		org.PhoneNumbers = datatypes.NewJSONSlice(phones)
		updated, err = repo.Update(ctx, org)
		if err != nil {
			return err
		}

		if err := s.assoc.WithTx(tx).DeleteByOrganizationID(ctx, id); err != nil {
			return err
		}
		return s.insertAssociations(ctx, tx, id, req.ActivityIDs)
	})
	if err != nil {
		return nil, err
	}

	updated.ActivityIDs = req.ActivityIDs
	s.metrics.RecordEntityWrite(ctx, "organization", operation)
	return domain.NewOrganizationResponse(updated), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		org, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if org == nil {
			return &domain.NotFoundError{IDs: []uuid.UUID{id}}
		}

		if err := s.assoc.WithTx(tx).DeleteByOrganizationID(ctx, id); err != nil {
			return err
		}
		return repo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.metrics.RecordEntityWrite(ctx, "organization", "delete")
	logger.FromContext(ctx).Info("organization deleted", zap.String("organization_id", id.String()))
	return nil
}

// validateReferences checks that the building and every requested activity
// exist, inside the caller's transaction. A count probe covers the common
// case; only on a mismatch does it fetch the rows to name the missing ids.
func (s *service) validateReferences(ctx context.Context, tx *gorm.DB, buildingID uuid.UUID, activityIDs []uuid.UUID) error {
	building, err := s.buildings.WithTx(tx).GetByID(ctx, buildingID)
	if err != nil {
		return err
	}
	if building == nil {
		return &buildingdomain.NotFoundError{IDs: []uuid.UUID{buildingID}}
	}

	if len(activityIDs) == 0 {
		return nil
	}

	activities := s.activities.WithTx(tx)
	fields := []*spec.Field{spec.InList("id").WithValue(activityIDs)}
	count, err := activities.GetCount(ctx, fields, nil)
	if err != nil {
		return err
	}
	if count == int64(len(activityIDs)) {
		return nil
	}

	existing, err := activities.GetList(ctx, pagination.All(), fields, nil, nil)
	if err != nil {
		return err
	}
	present := make(map[uuid.UUID]struct{}, len(existing))
	for _, activity := range existing {
		present[activity.ID] = struct{}{}
	}

	missing := make([]uuid.UUID, 0, len(activityIDs))
	seen := make(map[uuid.UUID]struct{}, len(activityIDs))
	for _, activityID := range activityIDs {
		if _, ok := present[activityID]; ok {
			continue
		}
		if _, ok := seen[activityID]; ok {
			continue
		}
		seen[activityID] = struct{}{}
		missing = append(missing, activityID)
	}
	return &activitydomain.NotFoundError{IDs: missing}
}

func (s *service) insertAssociations(ctx context.Context, tx *gorm.DB, organizationID uuid.UUID, activityIDs []uuid.UUID) error {
	if len(activityIDs) == 0 {
		return nil
	}

	rows := make([]*domain.OrganizationActivity, 0, len(activityIDs))
	for _, activityID := range activityIDs {
		rows = append(rows, &domain.OrganizationActivity{
			OrganizationID: organizationID,
			ActivityID:     activityID,
		})
	}
	return s.assoc.WithTx(tx).BatchCreate(ctx, rows)
}

func phoneStrings(numbers datatypes.JSONSlice[domain.PhoneNumber]) []string {
	out := make([]string, 0, len(numbers))
	for _, number := range numbers {
		out = append(out, string(number))
	}
	return out
}

// loadActivityIDs fills ActivityIDs on each organization from the
// association table with a single query.
func (s *service) loadActivityIDs(ctx context.Context, orgs []*domain.Organization) error {
	if len(orgs) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(orgs))
	for _, org := range orgs {
		ids = append(ids, org.ID)
	}
	rows, err := s.assoc.ListByOrganizationIDs(ctx, ids)
	if err != nil {
		return err
	}

	byOrg := make(map[uuid.UUID][]uuid.UUID, len(orgs))
	for _, row := range rows {
		byOrg[row.OrganizationID] = append(byOrg[row.OrganizationID], row.ActivityID)
	}
	for _, org := range orgs {
		org.ActivityIDs = byOrg[org.ID]
	}
	return nil
}
