package service

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	activitydomain "github.com/D0Nater/organization-manager/internal/activity/domain"
	activityrepo "github.com/D0Nater/organization-manager/internal/activity/repository"
	buildingdomain "github.com/D0Nater/organization-manager/internal/building/domain"
	buildingrepo "github.com/D0Nater/organization-manager/internal/building/repository"
	"github.com/D0Nater/organization-manager/internal/organization/domain"
	"github.com/D0Nater/organization-manager/internal/organization/repository"
	"github.com/D0Nater/organization-manager/pkg/pagination"
)

type fixture struct {
	db         *gorm.DB
	svc        domain.Service
	buildings  buildingdomain.Repository
	activities activitydomain.Repository
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	err = db.AutoMigrate(
		&activitydomain.Activity{},
		&buildingdomain.Building{},
		&domain.Organization{},
		&domain.OrganizationActivity{},
	)
	if err != nil {
		t.Fatal(err)
	}

	buildings := buildingrepo.NewRepository(db)
	activities := activityrepo.NewRepository(db)
	svc := NewService(db, repository.NewRepository(db), repository.NewAssociationRepository(db), buildings, activities, nil)
	return &fixture{db: db, svc: svc, buildings: buildings, activities: activities}
}

func (f *fixture) building(t *testing.T, address string, lat, lon float64) uuid.UUID {
	t.Helper()
	coordinate, err := buildingdomain.NewCoordinate(lat, lon)
	if err != nil {
		t.Fatal(err)
	}
	b, err := f.buildings.Create(context.Background(), &buildingdomain.Building{
		Address:    address,
		Coordinate: coordinate,
	})
	if err != nil {
		t.Fatal(err)
	}
	return b.ID
}

func (f *fixture) activity(t *testing.T, name string, parentID *uuid.UUID) uuid.UUID {
	t.Helper()
	a, err := f.activities.Create(context.Background(), &activitydomain.Activity{
		Name:     name,
		ParentID: parentID,
	})
	if err != nil {
		t.Fatal(err)
	}
	return a.ID
}

func (f *fixture) organization(t *testing.T, name string, buildingID uuid.UUID, activityIDs []uuid.UUID) *domain.OrganizationResponse {
	t.Helper()
	resp, err := f.svc.Create(context.Background(), domain.CreateOrganizationRequest{
		Name:         name,
		PhoneNumbers: []string{"+79217002278"},
		BuildingID:   buildingID,
		ActivityIDs:  activityIDs,
	})
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func (f *fixture) rowCounts(t *testing.T) (orgs, assocs int64) {
	t.Helper()
	if err := f.db.Model(&domain.Organization{}).Count(&orgs).Error; err != nil {
		t.Fatal(err)
	}
	if err := f.db.Model(&domain.OrganizationActivity{}).Count(&assocs).Error; err != nil {
		t.Fatal(err)
	}
	return orgs, assocs
}

func TestCreateOrganization(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	buildingID := f.building(t, "create-hq", 55.0, 83.0)
	food := f.activity(t, "create-food", nil)
	meat := f.activity(t, "create-meat", &food)

	created, err := f.svc.Create(ctx, domain.CreateOrganizationRequest{
		Name:         "create-org",
		PhoneNumbers: []string{"+79217002278", "+123456"},
		BuildingID:   buildingID,
		ActivityIDs:  []uuid.UUID{food, meat},
	})
	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.ElementsMatch(t, []uuid.UUID{food, meat}, created.ActivityIDs)

	got, err := f.svc.GetByID(ctx, created.ID)
	assert.NoError(t, err)
	assert.Equal(t, "create-org", got.Name)
	assert.Equal(t, []string{"+79217002278", "+123456"}, got.PhoneNumbers)
	assert.Equal(t, buildingID, got.BuildingID)
	assert.ElementsMatch(t, []uuid.UUID{food, meat}, got.ActivityIDs)

	_, err = f.svc.Create(ctx, domain.CreateOrganizationRequest{Name: " ", BuildingID: buildingID})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = f.svc.Create(ctx, domain.CreateOrganizationRequest{
		Name:         "bad-phone",
		PhoneNumbers: []string{"not-a-phone"},
		BuildingID:   buildingID,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPhoneNumber)
}

func TestCreateMissingBuildingWritesNothing(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	food := f.activity(t, "mb-food", nil)
	orgsBefore, assocsBefore := f.rowCounts(t)

	_, err := f.svc.Create(ctx, domain.CreateOrganizationRequest{
		Name:        "mb-org",
		BuildingID:  uuid.New(),
		ActivityIDs: []uuid.UUID{food},
	})
	assert.ErrorIs(t, err, buildingdomain.ErrBuildingNotFound)

	orgsAfter, assocsAfter := f.rowCounts(t)
	assert.Equal(t, orgsBefore, orgsAfter)
	assert.Equal(t, assocsBefore, assocsAfter)
}

func TestCreateMissingActivitiesWritesNothing(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	buildingID := f.building(t, "ma-hq", 55.0, 83.0)
	existing := f.activity(t, "ma-exists", nil)
	missing := uuid.New()
	orgsBefore, assocsBefore := f.rowCounts(t)

	_, err := f.svc.Create(ctx, domain.CreateOrganizationRequest{
		Name:        "ma-org",
		BuildingID:  buildingID,
		ActivityIDs: []uuid.UUID{existing, missing},
	})
	assert.ErrorIs(t, err, activitydomain.ErrActivityNotFound)

	var nf *activitydomain.NotFoundError
	assert.ErrorAs(t, err, &nf)
	assert.Equal(t, []uuid.UUID{missing}, nf.IDs, "the error names exactly the absent ids")

	orgsAfter, assocsAfter := f.rowCounts(t)
	assert.Equal(t, orgsBefore, orgsAfter)
	assert.Equal(t, assocsBefore, assocsAfter)
}

// Duplicate activity ids are rejected rather than silently deduplicated:
// the row count can never match the request length.
func TestCreateDuplicateActivityIDs(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	buildingID := f.building(t, "dup-hq", 55.0, 83.0)
	food := f.activity(t, "dup-food", nil)

	_, err := f.svc.Create(ctx, domain.CreateOrganizationRequest{
		Name:        "dup-org",
		BuildingID:  buildingID,
		ActivityIDs: []uuid.UUID{food, food},
	})
	assert.ErrorIs(t, err, activitydomain.ErrActivityNotFound)

	var nf *activitydomain.NotFoundError
	assert.ErrorAs(t, err, &nf)
	assert.Empty(t, nf.IDs)
}

func TestUpdateReplacesAssociations(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	buildingID := f.building(t, "upd-hq", 55.0, 83.0)
	a1 := f.activity(t, "upd-a1", nil)
	a2 := f.activity(t, "upd-a2", nil)
	a3 := f.activity(t, "upd-a3", nil)

	created := f.organization(t, "upd-org", buildingID, []uuid.UUID{a1, a2})

	updated, err := f.svc.Update(ctx, created.ID, domain.UpdateOrganizationRequest{
		Name:         "upd-org-v2",
		PhoneNumbers: []string{"+234567"},
		BuildingID:   buildingID,
		ActivityIDs:  []uuid.UUID{a2, a3},
	})
	assert.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{a2, a3}, updated.ActivityIDs)

	got, err := f.svc.GetByID(ctx, created.ID)
	assert.NoError(t, err)
	assert.Equal(t, "upd-org-v2", got.Name)
	assert.Equal(t, []string{"+234567"}, got.PhoneNumbers)
	assert.ElementsMatch(t, []uuid.UUID{a2, a3}, got.ActivityIDs)

	cleared, err := f.svc.Update(ctx, created.ID, domain.UpdateOrganizationRequest{
		Name:         "upd-org-v3",
		PhoneNumbers: []string{"+234567"},
		BuildingID:   buildingID,
		ActivityIDs:  nil,
	})
	assert.NoError(t, err)
	assert.Empty(t, cleared.ActivityIDs)
}

func TestUpdateRollsBackOnMissingActivity(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	buildingID := f.building(t, "rb-hq", 55.0, 83.0)
	a1 := f.activity(t, "rb-a1", nil)
	created := f.organization(t, "rb-org", buildingID, []uuid.UUID{a1})

	_, err := f.svc.Update(ctx, created.ID, domain.UpdateOrganizationRequest{
		Name:         "rb-org-v2",
		PhoneNumbers: []string{"+234567"},
		BuildingID:   buildingID,
		ActivityIDs:  []uuid.UUID{uuid.New()},
	})
	assert.ErrorIs(t, err, activitydomain.ErrActivityNotFound)

	got, err := f.svc.GetByID(ctx, created.ID)
	assert.NoError(t, err)
	assert.Equal(t, "rb-org", got.Name, "the row keeps its previous state")
	assert.ElementsMatch(t, []uuid.UUID{a1}, got.ActivityIDs, "associations keep their previous state")
}

func TestPatchOrganization(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	buildingID := f.building(t, "po-hq", 55.0, 83.0)
	a1 := f.activity(t, "po-a1", nil)
	created := f.organization(t, "po-org", buildingID, []uuid.UUID{a1})

	name := "po-org-renamed"
	renamed, err := f.svc.Patch(ctx, created.ID, domain.PatchOrganizationRequest{Name: &name})
	assert.NoError(t, err)
	assert.Equal(t, "po-org-renamed", renamed.Name)
	assert.ElementsMatch(t, []uuid.UUID{a1}, renamed.ActivityIDs, "absent activity_ids keeps the association set")
	assert.Equal(t, buildingID, renamed.BuildingID)

	detached, err := f.svc.Patch(ctx, created.ID, domain.PatchOrganizationRequest{ActivityIDsSet: true})
	assert.NoError(t, err)
	assert.Empty(t, detached.ActivityIDs, "an explicit empty list clears the associations")

	missingBuilding := uuid.New()
	_, err = f.svc.Patch(ctx, created.ID, domain.PatchOrganizationRequest{BuildingID: &missingBuilding})
	assert.ErrorIs(t, err, buildingdomain.ErrBuildingNotFound)

	got, err := f.svc.GetByID(ctx, created.ID)
	assert.NoError(t, err)
	assert.Equal(t, buildingID, got.BuildingID, "a failed patch changes nothing")

	_, err = f.svc.Patch(ctx, created.ID, domain.PatchOrganizationRequest{
		PhoneNumbers:    []string{"nope"},
		PhoneNumbersSet: true,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPhoneNumber)
}

func TestDeleteOrganization(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	buildingID := f.building(t, "do-hq", 55.0, 83.0)
	a1 := f.activity(t, "do-a1", nil)
	created := f.organization(t, "do-org", buildingID, []uuid.UUID{a1})

	assert.NoError(t, f.svc.Delete(ctx, created.ID))

	_, err := f.svc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrOrganizationNotFound)

	var orphaned int64
	err = f.db.Model(&domain.OrganizationActivity{}).
		Where("organization_id = ?", created.ID).
		Count(&orphaned).Error
	assert.NoError(t, err)
	assert.Zero(t, orphaned, "association rows go with the organization")

	err = f.svc.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrOrganizationNotFound)
}

func TestGetPageFilters(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	nsk := f.building(t, "lf-nsk", 55.0, 83.0)
	msk := f.building(t, "lf-msk", 55.75, 37.62)

	food := f.activity(t, "lf-food", nil)
	meat := f.activity(t, "lf-meat", &food)
	milk := f.activity(t, "lf-milk", &meat)
	cars := f.activity(t, "lf-cars", nil)

	orgMeat := f.organization(t, "lf-org-meat", nsk, []uuid.UUID{meat})
	orgMilk := f.organization(t, "lf-org-milk", msk, []uuid.UUID{milk})
	orgCars := f.organization(t, "lf-org-cars", nsk, []uuid.UUID{cars})
	orgPlain := f.organization(t, "lf-org-plain", msk, nil)

	list := func(req domain.ListOrganizationsRequest) []uuid.UUID {
		t.Helper()
		req.NameILike = "lf-org-"
		if req.Pagination.PerPage == 0 {
			req.Pagination = pagination.Request{Page: 1, PerPage: 100}
		}
		page, err := f.svc.GetPage(ctx, req)
		if err != nil {
			t.Fatal(err)
		}
		ids := make([]uuid.UUID, 0, len(page.Items))
		for _, item := range page.Items {
			ids = append(ids, item.ID)
		}
		return ids
	}

	t.Run("ByActivity", func(t *testing.T) {
		ids := list(domain.ListOrganizationsRequest{ActivityIDs: []uuid.UUID{meat}})
		assert.ElementsMatch(t, []uuid.UUID{orgMeat.ID}, ids, "direct tag only, no descendants")
	})

	t.Run("ByActivityWithChildren", func(t *testing.T) {
		ids := list(domain.ListOrganizationsRequest{ActivityIDsWithChildren: []uuid.UUID{food}})
		assert.ElementsMatch(t, []uuid.UUID{orgMeat.ID, orgMilk.ID}, ids)
	})

	t.Run("ByBoundingBox", func(t *testing.T) {
		box, err := buildingdomain.ParseBoundingBox("54,82;56,84")
		assert.NoError(t, err)
		ids := list(domain.ListOrganizationsRequest{Box: &box})
		assert.ElementsMatch(t, []uuid.UUID{orgMeat.ID, orgCars.ID}, ids)
	})

	t.Run("ByBuilding", func(t *testing.T) {
		ids := list(domain.ListOrganizationsRequest{BuildingIDs: []uuid.UUID{msk}})
		assert.ElementsMatch(t, []uuid.UUID{orgMilk.ID, orgPlain.ID}, ids)
	})

	t.Run("ByName", func(t *testing.T) {
		ids := list(domain.ListOrganizationsRequest{})
		assert.Len(t, ids, 4)

		page, err := f.svc.GetPage(ctx, domain.ListOrganizationsRequest{
			Pagination: pagination.Request{Page: 1, PerPage: 100},
			NameILike:  "LF-ORG-MI",
		})
		assert.NoError(t, err)
		assert.Len(t, page.Items, 1)
		assert.Equal(t, orgMilk.ID, page.Items[0].ID)
	})

	t.Run("Combined", func(t *testing.T) {
		box, err := buildingdomain.ParseBoundingBox("54,82;56,84")
		assert.NoError(t, err)
		ids := list(domain.ListOrganizationsRequest{
			ActivityIDsWithChildren: []uuid.UUID{food},
			Box:                     &box,
		})
		assert.ElementsMatch(t, []uuid.UUID{orgMeat.ID}, ids)
	})

	t.Run("PageMetadata", func(t *testing.T) {
		page, err := f.svc.GetPage(ctx, domain.ListOrganizationsRequest{
			Pagination: pagination.Request{Page: 1, PerPage: 3},
			NameILike:  "lf-org-",
		})
		assert.NoError(t, err)
		assert.Len(t, page.Items, 3)
		assert.Equal(t, int64(4), page.Total)
		assert.Equal(t, 2, page.Pages())
		assert.True(t, page.HasNext())
	})

	t.Run("EnrichesActivityIDs", func(t *testing.T) {
		page, err := f.svc.GetPage(ctx, domain.ListOrganizationsRequest{
			Pagination: pagination.Request{Page: 1, PerPage: 100},
			IDs:        []uuid.UUID{orgMeat.ID, orgPlain.ID},
		})
		assert.NoError(t, err)
		assert.Len(t, page.Items, 2)
		for _, item := range page.Items {
			switch item.ID {
			case orgMeat.ID:
				assert.Equal(t, []uuid.UUID{meat}, item.ActivityIDs)
			case orgPlain.ID:
				assert.NotNil(t, item.ActivityIDs)
				assert.Empty(t, item.ActivityIDs)
			}
		}
	})
}
