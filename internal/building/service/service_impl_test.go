package service

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/D0Nater/organization-manager/internal/building/domain"
	"github.com/D0Nater/organization-manager/internal/building/repository"
	"github.com/D0Nater/organization-manager/pkg/pagination"
)

func setup(t *testing.T) domain.Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AutoMigrate(&domain.Building{}); err != nil {
		t.Fatal(err)
	}
	return NewService(repository.NewRepository(db), nil)
}

func mustCreate(t *testing.T, svc domain.Service, address string, lat, lon float64) *domain.BuildingResponse {
	t.Helper()
	resp, err := svc.Create(context.Background(), domain.CreateBuildingRequest{
		Address:   address,
		Latitude:  lat,
		Longitude: lon,
	})
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestCreateValidation(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	created := mustCreate(t, svc, "Lenina 1, Novosibirsk", 55.03, 82.92)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, 55.03, created.Latitude)
	assert.Equal(t, 82.92, created.Longitude)

	_, err := svc.Create(ctx, domain.CreateBuildingRequest{Address: "  ", Latitude: 0, Longitude: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidAddress)

	_, err = svc.Create(ctx, domain.CreateBuildingRequest{Address: "North Pole Annex", Latitude: 91, Longitude: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidLatitude)

	_, err = svc.Create(ctx, domain.CreateBuildingRequest{Address: "Date Line", Latitude: 0, Longitude: -180.01})
	assert.ErrorIs(t, err, domain.ErrInvalidLongitude)
}

func TestGetPageCoordinateWindow(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	inside := mustCreate(t, svc, "geo-inside", 55.0, 83.0)
	mustCreate(t, svc, "geo-north", 60.0, 83.0)
	mustCreate(t, svc, "geo-west", 55.0, 70.0)
	edge := mustCreate(t, svc, "geo-edge", 56.0, 84.0)

	latMin, latMax := 54.0, 56.0
	lonMin, lonMax := 82.0, 84.0
	page, err := svc.GetPage(ctx, domain.ListBuildingsRequest{
		Pagination:   pagination.Request{Page: 1, PerPage: 10},
		AddressILike: "GEO-",
		LatitudeGTE:  &latMin,
		LatitudeLTE:  &latMax,
		LongitudeGTE: &lonMin,
		LongitudeLTE: &lonMax,
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(2), page.Total, "the window is inclusive on both edges")

	got := make([]uuid.UUID, 0, len(page.Items))
	for _, b := range page.Items {
		got = append(got, b.ID)
	}
	assert.ElementsMatch(t, []uuid.UUID{inside.ID, edge.ID}, got)
}

func TestUpdateAndPatch(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	created := mustCreate(t, svc, "up-original", 10, 20)

	updated, err := svc.Update(ctx, created.ID, domain.UpdateBuildingRequest{
		Address:   "up-replaced",
		Latitude:  11,
		Longitude: 21,
	})
	assert.NoError(t, err)
	assert.Equal(t, "up-replaced", updated.Address)
	assert.Equal(t, 11.0, updated.Latitude)

	lat := 12.5
	patched, err := svc.Patch(ctx, created.ID, domain.PatchBuildingRequest{Latitude: &lat})
	assert.NoError(t, err)
	assert.Equal(t, 12.5, patched.Latitude)
	assert.Equal(t, 21.0, patched.Longitude, "absent fields keep their values")
	assert.Equal(t, "up-replaced", patched.Address)

	badLat := -90.5
	_, err = svc.Patch(ctx, created.ID, domain.PatchBuildingRequest{Latitude: &badLat})
	assert.ErrorIs(t, err, domain.ErrInvalidLatitude)

	_, err = svc.Update(ctx, uuid.New(), domain.UpdateBuildingRequest{Address: "x", Latitude: 0, Longitude: 0})
	assert.ErrorIs(t, err, domain.ErrBuildingNotFound)
}

func TestDeleteBuilding(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	created := mustCreate(t, svc, "del-building", 1, 2)
	assert.NoError(t, svc.Delete(ctx, created.ID))

	err := svc.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrBuildingNotFound)

	_, err = svc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrBuildingNotFound)
}
