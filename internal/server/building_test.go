package server

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func createBuildingViaAPI(t *testing.T, srv *Server, address string, lat, lon float64) map[string]any {
	t.Helper()

	resp := doJSON(t, srv, http.MethodPost, "/api/v1/buildings", map[string]any{
		"address":   address,
		"latitude":  lat,
		"longitude": lon,
	}, nil)
	if resp.Code != http.StatusCreated {
		t.Fatalf("create building %q: status %d body %s", address, resp.Code, resp.Body.String())
	}
	return decodeBody(t, resp)
}

func TestBuildingCreateAndGet(t *testing.T) {
	srv := openTestServer(t)

	created := createBuildingViaAPI(t, srv, "api-bld-lenina-1", 54.9833, 82.8964)
	assert.Equal(t, "api-bld-lenina-1", created["address"])
	assert.InDelta(t, 54.9833, created["latitude"].(float64), 1e-9)
	id := created["id"].(string)

	resp := doJSON(t, srv, http.MethodGet, "/api/v1/buildings/"+id, nil, nil)
	assert.Equal(t, http.StatusOK, resp.Code)

	t.Run("LatitudeOutOfRangeIs422", func(t *testing.T) {
		resp := doJSON(t, srv, http.MethodPost, "/api/v1/buildings", map[string]any{
			"address":   "api-bld-bad",
			"latitude":  91.0,
			"longitude": 0.0,
		}, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
		assert.Equal(t, "RequestValidationError", decodeBody(t, resp)["error_code"])
	})

	t.Run("MissingIDIs404", func(t *testing.T) {
		resp := doJSON(t, srv, http.MethodGet, "/api/v1/buildings/"+uuid.NewString(), nil, nil)
		assert.Equal(t, http.StatusNotFound, resp.Code)
		assert.Equal(t, "BuildingNotFoundError", decodeBody(t, resp)["error_code"])
	})
}

func TestBuildingListWindow(t *testing.T) {
	srv := openTestServer(t)

	inside := createBuildingViaAPI(t, srv, "api-bld-win-inside", 55.0, 83.0)
	edge := createBuildingViaAPI(t, srv, "api-bld-win-edge", 56.0, 84.0)
	createBuildingViaAPI(t, srv, "api-bld-win-north", 59.93, 30.33)

	path := "/api/v1/buildings?address_ilike=api-bld-win-" +
		"&latitude_gte=54&latitude_lte=56&longitude_gte=82&longitude_lte=84"
	resp := doJSON(t, srv, http.MethodGet, path, nil, nil)
	assert.Equal(t, http.StatusOK, resp.Code)

	body := decodeBody(t, resp)
	assert.Equal(t, float64(2), body["total_items"])

	var got []string
	for _, item := range body["items"].([]any) {
		got = append(got, item.(map[string]any)["id"].(string))
	}
	assert.ElementsMatch(t, []string{inside["id"].(string), edge["id"].(string)}, got)

	t.Run("BadWindowParamIs422", func(t *testing.T) {
		resp := doJSON(t, srv, http.MethodGet, "/api/v1/buildings?latitude_gte=north", nil, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	})

	t.Run("SortByAddress", func(t *testing.T) {
		resp := doJSON(t, srv, http.MethodGet,
			"/api/v1/buildings?address_ilike=api-bld-win-&sort=address", nil, nil)
		assert.Equal(t, http.StatusOK, resp.Code)

		items := decodeBody(t, resp)["items"].([]any)
		var addresses []string
		for _, item := range items {
			addresses = append(addresses, item.(map[string]any)["address"].(string))
		}
		assert.Equal(t, []string{"api-bld-win-edge", "api-bld-win-inside", "api-bld-win-north"}, addresses)
	})
}

func TestBuildingUpdatePatchDelete(t *testing.T) {
	srv := openTestServer(t)

	created := createBuildingViaAPI(t, srv, "api-bld-upd-old", 10.0, 20.0)
	id := created["id"].(string)

	t.Run("PutReplaces", func(t *testing.T) {
		resp := doJSON(t, srv, http.MethodPut, "/api/v1/buildings/"+id, map[string]any{
			"address":   "api-bld-upd-new",
			"latitude":  11.0,
			"longitude": 21.0,
		}, nil)
		assert.Equal(t, http.StatusOK, resp.Code)

		body := decodeBody(t, resp)
		assert.Equal(t, "api-bld-upd-new", body["address"])
		assert.InDelta(t, 11.0, body["latitude"].(float64), 1e-9)
	})

	t.Run("PatchLatitudeOnly", func(t *testing.T) {
		resp := doJSON(t, srv, http.MethodPatch, "/api/v1/buildings/"+id, map[string]any{
			"latitude": 12.5,
		}, nil)
		assert.Equal(t, http.StatusOK, resp.Code)

		body := decodeBody(t, resp)
		assert.InDelta(t, 12.5, body["latitude"].(float64), 1e-9)
		assert.InDelta(t, 21.0, body["longitude"].(float64), 1e-9)
		assert.Equal(t, "api-bld-upd-new", body["address"])
	})

	t.Run("PatchBadLatitudeIs422", func(t *testing.T) {
		resp := doJSON(t, srv, http.MethodPatch, "/api/v1/buildings/"+id, map[string]any{
			"latitude": -90.5,
		}, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	})

	t.Run("DeleteIs204", func(t *testing.T) {
		resp := doJSON(t, srv, http.MethodDelete, "/api/v1/buildings/"+id, nil, nil)
		assert.Equal(t, http.StatusNoContent, resp.Code)

		resp = doJSON(t, srv, http.MethodGet, "/api/v1/buildings/"+id, nil, nil)
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}

func TestBuildingListPaginationEnvelope(t *testing.T) {
	srv := openTestServer(t)

	for i := 0; i < 5; i++ {
		createBuildingViaAPI(t, srv, fmt.Sprintf("api-bld-page-%d", i), 1.0, 1.0)
	}

	resp := doJSON(t, srv, http.MethodGet,
		"/api/v1/buildings?address_ilike=api-bld-page-&limit=2&page=3", nil, nil)
	assert.Equal(t, http.StatusOK, resp.Code)

	body := decodeBody(t, resp)
	assert.Equal(t, float64(5), body["total_items"])
	assert.Equal(t, float64(3), body["total_pages"])
	assert.Len(t, body["items"].([]any), 1)
}
