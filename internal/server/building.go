package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	buildingdomain "github.com/D0Nater/organization-manager/internal/building/domain"
	"github.com/D0Nater/organization-manager/pkg/pagination"
)

type buildingPayload struct {
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (s *Server) CreateBuilding(c *gin.Context) {
	var req buildingPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.buildingSvc.Create(c.Request.Context(), buildingdomain.CreateBuildingRequest{
		Address:   strings.TrimSpace(req.Address),
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (s *Server) ListBuildings(c *gin.Context) {
	var query struct {
		pagination.Request
		IDs          []string `form:"ids"`
		AddressILike string   `form:"address_ilike"`
		LatitudeGTE  string   `form:"latitude_gte"`
		LatitudeLTE  string   `form:"latitude_lte"`
		LongitudeGTE string   `form:"longitude_gte"`
		LongitudeLTE string   `form:"longitude_lte"`
		Sort         string   `form:"sort"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	ids, err := parseUUIDList(query.IDs)
	if err != nil {
		AbortWithError(c, invalidParamError("ids"))
		return
	}
	latitudeGTE, err := parseOptionalFloat(query.LatitudeGTE)
	if err != nil {
		AbortWithError(c, invalidParamError("latitude_gte"))
		return
	}
	latitudeLTE, err := parseOptionalFloat(query.LatitudeLTE)
	if err != nil {
		AbortWithError(c, invalidParamError("latitude_lte"))
		return
	}
	longitudeGTE, err := parseOptionalFloat(query.LongitudeGTE)
	if err != nil {
		AbortWithError(c, invalidParamError("longitude_gte"))
		return
	}
	longitudeLTE, err := parseOptionalFloat(query.LongitudeLTE)
	if err != nil {
		AbortWithError(c, invalidParamError("longitude_lte"))
		return
	}
	sorts, err := parseSorts(query.Sort, "address", "created_at")
	if err != nil {
		AbortWithError(c, invalidParamError("sort"))
		return
	}

	page, err := s.buildingSvc.GetPage(c.Request.Context(), buildingdomain.ListBuildingsRequest{
		Pagination:   query.Request,
		IDs:          ids,
		AddressILike: strings.TrimSpace(query.AddressILike),
		LatitudeGTE:  latitudeGTE,
		LatitudeLTE:  latitudeLTE,
		LongitudeGTE: longitudeGTE,
		LongitudeLTE: longitudeLTE,
		Sorts:        sorts,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, pageResponse(page))
}

func (s *Server) GetBuildingByID(c *gin.Context) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("building_id")))
	if err != nil {
		AbortWithError(c, invalidParamError("building_id"))
		return
	}

	resp, err := s.buildingSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) UpdateBuilding(c *gin.Context) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("building_id")))
	if err != nil {
		AbortWithError(c, invalidParamError("building_id"))
		return
	}

	var req buildingPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.buildingSvc.Update(c.Request.Context(), id, buildingdomain.UpdateBuildingRequest{
		Address:   strings.TrimSpace(req.Address),
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) PatchBuilding(c *gin.Context) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("building_id")))
	if err != nil {
		AbortWithError(c, invalidParamError("building_id"))
		return
	}

	var fields map[string]json.RawMessage
	if err := c.ShouldBindJSON(&fields); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var req buildingdomain.PatchBuildingRequest
	if raw, ok := fields["address"]; ok {
		var address string
		if err := json.Unmarshal(raw, &address); err != nil {
			AbortWithError(c, invalidParamError("address"))
			return
		}
		address = strings.TrimSpace(address)
		req.Address = &address
	}
	if raw, ok := fields["latitude"]; ok {
		var latitude float64
		if err := json.Unmarshal(raw, &latitude); err != nil {
			AbortWithError(c, invalidParamError("latitude"))
			return
		}
		req.Latitude = &latitude
	}
	if raw, ok := fields["longitude"]; ok {
		var longitude float64
		if err := json.Unmarshal(raw, &longitude); err != nil {
			AbortWithError(c, invalidParamError("longitude"))
			return
		}
		req.Longitude = &longitude
	}

	resp, err := s.buildingSvc.Patch(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) DeleteBuilding(c *gin.Context) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("building_id")))
	if err != nil {
		AbortWithError(c, invalidParamError("building_id"))
		return
	}

	if err := s.buildingSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
