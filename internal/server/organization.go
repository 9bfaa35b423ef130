package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	buildingdomain "github.com/D0Nater/organization-manager/internal/building/domain"
	organizationdomain "github.com/D0Nater/organization-manager/internal/organization/domain"
	"github.com/D0Nater/organization-manager/pkg/pagination"
)

type organizationPayload struct {
	Name         string      `json:"name"`
	PhoneNumbers []string    `json:"phone_numbers"`
	BuildingID   uuid.UUID   `json:"building_id"`
	ActivityIDs  []uuid.UUID `json:"activity_ids"`
}

func (s *Server) CreateOrganization(c *gin.Context) {
	var req organizationPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.organizationSvc.Create(c.Request.Context(), organizationdomain.CreateOrganizationRequest{
		Name:         strings.TrimSpace(req.Name),
		PhoneNumbers: req.PhoneNumbers,
		BuildingID:   req.BuildingID,
		ActivityIDs:  req.ActivityIDs,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (s *Server) ListOrganizations(c *gin.Context) {
	var query struct {
		pagination.Request
		IDs                     []string `form:"ids"`
		BuildingIDs             []string `form:"building_ids"`
		ActivityIDs             []string `form:"activity_ids"`
		ActivityIDsWithChildren []string `form:"activity_ids_with_children"`
		NameILike               string   `form:"name_ilike"`
		Coords                  string   `form:"coords"`
		Sort                    string   `form:"sort"`
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
	buildingIDs, err := parseUUIDList(query.BuildingIDs)
	if err != nil {
		AbortWithError(c, invalidParamError("building_ids"))
		return
	}
	activityIDs, err := parseUUIDList(query.ActivityIDs)
	if err != nil {
		AbortWithError(c, invalidParamError("activity_ids"))
		return
	}
	activityIDsWithChildren, err := parseUUIDList(query.ActivityIDsWithChildren)
	if err != nil {
		AbortWithError(c, invalidParamError("activity_ids_with_children"))
		return
	}
	sorts, err := parseSorts(query.Sort, "name", "created_at")
	if err != nil {
		AbortWithError(c, invalidParamError("sort"))
		return
	}

	var box *buildingdomain.BoundingBox
	if strings.TrimSpace(query.Coords) != "" {
		parsed, err := buildingdomain.ParseBoundingBox(query.Coords)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		box = &parsed
	}

	page, err := s.organizationSvc.GetPage(c.Request.Context(), organizationdomain.ListOrganizationsRequest{
		Pagination:              query.Request,
		IDs:                     ids,
		BuildingIDs:             buildingIDs,
		ActivityIDs:             activityIDs,
		ActivityIDsWithChildren: activityIDsWithChildren,
		NameILike:               strings.TrimSpace(query.NameILike),
		Box:                     box,
		Sorts:                   sorts,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, pageResponse(page))
}

func (s *Server) GetOrganizationByID(c *gin.Context) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("organization_id")))
	if err != nil {
		AbortWithError(c, invalidParamError("organization_id"))
		return
	}

	resp, err := s.organizationSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) UpdateOrganization(c *gin.Context) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("organization_id")))
	if err != nil {
		AbortWithError(c, invalidParamError("organization_id"))
		return
	}

	var req organizationPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.organizationSvc.Update(c.Request.Context(), id, organizationdomain.UpdateOrganizationRequest{
		Name:         strings.TrimSpace(req.Name),
		PhoneNumbers: req.PhoneNumbers,
		BuildingID:   req.BuildingID,
		ActivityIDs:  req.ActivityIDs,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// PatchOrganization decodes into raw JSON first so an explicit empty list
// clears phone numbers or associations while an absent key leaves them as
// they are.
func (s *Server) PatchOrganization(c *gin.Context) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("organization_id")))
	if err != nil {
		AbortWithError(c, invalidParamError("organization_id"))
		return
	}

	var fields map[string]json.RawMessage
	if err := c.ShouldBindJSON(&fields); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var req organizationdomain.PatchOrganizationRequest
	if raw, ok := fields["name"]; ok {
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			AbortWithError(c, invalidParamError("name"))
			return
		}
		name = strings.TrimSpace(name)
		req.Name = &name
	}
	if raw, ok := fields["phone_numbers"]; ok {
		var phones []string
		if err := json.Unmarshal(raw, &phones); err != nil {
			AbortWithError(c, invalidParamError("phone_numbers"))
			return
		}
		req.PhoneNumbers = phones
		req.PhoneNumbersSet = true
	}
	if raw, ok := fields["building_id"]; ok {
		var buildingID uuid.UUID
		if err := json.Unmarshal(raw, &buildingID); err != nil {
			AbortWithError(c, invalidParamError("building_id"))
			return
		}
		req.BuildingID = &buildingID
	}
	if raw, ok := fields["activity_ids"]; ok {
		var activityIDs []uuid.UUID
		if err := json.Unmarshal(raw, &activityIDs); err != nil {
			AbortWithError(c, invalidParamError("activity_ids"))
			return
		}
		req.ActivityIDs = activityIDs
		req.ActivityIDsSet = true
	}

	resp, err := s.organizationSvc.Patch(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) DeleteOrganization(c *gin.Context) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("organization_id")))
	if err != nil {
		AbortWithError(c, invalidParamError("organization_id"))
		return
	}

	if err := s.organizationSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
