package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	activitydomain "github.com/D0Nater/organization-manager/internal/activity/domain"
	"github.com/D0Nater/organization-manager/pkg/pagination"
)

type activityPayload struct {
	Name     string     `json:"name"`
	ParentID *uuid.UUID `json:"parent_id"`
}

func (s *Server) CreateActivity(c *gin.Context) {
	var req activityPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.activitySvc.Create(c.Request.Context(), activitydomain.CreateActivityRequest{
		Name:     strings.TrimSpace(req.Name),
		ParentID: req.ParentID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (s *Server) ListActivities(c *gin.Context) {
	var query struct {
		pagination.Request
		IDs       []string `form:"ids"`
		ParentID  string   `form:"parent_id"`
		NameILike string   `form:"name_ilike"`
		Sort      string   `form:"sort"`
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
	parentID, err := parseOptionalUUID(query.ParentID)
	if err != nil {
		AbortWithError(c, invalidParamError("parent_id"))
		return
	}
	sorts, err := parseSorts(query.Sort, "name", "created_at")
	if err != nil {
		AbortWithError(c, invalidParamError("sort"))
		return
	}

	page, err := s.activitySvc.GetPage(c.Request.Context(), activitydomain.ListActivitiesRequest{
		Pagination: query.Request,
		IDs:        ids,
		ParentID:   parentID,
		NameILike:  strings.TrimSpace(query.NameILike),
		Sorts:      sorts,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, pageResponse(page))
}

func (s *Server) GetActivityByID(c *gin.Context) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("activity_id")))
	if err != nil {
		AbortWithError(c, invalidParamError("activity_id"))
		return
	}

	resp, err := s.activitySvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) UpdateActivity(c *gin.Context) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("activity_id")))
	if err != nil {
		AbortWithError(c, invalidParamError("activity_id"))
		return
	}

	var req activityPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.activitySvc.Update(c.Request.Context(), id, activitydomain.UpdateActivityRequest{
		Name:     strings.TrimSpace(req.Name),
		ParentID: req.ParentID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// PatchActivity decodes into raw JSON first: "parent_id": null moves the
// activity to the root, while an absent key leaves the parent unchanged.
func (s *Server) PatchActivity(c *gin.Context) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("activity_id")))
	if err != nil {
		AbortWithError(c, invalidParamError("activity_id"))
		return
	}

	var fields map[string]json.RawMessage
	if err := c.ShouldBindJSON(&fields); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var req activitydomain.PatchActivityRequest
	if raw, ok := fields["name"]; ok {
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			AbortWithError(c, invalidParamError("name"))
			return
		}
		name = strings.TrimSpace(name)
		req.Name = &name
	}
	if raw, ok := fields["parent_id"]; ok {
		var parentID *uuid.UUID
		if err := json.Unmarshal(raw, &parentID); err != nil {
			AbortWithError(c, invalidParamError("parent_id"))
			return
		}
		req.ParentID = parentID
		req.ParentIDSet = true
	}

	resp, err := s.activitySvc.Patch(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) DeleteActivity(c *gin.Context) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("activity_id")))
	if err != nil {
		AbortWithError(c, invalidParamError("activity_id"))
		return
	}

	if err := s.activitySvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
