package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	activitydomain "github.com/D0Nater/organization-manager/internal/activity/domain"
	buildingdomain "github.com/D0Nater/organization-manager/internal/building/domain"
	obscontext "github.com/D0Nater/organization-manager/internal/observability/context"
	organizationdomain "github.com/D0Nater/organization-manager/internal/organization/domain"
	"github.com/D0Nater/organization-manager/pkg/db"
)

// errorPayload is the wire shape of every non-2xx response. ErrorCode is a
// stable taxonomy name clients may switch on; EventID echoes the request id
// so a failure can be found in the logs.
type errorPayload struct {
	Detail         string         `json:"detail"`
	ErrorCode      string         `json:"error_code"`
	EventID        string         `json:"event_id"`
	AdditionalInfo map[string]any `json:"additional_info"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		payload.EventID = requestID(c)
		c.AbortWithStatusJSON(status, payload)
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return ErrInvalidRequest
}

// paramError names the request parameter that failed to parse.
type paramError struct {
	param string
}

func invalidParamError(name string) error {
	return &paramError{param: name}
}

func (e *paramError) Error() string {
	return "invalid parameter " + e.param
}

func (e *paramError) Unwrap() error { return ErrInvalidRequest }

func mapError(err error) (int, errorPayload) {
	payload := errorPayload{
		Detail:         "Internal server error",
		ErrorCode:      "InternalServerError",
		AdditionalInfo: map[string]any{},
	}
	if err == nil {
		return http.StatusInternalServerError, payload
	}

	var activityMissing *activitydomain.NotFoundError
	var buildingMissing *buildingdomain.NotFoundError
	var organizationMissing *organizationdomain.NotFoundError

	switch {
	case errors.As(err, &activityMissing):
		payload.Detail = "Activity not found"
		payload.ErrorCode = "ActivityNotFoundError"
		payload.AdditionalInfo["ids"] = idStrings(activityMissing.IDs)
		return http.StatusNotFound, payload
	case errors.As(err, &buildingMissing):
		payload.Detail = "Building not found"
		payload.ErrorCode = "BuildingNotFoundError"
		payload.AdditionalInfo["ids"] = idStrings(buildingMissing.IDs)
		return http.StatusNotFound, payload
	case errors.As(err, &organizationMissing):
		payload.Detail = "Organization not found"
		payload.ErrorCode = "OrganizationNotFoundError"
		payload.AdditionalInfo["ids"] = idStrings(organizationMissing.IDs)
		return http.StatusNotFound, payload
	case errors.Is(err, activitydomain.ErrActivityNotFound):
		payload.Detail = "Activity not found"
		payload.ErrorCode = "ActivityNotFoundError"
		return http.StatusNotFound, payload
	case errors.Is(err, buildingdomain.ErrBuildingNotFound):
		payload.Detail = "Building not found"
		payload.ErrorCode = "BuildingNotFoundError"
		return http.StatusNotFound, payload
	case errors.Is(err, organizationdomain.ErrOrganizationNotFound):
		payload.Detail = "Organization not found"
		payload.ErrorCode = "OrganizationNotFoundError"
		return http.StatusNotFound, payload
	case errors.Is(err, activitydomain.ErrMaximumNesting):
		payload.Detail = "Maximum nesting level reached"
		payload.ErrorCode = "ActivityMaximumNestingError"
		return http.StatusConflict, payload
	case errors.Is(err, ErrUnauthorized):
		payload.Detail = "Not authenticated"
		payload.ErrorCode = "AuthenticationError"
		return http.StatusUnauthorized, payload
	case isValidationError(err):
		payload.Detail = "Invalid request"
		payload.ErrorCode = "RequestValidationError"
		payload.AdditionalInfo["reason"] = err.Error()
		return http.StatusUnprocessableEntity, payload
	case db.IsDuplicateKeyErr(err), db.IsForeignKeyViolationErr(err):
		payload.Detail = "Conflicting state"
		payload.ErrorCode = "ConflictError"
		return http.StatusConflict, payload
	default:
		return http.StatusInternalServerError, payload
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, activitydomain.ErrInvalidName),
		errors.Is(err, buildingdomain.ErrInvalidAddress),
		errors.Is(err, buildingdomain.ErrInvalidLatitude),
		errors.Is(err, buildingdomain.ErrInvalidLongitude),
		errors.Is(err, buildingdomain.ErrInvalidBoundingBox),
		errors.Is(err, organizationdomain.ErrInvalidName),
		errors.Is(err, organizationdomain.ErrInvalidPhoneNumber):
		return true
	default:
		return false
	}
}

// classifyErrorForLog buckets errors for the access log without exposing
// internals to the log pipeline.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	kind := "validation"
	switch {
	case status >= http.StatusInternalServerError:
		kind = "internal"
	case status == http.StatusNotFound:
		kind = "not_found"
	case status == http.StatusConflict:
		kind = "conflict"
	case status == http.StatusUnauthorized:
		kind = "unauthorized"
	}
	return kind, payload.ErrorCode
}

func requestID(c *gin.Context) string {
	if id := strings.TrimSpace(c.GetString("request_id")); id != "" {
		return id
	}
	return obscontext.RequestIDFromContext(c.Request.Context())
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
