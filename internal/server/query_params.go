package server

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/D0Nater/organization-manager/pkg/pagination"
	"github.com/D0Nater/organization-manager/pkg/spec"
)

// parseUUIDList accepts repeated params and comma-separated values, so
// ?ids=a,b and ?ids=a&ids=b read the same.
func parseUUIDList(values []string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			id, err := uuid.Parse(trimmed)
			if err != nil {
				return nil, fmt.Errorf("invalid uuid %q", trimmed)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func parseOptionalUUID(value string) (*uuid.UUID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := uuid.Parse(trimmed)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func parseOptionalFloat(value string) (*float64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// parseSorts reads a comma-separated sort expression where a leading "-"
// flips a field to descending. Fields outside the allow list are rejected.
func parseSorts(value string, allowed ...string) ([]*spec.Sort, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}

	allowedSet := make(map[string]struct{}, len(allowed))
	for _, field := range allowed {
		allowedSet[field] = struct{}{}
	}

	var sorts []*spec.Sort
	for _, part := range strings.Split(trimmed, ",") {
		field := strings.TrimSpace(part)
		if field == "" {
			continue
		}
		direction := spec.Ascending
		if strings.HasPrefix(field, "-") {
			direction = spec.Descending
			field = strings.TrimSpace(strings.TrimPrefix(field, "-"))
		}
		if _, ok := allowedSet[field]; !ok {
			return nil, fmt.Errorf("unknown sort field %q", field)
		}
		sorts = append(sorts, spec.SortBy(field).WithDirection(direction))
	}
	return sorts, nil
}

// listResponse is the page envelope for every collection endpoint.
type listResponse[T any] struct {
	Items      []T   `json:"items"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

func pageResponse[T any](page *pagination.Page[T]) listResponse[T] {
	items := page.Items
	if items == nil {
		items = []T{}
	}
	return listResponse[T]{
		Items:      items,
		TotalItems: page.Total,
		TotalPages: page.Pages(),
	}
}
