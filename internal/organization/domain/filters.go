package domain

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	buildingdomain "github.com/D0Nater/organization-manager/internal/building/domain"
)

// ActivityFilter keeps organizations associated with at least one of the
// given activities. Subqueries rather than joins so that row counts stay
// correct for organizations tagged with several matching activities.
type ActivityFilter struct {
	IDs []uuid.UUID
}

// SetFilter applies the filter to the query.
func (f ActivityFilter) SetFilter(tx *gorm.DB) *gorm.DB {
	return tx.Where(
		"id IN (SELECT organization_id FROM organization_activities WHERE activity_id IN ?)",
		f.IDs,
	)
}

// BoundingBoxFilter keeps organizations whose building lies inside the
// inclusive coordinate box.
type BoundingBoxFilter struct {
	Box buildingdomain.BoundingBox
}

// SetFilter applies the filter to the query.
func (f BoundingBoxFilter) SetFilter(tx *gorm.DB) *gorm.DB {
	return tx.Where(
		"building_id IN (SELECT id FROM buildings WHERE latitude >= ? AND longitude >= ? AND latitude <= ? AND longitude <= ?)",
		f.Box.Min.Latitude, f.Box.Min.Longitude, f.Box.Max.Latitude, f.Box.Max.Longitude,
	)
}
