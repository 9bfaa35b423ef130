// Package domain contains models and contracts for the activity taxonomy.
package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxNestingLevel caps how deep the activity forest may grow, the root
// counted as level 1. A parent already at this depth cannot take children.
const MaxNestingLevel = 3

// Activity is one node of the business-category forest. ParentID is nil for
// roots and references another activity otherwise.
type Activity struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string     `gorm:"type:text;not null" json:"name"`
	ParentID  *uuid.UUID `gorm:"type:uuid;index" json:"parent_id"`
	CreatedAt time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Activity) TableName() string { return "activities" }

// BeforeCreate assigns the identifier when the caller left it empty.
func (a *Activity) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
