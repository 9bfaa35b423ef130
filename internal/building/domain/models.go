// Package domain contains models and contracts for buildings.
package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Coordinate is a validated geographic point.
type Coordinate struct {
	Latitude  float64 `gorm:"not null" json:"latitude"`
	Longitude float64 `gorm:"not null" json:"longitude"`
}

// NewCoordinate rejects out-of-range latitude or longitude.
func NewCoordinate(latitude, longitude float64) (Coordinate, error) {
	if latitude < -90 || latitude > 90 {
		return Coordinate{}, ErrInvalidLatitude
	}
	if longitude < -180 || longitude > 180 {
		return Coordinate{}, ErrInvalidLongitude
	}
	return Coordinate{Latitude: latitude, Longitude: longitude}, nil
}

// BoundingBox is an inclusive geographic rectangle.
type BoundingBox struct {
	Min Coordinate
	Max Coordinate
}

// ParseBoundingBox parses "minLat,minLon;maxLat,maxLon" into a box, each
// corner validated independently.
func ParseBoundingBox(s string) (BoundingBox, error) {
	corners := strings.Split(strings.TrimSpace(s), ";")
	if len(corners) != 2 {
		return BoundingBox{}, ErrInvalidBoundingBox
	}

	min, err := parseCorner(corners[0])
	if err != nil {
		return BoundingBox{}, err
	}
	max, err := parseCorner(corners[1])
	if err != nil {
		return BoundingBox{}, err
	}
	return BoundingBox{Min: min, Max: max}, nil
}

func parseCorner(s string) (Coordinate, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 2 {
		return Coordinate{}, ErrInvalidBoundingBox
	}
	latitude, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Coordinate{}, ErrInvalidBoundingBox
	}
	longitude, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Coordinate{}, ErrInvalidBoundingBox
	}
	return NewCoordinate(latitude, longitude)
}

// Building is a physical address organizations reside in.
type Building struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Address    string    `gorm:"type:text;not null" json:"address"`
	Coordinate `gorm:"embedded"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Building) TableName() string { return "buildings" }

// BeforeCreate assigns the identifier when the caller left it empty.
func (b *Building) BeforeCreate(_ *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
