// Package domain contains models and contracts for organizations and their
// activity associations.
package domain

import (
	"regexp"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var phonePattern = regexp.MustCompile(`^\+[0-9]{6,15}$`)

// PhoneNumber is a phone number in international format, e.g. "+79217002278".
type PhoneNumber string

// NewPhoneNumber rejects anything but "+" followed by 6 to 15 digits.
func NewPhoneNumber(s string) (PhoneNumber, error) {
	if !phonePattern.MatchString(s) {
		return "", ErrInvalidPhoneNumber
	}
	return PhoneNumber(s), nil
}

// NewPhoneNumbers validates a batch, failing on the first bad number.
func NewPhoneNumbers(values []string) ([]PhoneNumber, error) {
	numbers := make([]PhoneNumber, 0, len(values))
	for _, value := range values {
		number, err := NewPhoneNumber(value)
		if err != nil {
			return nil, err
		}
		numbers = append(numbers, number)
	}
	return numbers, nil
}

// Organization represents a company located in a building and tagged with
// activities. ActivityIDs is not a column; it is loaded from the association
// table.
type Organization struct {
	ID           uuid.UUID                        `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string                           `gorm:"type:varchar(255);not null" json:"name"`
	BuildingID   uuid.UUID                        `gorm:"type:uuid;not null;index" json:"building_id"`
	PhoneNumbers datatypes.JSONSlice[PhoneNumber] `gorm:"not null" json:"phone_numbers"`
	ActivityIDs  []uuid.UUID                      `gorm:"-" json:"activity_ids"`
	CreatedAt    time.Time                        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time                        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Organization) TableName() string { return "organizations" }

// BeforeCreate assigns an identifier when the caller left it empty.
func (o *Organization) BeforeCreate(_ *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrganizationActivity is one row of the organization-activity join table.
type OrganizationActivity struct {
	OrganizationID uuid.UUID `gorm:"type:uuid;primaryKey" json:"organization_id"`
	ActivityID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"activity_id"`
}

// TableName sets the database table name.
func (OrganizationActivity) TableName() string { return "organization_activities" }
