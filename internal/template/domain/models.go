// Package domain contains persistence models for notification
// templates.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Vehicle-type applicability values for a template.
const (
	ApplyAll        = "ALL"
	ApplyCar        = "CAR"
	ApplyMotorcycle = "MOTORCYCLE"
	ApplyElectric   = "ELECTRIC"
)

// ValidApplicability reports whether v is a known applicability value.
func ValidApplicability(v string) bool {
	switch v {
	case ApplyAll, ApplyCar, ApplyMotorcycle, ApplyElectric:
		return true
	default:
		return false
	}
}

// Template is a canned notification message. A nil OrgID marks a
// global template available to every tenant that opts in.
type Template struct {
	ID          snowflake.ID  `gorm:"primaryKey" json:"id"`
	Title       string        `gorm:"type:text;not null" json:"title"`
	Body        string        `gorm:"type:text;not null" json:"body"`
	Category    string        `gorm:"type:text" json:"category"`
	VehicleType string        `gorm:"type:text;not null;default:ALL;column:vehicle_type" json:"vehicle_type"`
	Active      bool          `gorm:"not null" json:"active"`
	OrgID       *snowflake.ID `gorm:"column:org_id;index" json:"org_id,omitempty"`
	CreatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Template) TableName() string { return "notification_templates" }
