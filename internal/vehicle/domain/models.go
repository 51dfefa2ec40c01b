// Package domain contains persistence models for the vehicle service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Vehicle body types.
const (
	TypeCar        = "CAR"
	TypeMotorcycle = "MOTORCYCLE"
)

// ValidType reports whether t is a known vehicle type.
func ValidType(t string) bool {
	switch t {
	case TypeCar, TypeMotorcycle:
		return true
	default:
		return false
	}
}

// Vehicle is a registered vehicle keyed by its plate. Plates are
// stored uppercase; the unique index backs the duplicate check.
type Vehicle struct {
	ID         snowflake.ID  `gorm:"primaryKey" json:"id"`
	Plate      string        `gorm:"type:text;not null;uniqueIndex:ux_vehicles_plate" json:"plate"`
	Brand      string        `gorm:"type:text" json:"brand"`
	Model      string        `gorm:"type:text" json:"model"`
	Color      string        `gorm:"type:text" json:"color"`
	Type       string        `gorm:"type:text;not null;default:CAR" json:"type"`
	IsElectric bool          `gorm:"column:is_electric;not null;default:false" json:"is_electric"`
	OwnerName  string        `gorm:"type:text;column:owner_name" json:"owner_name"`
	OwnerPhone string        `gorm:"type:text;column:owner_phone" json:"owner_phone"`
	OwnerEmail string        `gorm:"type:text;column:owner_email" json:"owner_email"`
	UserID     *snowflake.ID `gorm:"column:user_id;index" json:"user_id,omitempty"`
	OrgID      *snowflake.ID `gorm:"column:org_id;index" json:"org_id,omitempty"`
	Active     bool          `gorm:"not null" json:"active"`
	CreatedAt  time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Vehicle) TableName() string { return "vehicles" }
