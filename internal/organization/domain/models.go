// Package domain contains persistence models for the org service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Organization types.
const (
	TypeFleet         = "FLEET"
	TypeInstitutional = "INSTITUTIONAL"
	TypeBlueZone      = "BLUE_ZONE"
	TypeParking       = "PARKING"
)

// ValidType reports whether t is a known organization type.
func ValidType(t string) bool {
	switch t {
	case TypeFleet, TypeInstitutional, TypeBlueZone, TypeParking:
		return true
	default:
		return false
	}
}

// Organization represents a tenant scoping users, vehicles and
// templates. PublicToken grants the unauthenticated zone read.
type Organization struct {
	ID                 snowflake.ID      `gorm:"primaryKey" json:"id"`
	Name               string            `gorm:"type:text;not null" json:"name"`
	Slug               string            `gorm:"type:text;not null;uniqueIndex:ux_organizations_slug" json:"slug"`
	Type               string            `gorm:"type:text;not null" json:"type"`
	Active             bool              `gorm:"not null" json:"active"`
	MessageWrapper     string            `gorm:"type:text;column:message_wrapper" json:"message_wrapper"`
	PublicToken        string            `gorm:"type:text;not null;uniqueIndex:ux_organizations_public_token" json:"-"`
	UseGlobalTemplates bool              `gorm:"column:use_global_templates;not null" json:"use_global_templates"`
	ContactEmail       string            `gorm:"type:text;column:contact_email" json:"contact_email"`
	ContactPhone       string            `gorm:"type:text;column:contact_phone" json:"contact_phone"`
	Metadata           datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt          time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Organization) TableName() string { return "organizations" }
