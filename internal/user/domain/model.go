// Package domain contains core types for user accounts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Roles assignable to a user account.
const (
	RoleAdmin         = "ADMIN"
	RoleCorporate     = "CORPORATE"
	RoleInstitutional = "INSTITUTIONAL"
	RoleOperator      = "OPERATOR"
	RoleDriver        = "DRIVER"
)

// ValidRole reports whether role is one of the assignable roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleCorporate, RoleInstitutional, RoleOperator, RoleDriver:
		return true
	default:
		return false
	}
}

// User represents a system user account.
type User struct {
	ID                  snowflake.ID      `gorm:"primaryKey" json:"id"`
	Email               string            `gorm:"type:text;not null;uniqueIndex" json:"email"`
	PasswordHash        *string           `gorm:"type:text" json:"-"`
	Name                string            `gorm:"type:text;not null" json:"name"`
	Phone               string            `gorm:"type:text" json:"phone"`
	Role                string            `gorm:"type:text;not null;default:DRIVER;index" json:"role"`
	OrgID               *snowflake.ID     `gorm:"column:org_id;index" json:"org_id,omitempty"`
	Active              bool              `gorm:"not null" json:"active"`
	LastPasswordChanged *time.Time        `gorm:"column:last_password_changed" json:"-"`
	Metadata            datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt           time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt           time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }
