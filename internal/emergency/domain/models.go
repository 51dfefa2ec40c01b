// Package domain contains per-country emergency number configs.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Config holds the emergency phone numbers for one country. Country
// names are unique; writes upsert by country.
type Config struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Country   string       `gorm:"type:text;not null;uniqueIndex:ux_emergency_country" json:"country"`
	Police    string       `gorm:"type:text" json:"police"`
	Ambulance string       `gorm:"type:text" json:"ambulance"`
	Fire      string       `gorm:"type:text" json:"fire"`
	Active    bool         `gorm:"not null" json:"active"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Config) TableName() string { return "emergency_configs" }
