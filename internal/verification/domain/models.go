// Package domain contains the phone verification token model.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Token is a short-lived phone verification code. One row per
// identifier; a new request overwrites any prior unverified code.
type Token struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	Identifier string       `gorm:"type:text;not null;uniqueIndex:ux_verification_identifier" json:"identifier"`
	Code       string       `gorm:"type:text;not null" json:"-"`
	ExpiresAt  time.Time    `gorm:"column:expires_at;not null" json:"expires_at"`
	Verified   bool         `gorm:"not null;default:false" json:"verified"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Token) TableName() string { return "verification_tokens" }
