// Package domain contains persistence models for sent notifications.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Notification delivery states.
const (
	StatusSent      = "SENT"
	StatusDelivered = "DELIVERED"
	StatusFailed    = "FAILED"
)

// Notification is an append-only record of a message sent to a
// vehicle. Rows are never updated after creation except for the
// delivery status.
type Notification struct {
	ID          snowflake.ID  `gorm:"primaryKey" json:"id"`
	VehicleID   snowflake.ID  `gorm:"column:vehicle_id;not null;index" json:"vehicle_id"`
	Plate       string        `gorm:"type:text;not null;index" json:"plate"`
	OrgID       *snowflake.ID `gorm:"column:org_id;index" json:"org_id,omitempty"`
	SenderID    *snowflake.ID `gorm:"column:sender_id;index" json:"sender_id,omitempty"`
	TemplateID  *snowflake.ID `gorm:"column:template_id" json:"template_id,omitempty"`
	RawMessage  string        `gorm:"type:text;not null;column:raw_message" json:"raw_message"`
	Message     string        `gorm:"type:text;not null" json:"message"`
	SenderName  string        `gorm:"type:text;column:sender_name" json:"sender_name"`
	SenderPhone string        `gorm:"type:text;column:sender_phone" json:"sender_phone"`
	Status      string        `gorm:"type:text;not null;default:SENT" json:"status"`
	CreatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Notification) TableName() string { return "notifications" }
