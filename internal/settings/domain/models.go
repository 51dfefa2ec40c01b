// Package domain contains the singleton system settings record.
package domain

import "time"

// DefaultID is the fixed primary key of the single settings row. The
// row is always fetched by id so configuration survives restarts and
// multiple instances.
const DefaultID = "default"

// SystemSetting is global configuration stored in the database.
type SystemSetting struct {
	ID              string    `gorm:"primaryKey;type:text" json:"id"`
	SiteName        string    `gorm:"type:text;column:site_name" json:"site_name"`
	MaintenanceMode bool      `gorm:"column:maintenance_mode;not null;default:false" json:"maintenance_mode"`
	MessageWrapper  string    `gorm:"type:text;column:message_wrapper" json:"message_wrapper"`
	SMTPHost        string    `gorm:"type:text;column:smtp_host" json:"smtp_host"`
	SMTPPort        int       `gorm:"column:smtp_port" json:"smtp_port"`
	SMTPUsername    string    `gorm:"type:text;column:smtp_username" json:"smtp_username"`
	SMTPPassword    string    `gorm:"type:text;column:smtp_password" json:"-"`
	SMTPFrom        string    `gorm:"type:text;column:smtp_from" json:"smtp_from"`
	AnalyticsID     string    `gorm:"type:text;column:analytics_id" json:"analytics_id"`
	WebhookURL      string    `gorm:"type:text;column:webhook_url" json:"webhook_url"`
	CreatedAt       time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (SystemSetting) TableName() string { return "system_settings" }
