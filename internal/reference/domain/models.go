package domain

import "time"

// Country is static reference data backing the emergency directory
// and owner phone prefixes. Rows are seeded at startup.
type Country struct {
	Code      string    `json:"code" gorm:"type:char(2);primaryKey;column:code"`
	Name      string    `json:"name" gorm:"type:text;not null"`
	DialCode  string    `json:"dial_code" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at,omitempty" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Country) TableName() string { return "countries" }
