package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	notifdomain "github.com/notifycar/notifycar/internal/notification/domain"
)

// Scope limits the summary to what the requesting user may see. It is
// derived from the authenticated request context: admins get global
// counts, org roles their org, drivers their own activity.
type Scope struct {
	OrgID  *snowflake.ID
	UserID *snowflake.ID
}

type Summary struct {
	Vehicles      int64 `json:"vehicles"`
	Users         int64 `json:"users"`
	Notifications int64 `json:"notifications"`
	Delivered     int64 `json:"delivered"`
	Failed        int64 `json:"failed"`
	Templates     int64 `json:"templates"`
	Organizations int64 `json:"organizations"`

	RecentNotifications []*notifdomain.Notification `json:"recent_notifications"`
}

type Service interface {
	Summary(ctx context.Context) (*Summary, error)
}
