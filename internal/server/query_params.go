package server

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	userdomain "github.com/notifycar/notifycar/internal/user/domain"
)

func parseIDParam(c *gin.Context, name string) (snowflake.ID, bool) {
	raw := strings.TrimSpace(c.Param(name))
	if raw == "" {
		return 0, false
	}
	id, err := snowflake.ParseString(raw)
	if err != nil {
		return 0, false
	}
	return id, true
}

func parseOptionalID(raw string) (*snowflake.ID, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	id, err := snowflake.ParseString(raw)
	if err != nil {
		return nil, false
	}
	return &id, true
}

func formatRetryAfter(d time.Duration) string {
	seconds := int(math.Ceil(d.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	return strconv.Itoa(seconds)
}

// orgScope returns the org filter for the caller: admins see what the
// query asks for, org-bound roles only ever see their own org.
func orgScope(user *userdomain.User, requested *snowflake.ID) *snowflake.ID {
	if user.Role == userdomain.RoleAdmin {
		return requested
	}
	return user.OrgID
}

// isOrgRole reports whether the role manages an organization's fleet.
func isOrgRole(role string) bool {
	return role == userdomain.RoleCorporate || role == userdomain.RoleInstitutional || role == userdomain.RoleOperator
}
