package server

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/notifycar/notifycar/internal/orgcontext"
	userdomain "github.com/notifycar/notifycar/internal/user/domain"
)

const contextUserKey = "current_user"

// AuthRequired resolves the session cookie into a user and threads the
// identity through the request context.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := s.sessions.ReadToken(c)
		if !ok || strings.TrimSpace(token) == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		user, _, err := s.authsvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextUserKey, user)

		ctx := orgcontext.WithUserID(c.Request.Context(), user.ID)
		ctx = orgcontext.WithRole(ctx, user.Role)
		if user.OrgID != nil {
			ctx = orgcontext.WithOrgID(ctx, *user.OrgID)
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func currentUser(c *gin.Context) (*userdomain.User, bool) {
	value, ok := c.Get(contextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := value.(*userdomain.User)
	return user, ok && user != nil
}

// authorize gates a route on the caller's role via the shared policy.
func (s *Server) authorize(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if err := s.authzSvc.Authorize(c.Request.Context(), user.Role, object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

// MaintenanceGate returns 503 while maintenance mode is on. Admins
// stay in so they can turn it back off.
func (s *Server) MaintenanceGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		setting, err := s.settingsSvc.Get(c.Request.Context())
		if err != nil || setting == nil || !setting.MaintenanceMode {
			c.Next()
			return
		}
		if user, ok := currentUser(c); ok && user.Role == userdomain.RoleAdmin {
			c.Next()
			return
		}
		AbortWithError(c, ErrServiceUnavailable)
	}
}

// PublicRateLimit throttles anonymous endpoints per client IP.
func (s *Server) PublicRateLimit(endpoint string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Enabled() {
			c.Next()
			return
		}

		res, err := s.limiter.AllowIP(c.Request.Context(), c.ClientIP())
		if err != nil {
			// Fail open; the limiter protects capacity, it is not an
			// availability dependency.
			c.Next()
			return
		}
		if !res.Allowed {
			if s.obsMetrics != nil {
				s.obsMetrics.RecordRateLimitDenied(c.Request.Context(), endpoint)
			}
			if res.RetryAfter > 0 {
				c.Header("Retry-After", formatRetryAfter(res.RetryAfter))
			}
			AbortWithError(c, ErrTooManyRequests)
			return
		}
		c.Next()
	}
}
