package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetDashboard returns the counts for the caller's scope: admins see
// the whole installation, org roles their org, drivers their own
// activity. The scope is derived from the request context populated
// by AuthRequired.
func (s *Server) GetDashboard(c *gin.Context) {
	summary, err := s.dashboardSvc.Summary(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": summary})
}
