package server

import (
	"io"
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	userdomain "github.com/notifycar/notifycar/internal/user/domain"
)

const maxImportSize = 10 << 20

// importScope resolves whose records a CSV upload belongs to and the
// lock key serializing concurrent uploads for that owner.
func importScope(caller *userdomain.User) (*snowflake.ID, string) {
	if caller.Role == userdomain.RoleAdmin || caller.OrgID == nil {
		return nil, "admin"
	}
	return caller.OrgID, caller.OrgID.String()
}

func (s *Server) ImportVehicles(c *gin.Context) {
	s.runImport(c, func(c *gin.Context, orgID *snowflake.ID, r io.Reader) (any, error) {
		return s.vehicleSvc.ImportCSV(c.Request.Context(), orgID, r)
	})
}

func (s *Server) ImportUsers(c *gin.Context) {
	s.runImport(c, func(c *gin.Context, orgID *snowflake.ID, r io.Reader) (any, error) {
		return s.userSvc.ImportCSV(c.Request.Context(), orgID, r)
	})
}

func (s *Server) runImport(c *gin.Context, run func(*gin.Context, *snowflake.ID, io.Reader) (any, error)) {
	caller, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		AbortWithError(c, newValidationError("file", "required", "csv file is required"))
		return
	}
	defer file.Close()

	if header.Size > maxImportSize {
		AbortWithError(c, newValidationError("file", "too_large", "csv file exceeds the size limit"))
		return
	}

	orgID, lockScope := importScope(caller)

	token, locked, err := s.limiter.LockImport(c.Request.Context(), lockScope)
	if err == nil && !locked {
		AbortWithError(c, ErrTooManyRequests)
		return
	}
	if token != "" {
		defer s.limiter.ReleaseImport(c.Request.Context(), lockScope, token)
	}

	result, err := run(c, orgID, io.LimitReader(file, maxImportSize))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}
