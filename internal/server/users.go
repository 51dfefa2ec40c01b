package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	userdomain "github.com/notifycar/notifycar/internal/user/domain"
	"github.com/notifycar/notifycar/pkg/db/pagination"
)

type createUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
	OrgID    string `json:"org_id"`
}

type updateUserRequest struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Role     *string `json:"role"`
	OrgID    *string `json:"org_id"`
	ClearOrg bool    `json:"clear_org"`
	Active   *bool   `json:"active"`
}

type updateProfileRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
}

func (s *Server) CreateUser(c *gin.Context) {
	caller, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	orgID, ok := parseOptionalID(req.OrgID)
	if !ok {
		AbortWithError(c, newValidationError("org_id", "invalid_org_id", "invalid org_id"))
		return
	}
	// Org managers only ever create accounts inside their own org.
	if caller.Role != userdomain.RoleAdmin {
		orgID = caller.OrgID
	}

	created, err := s.userSvc.Create(c.Request.Context(), userdomain.CreateRequest{
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
		Name:     strings.TrimSpace(req.Name),
		Phone:    strings.TrimSpace(req.Phone),
		Role:     strings.TrimSpace(req.Role),
		OrgID:    orgID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": created})
}

func (s *Server) ListUsers(c *gin.Context) {
	caller, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var query struct {
		pagination.Pagination
		Role  string `form:"role"`
		OrgID string `form:"org_id"`
		Query string `form:"q"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	requestedOrg, ok := parseOptionalID(query.OrgID)
	if !ok {
		AbortWithError(c, newValidationError("org_id", "invalid_org_id", "invalid org_id"))
		return
	}

	users, pageInfo, err := s.userSvc.List(c.Request.Context(), userdomain.Filter{
		Role:  strings.TrimSpace(query.Role),
		OrgID: orgScope(caller, requestedOrg),
		Query: strings.TrimSpace(query.Query),
	}, query.Pagination)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": users, "page_info": pageInfo})
}

func (s *Server) GetUserByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}

	user, err := s.userSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if caller, ok := currentUser(c); ok && caller.Role != userdomain.RoleAdmin {
		if user.OrgID == nil || caller.OrgID == nil || *user.OrgID != *caller.OrgID {
			AbortWithError(c, ErrNotFound)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"data": user})
}

func (s *Server) UpdateUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	update := userdomain.UpdateRequest{
		Name:     req.Name,
		Phone:    req.Phone,
		Role:     req.Role,
		ClearOrg: req.ClearOrg,
		Active:   req.Active,
	}
	if req.OrgID != nil {
		orgID, ok := parseOptionalID(*req.OrgID)
		if !ok {
			AbortWithError(c, newValidationError("org_id", "invalid_org_id", "invalid org_id"))
			return
		}
		update.OrgID = orgID
	}

	updated, err := s.userSvc.Update(c.Request.Context(), id, update)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": updated})
}

func (s *Server) UpdateProfile(c *gin.Context) {
	caller, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	updated, err := s.userSvc.UpdateProfile(c.Request.Context(), caller.ID, userdomain.ProfileRequest{
		Name:  req.Name,
		Phone: req.Phone,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": updated})
}

func (s *Server) DeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}

	if err := s.userSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
