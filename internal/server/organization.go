package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	orgdomain "github.com/notifycar/notifycar/internal/organization/domain"
	userdomain "github.com/notifycar/notifycar/internal/user/domain"
	"github.com/notifycar/notifycar/pkg/db/pagination"
)

type createOrganizationRequest struct {
	Name               string `json:"name"`
	Type               string `json:"type"`
	MessageWrapper     string `json:"message_wrapper"`
	UseGlobalTemplates *bool  `json:"use_global_templates"`
	ContactEmail       string `json:"contact_email"`
	ContactPhone       string `json:"contact_phone"`
	OperatorEmail      string `json:"operator_email"`
	OperatorPassword   string `json:"operator_password"`
	OperatorName       string `json:"operator_name"`
}

type updateOrganizationRequest struct {
	Name               *string `json:"name"`
	Type               *string `json:"type"`
	Active             *bool   `json:"active"`
	MessageWrapper     *string `json:"message_wrapper"`
	UseGlobalTemplates *bool   `json:"use_global_templates"`
	ContactEmail       *string `json:"contact_email"`
	ContactPhone       *string `json:"contact_phone"`
}

func (s *Server) CreateOrganization(c *gin.Context) {
	var req createOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	created, err := s.organizationSvc.Create(c.Request.Context(), orgdomain.CreateRequest{
		Name:               strings.TrimSpace(req.Name),
		Type:               strings.TrimSpace(req.Type),
		MessageWrapper:     req.MessageWrapper,
		UseGlobalTemplates: req.UseGlobalTemplates,
		ContactEmail:       strings.TrimSpace(req.ContactEmail),
		ContactPhone:       strings.TrimSpace(req.ContactPhone),
		OperatorEmail:      strings.TrimSpace(req.OperatorEmail),
		OperatorPassword:   req.OperatorPassword,
		OperatorName:       strings.TrimSpace(req.OperatorName),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": created})
}

func (s *Server) ListOrganizations(c *gin.Context) {
	caller, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	// Org-bound callers see their own org only.
	if caller.Role != userdomain.RoleAdmin {
		if caller.OrgID == nil {
			c.JSON(http.StatusOK, gin.H{"data": []*orgdomain.Organization{}})
			return
		}
		org, err := s.organizationSvc.Get(c.Request.Context(), *caller.OrgID)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": []*orgdomain.Organization{org}})
		return
	}

	var query struct {
		pagination.Pagination
		Type  string `form:"type"`
		Query string `form:"q"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	orgs, pageInfo, err := s.organizationSvc.List(c.Request.Context(), orgdomain.Filter{
		Type:  strings.TrimSpace(query.Type),
		Query: strings.TrimSpace(query.Query),
	}, query.Pagination)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": orgs, "page_info": pageInfo})
}

func (s *Server) GetOrganizationByID(c *gin.Context) {
	id, allowed := s.requireOrgAccess(c)
	if !allowed {
		return
	}

	org, err := s.organizationSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": org})
}

func (s *Server) UpdateOrganization(c *gin.Context) {
	id, allowed := s.requireOrgAccess(c)
	if !allowed {
		return
	}

	var req updateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	update := orgdomain.UpdateRequest{
		Name:               req.Name,
		Type:               req.Type,
		Active:             req.Active,
		MessageWrapper:     req.MessageWrapper,
		UseGlobalTemplates: req.UseGlobalTemplates,
		ContactEmail:       req.ContactEmail,
		ContactPhone:       req.ContactPhone,
	}

	// Only admins may change type or deactivate.
	if caller, ok := currentUser(c); ok && caller.Role != userdomain.RoleAdmin {
		update.Type = nil
		update.Active = nil
	}

	updated, err := s.organizationSvc.Update(c.Request.Context(), id, update)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": updated})
}

func (s *Server) RotateOrganizationToken(c *gin.Context) {
	id, allowed := s.requireOrgAccess(c)
	if !allowed {
		return
	}

	updated, err := s.organizationSvc.RotatePublicToken(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":         updated,
		"public_token": updated.PublicToken,
	})
}

func (s *Server) DeleteOrganization(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}

	if err := s.organizationSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// requireOrgAccess parses the :id param and checks that a non-admin
// caller is acting on their own organization.
func (s *Server) requireOrgAccess(c *gin.Context) (snowflake.ID, bool) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		AbortWithError(c, ErrNotFound)
		return 0, false
	}

	caller, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return 0, false
	}
	if caller.Role != userdomain.RoleAdmin {
		if caller.OrgID == nil || *caller.OrgID != id {
			AbortWithError(c, ErrNotFound)
			return 0, false
		}
	}

	return id, true
}
