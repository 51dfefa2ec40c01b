package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	templatedomain "github.com/notifycar/notifycar/internal/template/domain"
	userdomain "github.com/notifycar/notifycar/internal/user/domain"
	vehicledomain "github.com/notifycar/notifycar/internal/vehicle/domain"
	"github.com/notifycar/notifycar/pkg/db/pagination"
)

type createTemplateRequest struct {
	Title       string `json:"title"`
	Body        string `json:"body"`
	Category    string `json:"category"`
	VehicleType string `json:"vehicle_type"`
}

type updateTemplateRequest struct {
	Title       *string `json:"title"`
	Body        *string `json:"body"`
	Category    *string `json:"category"`
	VehicleType *string `json:"vehicle_type"`
	Active      *bool   `json:"active"`
}

func (s *Server) CreateTemplate(c *gin.Context) {
	caller, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req createTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	create := templatedomain.CreateRequest{
		Title:       strings.TrimSpace(req.Title),
		Body:        req.Body,
		Category:    strings.TrimSpace(req.Category),
		VehicleType: strings.TrimSpace(req.VehicleType),
	}
	// Admin templates are global; everyone else writes into their org.
	if caller.Role != userdomain.RoleAdmin {
		create.OrgID = caller.OrgID
	}

	created, err := s.templateSvc.Create(c.Request.Context(), create)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": created})
}

func (s *Server) ListTemplates(c *gin.Context) {
	caller, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var query struct {
		pagination.Pagination
		VehicleType string `form:"vehicle_type"`
		Category    string `form:"category"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	filter := templatedomain.Filter{
		VehicleType: strings.TrimSpace(query.VehicleType),
		Category:    strings.TrimSpace(query.Category),
	}
	if caller.Role == userdomain.RoleAdmin || caller.OrgID == nil {
		filter.GlobalOnly = true
	} else {
		filter.OrgID = caller.OrgID
	}

	templates, pageInfo, err := s.templateSvc.List(c.Request.Context(), filter, query.Pagination)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": templates, "page_info": pageInfo})
}

// ResolveTemplates returns the candidate templates for messaging a
// specific plate, filtered by the vehicle's type and electric flag.
func (s *Server) ResolveTemplates(c *gin.Context) {
	plate := strings.TrimSpace(c.Query("plate"))
	if plate == "" {
		AbortWithError(c, newValidationError("plate", "required", "plate is required"))
		return
	}

	result, err := s.vehicleSvc.Search(c.Request.Context(), plate)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !result.Found {
		AbortWithError(c, vehicledomain.ErrNotFound)
		return
	}

	resolve := templatedomain.ResolveRequest{
		VehicleType: result.Vehicle.Type,
		IsElectric:  result.Vehicle.IsElectric,
		UseGlobal:   true,
	}
	if caller, ok := currentUser(c); ok && caller.OrgID != nil {
		org, err := s.organizationSvc.Get(c.Request.Context(), *caller.OrgID)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		resolve.OrgID = &org.ID
		resolve.UseGlobal = org.UseGlobalTemplates
	}

	templates, err := s.templateSvc.Resolve(c.Request.Context(), resolve)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": templates})
}

func (s *Server) GetTemplateByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}

	tmpl, err := s.templateSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": tmpl})
}

func (s *Server) UpdateTemplate(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}
	if !s.canManageTemplate(c, id) {
		return
	}

	var req updateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	updated, err := s.templateSvc.Update(c.Request.Context(), id, templatedomain.UpdateRequest{
		Title:       req.Title,
		Body:        req.Body,
		Category:    req.Category,
		VehicleType: req.VehicleType,
		Active:      req.Active,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": updated})
}

func (s *Server) DeleteTemplate(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}
	if !s.canManageTemplate(c, id) {
		return
	}

	if err := s.templateSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// canManageTemplate blocks org roles from editing global templates or
// another org's templates. It aborts the request on failure.
func (s *Server) canManageTemplate(c *gin.Context, id snowflake.ID) bool {
	caller, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return false
	}
	if caller.Role == userdomain.RoleAdmin {
		return true
	}

	tmpl, err := s.templateSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return false
	}
	if tmpl.OrgID == nil || caller.OrgID == nil || *tmpl.OrgID != *caller.OrgID {
		AbortWithError(c, ErrNotFound)
		return false
	}
	return true
}
