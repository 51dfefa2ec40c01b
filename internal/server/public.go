package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	notifdomain "github.com/notifycar/notifycar/internal/notification/domain"
	orgdomain "github.com/notifycar/notifycar/internal/organization/domain"
	templatedomain "github.com/notifycar/notifycar/internal/template/domain"
	"github.com/notifycar/notifycar/pkg/db/pagination"
)

// publicOrganization is the subset of org fields exposed on the zone
// page. Tokens and contact details stay private.
type publicOrganization struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
	Type string `json:"type"`
}

type zoneNotifyRequest struct {
	Plate       string `json:"plate"`
	Message     string `json:"message"`
	TemplateID  string `json:"template_id"`
	SenderName  string `json:"sender_name"`
	SenderPhone string `json:"sender_phone"`
}

// SearchPlate is the anonymous plate lookup. Unknown plates are a
// normal answer, not an error.
func (s *Server) SearchPlate(c *gin.Context) {
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

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) ListCountries(c *gin.Context) {
	countries, err := s.refrepo.ListCountries(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": countries})
}

// ListPublicTemplates returns the active global template catalog.
func (s *Server) ListPublicTemplates(c *gin.Context) {
	var query struct {
		pagination.Pagination
		VehicleType string `form:"vehicle_type"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	active := true
	templates, pageInfo, err := s.templateSvc.List(c.Request.Context(), templatedomain.Filter{
		GlobalOnly:  true,
		VehicleType: strings.TrimSpace(query.VehicleType),
		Active:      &active,
	}, query.Pagination)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": templates, "page_info": pageInfo})
}

func (s *Server) ListEmergencyNumbers(c *gin.Context) {
	configs, err := s.emergencySvc.ListActive(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": configs})
}

// GetZone resolves an organization's public token into the zone page
// payload: the org identity plus its applicable templates.
func (s *Server) GetZone(c *gin.Context) {
	org, ok := s.zoneOrg(c)
	if !ok {
		return
	}

	templates, err := s.templateSvc.Resolve(c.Request.Context(), templatedomain.ResolveRequest{
		VehicleType: templatedomain.ApplyAll,
		OrgID:       &org.ID,
		UseGlobal:   org.UseGlobalTemplates,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"organization": publicOrganization{
				Name: org.Name,
				Slug: org.Slug,
				Type: org.Type,
			},
			"templates": templates,
		},
	})
}

// ZoneNotify sends an anonymous notification from a zone page. The
// message is attributed to the organization, not to a user account.
func (s *Server) ZoneNotify(c *gin.Context) {
	org, ok := s.zoneOrg(c)
	if !ok {
		return
	}

	var req zoneNotifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	templateID, ok := parseOptionalID(req.TemplateID)
	if !ok {
		AbortWithError(c, newValidationError("template_id", "invalid_template_id", "invalid template_id"))
		return
	}

	sent, err := s.notificationSvc.Send(c.Request.Context(), notifdomain.SendRequest{
		Plate:       req.Plate,
		Message:     req.Message,
		TemplateID:  templateID,
		OrgID:       &org.ID,
		SenderName:  strings.TrimSpace(req.SenderName),
		SenderPhone: strings.TrimSpace(req.SenderPhone),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordNotificationSent(c.Request.Context(), sent.Status)
	}

	c.JSON(http.StatusCreated, gin.H{"data": gin.H{
		"id":     sent.ID,
		"plate":  sent.Plate,
		"status": sent.Status,
	}})
}

// zoneOrg accepts the token as a path segment or a ?token= query
// parameter; both route forms are registered.
func (s *Server) zoneOrg(c *gin.Context) (*orgdomain.Organization, bool) {
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		token = strings.TrimSpace(c.Query("token"))
	}
	if token == "" {
		AbortWithError(c, ErrNotFound)
		return nil, false
	}

	org, err := s.organizationSvc.GetByPublicToken(c.Request.Context(), token)
	if err != nil {
		AbortWithError(c, err)
		return nil, false
	}
	return org, true
}
