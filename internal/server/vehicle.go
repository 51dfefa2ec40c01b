package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	userdomain "github.com/notifycar/notifycar/internal/user/domain"
	vehicledomain "github.com/notifycar/notifycar/internal/vehicle/domain"
	"github.com/notifycar/notifycar/pkg/db/pagination"
)

type createVehicleRequest struct {
	Plate      string `json:"plate"`
	Brand      string `json:"brand"`
	Model      string `json:"model"`
	Color      string `json:"color"`
	Type       string `json:"type"`
	IsElectric bool   `json:"is_electric"`
	OwnerName  string `json:"owner_name"`
	OwnerPhone string `json:"owner_phone"`
	OwnerEmail string `json:"owner_email"`
}

type updateVehicleRequest struct {
	Brand      *string `json:"brand"`
	Model      *string `json:"model"`
	Color      *string `json:"color"`
	Type       *string `json:"type"`
	IsElectric *bool   `json:"is_electric"`
	OwnerName  *string `json:"owner_name"`
	OwnerPhone *string `json:"owner_phone"`
	OwnerEmail *string `json:"owner_email"`
	Active     *bool   `json:"active"`
}

func (s *Server) CreateVehicle(c *gin.Context) {
	caller, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req createVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	create := vehicledomain.CreateRequest{
		Plate:      req.Plate,
		Brand:      strings.TrimSpace(req.Brand),
		Model:      strings.TrimSpace(req.Model),
		Color:      strings.TrimSpace(req.Color),
		Type:       strings.TrimSpace(req.Type),
		IsElectric: req.IsElectric,
		OwnerName:  strings.TrimSpace(req.OwnerName),
		OwnerPhone: strings.TrimSpace(req.OwnerPhone),
		OwnerEmail: strings.TrimSpace(req.OwnerEmail),
	}
	switch {
	case caller.Role == userdomain.RoleDriver:
		create.UserID = &caller.ID
	case isOrgRole(caller.Role):
		create.OrgID = caller.OrgID
	}

	created, err := s.vehicleSvc.Create(c.Request.Context(), create)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": created})
}

func (s *Server) ListVehicles(c *gin.Context) {
	caller, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
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

	filter := vehicledomain.Filter{
		Type:  strings.TrimSpace(query.Type),
		Query: strings.TrimSpace(query.Query),
	}
	switch {
	case caller.Role == userdomain.RoleDriver:
		filter.UserID = &caller.ID
	case isOrgRole(caller.Role):
		filter.OrgID = caller.OrgID
	}

	vehicles, pageInfo, err := s.vehicleSvc.List(c.Request.Context(), filter, query.Pagination)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": vehicles, "page_info": pageInfo})
}

func (s *Server) GetVehicleByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}

	vehicle, err := s.vehicleSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !s.canAccessVehicle(c, vehicle) {
		AbortWithError(c, ErrNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": vehicle})
}

func (s *Server) UpdateVehicle(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}

	existing, err := s.vehicleSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !s.canAccessVehicle(c, existing) {
		AbortWithError(c, ErrNotFound)
		return
	}

	var req updateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	updated, err := s.vehicleSvc.Update(c.Request.Context(), id, vehicledomain.UpdateRequest{
		Brand:      req.Brand,
		Model:      req.Model,
		Color:      req.Color,
		Type:       req.Type,
		IsElectric: req.IsElectric,
		OwnerName:  req.OwnerName,
		OwnerPhone: req.OwnerPhone,
		OwnerEmail: req.OwnerEmail,
		Active:     req.Active,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": updated})
}

func (s *Server) DeleteVehicle(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}

	existing, err := s.vehicleSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !s.canAccessVehicle(c, existing) {
		AbortWithError(c, ErrNotFound)
		return
	}

	if err := s.vehicleSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// canAccessVehicle enforces ownership: drivers touch their own
// vehicles, org roles their org's fleet, admins everything.
func (s *Server) canAccessVehicle(c *gin.Context, v *vehicledomain.Vehicle) bool {
	caller, ok := currentUser(c)
	if !ok {
		return false
	}
	switch {
	case caller.Role == userdomain.RoleAdmin:
		return true
	case caller.Role == userdomain.RoleDriver:
		return v.UserID != nil && *v.UserID == caller.ID
	case isOrgRole(caller.Role):
		return v.OrgID != nil && caller.OrgID != nil && *v.OrgID == *caller.OrgID
	default:
		return false
	}
}
