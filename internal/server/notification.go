package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	notifdomain "github.com/notifycar/notifycar/internal/notification/domain"
	userdomain "github.com/notifycar/notifycar/internal/user/domain"
	"github.com/notifycar/notifycar/pkg/db/pagination"
)

type sendNotificationRequest struct {
	Plate      string `json:"plate"`
	Message    string `json:"message"`
	TemplateID string `json:"template_id"`
}

func (s *Server) SendNotification(c *gin.Context) {
	caller, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req sendNotificationRequest
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
		OrgID:       caller.OrgID,
		SenderID:    &caller.ID,
		SenderName:  caller.Name,
		SenderPhone: caller.Phone,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordNotificationSent(c.Request.Context(), sent.Status)
	}

	c.JSON(http.StatusCreated, gin.H{"data": sent})
}

func (s *Server) ListNotifications(c *gin.Context) {
	caller, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var query struct {
		pagination.Pagination
		Plate  string `form:"plate"`
		Status string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	filter := notifdomain.Filter{
		Plate:  strings.TrimSpace(query.Plate),
		Status: strings.TrimSpace(query.Status),
	}
	switch {
	case caller.Role == userdomain.RoleAdmin:
	case isOrgRole(caller.Role):
		filter.OrgID = caller.OrgID
	default:
		filter.SenderID = &caller.ID
	}

	notifications, pageInfo, err := s.notificationSvc.List(c.Request.Context(), filter, query.Pagination)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": notifications, "page_info": pageInfo})
}

func (s *Server) GetNotificationByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}

	notification, err := s.notificationSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if caller, ok := currentUser(c); ok && caller.Role != userdomain.RoleAdmin {
		visible := false
		if notification.SenderID != nil && *notification.SenderID == caller.ID {
			visible = true
		}
		if isOrgRole(caller.Role) && notification.OrgID != nil && caller.OrgID != nil && *notification.OrgID == *caller.OrgID {
			visible = true
		}
		if !visible {
			AbortWithError(c, ErrNotFound)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"data": notification})
}
