package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	settingsdomain "github.com/notifycar/notifycar/internal/settings/domain"
)

type updateSettingsRequest struct {
	SiteName        *string `json:"site_name"`
	MaintenanceMode *bool   `json:"maintenance_mode"`
	MessageWrapper  *string `json:"message_wrapper"`
	SMTPHost        *string `json:"smtp_host"`
	SMTPPort        *int    `json:"smtp_port"`
	SMTPUsername    *string `json:"smtp_username"`
	SMTPPassword    *string `json:"smtp_password"`
	SMTPFrom        *string `json:"smtp_from"`
	AnalyticsID     *string `json:"analytics_id"`
	WebhookURL      *string `json:"webhook_url"`
}

type testSMTPRequest struct {
	To string `json:"to"`
}

func (s *Server) GetSettings(c *gin.Context) {
	setting, err := s.settingsSvc.Get(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": setting})
}

func (s *Server) UpdateSettings(c *gin.Context) {
	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	updated, err := s.settingsSvc.Update(c.Request.Context(), settingsdomain.UpdateRequest{
		SiteName:        req.SiteName,
		MaintenanceMode: req.MaintenanceMode,
		MessageWrapper:  req.MessageWrapper,
		SMTPHost:        req.SMTPHost,
		SMTPPort:        req.SMTPPort,
		SMTPUsername:    req.SMTPUsername,
		SMTPPassword:    req.SMTPPassword,
		SMTPFrom:        req.SMTPFrom,
		AnalyticsID:     req.AnalyticsID,
		WebhookURL:      req.WebhookURL,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": updated})
}

func (s *Server) TestSMTP(c *gin.Context) {
	var req testSMTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	to := strings.TrimSpace(req.To)
	if to == "" {
		AbortWithError(c, newValidationError("to", "required", "recipient is required"))
		return
	}

	if err := s.settingsSvc.TestSMTP(c.Request.Context(), to); err != nil {
		// The transport error is the point of the probe.
		c.JSON(http.StatusOK, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
