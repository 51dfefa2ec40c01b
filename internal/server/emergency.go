package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	emergencydomain "github.com/notifycar/notifycar/internal/emergency/domain"
)

type upsertEmergencyRequest struct {
	Country   string `json:"country"`
	Police    string `json:"police"`
	Ambulance string `json:"ambulance"`
	Fire      string `json:"fire"`
	Active    *bool  `json:"active"`
}

func (s *Server) ListEmergencyConfigs(c *gin.Context) {
	configs, err := s.emergencySvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": configs})
}

func (s *Server) UpsertEmergencyConfig(c *gin.Context) {
	var req upsertEmergencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	saved, err := s.emergencySvc.Upsert(c.Request.Context(), emergencydomain.UpsertRequest{
		Country:   strings.TrimSpace(req.Country),
		Police:    strings.TrimSpace(req.Police),
		Ambulance: strings.TrimSpace(req.Ambulance),
		Fire:      strings.TrimSpace(req.Fire),
		Active:    req.Active,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": saved})
}

func (s *Server) DeleteEmergencyConfig(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}

	if err := s.emergencySvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
