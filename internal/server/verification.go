package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type verifyRequestPayload struct {
	Identifier string `json:"identifier"`
}

type verifyConfirmPayload struct {
	Identifier string `json:"identifier"`
	Code       string `json:"code"`
}

func (s *Server) RequestVerification(c *gin.Context) {
	var req verifyRequestPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.verificationSvc.Request(c.Request.Context(), strings.TrimSpace(req.Identifier)); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "sent"})
}

func (s *Server) ConfirmVerification(c *gin.Context) {
	var req verifyConfirmPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	err := s.verificationSvc.Confirm(c.Request.Context(), strings.TrimSpace(req.Identifier), strings.TrimSpace(req.Code))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "verified"})
}
