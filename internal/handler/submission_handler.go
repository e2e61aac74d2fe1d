package handler

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/quadramall/seller-api/internal/service"
	"github.com/quadramall/seller-api/internal/sse"
	"github.com/quadramall/seller-api/internal/utils"
)

// SubmissionHandler streams submission progress over SSE and serves the
// cached snapshot for reconnecting clients.
type SubmissionHandler struct {
	hub         *sse.Hub
	submissions *service.SubmissionService
}

// NewSubmissionHandler creates a new SubmissionHandler.
func NewSubmissionHandler(hub *sse.Hub, submissions *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{hub: hub, submissions: submissions}
}

// Stream handles GET /v1/seller/submissions/:id/events?token=<jwt>
// EventSource API cannot set custom headers, so JWT is passed via query param.
func (h *SubmissionHandler) Stream(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		utils.Error(c, 401, "UNAUTHORIZED", "Missing token query parameter")
		return
	}

	claims, err := utils.ValidateJWT(token)
	if err != nil {
		utils.Error(c, 401, "INVALID_TOKEN", "Invalid or expired token")
		return
	}

	submissionID := c.Param("id")
	clientID := fmt.Sprintf("seller-%d-%d", claims.SellerID, time.Now().UnixNano())

	// SSE headers
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // Disable nginx buffering

	client := h.hub.Register(submissionID, clientID)
	defer h.hub.Unregister(submissionID, clientID)

	// Send initial connected event
	c.SSEvent("connected", gin.H{
		"clientId":     clientID,
		"submissionId": submissionID,
		"timestamp":    time.Now().Format(time.RFC3339),
	})
	c.Writer.Flush()

	log.Info().Str("client_id", clientID).Str("submission_id", submissionID).Msg("Submission SSE stream started")

	// Stream events
	c.Stream(func(w io.Writer) bool {
		select {
		case data, ok := <-client.Events:
			if !ok {
				return false
			}
			c.SSEvent("progress", string(data))
			return true
		case <-time.After(30 * time.Second):
			c.SSEvent("ping", gin.H{"timestamp": time.Now().Format(time.RFC3339)})
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// GetStatus handles GET /v1/seller/submissions/:id and returns the latest
// cached progress snapshot.
func (h *SubmissionHandler) GetStatus(c *gin.Context) {
	submissionID := c.Param("id")

	snap, err := h.submissions.Status(c.Request.Context(), submissionID)
	if err != nil {
		if errors.Is(err, utils.ErrSubmissionGone) {
			utils.Error(c, 404, "NOT_FOUND", "Submission not found or expired")
			return
		}
		log.Error().Err(err).Str("submission_id", submissionID).Msg("Failed to load submission snapshot")
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to load submission status")
		return
	}

	utils.Success(c, 200, "Submission status retrieved", snap)
}
