package handler

import (
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_pos/internal/middleware"
	"github.com/GTDGit/gtd_pos/internal/sse"
)

// SSEHandler handles Server-Sent Events for the shop dashboard.
type SSEHandler struct {
	hub          *sse.Hub
	pingInterval time.Duration
}

// NewSSEHandler creates a new SSEHandler.
func NewSSEHandler(hub *sse.Hub) *SSEHandler {
	return &SSEHandler{hub: hub, pingInterval: 30 * time.Second}
}

// Stream handles GET /v1/events?token=<jwt>&events=sale.created,repair.status_changed
// EventSource API cannot set custom headers, so the JWT middleware reads the token query param.
// The staff member's role decides which events reach the stream; events narrows it further.
func (h *SSEHandler) Stream(c *gin.Context) {
	actor := middleware.GetActor(c)
	clientID := fmt.Sprintf("staff-%d-%d", actor.StaffID, time.Now().UnixNano())

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // Disable nginx buffering

	subscribed := sse.ParseEventTypes(c.Query("events"))
	client := h.hub.Register(clientID, actor.Role, subscribed...)
	defer h.hub.Unregister(clientID)

	c.SSEvent("connected", gin.H{
		"clientId":  clientID,
		"role":      actor.Role,
		"message":   "SSE connection established",
		"timestamp": time.Now().Format(time.RFC3339),
	})
	c.Writer.Flush()

	log.Info().Str("client_id", clientID).Int("staff_id", actor.StaffID).Int("subscribed", len(subscribed)).Msg("Dashboard SSE stream started")

	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()
	c.Stream(func(w io.Writer) bool {
		select {
		case data, ok := <-client.Events:
			if !ok {
				return false
			}
			c.SSEvent("message", string(data))
			return true
		case <-ticker.C:
			c.SSEvent("ping", gin.H{"timestamp": time.Now().Format(time.RFC3339)})
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
