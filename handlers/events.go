package handlers

import (
	"io"
	"time"

	"milk-backend/logging"
	"milk-backend/realtime"

	"github.com/gin-gonic/gin"
)

const defaultHeartbeat = 25 * time.Second

// EventsHandler streams broadcast events to browsers as Server-Sent Events.
type EventsHandler struct {
	Hub       *realtime.Hub
	Heartbeat time.Duration
}

func (h *EventsHandler) Stream(c *gin.Context) {
	events, cancel := h.Hub.Subscribe()
	defer cancel()

	every := h.Heartbeat
	if every <= 0 {
		every = defaultHeartbeat
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ctx := c.Request.Context()
	log := logging.FromContext(ctx)
	log.Debug("Event listener connected", "listeners", h.Hub.Subscribers())

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case ev, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(ev.Name, ev.Data)
			return true
		case <-ticker.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		}
	})

	log.Debug("Event listener disconnected")
}
