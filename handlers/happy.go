package handlers

import (
	"errors"
	"net/http"

	"milk-backend/database"
	"milk-backend/dtos"
	"milk-backend/models"
	"milk-backend/realtime"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HappyHandler serves the announcement bar. Every post adds a row and only
// the newest one is read back.
type HappyHandler struct {
	Store  database.Store
	Events realtime.Publisher
}

func (h *HappyHandler) GetHappy(c *gin.Context) {
	msg, err := h.Store.LatestHappy(c.Request.Context())
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusOK, dtos.Happy{})
		return
	}
	if err != nil {
		storeError(c, err, "Not found", "Failed to fetch announcement")
		return
	}
	c.JSON(http.StatusOK, dtos.Happy{Text: msg.Text, UpdatedAt: &msg.UpdatedAt})
}

func (h *HappyHandler) PostHappy(c *gin.Context) {
	var req dtos.HappyRequest
	if !bindJSON(c, &req) {
		return
	}

	msg := models.HappyMessage{
		ID:        uuid.New().String(),
		Text:      req.Text,
		UpdatedAt: models.Now(),
	}
	if err := h.Store.CreateHappy(c.Request.Context(), &msg); err != nil {
		storeError(c, err, "Not found", "Failed to save announcement")
		return
	}

	publish(c, h.Events, realtime.EventHappyUpdate, msg.Text)
	c.JSON(http.StatusOK, dtos.Happy{Text: msg.Text, UpdatedAt: &msg.UpdatedAt})
}
