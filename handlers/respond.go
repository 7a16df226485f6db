package handlers

import (
	"errors"
	"net/http"

	"milk-backend/database"
	"milk-backend/logging"
	"milk-backend/realtime"
	"milk-backend/utils"

	"github.com/gin-gonic/gin"
)

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		badRequest(c, utils.SanitizeValidationError(err))
		return false
	}
	return true
}

// storeError answers 404 for ErrNotFound and 500 for everything else.
func storeError(c *gin.Context, err error, notFound, failed string) {
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": notFound})
		return
	}
	_ = c.Error(err)
	logging.FromContext(c.Request.Context()).Error(failed, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": failed})
}

// publish runs after the write has been stored. Failures are logged only.
func publish(c *gin.Context, events realtime.Publisher, name string, data any) {
	if events == nil {
		return
	}
	if err := events.Publish(c.Request.Context(), realtime.Event{Name: name, Data: data}); err != nil {
		logging.FromContext(c.Request.Context()).Warn("Failed to publish event", "event", name, "error", err)
	}
}
