package handlers

import (
	"net/http"

	"milk-backend/database"
	"milk-backend/dtos"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	Store database.Store
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.Store.ListUsers(c.Request.Context())
	if err != nil {
		storeError(c, err, "Not found", "Failed to fetch users")
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	ctx := c.Request.Context()
	user, err := h.Store.GetUser(ctx, c.Param("id"))
	if err != nil {
		storeError(c, err, "User not found", "Failed to fetch user")
		return
	}

	history, err := h.Store.ListPointsOps(ctx, user.ID)
	if err != nil {
		storeError(c, err, "User not found", "Failed to fetch user history")
		return
	}
	c.JSON(http.StatusOK, dtos.UserDetail{User: user, History: history})
}
