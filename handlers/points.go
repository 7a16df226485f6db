package handlers

import (
	"net/http"

	"milk-backend/database"
	"milk-backend/dtos"
	"milk-backend/logging"
	"milk-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PointsHandler struct {
	Store database.Store
}

// AddPoints applies one ledger operation. Unknown users are created on the
// fly and balances are clamped at zero.
func (h *PointsHandler) AddPoints(c *gin.Context) {
	var req dtos.PointsRequest
	if !bindJSON(c, &req) {
		return
	}

	points := models.ResolvePoints(req.Points.Or(0), req.Amount.Or(0))
	if points <= 0 {
		badRequest(c, "points must be a positive number (or amount of at least 10)")
		return
	}
	op := models.ParsePointsOp(req.Op)
	ctx := c.Request.Context()

	user, err := h.Store.UpsertUser(ctx, req.UserID, func(u *models.User) error {
		u.Points = models.ApplyPoints(u.Points, op, points)
		return nil
	})
	if err != nil {
		storeError(c, err, "User not found", "Failed to update points")
		return
	}

	entry := models.PointsOperation{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Amount:    req.Amount.Ptr(),
		Points:    points,
		Op:        op,
		Note:      req.Note,
		CreatedAt: models.Now(),
	}
	if err := h.Store.CreatePointsOp(ctx, &entry); err != nil {
		storeError(c, err, "User not found", "Failed to record points operation")
		return
	}

	logging.FromContext(ctx).Info("Points applied", "user_id", user.ID, "op", op, "points", points, "balance", user.Points)
	c.JSON(http.StatusOK, dtos.PointsResult{OK: true, User: user, Op: entry})
}

func (h *PointsHandler) ListOps(c *gin.Context) {
	ops, err := h.Store.ListPointsOps(c.Request.Context(), c.Query("userId"))
	if err != nil {
		storeError(c, err, "Not found", "Failed to fetch points operations")
		return
	}
	c.JSON(http.StatusOK, ops)
}
