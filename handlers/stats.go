package handlers

import (
	"net/http"

	"milk-backend/database"
	"milk-backend/dtos"
	"milk-backend/models"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	Store database.Store
}

// GetStats recomputes every counter from the live collections.
func (h *StatsHandler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()

	users, err := h.Store.ListUsers(ctx)
	if err != nil {
		storeError(c, err, "Not found", "Failed to compute stats")
		return
	}
	ops, err := h.Store.ListPointsOps(ctx, "")
	if err != nil {
		storeError(c, err, "Not found", "Failed to compute stats")
		return
	}
	orders, err := h.Store.ListOrders(ctx, "")
	if err != nil {
		storeError(c, err, "Not found", "Failed to compute stats")
		return
	}
	cards, err := h.Store.ListPrepaid(ctx)
	if err != nil {
		storeError(c, err, "Not found", "Failed to compute stats")
		return
	}

	c.JSON(http.StatusOK, computeStats(users, ops, orders, cards))
}

func computeStats(users []models.User, ops []models.PointsOperation, orders []models.Order, cards []models.PrepaidCard) dtos.Stats {
	stats := dtos.Stats{Users: len(users), PrepaidCards: len(cards)}
	for _, u := range users {
		stats.PointsTotal += u.Points
	}
	// every debit counts, there is no separate redemption record
	for _, op := range ops {
		if op.Op == models.PointsOpSub {
			stats.Redemptions++
		}
	}
	for _, o := range orders {
		if o.IsActive() {
			stats.OrdersActive++
		}
	}
	return stats
}
