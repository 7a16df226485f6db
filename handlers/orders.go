package handlers

import (
	"errors"
	"net/http"

	"milk-backend/database"
	"milk-backend/dtos"
	"milk-backend/logging"
	"milk-backend/models"
	"milk-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrderHandler struct {
	Store database.Store
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	orders, err := h.Store.ListOrders(c.Request.Context(), c.Query("userId"))
	if err != nil {
		storeError(c, err, "Not found", "Failed to fetch orders")
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.Store.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		storeError(c, err, "Order not found", "Failed to fetch order")
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req dtos.CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	order := models.Order{
		ID:             uuid.New().String(),
		Items:          req.Items,
		Total:          req.Total.Or(0),
		PickupTime:     req.PickupTime,
		PickupLocation: req.PickupLocation,
		Notes:          req.Notes,
		Status:         models.OrderStatusReceived,
		UserID:         req.UserID,
		CreatedAt:      models.Now(),
	}
	if err := h.Store.CreateOrder(c.Request.Context(), &order); err != nil {
		storeError(c, err, "Order not found", "Failed to create order")
		return
	}

	logging.FromContext(c.Request.Context()).Info("Order created", "order_id", order.ID, "items", len(order.Items), "total", order.Total)
	c.JSON(http.StatusCreated, order)
}

// UpdateOrderStatus replaces the status with whatever the panel sends. The
// customer gets an e-mail when their profile has an address.
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	var req dtos.OrderStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()

	order, err := h.Store.UpdateOrder(ctx, c.Param("id"), func(o *models.Order) error {
		o.SetStatus(req.Status, models.Now())
		return nil
	})
	if err != nil {
		storeError(c, err, "Order not found", "Failed to update order")
		return
	}

	if order.UserID != nil && *order.UserID != "" {
		user, err := h.Store.GetUser(ctx, *order.UserID)
		switch {
		case err == nil && user.Email != nil:
			name := ""
			if user.Name != nil {
				name = *user.Name
			}
			utils.SendOrderStatusUpdate(*user.Email, name, order.ID, order.Status)
		case err != nil && !errors.Is(err, database.ErrNotFound):
			logging.FromContext(ctx).Warn("Failed to load order owner", "order_id", order.ID, "error", err)
		}
	}

	c.JSON(http.StatusOK, order)
}
