package dtos

import (
	"milk-backend/models"
	"milk-backend/utils"
)

// PointsRequest is the body of POST /api/milk/points/add. Points wins over
// Amount when it is a positive number.
type PointsRequest struct {
	UserID string       `json:"userId" binding:"required"`
	Points utils.Number `json:"points"`
	Amount utils.Number `json:"amount"`
	Op     string       `json:"op"`
	Note   string       `json:"note"`
}

type CreateRewardRequest struct {
	Title       string       `json:"title" binding:"required"`
	Cost        utils.Number `json:"cost"`
	Description string       `json:"description"`
	Icon        string       `json:"icon"`
}

// UpdateRewardRequest leaves nil fields untouched.
type UpdateRewardRequest struct {
	Title       *string      `json:"title"`
	Cost        utils.Number `json:"cost"`
	Description *string      `json:"description"`
	Icon        *string      `json:"icon"`
}

type IconURLRequest struct {
	URL string `json:"url" binding:"required,url"`
}

type CreateOrderRequest struct {
	Items          []models.OrderItem `json:"items" binding:"required,min=1"`
	Total          utils.Number       `json:"total"`
	PickupTime     string             `json:"pickupTime"`
	PickupLocation string             `json:"pickupLocation"`
	Notes          string             `json:"notes"`
	UserID         *string            `json:"userId"`
}

type OrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type PurchaseRequest struct {
	Value  utils.Number `json:"value"`
	Bonus  utils.Number `json:"bonus"`
	Title  string       `json:"title"`
	UserID *string      `json:"userId"`
}

type AdjustRequest struct {
	Delta utils.Number `json:"delta"`
	Note  string       `json:"note"`
}

type CreateReservationRequest struct {
	Name   string       `json:"name" binding:"required"`
	Phone  string       `json:"phone" binding:"required"`
	Date   string       `json:"date" binding:"required"`
	Time   string       `json:"time" binding:"required"`
	Guests utils.Number `json:"guests"`
	Room   string       `json:"room" binding:"required"`
	Notes  string       `json:"notes"`
	Email  string       `json:"email"`
	MilkID string       `json:"milkId"`
	Source string       `json:"source"`
}

type UpdateReservationRequest struct {
	Name   *string      `json:"name"`
	Phone  *string      `json:"phone"`
	Date   *string      `json:"date"`
	Time   *string      `json:"time"`
	Guests utils.Number `json:"guests"`
	Room   *string      `json:"room"`
	Notes  *string      `json:"notes"`
	Email  *string      `json:"email"`
	MilkID *string      `json:"milkId"`
	Source *string      `json:"source"`
}

type HappyRequest struct {
	Text string `json:"text"`
}
