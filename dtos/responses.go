package dtos

import (
	"time"

	"milk-backend/models"
)

type Stats struct {
	Users        int `json:"users"`
	PointsTotal  int `json:"pointsTotal"`
	Redemptions  int `json:"redemptions"`
	OrdersActive int `json:"ordersActive"`
	PrepaidCards int `json:"prepaidCards"`
}

type PointsResult struct {
	OK   bool                   `json:"ok"`
	User models.User            `json:"user"`
	Op   models.PointsOperation `json:"op"`
}

// UserDetail is a user with its own ledger entries, newest first.
type UserDetail struct {
	models.User
	History []models.PointsOperation `json:"history"`
}

type Happy struct {
	Text      string     `json:"text"`
	UpdatedAt *time.Time `json:"updatedAt"`
}
