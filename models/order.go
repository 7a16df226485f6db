package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Order statuses used by the staff panel. Status is stored as free text and
// any string is accepted, so these are the well-known values only.
const (
	OrderStatusReceived  = "Przyjęte"
	OrderStatusPreparing = "W przygotowaniu"
	OrderStatusReady     = "Gotowe"
	OrderStatusIssued    = "Wydane"
)

// KnownOrderStatuses lists the statuses the clients render.
var KnownOrderStatuses = []string{
	OrderStatusReceived,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusIssued,
}

type Order struct {
	ID             string      `gorm:"primaryKey" json:"id" firestore:"id"`
	Items          []OrderItem `gorm:"type:text;serializer:json" json:"items" firestore:"items"`
	Total          float64     `json:"total" firestore:"total"`
	PickupTime     string      `json:"pickupTime" firestore:"pickupTime"`
	PickupLocation string      `json:"pickupLocation" firestore:"pickupLocation"`
	Notes          string      `json:"notes" firestore:"notes"`
	Status         string      `gorm:"index" json:"status" firestore:"status"`
	UserID         *string     `gorm:"index" json:"userId" firestore:"userId"`
	CreatedAt      time.Time   `gorm:"index" json:"createdAt" firestore:"createdAt"`
	UpdatedAt      *time.Time  `gorm:"autoUpdateTime:false" json:"updatedAt" firestore:"updatedAt"`
}

// OrderItem is a snapshot of one ordered line; it is not linked to the
// reward catalogue.
type OrderItem struct {
	Title    string  `json:"title" firestore:"title"`
	Quantity int     `json:"quantity" firestore:"quantity"`
	Price    float64 `json:"price" firestore:"price"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	return nil
}

// IsActive reports whether the order has not been handed out yet.
func (o Order) IsActive() bool {
	return !strings.EqualFold(o.Status, OrderStatusIssued)
}

// SetStatus replaces the status with no transition checks.
func (o *Order) SetStatus(status string, at time.Time) {
	o.Status = status
	o.UpdatedAt = &at
}
