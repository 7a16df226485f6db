package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reward is a catalogue entry customers can redeem points for. There is no
// stock tracking.
type Reward struct {
	ID          string    `gorm:"primaryKey" json:"id" firestore:"id"`
	Title       string    `gorm:"not null" json:"title" firestore:"title"`
	Cost        int       `gorm:"not null" json:"cost" firestore:"cost"`
	Description string    `json:"description" firestore:"description"`
	Icon        string    `json:"icon" firestore:"icon"`
	CreatedAt   time.Time `gorm:"index" json:"createdAt" firestore:"createdAt"`
}

func (r *Reward) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}
