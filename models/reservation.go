package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ReservationSourceIndex = "index"
	ReservationSourceApp   = "app"
)

// Reservation is a table booking. Double bookings are not detected.
type Reservation struct {
	ID        string     `gorm:"primaryKey" json:"id" firestore:"id"`
	Name      string     `gorm:"not null" json:"name" firestore:"name"`
	Phone     string     `gorm:"not null" json:"phone" firestore:"phone"`
	Date      string     `gorm:"index;not null" json:"date" firestore:"date"`
	Time      string     `gorm:"not null" json:"time" firestore:"time"`
	Guests    int        `gorm:"not null" json:"guests" firestore:"guests"`
	Room      string     `gorm:"not null" json:"room" firestore:"room"`
	Notes     string     `json:"notes" firestore:"notes"`
	Email     string     `json:"email" firestore:"email"`
	MilkID    string     `gorm:"index" json:"milkId" firestore:"milkId"`
	Source    string     `json:"source" firestore:"source"`
	CreatedAt time.Time  `gorm:"index" json:"createdAt" firestore:"createdAt"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime:false" json:"updatedAt" firestore:"updatedAt"`
}

func (r *Reservation) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// ReservationSource picks the source tag: an explicit one wins, then "app"
// for signed-in customers, then "index".
func ReservationSource(explicit, milkID string) string {
	switch {
	case explicit != "":
		return explicit
	case milkID != "":
		return ReservationSourceApp
	default:
		return ReservationSourceIndex
	}
}

// HappyMessage is one row of the announcement bar history. Only the newest
// row is ever shown.
type HappyMessage struct {
	ID        string    `gorm:"primaryKey" json:"id" firestore:"id"`
	Text      string    `json:"text" firestore:"text"`
	UpdatedAt time.Time `gorm:"index;autoUpdateTime:false" json:"updatedAt" firestore:"updatedAt"`
}

func (h *HappyMessage) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	return nil
}
