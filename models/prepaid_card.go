package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	CardNotePurchase = "Zakup karty"
	CardNoteTopUp    = "Doładowanie"
	CardNoteCharge   = "Obciążenie"
)

var (
	ErrZeroDelta           = errors.New("delta must be a non-zero number")
	ErrInsufficientBalance = errors.New("insufficient card balance")
)

// PrepaidCard is a stored-value card identified by a six digit code. Codes are
// not guaranteed unique.
type PrepaidCard struct {
	ID        string             `gorm:"primaryKey" json:"id" firestore:"id"`
	Code      string             `gorm:"index;not null" json:"code" firestore:"code"`
	Title     string             `json:"title" firestore:"title"`
	Value     float64            `json:"value" firestore:"value"`
	Bonus     float64            `json:"bonus" firestore:"bonus"`
	Total     float64            `json:"total" firestore:"total"`
	Balance   *float64           `json:"balance" firestore:"balance"`
	UserID    *string            `gorm:"index" json:"userId" firestore:"userId"`
	CreatedAt time.Time          `gorm:"index" json:"createdAt" firestore:"createdAt"`
	History   []CardHistoryEntry `gorm:"type:text;serializer:json" json:"history" firestore:"history"`
}

type CardHistoryEntry struct {
	Delta float64   `json:"delta" firestore:"delta"`
	Note  string    `json:"note" firestore:"note"`
	Date  time.Time `json:"date" firestore:"date"`
}

func (p *PrepaidCard) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// NewPrepaidCard builds a freshly purchased card. Total and balance both start
// at value+bonus and the purchase is the first history entry.
func NewPrepaidCard(code, title string, value, bonus float64, userID *string, at time.Time) PrepaidCard {
	total := value + bonus
	balance := total
	return PrepaidCard{
		ID:        uuid.New().String(),
		Code:      code,
		Title:     title,
		Value:     value,
		Bonus:     bonus,
		Total:     total,
		Balance:   &balance,
		UserID:    userID,
		CreatedAt: at,
		History: []CardHistoryEntry{
			{Delta: total, Note: CardNotePurchase, Date: at},
		},
	}
}

// CurrentBalance falls back to total, then value, for cards without a balance.
func (p PrepaidCard) CurrentBalance() float64 {
	if p.Balance != nil {
		return *p.Balance
	}
	if p.Total != 0 {
		return p.Total
	}
	return p.Value
}

// Adjust applies delta to the balance and prepends a history entry. A result
// below zero is rejected and leaves the card untouched.
func (p *PrepaidCard) Adjust(delta float64, note string, at time.Time) error {
	if delta == 0 {
		return ErrZeroDelta
	}
	next := p.CurrentBalance() + delta
	if next < 0 {
		return ErrInsufficientBalance
	}
	if note == "" {
		note = CardNoteTopUp
		if delta < 0 {
			note = CardNoteCharge
		}
	}
	p.Balance = &next
	entry := CardHistoryEntry{Delta: delta, Note: note, Date: at}
	p.History = append([]CardHistoryEntry{entry}, p.History...)
	return nil
}
