package models

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CurrencyPerPoint is how many currency units buy one loyalty point.
const CurrencyPerPoint = 10

type PointsOp string

const (
	PointsOpAdd PointsOp = "add"
	PointsOpSub PointsOp = "sub"
)

// ParsePointsOp maps anything other than "sub" to "add".
func ParsePointsOp(s string) PointsOp {
	if PointsOp(s) == PointsOpSub {
		return PointsOpSub
	}
	return PointsOpAdd
}

// Signed returns the balance delta for the given point count.
func (op PointsOp) Signed(points int) int {
	if op == PointsOpSub {
		return -points
	}
	return points
}

// PointsFromAmount converts a purchase amount into points, rounding down.
func PointsFromAmount(amount float64) int {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0
	}
	return int(math.Floor(amount / CurrencyPerPoint))
}

// ResolvePoints prefers a positive explicit point count and otherwise derives
// one from the amount. The result may be zero or negative; callers reject it.
func ResolvePoints(explicit, amount float64) int {
	if explicit > 0 {
		return int(math.Floor(explicit))
	}
	return PointsFromAmount(amount)
}

// ApplyPoints returns the new balance, clamped at zero.
func ApplyPoints(balance int, op PointsOp, points int) int {
	next := balance + op.Signed(points)
	if next < 0 {
		return 0
	}
	return next
}

// PointsOperation is an immutable ledger entry.
type PointsOperation struct {
	ID        string    `gorm:"primaryKey" json:"id" firestore:"id"`
	UserID    string    `gorm:"not null;index" json:"userId" firestore:"userId"`
	Amount    *float64  `json:"amount" firestore:"amount"`
	Points    int       `gorm:"not null" json:"points" firestore:"points"`
	Op        PointsOp  `gorm:"not null" json:"op" firestore:"op"`
	Note      string    `json:"note" firestore:"note"`
	CreatedAt time.Time `gorm:"index" json:"createdAt" firestore:"createdAt"`
}

func (p *PointsOperation) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}
