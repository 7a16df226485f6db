package database

import (
	"context"
	"errors"

	"milk-backend/models"
)

// ErrNotFound is returned by every Store when a referenced record is absent.
var ErrNotFound = errors.New("record not found")

// Store is the persistence boundary used by the handlers. List methods return
// newest first unless stated otherwise. The Update* and UpsertUser methods
// load one record, hand it to fn and persist the result as a single atomic
// step; an error from fn aborts the write and is returned unchanged.
type Store interface {
	// ListUsers returns users in creation order.
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id string) (models.User, error)
	// UpsertUser creates an empty user when id is unknown before calling fn.
	UpsertUser(ctx context.Context, id string, fn func(u *models.User) error) (models.User, error)

	// ListPointsOps returns the whole ledger, or one user's entries when
	// userID is not empty.
	ListPointsOps(ctx context.Context, userID string) ([]models.PointsOperation, error)
	CreatePointsOp(ctx context.Context, op *models.PointsOperation) error

	ListRewards(ctx context.Context) ([]models.Reward, error)
	GetReward(ctx context.Context, id string) (models.Reward, error)
	CreateReward(ctx context.Context, reward *models.Reward) error
	UpdateReward(ctx context.Context, id string, fn func(r *models.Reward) error) (models.Reward, error)
	DeleteReward(ctx context.Context, id string) error

	// ListOrders filters by user when userID is not empty.
	ListOrders(ctx context.Context, userID string) ([]models.Order, error)
	GetOrder(ctx context.Context, id string) (models.Order, error)
	CreateOrder(ctx context.Context, order *models.Order) error
	UpdateOrder(ctx context.Context, id string, fn func(o *models.Order) error) (models.Order, error)

	ListPrepaid(ctx context.Context) ([]models.PrepaidCard, error)
	// GetPrepaidByCode returns the newest card carrying code.
	GetPrepaidByCode(ctx context.Context, code string) (models.PrepaidCard, error)
	CreatePrepaid(ctx context.Context, card *models.PrepaidCard) error
	UpdatePrepaidByCode(ctx context.Context, code string, fn func(c *models.PrepaidCard) error) (models.PrepaidCard, error)

	// ListReservations filters by customer when milkID is not empty.
	ListReservations(ctx context.Context, milkID string) ([]models.Reservation, error)
	GetReservation(ctx context.Context, id string) (models.Reservation, error)
	CreateReservation(ctx context.Context, reservation *models.Reservation) error
	UpdateReservation(ctx context.Context, id string, fn func(r *models.Reservation) error) (models.Reservation, error)
	DeleteReservation(ctx context.Context, id string) error

	LatestHappy(ctx context.Context) (models.HappyMessage, error)
	CreateHappy(ctx context.Context, msg *models.HappyMessage) error

	Close() error
}

var (
	_ Store = (*FileStore)(nil)
	_ Store = (*GormStore)(nil)
	_ Store = (*FirestoreStore)(nil)
)
