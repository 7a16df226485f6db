package database

import (
	"context"
	"errors"
	"fmt"

	"milk-backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore persists every collection in its own table.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// lockForUpdate adds SELECT ... FOR UPDATE where the dialect supports it.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func gormUpdate[T any](ctx context.Context, db *gorm.DB, query string, arg any, fn func(*T) error) (T, error) {
	var rec T
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).Where(query, arg).Order("created_at DESC").First(&rec).Error; err != nil {
			return notFound(err)
		}
		if err := fn(&rec); err != nil {
			return err
		}
		return tx.Save(&rec).Error
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return rec, nil
}

func gormDelete[T any](ctx context.Context, db *gorm.DB, id string) error {
	var model T
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) ListUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := s.DB.WithContext(ctx).Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *GormStore) GetUser(ctx context.Context, id string) (models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return user, notFound(err)
	}
	return user, nil
}

func (s *GormStore) UpsertUser(ctx context.Context, id string, fn func(u *models.User) error) (models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := lockForUpdate(tx).Where("id = ?", id).First(&user).Error
		created := false
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			user = models.NewUser(id)
			created = true
		case err != nil:
			return err
		}
		if err := fn(&user); err != nil {
			return err
		}
		if created {
			return tx.Create(&user).Error
		}
		return tx.Save(&user).Error
	})
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (s *GormStore) ListPointsOps(ctx context.Context, userID string) ([]models.PointsOperation, error) {
	ops := []models.PointsOperation{}
	query := s.DB.WithContext(ctx).Order("created_at DESC")
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if err := query.Find(&ops).Error; err != nil {
		return nil, fmt.Errorf("failed to list points operations: %w", err)
	}
	return ops, nil
}

func (s *GormStore) CreatePointsOp(ctx context.Context, op *models.PointsOperation) error {
	return s.DB.WithContext(ctx).Create(op).Error
}

func (s *GormStore) ListRewards(ctx context.Context) ([]models.Reward, error) {
	rewards := []models.Reward{}
	if err := s.DB.WithContext(ctx).Order("created_at DESC").Find(&rewards).Error; err != nil {
		return nil, fmt.Errorf("failed to list rewards: %w", err)
	}
	return rewards, nil
}

func (s *GormStore) GetReward(ctx context.Context, id string) (models.Reward, error) {
	var reward models.Reward
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&reward).Error; err != nil {
		return reward, notFound(err)
	}
	return reward, nil
}

func (s *GormStore) CreateReward(ctx context.Context, reward *models.Reward) error {
	return s.DB.WithContext(ctx).Create(reward).Error
}

func (s *GormStore) UpdateReward(ctx context.Context, id string, fn func(r *models.Reward) error) (models.Reward, error) {
	return gormUpdate(ctx, s.DB, "id = ?", id, fn)
}

func (s *GormStore) DeleteReward(ctx context.Context, id string) error {
	return gormDelete[models.Reward](ctx, s.DB, id)
}

func (s *GormStore) ListOrders(ctx context.Context, userID string) ([]models.Order, error) {
	orders := []models.Order{}
	query := s.DB.WithContext(ctx).Order("created_at DESC")
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if err := query.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (s *GormStore) GetOrder(ctx context.Context, id string) (models.Order, error) {
	var order models.Order
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		return order, notFound(err)
	}
	return order, nil
}

func (s *GormStore) CreateOrder(ctx context.Context, order *models.Order) error {
	return s.DB.WithContext(ctx).Create(order).Error
}

func (s *GormStore) UpdateOrder(ctx context.Context, id string, fn func(o *models.Order) error) (models.Order, error) {
	return gormUpdate(ctx, s.DB, "id = ?", id, fn)
}

func (s *GormStore) ListPrepaid(ctx context.Context) ([]models.PrepaidCard, error) {
	cards := []models.PrepaidCard{}
	if err := s.DB.WithContext(ctx).Order("created_at DESC").Find(&cards).Error; err != nil {
		return nil, fmt.Errorf("failed to list prepaid cards: %w", err)
	}
	return cards, nil
}

func (s *GormStore) GetPrepaidByCode(ctx context.Context, code string) (models.PrepaidCard, error) {
	var card models.PrepaidCard
	if err := s.DB.WithContext(ctx).Where("code = ?", code).Order("created_at DESC").First(&card).Error; err != nil {
		return card, notFound(err)
	}
	return card, nil
}

func (s *GormStore) CreatePrepaid(ctx context.Context, card *models.PrepaidCard) error {
	return s.DB.WithContext(ctx).Create(card).Error
}

func (s *GormStore) UpdatePrepaidByCode(ctx context.Context, code string, fn func(c *models.PrepaidCard) error) (models.PrepaidCard, error) {
	return gormUpdate(ctx, s.DB, "code = ?", code, fn)
}

func (s *GormStore) ListReservations(ctx context.Context, milkID string) ([]models.Reservation, error) {
	list := []models.Reservation{}
	query := s.DB.WithContext(ctx).Order("created_at DESC")
	if milkID != "" {
		query = query.Where("milk_id = ?", milkID)
	}
	if err := query.Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return list, nil
}

func (s *GormStore) GetReservation(ctx context.Context, id string) (models.Reservation, error) {
	var reservation models.Reservation
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&reservation).Error; err != nil {
		return reservation, notFound(err)
	}
	return reservation, nil
}

func (s *GormStore) CreateReservation(ctx context.Context, reservation *models.Reservation) error {
	return s.DB.WithContext(ctx).Create(reservation).Error
}

func (s *GormStore) UpdateReservation(ctx context.Context, id string, fn func(r *models.Reservation) error) (models.Reservation, error) {
	return gormUpdate(ctx, s.DB, "id = ?", id, fn)
}

func (s *GormStore) DeleteReservation(ctx context.Context, id string) error {
	return gormDelete[models.Reservation](ctx, s.DB, id)
}

func (s *GormStore) LatestHappy(ctx context.Context) (models.HappyMessage, error) {
	var msg models.HappyMessage
	if err := s.DB.WithContext(ctx).Order("updated_at DESC").First(&msg).Error; err != nil {
		return msg, notFound(err)
	}
	return msg, nil
}

func (s *GormStore) CreateHappy(ctx context.Context, msg *models.HappyMessage) error {
	return s.DB.WithContext(ctx).Create(msg).Error
}
