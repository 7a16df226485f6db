package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"milk-backend/models"
)

// State is the whole database as persisted by FileStore.
type State struct {
	Users        []models.User            `json:"users"`
	Rewards      []models.Reward          `json:"rewards"`
	Orders       []models.Order           `json:"orders"`
	Prepaid      []models.PrepaidCard     `json:"prepaid"`
	PointsOps    []models.PointsOperation `json:"pointsOps"`
	Reservations []models.Reservation     `json:"reservations"`
	Happy        []models.HappyMessage    `json:"happy"`
}

func emptyState() State {
	return State{
		Users:        []models.User{},
		Rewards:      []models.Reward{},
		Orders:       []models.Order{},
		Prepaid:      []models.PrepaidCard{},
		PointsOps:    []models.PointsOperation{},
		Reservations: []models.Reservation{},
		Happy:        []models.HappyMessage{},
	}
}

// FileStore keeps the whole state in memory and rewrites one JSON file after
// every mutation. It assumes it is the only writer of that file.
type FileStore struct {
	mu    sync.RWMutex
	path  string
	state State
}

// OpenFile loads path, starting from an empty state if the file does not exist.
func OpenFile(path string) (*FileStore, error) {
	s := &FileStore{path: path, state: emptyState()}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		if err := s.save(); err != nil {
			return nil, err
		}
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &s.state); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}
	s.fillNil()
	return s, nil
}

// fillNil keeps empty collections serialised as [] rather than null.
func (s *FileStore) fillNil() {
	empty := emptyState()
	if s.state.Users == nil {
		s.state.Users = empty.Users
	}
	if s.state.Rewards == nil {
		s.state.Rewards = empty.Rewards
	}
	if s.state.Orders == nil {
		s.state.Orders = empty.Orders
	}
	if s.state.Prepaid == nil {
		s.state.Prepaid = empty.Prepaid
	}
	if s.state.PointsOps == nil {
		s.state.PointsOps = empty.PointsOps
	}
	if s.state.Reservations == nil {
		s.state.Reservations = empty.Reservations
	}
	if s.state.Happy == nil {
		s.state.Happy = empty.Happy
	}
}

// save must be called with mu held.
func (s *FileStore) save() error {
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}
	return nil
}

// Snapshot returns a copy of the current state.
func (s *FileStore) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{
		Users:        append([]models.User(nil), s.state.Users...),
		Rewards:      append([]models.Reward(nil), s.state.Rewards...),
		Orders:       append([]models.Order(nil), s.state.Orders...),
		Prepaid:      append([]models.PrepaidCard(nil), s.state.Prepaid...),
		PointsOps:    append([]models.PointsOperation(nil), s.state.PointsOps...),
		Reservations: append([]models.Reservation(nil), s.state.Reservations...),
		Happy:        append([]models.HappyMessage(nil), s.state.Happy...),
	}
}

func (s *FileStore) Close() error { return nil }

func fileList[T any](s *FileStore, pick func(*State) *[]T, keep func(*T) bool) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := *pick(&s.state)
	out := make([]T, 0, len(items))
	for i := range items {
		if keep == nil || keep(&items[i]) {
			out = append(out, items[i])
		}
	}
	return out
}

func fileFind[T any](s *FileStore, pick func(*State) *[]T, match func(*T) bool) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := *pick(&s.state)
	for i := range items {
		if match(&items[i]) {
			return items[i], nil
		}
	}
	var zero T
	return zero, ErrNotFound
}

// filePrepend inserts item at the head of its collection.
func filePrepend[T any](s *FileStore, pick func(*State) *[]T, item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := pick(&s.state)
	prev := *list
	*list = append([]T{item}, prev...)
	if err := s.save(); err != nil {
		*list = prev
		return err
	}
	return nil
}

func fileUpdate[T any](s *FileStore, pick func(*State) *[]T, match func(*T) bool, fn func(*T) error) (T, error) {
	var zero T
	s.mu.Lock()
	defer s.mu.Unlock()
	items := *pick(&s.state)
	for i := range items {
		if !match(&items[i]) {
			continue
		}
		prev := items[i]
		next := prev
		if err := fn(&next); err != nil {
			return zero, err
		}
		items[i] = next
		if err := s.save(); err != nil {
			items[i] = prev
			return zero, err
		}
		return next, nil
	}
	return zero, ErrNotFound
}

func fileDelete[T any](s *FileStore, pick func(*State) *[]T, match func(*T) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := pick(&s.state)
	prev := *list
	for i := range prev {
		if !match(&prev[i]) {
			continue
		}
		next := make([]T, 0, len(prev)-1)
		next = append(next, prev[:i]...)
		next = append(next, prev[i+1:]...)
		*list = next
		if err := s.save(); err != nil {
			*list = prev
			return err
		}
		return nil
	}
	return ErrNotFound
}

func users(st *State) *[]models.User                { return &st.Users }
func rewards(st *State) *[]models.Reward            { return &st.Rewards }
func orders(st *State) *[]models.Order              { return &st.Orders }
func prepaid(st *State) *[]models.PrepaidCard       { return &st.Prepaid }
func pointsOps(st *State) *[]models.PointsOperation { return &st.PointsOps }
func reservations(st *State) *[]models.Reservation  { return &st.Reservations }
func happy(st *State) *[]models.HappyMessage        { return &st.Happy }

func (s *FileStore) ListUsers(ctx context.Context) ([]models.User, error) {
	return fileList(s, users, nil), nil
}

func (s *FileStore) GetUser(ctx context.Context, id string) (models.User, error) {
	return fileFind(s, users, func(u *models.User) bool { return u.ID == id })
}

func (s *FileStore) UpsertUser(ctx context.Context, id string, fn func(u *models.User) error) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.Users {
		if s.state.Users[i].ID != id {
			continue
		}
		prev := s.state.Users[i]
		next := prev
		if err := fn(&next); err != nil {
			return models.User{}, err
		}
		s.state.Users[i] = next
		if err := s.save(); err != nil {
			s.state.Users[i] = prev
			return models.User{}, err
		}
		return next, nil
	}

	user := models.NewUser(id)
	if err := fn(&user); err != nil {
		return models.User{}, err
	}
	prev := s.state.Users
	s.state.Users = append(append([]models.User(nil), prev...), user)
	if err := s.save(); err != nil {
		s.state.Users = prev
		return models.User{}, err
	}
	return user, nil
}

func (s *FileStore) ListPointsOps(ctx context.Context, userID string) ([]models.PointsOperation, error) {
	if userID == "" {
		return fileList(s, pointsOps, nil), nil
	}
	return fileList(s, pointsOps, func(op *models.PointsOperation) bool { return op.UserID == userID }), nil
}

func (s *FileStore) CreatePointsOp(ctx context.Context, op *models.PointsOperation) error {
	return filePrepend(s, pointsOps, *op)
}

func (s *FileStore) ListRewards(ctx context.Context) ([]models.Reward, error) {
	return fileList(s, rewards, nil), nil
}

func (s *FileStore) GetReward(ctx context.Context, id string) (models.Reward, error) {
	return fileFind(s, rewards, func(r *models.Reward) bool { return r.ID == id })
}

func (s *FileStore) CreateReward(ctx context.Context, reward *models.Reward) error {
	return filePrepend(s, rewards, *reward)
}

func (s *FileStore) UpdateReward(ctx context.Context, id string, fn func(r *models.Reward) error) (models.Reward, error) {
	return fileUpdate(s, rewards, func(r *models.Reward) bool { return r.ID == id }, fn)
}

func (s *FileStore) DeleteReward(ctx context.Context, id string) error {
	return fileDelete(s, rewards, func(r *models.Reward) bool { return r.ID == id })
}

func (s *FileStore) ListOrders(ctx context.Context, userID string) ([]models.Order, error) {
	if userID == "" {
		return fileList(s, orders, nil), nil
	}
	return fileList(s, orders, func(o *models.Order) bool {
		return o.UserID != nil && *o.UserID == userID
	}), nil
}

func (s *FileStore) GetOrder(ctx context.Context, id string) (models.Order, error) {
	return fileFind(s, orders, func(o *models.Order) bool { return o.ID == id })
}

func (s *FileStore) CreateOrder(ctx context.Context, order *models.Order) error {
	return filePrepend(s, orders, *order)
}

func (s *FileStore) UpdateOrder(ctx context.Context, id string, fn func(o *models.Order) error) (models.Order, error) {
	return fileUpdate(s, orders, func(o *models.Order) bool { return o.ID == id }, fn)
}

func (s *FileStore) ListPrepaid(ctx context.Context) ([]models.PrepaidCard, error) {
	return fileList(s, prepaid, nil), nil
}

func (s *FileStore) GetPrepaidByCode(ctx context.Context, code string) (models.PrepaidCard, error) {
	return fileFind(s, prepaid, func(c *models.PrepaidCard) bool { return c.Code == code })
}

func (s *FileStore) CreatePrepaid(ctx context.Context, card *models.PrepaidCard) error {
	return filePrepend(s, prepaid, *card)
}

func (s *FileStore) UpdatePrepaidByCode(ctx context.Context, code string, fn func(c *models.PrepaidCard) error) (models.PrepaidCard, error) {
	return fileUpdate(s, prepaid, func(c *models.PrepaidCard) bool { return c.Code == code }, fn)
}

func (s *FileStore) ListReservations(ctx context.Context, milkID string) ([]models.Reservation, error) {
	if milkID == "" {
		return fileList(s, reservations, nil), nil
	}
	return fileList(s, reservations, func(r *models.Reservation) bool { return r.MilkID == milkID }), nil
}

func (s *FileStore) GetReservation(ctx context.Context, id string) (models.Reservation, error) {
	return fileFind(s, reservations, func(r *models.Reservation) bool { return r.ID == id })
}

func (s *FileStore) CreateReservation(ctx context.Context, reservation *models.Reservation) error {
	return filePrepend(s, reservations, *reservation)
}

func (s *FileStore) UpdateReservation(ctx context.Context, id string, fn func(r *models.Reservation) error) (models.Reservation, error) {
	return fileUpdate(s, reservations, func(r *models.Reservation) bool { return r.ID == id }, fn)
}

func (s *FileStore) DeleteReservation(ctx context.Context, id string) error {
	return fileDelete(s, reservations, func(r *models.Reservation) bool { return r.ID == id })
}

func (s *FileStore) LatestHappy(ctx context.Context) (models.HappyMessage, error) {
	return fileFind(s, happy, func(*models.HappyMessage) bool { return true })
}

func (s *FileStore) CreateHappy(ctx context.Context, msg *models.HappyMessage) error {
	return filePrepend(s, happy, *msg)
}
