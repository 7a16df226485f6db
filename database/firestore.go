package database

import (
	"context"
	"fmt"
	"sort"

	"milk-backend/models"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Firestore collection names.
const (
	CollectionUsers        = "users"
	CollectionRewards      = "rewards"
	CollectionOrders       = "orders"
	CollectionPrepaid      = "prepaid"
	CollectionPointsOps    = "pointsOps"
	CollectionReservations = "reservations"
	CollectionHappy        = "happy"
)

// FirestoreStore keeps one document per record with the record id as the
// document id. Firestore enforces no schema.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func fsGet[T any](ctx context.Context, ref *firestore.DocumentRef) (T, error) {
	var out T
	snap, err := ref.Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return out, ErrNotFound
		}
		return out, err
	}
	if err := snap.DataTo(&out); err != nil {
		return out, fmt.Errorf("failed to decode %s: %w", ref.Path, err)
	}
	return out, nil
}

func fsAll[T any](ctx context.Context, q firestore.Query) ([]T, error) {
	snaps, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(snaps))
	for _, snap := range snaps {
		var item T
		if err := snap.DataTo(&item); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", snap.Ref.Path, err)
		}
		out = append(out, item)
	}
	return out, nil
}

// fsUpdate runs fn inside a transaction. When the document is missing, create
// supplies the initial value, or ErrNotFound is returned if create is nil.
func fsUpdate[T any](ctx context.Context, client *firestore.Client, ref *firestore.DocumentRef, create func() T, fn func(*T) error) (T, error) {
	var out T
	err := client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		var rec T
		snap, err := tx.Get(ref)
		switch {
		case isNotFound(err):
			if create == nil {
				return ErrNotFound
			}
			rec = create()
		case err != nil:
			return err
		default:
			if err := snap.DataTo(&rec); err != nil {
				return err
			}
		}
		if err := fn(&rec); err != nil {
			return err
		}
		out = rec
		return tx.Set(ref, rec)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

func (s *FirestoreStore) delete(ctx context.Context, collection, id string) error {
	_, err := s.client.Collection(collection).Doc(id).Delete(ctx, firestore.Exists)
	if isNotFound(err) {
		return ErrNotFound
	}
	return err
}

func (s *FirestoreStore) newestFirst(collection string) firestore.Query {
	return s.client.Collection(collection).OrderBy("createdAt", firestore.Desc)
}

func (s *FirestoreStore) ListUsers(ctx context.Context) ([]models.User, error) {
	return fsAll[models.User](ctx, s.client.Collection(CollectionUsers).OrderBy("createdAt", firestore.Asc))
}

func (s *FirestoreStore) GetUser(ctx context.Context, id string) (models.User, error) {
	return fsGet[models.User](ctx, s.client.Collection(CollectionUsers).Doc(id))
}

func (s *FirestoreStore) UpsertUser(ctx context.Context, id string, fn func(u *models.User) error) (models.User, error) {
	ref := s.client.Collection(CollectionUsers).Doc(id)
	return fsUpdate(ctx, s.client, ref, func() models.User { return models.NewUser(id) }, fn)
}

// ListPointsOps sorts filtered results in memory so no composite index is
// needed.
func (s *FirestoreStore) ListPointsOps(ctx context.Context, userID string) ([]models.PointsOperation, error) {
	if userID == "" {
		return fsAll[models.PointsOperation](ctx, s.newestFirst(CollectionPointsOps))
	}
	ops, err := fsAll[models.PointsOperation](ctx, s.client.Collection(CollectionPointsOps).Where("userId", "==", userID))
	if err != nil {
		return nil, err
	}
	sort.SliceStable(ops, func(i, j int) bool { return ops[i].CreatedAt.After(ops[j].CreatedAt) })
	return ops, nil
}

func (s *FirestoreStore) CreatePointsOp(ctx context.Context, op *models.PointsOperation) error {
	_, err := s.client.Collection(CollectionPointsOps).Doc(op.ID).Set(ctx, op)
	return err
}

func (s *FirestoreStore) ListRewards(ctx context.Context) ([]models.Reward, error) {
	return fsAll[models.Reward](ctx, s.newestFirst(CollectionRewards))
}

func (s *FirestoreStore) GetReward(ctx context.Context, id string) (models.Reward, error) {
	return fsGet[models.Reward](ctx, s.client.Collection(CollectionRewards).Doc(id))
}

func (s *FirestoreStore) CreateReward(ctx context.Context, reward *models.Reward) error {
	_, err := s.client.Collection(CollectionRewards).Doc(reward.ID).Set(ctx, reward)
	return err
}

func (s *FirestoreStore) UpdateReward(ctx context.Context, id string, fn func(r *models.Reward) error) (models.Reward, error) {
	return fsUpdate(ctx, s.client, s.client.Collection(CollectionRewards).Doc(id), nil, fn)
}

func (s *FirestoreStore) DeleteReward(ctx context.Context, id string) error {
	return s.delete(ctx, CollectionRewards, id)
}

func (s *FirestoreStore) ListOrders(ctx context.Context, userID string) ([]models.Order, error) {
	if userID == "" {
		return fsAll[models.Order](ctx, s.newestFirst(CollectionOrders))
	}
	list, err := fsAll[models.Order](ctx, s.client.Collection(CollectionOrders).Where("userId", "==", userID))
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

func (s *FirestoreStore) GetOrder(ctx context.Context, id string) (models.Order, error) {
	return fsGet[models.Order](ctx, s.client.Collection(CollectionOrders).Doc(id))
}

func (s *FirestoreStore) CreateOrder(ctx context.Context, order *models.Order) error {
	_, err := s.client.Collection(CollectionOrders).Doc(order.ID).Set(ctx, order)
	return err
}

func (s *FirestoreStore) UpdateOrder(ctx context.Context, id string, fn func(o *models.Order) error) (models.Order, error) {
	return fsUpdate(ctx, s.client, s.client.Collection(CollectionOrders).Doc(id), nil, fn)
}

func (s *FirestoreStore) ListPrepaid(ctx context.Context) ([]models.PrepaidCard, error) {
	return fsAll[models.PrepaidCard](ctx, s.newestFirst(CollectionPrepaid))
}

func (s *FirestoreStore) findCardRef(ctx context.Context, code string) (*firestore.DocumentRef, error) {
	snaps, err := s.client.Collection(CollectionPrepaid).Where("code", "==", code).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, ErrNotFound
	}
	newest := snaps[0]
	for _, snap := range snaps[1:] {
		if snap.CreateTime.After(newest.CreateTime) {
			newest = snap
		}
	}
	return newest.Ref, nil
}

func (s *FirestoreStore) GetPrepaidByCode(ctx context.Context, code string) (models.PrepaidCard, error) {
	ref, err := s.findCardRef(ctx, code)
	if err != nil {
		return models.PrepaidCard{}, err
	}
	return fsGet[models.PrepaidCard](ctx, ref)
}

func (s *FirestoreStore) CreatePrepaid(ctx context.Context, card *models.PrepaidCard) error {
	_, err := s.client.Collection(CollectionPrepaid).Doc(card.ID).Set(ctx, card)
	return err
}

func (s *FirestoreStore) UpdatePrepaidByCode(ctx context.Context, code string, fn func(c *models.PrepaidCard) error) (models.PrepaidCard, error) {
	ref, err := s.findCardRef(ctx, code)
	if err != nil {
		return models.PrepaidCard{}, err
	}
	return fsUpdate(ctx, s.client, ref, nil, fn)
}

func (s *FirestoreStore) ListReservations(ctx context.Context, milkID string) ([]models.Reservation, error) {
	if milkID == "" {
		return fsAll[models.Reservation](ctx, s.newestFirst(CollectionReservations))
	}
	list, err := fsAll[models.Reservation](ctx, s.client.Collection(CollectionReservations).Where("milkId", "==", milkID))
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

func (s *FirestoreStore) GetReservation(ctx context.Context, id string) (models.Reservation, error) {
	return fsGet[models.Reservation](ctx, s.client.Collection(CollectionReservations).Doc(id))
}

func (s *FirestoreStore) CreateReservation(ctx context.Context, reservation *models.Reservation) error {
	_, err := s.client.Collection(CollectionReservations).Doc(reservation.ID).Set(ctx, reservation)
	return err
}

func (s *FirestoreStore) UpdateReservation(ctx context.Context, id string, fn func(r *models.Reservation) error) (models.Reservation, error) {
	return fsUpdate(ctx, s.client, s.client.Collection(CollectionReservations).Doc(id), nil, fn)
}

func (s *FirestoreStore) DeleteReservation(ctx context.Context, id string) error {
	return s.delete(ctx, CollectionReservations, id)
}

func (s *FirestoreStore) LatestHappy(ctx context.Context) (models.HappyMessage, error) {
	list, err := fsAll[models.HappyMessage](ctx, s.client.Collection(CollectionHappy).OrderBy("updatedAt", firestore.Desc).Limit(1))
	if err != nil {
		return models.HappyMessage{}, err
	}
	if len(list) == 0 {
		return models.HappyMessage{}, ErrNotFound
	}
	return list[0], nil
}

func (s *FirestoreStore) CreateHappy(ctx context.Context, msg *models.HappyMessage) error {
	_, err := s.client.Collection(CollectionHappy).Doc(msg.ID).Set(ctx, msg)
	return err
}
