package repository

import (
	"context"
	"fmt"
	bookingserrors "staybook/internal/bookings/errors"
	"staybook/pkg/config"
	mongotx "staybook/pkg/db/mongo"
	"staybook/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	LockCollectionName = "Booking_locks"
)

// BookingLockRepository stores advisory locks keyed by _id.
type BookingLockRepository interface {
	// Acquire inserts the lock and returns ErrLockHeld when the key is taken.
	Acquire(ctx context.Context, lock *model.BookingLock) error
	// ReleaseExpired removes the lock for key if its holder let it lapse.
	ReleaseExpired(ctx context.Context, key string, now time.Time) (bool, error)
	// Release removes the lock only if holder still owns it.
	Release(ctx context.Context, key, holder string) error
}

type mongoBookingLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewBookingLockRepository(cfg *config.Config) BookingLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingLockRepository{
		cfg:        cfg,
		collection: db.Collection(LockCollectionName),
	}
}

func (r *mongoBookingLockRepository) Acquire(ctx context.Context, lock *model.BookingLock) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	lock.CreatedAt = time.Now().UTC()
	if _, err := r.collection.InsertOne(ctx, lock); err != nil {
		if mongotx.IsDuplicateKey(err) {
			return fmt.Errorf("%w: %s", bookingserrors.ErrLockHeld, lock.ID)
		}
		return fmt.Errorf("failed to acquire booking lock: %w", err)
	}
	return nil
}

func (r *mongoBookingLockRepository) ReleaseExpired(ctx context.Context, key string, now time.Time) (bool, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{
		"_id":        key,
		"expires_at": bson.M{"$lt": now},
	})
	if err != nil {
		return false, fmt.Errorf("failed to reclaim expired booking lock: %w", err)
	}
	return result.DeletedCount > 0, nil
}

func (r *mongoBookingLockRepository) Release(ctx context.Context, key, holder string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": key, "holder": holder}); err != nil {
		return fmt.Errorf("failed to release booking lock: %w", err)
	}
	return nil
}
