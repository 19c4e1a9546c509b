package repository

import (
	"context"
	"fmt"
	"time"

	"slotkeeper/pkg/config"
	"slotkeeper/pkg/lock"
	"slotkeeper/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const LockCollectionName = "Booking_locks"

// BookingLockRepository stores occupancy lock leases in Mongo. A TTL index
// on expires_at removes abandoned leases; TryAcquire also takes over a lease
// whose expiry has passed before the TTL monitor ran.
type BookingLockRepository struct {
	collection *mongo.Collection
}

var _ lock.LeaseStore = (*BookingLockRepository)(nil)

func NewBookingLockRepository(cfg *config.Config) *BookingLockRepository {
	return &BookingLockRepository{
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(LockCollectionName),
	}
}

func (r *BookingLockRepository) TryAcquire(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	now := time.Now().UTC()
	lease := &model.LockLease{
		ID:        key,
		Token:     token,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}

	_, err := r.collection.InsertOne(ctx, lease)
	if err == nil {
		return true, nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return false, fmt.Errorf("failed to create booking lock: %w", err)
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": key, "expires_at": bson.M{"$lte": now}},
		bson.M{"$set": bson.M{
			"token":      token,
			"expires_at": lease.ExpiresAt,
			"created_at": now,
		}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to take over expired booking lock: %w", err)
	}
	return result.MatchedCount == 1, nil
}

// Release deletes the lease only while it still carries token.
func (r *BookingLockRepository) Release(ctx context.Context, key, token string) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": key, "token": token}); err != nil {
		return fmt.Errorf("failed to release booking lock: %w", err)
	}
	return nil
}
