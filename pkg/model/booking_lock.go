package model

import "time"

// LockLease is a held occupancy lock stored in the Booking_locks
// collection. The owner token guards release against a lease that expired
// and was taken over.
type LockLease struct {
	ID        string    `bson:"_id" json:"id"`
	Token     string    `bson:"token" json:"token"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
