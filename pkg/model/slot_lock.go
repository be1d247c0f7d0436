package model

import "time"

// SlotLock is an advisory lock held while a submission is being committed.
// The _id encodes the slot coordinates, so a second submission for the same
// slot fails the insert with a duplicate key. A TTL index on expires_at
// reaps locks orphaned by a crash.
type SlotLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
