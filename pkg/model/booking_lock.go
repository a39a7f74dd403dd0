package model

import "time"

// BookingLock is an advisory lock document serializing booking writes per room.
// The _id is the lock key, so a second insert fails with a duplicate key.
type BookingLock struct {
	ID        string    `bson:"_id" json:"id"`
	Holder    string    `bson:"holder" json:"holder"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

func RoomLockKey(roomID string) string {
	return "room:" + roomID
}
