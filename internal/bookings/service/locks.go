package service

import (
	"context"
	"errors"
	bookingserrors "staybook/internal/bookings/errors"
	apperrors "staybook/pkg/errors"
	"staybook/pkg/model"
	"time"

	"github.com/google/uuid"
)

// acquireRoomLock serializes booking writes for a room. Contention is retried
// with exponential backoff, and a lock whose holder let it expire is reclaimed.
// The returned func releases the lock.
func (s *bookingService) acquireRoomLock(ctx context.Context, roomID string) (func(), error) {
	key := model.RoomLockKey(roomID)
	holder := uuid.NewString()
	backoff := s.cfg.LockRetryBackoff

	for attempt := 1; ; attempt++ {
		now := s.now()
		err := s.locks.Acquire(ctx, &model.BookingLock{
			ID:        key,
			Holder:    holder,
			ExpiresAt: now.Add(s.cfg.LockTTL),
		})
		if err == nil {
			return func() { s.releaseRoomLock(ctx, key, holder) }, nil
		}
		if !errors.Is(err, bookingserrors.ErrLockHeld) {
			s.cfg.Log.Error("Failed to acquire booking lock",
				"room", roomID,
				"error", err,
			)
			return nil, apperrors.Internal("Failed to create booking", err)
		}

		reclaimed, err := s.locks.ReleaseExpired(ctx, key, now)
		if err != nil {
			s.cfg.Log.Warn("Failed to reclaim expired booking lock",
				"room", roomID,
				"error", err,
			)
		}
		if reclaimed {
			s.cfg.Log.Warn("Reclaimed expired booking lock", "room", roomID)
			continue
		}

		if attempt >= s.cfg.LockRetryAttempts {
			s.cfg.Log.Warn("Booking lock contention exhausted retries",
				"room", roomID,
				"attempts", attempt,
			)
			return nil, apperrors.Conflict("Room is being booked by another request, please retry")
		}

		select {
		case <-ctx.Done():
			return nil, apperrors.Timeout("Request cancelled while waiting for room lock")
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}

func (s *bookingService) releaseRoomLock(ctx context.Context, key, holder string) {
	// release even when the request context is already done
	if err := s.locks.Release(context.WithoutCancel(ctx), key, holder); err != nil {
		s.cfg.Log.Error("Failed to release booking lock",
			"key", key,
			"error", err,
		)
	}
}
