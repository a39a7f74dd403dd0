package service

import (
	"context"
	"errors"
	"fmt"
	bookingserrors "staybook/internal/bookings/errors"
	apperrors "staybook/pkg/errors"
	"staybook/pkg/model"
	"time"
)

// Cancel lets a guest withdraw a pending booking while the cancellation
// notice period has not started. Bookings of other users are reported as
// missing.
func (s *bookingService) Cancel(ctx context.Context, userID, bookingID string) (*model.Booking, error) {
	if bookingID == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) || errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("Booking", bookingID)
		}
		s.cfg.Log.Error("Failed to load booking for cancellation",
			"id", bookingID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to cancel booking", err)
	}

	if booking.User != userID {
		s.cfg.Log.Warn("Cancellation of foreign booking rejected",
			"id", bookingID,
			"user_id", userID,
		)
		return nil, apperrors.NotFoundWithID("Booking", bookingID)
	}

	if !model.UserCancellable(booking.Status) {
		return nil, apperrors.State(apperrors.CodeInvalidStateTransition,
			fmt.Sprintf("Cannot cancel a %s booking", booking.Status))
	}

	if booking.CheckInDate.Sub(s.now()) < s.cfg.CancellationNotice {
		return nil, apperrors.State(apperrors.CodeCancellationWindowClosed,
			fmt.Sprintf("Bookings can only be cancelled at least %s before check-in", formatNotice(s.cfg.CancellationNotice)))
	}

	cancelled, err := s.repo.CancelIfPending(ctx, bookingID, userID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotPending) {
			return nil, apperrors.State(apperrors.CodeInvalidStateTransition, "Booking is no longer pending")
		}
		s.cfg.Log.Error("Failed to cancel booking",
			"id", bookingID,
			"user_id", userID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to cancel booking", err)
	}

	s.cfg.Log.Info("Booking cancelled",
		"id", bookingID,
		"user_id", userID,
		"room", cancelled.Room,
	)

	s.notifyAsync(ctx, model.EventBookingCancelled, cancelled, nil)

	return cancelled, nil
}

func formatNotice(d time.Duration) string {
	if d%time.Hour == 0 {
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	return d.String()
}
