package service

import (
	"context"
	"errors"
	bookingserrors "staybook/internal/bookings/errors"
	apperrors "staybook/pkg/errors"
	"staybook/pkg/receipt"
)

// Receipt renders the PDF confirmation of one of the user's bookings.
func (s *bookingService) Receipt(ctx context.Context, userID, bookingID string) ([]byte, error) {
	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) || errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("Booking", bookingID)
		}
		return nil, apperrors.Internal("Failed to load booking", err)
	}
	if booking.User != userID {
		return nil, apperrors.NotFoundWithID("Booking", bookingID)
	}

	event, err := s.buildEvent(ctx, "", booking, nil)
	if err != nil {
		s.cfg.Log.Error("Failed to collect receipt data",
			"booking_id", bookingID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to build receipt", err)
	}

	data := receipt.FromEvent(event)
	data.IsPaid = booking.IsPaid
	data.IssuedAt = booking.CreatedAt

	pdf, err := receipt.Render(data)
	if err != nil {
		s.cfg.Log.Error("Failed to render receipt",
			"booking_id", bookingID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to build receipt", err)
	}
	return pdf, nil
}
