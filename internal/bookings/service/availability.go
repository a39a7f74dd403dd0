package service

import (
	"context"
	apperrors "staybook/pkg/errors"
	"staybook/pkg/model"
)

// CheckAvailability reports whether the room can be booked for the range.
// The room must exist, so an unknown id is never reported as available.
func (s *bookingService) CheckAvailability(ctx context.Context, req *model.AvailabilityRequest) (bool, error) {
	if err := s.validator.ValidateAvailability(req); err != nil {
		return false, validationError("Availability request validation failed", err)
	}

	checkIn, checkOut, _, err := s.parseStay(req.CheckInDate, req.CheckOutDate)
	if err != nil {
		return false, err
	}

	room, err := s.loadRoom(ctx, req.Room)
	if err != nil {
		return false, err
	}
	if !room.IsAvailable {
		return false, nil
	}

	overlapping, err := s.repo.CountOverlapping(ctx, room.ID, checkIn, checkOut)
	if err != nil {
		s.cfg.Log.Error("Failed to check availability",
			"room", room.ID,
			"check_in", checkIn,
			"check_out", checkOut,
			"error", err,
		)
		return false, apperrors.Internal("Failed to check availability", err)
	}

	return overlapping == 0, nil
}
