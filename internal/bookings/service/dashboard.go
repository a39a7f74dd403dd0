package service

import (
	"context"
	"errors"
	bookingserrors "staybook/internal/bookings/errors"
	"staybook/internal/bookings/pricing"
	apperrors "staybook/pkg/errors"
	"staybook/pkg/model"
)

func (s *bookingService) HotelDashboard(ctx context.Context, ownerID string) (*model.HotelDashboard, error) {
	hotel, err := s.catalog.FindHotelByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrHotelNotFound) {
			return nil, apperrors.NotFound("Hotel").WithCode(apperrors.CodeNoHotelFound)
		}
		s.cfg.Log.Error("Failed to resolve owner hotel",
			"owner", ownerID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to load dashboard", err)
	}

	bookings, err := s.repo.FindByHotel(ctx, hotel.ID)
	if err != nil {
		s.cfg.Log.Error("Failed to get hotel bookings",
			"hotel", hotel.ID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to load dashboard", err)
	}

	details, err := s.populate(ctx, bookings)
	if err != nil {
		s.cfg.Log.Error("Failed to populate hotel bookings",
			"hotel", hotel.ID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to load dashboard", err)
	}
	if err := s.attachGuests(ctx, details); err != nil {
		s.cfg.Log.Error("Failed to resolve booking guests",
			"hotel", hotel.ID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to load dashboard", err)
	}

	return &model.HotelDashboard{
		TotalBookings: len(bookings),
		TotalRevenue:  totalRevenue(bookings, s.cfg.RevenueIncludesCancelled),
		Bookings:      details,
	}, nil
}

// attachGuests resolves every distinct guest with a single lookup. Bookings
// of users that no longer exist keep a nil Guest.
func (s *bookingService) attachGuests(ctx context.Context, details []*model.BookingDetails) error {
	if len(details) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(details))
	ids := make([]string, 0, len(details))
	for _, d := range details {
		if _, ok := seen[d.User]; !ok {
			seen[d.User] = struct{}{}
			ids = append(ids, d.User)
		}
	}

	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	guests := make(map[string]*model.Guest, len(users))
	for _, u := range users {
		guests[u.ID] = &model.Guest{ID: u.ID, Username: u.Username, Email: u.Email}
	}
	for _, d := range details {
		d.Guest = guests[d.User]
	}
	return nil
}

// totalRevenue sums booking prices. Cancelled bookings only count when
// includeCancelled is set.
func totalRevenue(bookings []*model.Booking, includeCancelled bool) float64 {
	var total float64
	for _, b := range bookings {
		if includeCancelled || model.IsActiveStatus(b.Status) {
			total += b.TotalPrice
		}
	}
	return pricing.RoundCents(total)
}
