package service

import (
	"context"
	"fmt"
	"staybook/pkg/model"
)

// notifyAsync publishes the event on a context detached from the request so
// the response never waits for delivery. Failures are logged only.
func (s *bookingService) notifyAsync(ctx context.Context, eventType string, booking *model.Booking, room *model.Room) {
	if s.publisher == nil {
		return
	}

	detached := context.WithoutCancel(ctx)
	snapshot := *booking

	s.notifications.Add(1)
	go func() {
		defer s.notifications.Done()

		ctx, cancel := context.WithTimeout(detached, s.cfg.NotificationTimeout)
		defer cancel()

		event, err := s.buildEvent(ctx, eventType, &snapshot, room)
		if err != nil {
			s.cfg.Log.Error("Failed to build booking notification",
				"booking_id", snapshot.ID,
				"event_type", eventType,
				"error", err,
			)
			return
		}

		if err := s.publisher.Publish(ctx, event); err != nil {
			s.cfg.Log.Error("Failed to publish booking notification",
				"booking_id", snapshot.ID,
				"event_type", eventType,
				"error", err,
			)
			return
		}

		s.cfg.Log.Debug("Booking notification published",
			"booking_id", snapshot.ID,
			"event_type", eventType,
		)
	}()
}

func (s *bookingService) Drain() {
	s.notifications.Wait()
}

func (s *bookingService) buildEvent(ctx context.Context, eventType string, booking *model.Booking, room *model.Room) (*model.BookingEvent, error) {
	var err error
	if room == nil {
		if room, err = s.catalog.FindRoom(ctx, booking.Room); err != nil {
			return nil, fmt.Errorf("failed to load room: %w", err)
		}
	}

	hotel, err := s.catalog.FindHotel(ctx, booking.Hotel)
	if err != nil {
		return nil, fmt.Errorf("failed to load hotel: %w", err)
	}

	user, err := s.users.FindByID(ctx, booking.User)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	return &model.BookingEvent{
		Type:          eventType,
		BookingID:     booking.ID,
		UserID:        user.ID,
		UserEmail:     user.Email,
		UserName:      user.Username,
		HotelName:     hotel.Name,
		HotelAddress:  hotel.Address,
		HotelCity:     hotel.City,
		RoomType:      room.RoomType,
		CheckInDate:   booking.CheckInDate,
		CheckOutDate:  booking.CheckOutDate,
		Nights:        booking.Nights,
		Guests:        booking.Guests,
		Extras:        booking.Extras,
		PricePerNight: room.PricePerNight,
		TotalPrice:    booking.TotalPrice,
		Currency:      s.cfg.Currency,
		PaymentMethod: booking.PaymentMethod,
		Status:        booking.Status,
		OccurredAt:    s.now().UTC(),
	}, nil
}
