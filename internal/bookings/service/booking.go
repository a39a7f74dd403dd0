package service

import (
	"context"
	"errors"
	"fmt"
	bookingserrors "staybook/internal/bookings/errors"
	"staybook/internal/bookings/pricing"
	"staybook/internal/bookings/repository"
	"staybook/internal/bookings/validator"
	"staybook/pkg/config"
	apperrors "staybook/pkg/errors"
	httputil "staybook/pkg/http"
	"staybook/pkg/model"
	"staybook/pkg/validation"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// Catalog resolves the rooms and hotels bookings refer to.
type Catalog interface {
	FindRoom(ctx context.Context, id string) (*model.Room, error)
	FindHotel(ctx context.Context, id string) (*model.Hotel, error)
	FindHotelByOwner(ctx context.Context, ownerID string) (*model.Hotel, error)
	FindRoomsByIDs(ctx context.Context, ids []string) ([]*model.Room, error)
	FindHotelsByIDs(ctx context.Context, ids []string) ([]*model.Hotel, error)
}

type UserLookup interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.User, error)
}

// Publisher delivers booking events to whatever notifies the guest.
type Publisher interface {
	Publish(ctx context.Context, event *model.BookingEvent) error
}

type BookingService interface {
	CheckAvailability(ctx context.Context, req *model.AvailabilityRequest) (bool, error)
	Create(ctx context.Context, userID string, req *model.CreateBookingRequest) (*model.Booking, error)
	GetUserBookings(ctx context.Context, userID string) ([]*model.BookingDetails, error)
	Cancel(ctx context.Context, userID, bookingID string) (*model.Booking, error)
	HotelDashboard(ctx context.Context, ownerID string) (*model.HotelDashboard, error)
	Receipt(ctx context.Context, userID, bookingID string) ([]byte, error)

	// Drain blocks until in-flight notifications have finished.
	Drain()
}

type bookingService struct {
	repo      repository.BookingRepository
	locks     repository.BookingLockRepository
	catalog   Catalog
	users     UserLookup
	publisher Publisher
	validator *validator.BookingValidator
	pricing   *pricing.Table
	cfg       *config.Config

	now           func() time.Time
	notifications sync.WaitGroup
}

func NewBookingService(
	repo repository.BookingRepository,
	locks repository.BookingLockRepository,
	catalog Catalog,
	users UserLookup,
	publisher Publisher,
	validator *validator.BookingValidator,
	pricing *pricing.Table,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		locks:     locks,
		catalog:   catalog,
		users:     users,
		publisher: publisher,
		validator: validator,
		pricing:   pricing,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *bookingService) Create(ctx context.Context, userID string, req *model.CreateBookingRequest) (*model.Booking, error) {
	// canonical codes first so "Spa" and "spa" count as the same extra
	req.Extras = s.pricing.Codes(req.Extras)
	if err := s.validator.ValidateCreate(req); err != nil {
		s.cfg.Log.Warn("Booking validation failed",
			"user_id", userID,
			"room", req.Room,
			"error", err,
		)
		return nil, validationError("Booking validation failed", err)
	}

	checkIn, checkOut, nights, err := s.parseStay(req.CheckInDate, req.CheckOutDate)
	if err != nil {
		return nil, err
	}
	if checkIn.Before(startOfDay(s.now())) {
		return nil, apperrors.Validation("Check-in date cannot be in the past", map[string]any{
			"checkInDate": req.CheckInDate,
		})
	}

	room, err := s.loadRoom(ctx, req.Room)
	if err != nil {
		return nil, err
	}
	if !room.IsAvailable {
		return nil, roomUnavailable()
	}

	extras := req.Extras
	total, err := s.pricing.Quote(room.PricePerNight, nights, extras)
	if err != nil {
		return nil, apperrors.Validation("Booking validation failed", map[string]any{
			"extras": err.Error(),
		})
	}

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = model.DefaultPaymentMethod
	}

	booking := &model.Booking{
		Room:          room.ID,
		Hotel:         room.Hotel,
		User:          userID,
		CheckInDate:   checkIn,
		CheckOutDate:  checkOut,
		Nights:        nights,
		Guests:        req.Guests,
		Extras:        extras,
		TotalPrice:    total,
		Status:        model.BookingStatusPending,
		PaymentMethod: paymentMethod,
		IsPaid:        false,
	}

	release, err := s.acquireRoomLock(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		// a retried attempt must not reuse the id of the one that was rolled back
		booking.ID = ""
		overlapping, err := s.repo.CountOverlapping(sessCtx, room.ID, checkIn, checkOut)
		if err != nil {
			return fmt.Errorf("failed to check availability: %w", err)
		}
		if overlapping > 0 {
			return roomUnavailable()
		}

		if err := s.repo.Insert(sessCtx, booking); err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}
		return nil
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			s.cfg.Log.Info("Booking rejected",
				"user_id", userID,
				"room", room.ID,
				"check_in", checkIn,
				"check_out", checkOut,
				"error", err,
			)
			return nil, err
		}
		s.cfg.Log.Error("Failed to create booking",
			"user_id", userID,
			"room", room.ID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to create booking", err)
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"user_id", userID,
		"room", room.ID,
		"nights", nights,
		"total_price", total,
	)

	s.notifyAsync(ctx, model.EventBookingCreated, booking, room)

	return booking, nil
}

func (s *bookingService) GetUserBookings(ctx context.Context, userID string) ([]*model.BookingDetails, error) {
	bookings, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		s.cfg.Log.Error("Failed to get user bookings",
			"user_id", userID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}

	details, err := s.populate(ctx, bookings)
	if err != nil {
		s.cfg.Log.Error("Failed to populate user bookings",
			"user_id", userID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}
	return details, nil
}

// populate resolves rooms and hotels with one batched query each.
func (s *bookingService) populate(ctx context.Context, bookings []*model.Booking) ([]*model.BookingDetails, error) {
	details := make([]*model.BookingDetails, 0, len(bookings))
	if len(bookings) == 0 {
		return details, nil
	}

	roomIDs := make([]string, 0, len(bookings))
	hotelIDs := make([]string, 0, len(bookings))
	for _, b := range bookings {
		roomIDs = append(roomIDs, b.Room)
		hotelIDs = append(hotelIDs, b.Hotel)
	}

	rooms, err := s.catalog.FindRoomsByIDs(ctx, roomIDs)
	if err != nil {
		return nil, err
	}
	hotels, err := s.catalog.FindHotelsByIDs(ctx, hotelIDs)
	if err != nil {
		return nil, err
	}

	roomsByID := make(map[string]*model.Room, len(rooms))
	for _, r := range rooms {
		roomsByID[r.ID] = r
	}
	hotelsByID := make(map[string]*model.Hotel, len(hotels))
	for _, h := range hotels {
		hotelsByID[h.ID] = h
	}

	for _, b := range bookings {
		details = append(details, &model.BookingDetails{
			Booking: *b,
			Room:    roomsByID[b.Room],
			Hotel:   hotelsByID[b.Hotel],
		})
	}
	return details, nil
}

func (s *bookingService) loadRoom(ctx context.Context, roomID string) (*model.Room, error) {
	room, err := s.catalog.FindRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrRoomNotFound) {
			return nil, apperrors.NotFoundWithID("Room", roomID).WithCode(apperrors.CodeRoomNotFound)
		}
		s.cfg.Log.Error("Failed to load room",
			"room", roomID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to load room", err)
	}
	return room, nil
}

// parseStay parses both dates and derives the number of nights.
func (s *bookingService) parseStay(checkInRaw, checkOutRaw string) (time.Time, time.Time, int, error) {
	checkIn, err := httputil.ParseDate("checkInDate", checkInRaw)
	if err != nil {
		return time.Time{}, time.Time{}, 0, err
	}
	checkOut, err := httputil.ParseDate("checkOutDate", checkOutRaw)
	if err != nil {
		return time.Time{}, time.Time{}, 0, err
	}

	nights := pricing.Nights(checkIn, checkOut)
	if nights <= 0 {
		return time.Time{}, time.Time{}, 0, apperrors.Validation("Check-out date must be after check-in date", map[string]any{
			"checkInDate":  checkInRaw,
			"checkOutDate": checkOutRaw,
		}).WithCode(apperrors.CodeInvalidDateRange)
	}
	return checkIn, checkOut, nights, nil
}

func roomUnavailable() *apperrors.AppError {
	return apperrors.Conflict("Room is not available for the selected dates").WithCode(apperrors.CodeRoomUnavailable)
}

func validationError(message string, err error) *apperrors.AppError {
	if errs, ok := validation.AsValidationErrors(err); ok {
		return apperrors.Validation(message, errs.Details())
	}
	return apperrors.Validation(message, map[string]any{
		"error": err.Error(),
	})
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
