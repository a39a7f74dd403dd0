package service

import (
	"context"
	"errors"
	apperrors "staybook/pkg/errors"
	"staybook/pkg/model"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ────────────────────────────────────────────────
// Tests for Create()
// ────────────────────────────────────────────────

func TestCreate_Success(t *testing.T) {
	f := newFixture(t)
	req := bookingRequest("2030-06-01", "2030-06-04")
	req.Extras = []string{"Breakfast"}

	booking, err := f.svc.Create(context.Background(), testUserID, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if booking.ID == "" {
		t.Error("expected booking ID to be set")
	}
	if booking.Status != model.BookingStatusPending || booking.IsPaid {
		t.Errorf("new booking must be pending and unpaid, got %s paid=%v", booking.Status, booking.IsPaid)
	}
	if booking.Nights != 3 {
		t.Errorf("nights = %d, want 3", booking.Nights)
	}
	// 3 * 120 + 3 * 25
	if booking.TotalPrice != 435 {
		t.Errorf("total = %v, want 435", booking.TotalPrice)
	}
	if booking.Hotel != testHotelID || booking.User != testUserID {
		t.Errorf("unexpected references: hotel=%s user=%s", booking.Hotel, booking.User)
	}
	if booking.PaymentMethod != model.PaymentMethodCard {
		t.Errorf("payment method = %s, want default card", booking.PaymentMethod)
	}
	if len(booking.Extras) != 1 || booking.Extras[0] != "breakfast" {
		t.Errorf("extras = %v, want normalized [breakfast]", booking.Extras)
	}

	if len(f.locks.locks) != 0 || f.locks.released != 1 {
		t.Errorf("lock must be released, held=%d released=%d", len(f.locks.locks), f.locks.released)
	}

	event := f.waitEvent(t)
	if event.Type != model.EventBookingCreated || event.BookingID != booking.ID {
		t.Errorf("unexpected event: %+v", event)
	}
	if event.UserEmail != "ada@example.com" || event.HotelName != "Grand Budapest" || event.Currency != "USD" {
		t.Errorf("event not populated: %+v", event)
	}
}

func TestCreate_PricingScenarios(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		out    string
		extras []string
		want   float64
	}{
		{"room only one night", "2030-06-01", "2030-06-02", nil, 120},
		{"transfer is flat", "2030-06-01", "2030-06-03", []string{"transfer"}, 285},
		{"all extras", "2030-06-01", "2030-06-03", []string{"breakfast", "transfer", "spa"}, 395},
		{"partial day rounds up", "2030-06-01T00:00:00Z", "2030-06-02T06:00:00Z", nil, 240},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			req := bookingRequest(tt.in, tt.out)
			req.Extras = tt.extras

			booking, err := f.svc.Create(context.Background(), testUserID, req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if booking.TotalPrice != tt.want {
				t.Errorf("total = %v, want %v", booking.TotalPrice, tt.want)
			}
			f.svc.Drain()
		})
	}
}

func TestCreate_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		req      func() *model.CreateBookingRequest
		wantKind apperrors.Kind
		wantCode string
	}{
		{
			name:     "check out before check in",
			req:      func() *model.CreateBookingRequest { return bookingRequest("2030-06-04", "2030-06-01") },
			wantKind: apperrors.KindValidation,
			wantCode: apperrors.CodeInvalidDateRange,
		},
		{
			name:     "same day",
			req:      func() *model.CreateBookingRequest { return bookingRequest("2030-06-04", "2030-06-04") },
			wantKind: apperrors.KindValidation,
			wantCode: apperrors.CodeInvalidDateRange,
		},
		{
			name:     "malformed date",
			req:      func() *model.CreateBookingRequest { return bookingRequest("06/01/2030", "2030-06-04") },
			wantKind: apperrors.KindValidation,
			wantCode: apperrors.CodeValidation,
		},
		{
			name:     "check in in the past",
			req:      func() *model.CreateBookingRequest { return bookingRequest("2030-04-30", "2030-05-03") },
			wantKind: apperrors.KindValidation,
			wantCode: apperrors.CodeValidation,
		},
		{
			name: "unknown extra",
			req: func() *model.CreateBookingRequest {
				r := bookingRequest("2030-06-01", "2030-06-02")
				r.Extras = []string{"jacuzzi"}
				return r
			},
			wantKind: apperrors.KindValidation,
			wantCode: apperrors.CodeValidation,
		},
		{
			name: "extra listed twice in different case",
			req: func() *model.CreateBookingRequest {
				r := bookingRequest("2030-06-01", "2030-06-02")
				r.Extras = []string{"Breakfast", " breakfast"}
				return r
			},
			wantKind: apperrors.KindValidation,
			wantCode: apperrors.CodeValidation,
		},
		{
			name: "zero guests",
			req: func() *model.CreateBookingRequest {
				r := bookingRequest("2030-06-01", "2030-06-02")
				r.Guests = 0
				return r
			},
			wantKind: apperrors.KindValidation,
			wantCode: apperrors.CodeValidation,
		},
		{
			name: "unknown room",
			req: func() *model.CreateBookingRequest {
				r := bookingRequest("2030-06-01", "2030-06-02")
				r.Room = missingRoomID
				return r
			},
			wantKind: apperrors.KindNotFound,
			wantCode: apperrors.CodeRoomNotFound,
		},
		{
			name: "room switched off by owner",
			req: func() *model.CreateBookingRequest {
				r := bookingRequest("2030-06-01", "2030-06-02")
				r.Room = otherRoomID
				return r
			},
			wantKind: apperrors.KindConflict,
			wantCode: apperrors.CodeRoomUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.svc.Create(context.Background(), testUserID, tt.req())
			if err == nil {
				t.Fatal("expected error")
			}
			if !apperrors.IsKind(err, tt.wantKind) {
				t.Errorf("kind = %v, want %v (%v)", apperrors.AsAppError(err).Kind, tt.wantKind, err)
			}
			if !apperrors.HasCode(err, tt.wantCode) {
				t.Errorf("code = %s, want %s", apperrors.AsAppError(err).Code, tt.wantCode)
			}
			if f.repo.inserted != 0 {
				t.Error("nothing should be persisted")
			}
		})
	}
}

func TestCreate_OverlapIsConflict(t *testing.T) {
	f := newFixture(t)
	f.repo.add(&model.Booking{
		Room: testRoomID, Hotel: testHotelID, User: "someone",
		CheckInDate: date("2030-06-01"), CheckOutDate: date("2030-06-05"),
		Status: model.BookingStatusPending,
	})

	_, err := f.svc.Create(context.Background(), testUserID, bookingRequest("2030-06-04", "2030-06-06"))
	if !apperrors.IsKind(err, apperrors.KindConflict) || !apperrors.HasCode(err, apperrors.CodeRoomUnavailable) {
		t.Fatalf("expected ROOM_UNAVAILABLE conflict, got %v", err)
	}
	if len(f.locks.locks) != 0 {
		t.Error("lock must be released after a rejected booking")
	}
}

func TestCreate_CancelledBookingDoesNotBlock(t *testing.T) {
	f := newFixture(t)
	f.repo.add(&model.Booking{
		Room: testRoomID, Hotel: testHotelID, User: "someone",
		CheckInDate: date("2030-06-01"), CheckOutDate: date("2030-06-05"),
		Status: model.BookingStatusCancelled,
	})

	if _, err := f.svc.Create(context.Background(), testUserID, bookingRequest("2030-06-02", "2030-06-04")); err != nil {
		t.Fatalf("cancelled booking must not block, got %v", err)
	}
	f.svc.Drain()
}

func TestCreate_ConcurrentRequestsOnlyOneWins(t *testing.T) {
	f := newFixture(t)
	f.repo.countDelay = 5 * time.Millisecond

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
		others    []error
	)

	start := make(chan struct{})
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.svc.Create(context.Background(), testUserID, bookingRequest("2030-06-01", "2030-06-04"))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case apperrors.IsKind(err, apperrors.KindConflict):
				conflicts++
			default:
				others = append(others, err)
			}
		}()
	}
	close(start)
	wg.Wait()
	f.svc.Drain()

	if successes != 1 {
		t.Errorf("expected exactly one booking, got %d", successes)
	}
	if conflicts != attempts-1 {
		t.Errorf("expected %d conflicts, got %d", attempts-1, conflicts)
	}
	if len(others) > 0 {
		t.Errorf("unexpected errors: %v", others)
	}
	if f.repo.inserted != 1 {
		t.Errorf("store holds %d bookings, want 1", f.repo.inserted)
	}
}

func TestCreate_LockContentionExhaustsRetries(t *testing.T) {
	f := newFixture(t)
	f.cfg.LockRetryAttempts = 2
	f.locks.locks[model.RoomLockKey(testRoomID)] = &model.BookingLock{
		ID:        model.RoomLockKey(testRoomID),
		Holder:    "other",
		ExpiresAt: testNow.Add(time.Minute),
	}

	_, err := f.svc.Create(context.Background(), testUserID, bookingRequest("2030-06-01", "2030-06-02"))
	if !apperrors.IsKind(err, apperrors.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if f.locks.locks[model.RoomLockKey(testRoomID)].Holder != "other" {
		t.Error("foreign lock must not be released")
	}
}

func TestCreate_ReclaimsExpiredLock(t *testing.T) {
	f := newFixture(t)
	f.locks.locks[model.RoomLockKey(testRoomID)] = &model.BookingLock{
		ID:        model.RoomLockKey(testRoomID),
		Holder:    "crashed",
		ExpiresAt: testNow.Add(-time.Second),
	}

	if _, err := f.svc.Create(context.Background(), testUserID, bookingRequest("2030-06-01", "2030-06-02")); err != nil {
		t.Fatalf("expired lock should be reclaimed, got %v", err)
	}
	f.svc.Drain()
}

func TestCreate_PersistenceFailureIsInternal(t *testing.T) {
	f := newFixture(t)
	f.repo.insertErr = errors.New("write concern timeout")

	_, err := f.svc.Create(context.Background(), testUserID, bookingRequest("2030-06-01", "2030-06-02"))
	if !apperrors.IsKind(err, apperrors.KindDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if len(f.locks.locks) != 0 {
		t.Error("lock must be released after a failed insert")
	}
}

func TestCreate_RetriedTransactionInsertsFreshID(t *testing.T) {
	f := newFixture(t)
	f.repo.txRuns = 2

	booking, err := f.svc.Create(context.Background(), testUserID, bookingRequest("2030-06-01", "2030-06-03"))
	if err != nil {
		t.Fatalf("retried transaction must succeed, got %v", err)
	}
	if _, err := primitive.ObjectIDFromHex(booking.ID); err != nil {
		t.Errorf("booking id %q is not an ObjectID hex", booking.ID)
	}
	if len(f.repo.bookings) != 1 {
		t.Fatalf("stored bookings = %d, want 1 after rollback", len(f.repo.bookings))
	}
	if _, ok := f.repo.bookings[booking.ID]; !ok {
		t.Error("returned id must match the committed attempt")
	}
	if f.repo.inserted != 2 {
		t.Errorf("inserts = %d, want one per attempt", f.repo.inserted)
	}
	f.waitEvent(t)
}

func TestCreate_NotificationFailureDoesNotFailBooking(t *testing.T) {
	f := newFixture(t)
	f.publisher.publishFunc = func(ctx context.Context, event *model.BookingEvent) error {
		return errors.New("broker down")
	}

	booking, err := f.svc.Create(context.Background(), testUserID, bookingRequest("2030-06-01", "2030-06-02"))
	if err != nil {
		t.Fatalf("notification failures must not propagate, got %v", err)
	}
	f.svc.Drain()
	if booking.ID == "" {
		t.Error("booking should be persisted")
	}
}

func TestCreate_NotificationOutlivesRequestContext(t *testing.T) {
	f := newFixture(t)
	release := make(chan struct{})
	f.publisher.publishFunc = func(ctx context.Context, event *model.BookingEvent) error {
		<-release
		return ctx.Err()
	}

	ctx, cancel := context.WithCancel(context.Background())
	if _, err := f.svc.Create(ctx, testUserID, bookingRequest("2030-06-01", "2030-06-02")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cancel()
	close(release)

	if e := f.waitEvent(t); e.Type != model.EventBookingCreated {
		t.Errorf("unexpected event %s", e.Type)
	}
}

// ────────────────────────────────────────────────
// Tests for CheckAvailability()
// ────────────────────────────────────────────────

func TestCheckAvailability(t *testing.T) {
	tests := []struct {
		name            string
		existing        *model.Booking
		sameDayTurnover bool
		room            string
		in, out         string
		want            bool
		wantCode        string
	}{
		{name: "empty room", room: testRoomID, in: "2030-06-01", out: "2030-06-03", want: true},
		{
			name:     "overlapping pending booking",
			existing: &model.Booking{CheckInDate: date("2030-06-01"), CheckOutDate: date("2030-06-05"), Status: model.BookingStatusPending},
			room:     testRoomID, in: "2030-06-04", out: "2030-06-06", want: false,
		},
		{
			name:     "back to back collides by default",
			existing: &model.Booking{CheckInDate: date("2030-06-01"), CheckOutDate: date("2030-06-04"), Status: model.BookingStatusConfirmed},
			room:     testRoomID, in: "2030-06-04", out: "2030-06-06", want: false,
		},
		{
			name:            "back to back allowed with turnover",
			existing:        &model.Booking{CheckInDate: date("2030-06-01"), CheckOutDate: date("2030-06-04"), Status: model.BookingStatusConfirmed},
			sameDayTurnover: true,
			room:            testRoomID, in: "2030-06-04", out: "2030-06-06", want: true,
		},
		{
			name:     "cancelled booking ignored",
			existing: &model.Booking{CheckInDate: date("2030-06-01"), CheckOutDate: date("2030-06-05"), Status: model.BookingStatusCancelled},
			room:     testRoomID, in: "2030-06-02", out: "2030-06-03", want: true,
		},
		{name: "room switched off", room: otherRoomID, in: "2030-06-01", out: "2030-06-03", want: false},
		{name: "unknown room", room: missingRoomID, in: "2030-06-01", out: "2030-06-03", wantCode: apperrors.CodeRoomNotFound},
		{name: "reversed range", room: testRoomID, in: "2030-06-03", out: "2030-06-01", wantCode: apperrors.CodeInvalidDateRange},
		{name: "missing date", room: testRoomID, in: "", out: "2030-06-01", wantCode: apperrors.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.repo.sameDayTurnover = tt.sameDayTurnover
			if tt.existing != nil {
				tt.existing.Room = testRoomID
				tt.existing.Hotel = testHotelID
				f.repo.add(tt.existing)
			}

			req := &model.AvailabilityRequest{Room: tt.room, CheckInDate: tt.in, CheckOutDate: tt.out}
			got, err := f.svc.CheckAvailability(context.Background(), req)

			if tt.wantCode != "" {
				if !apperrors.HasCode(err, tt.wantCode) {
					t.Fatalf("expected %s, got %v", tt.wantCode, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("CheckAvailability() = %v, want %v", got, tt.want)
			}

			// no writes in between, so the answer is stable
			again, _ := f.svc.CheckAvailability(context.Background(), req)
			if again != got {
				t.Error("availability is not idempotent")
			}
		})
	}
}

// ────────────────────────────────────────────────
// Tests for GetUserBookings()
// ────────────────────────────────────────────────

func TestGetUserBookings_NewestFirstAndPopulated(t *testing.T) {
	f := newFixture(t)
	older := f.repo.add(&model.Booking{Room: testRoomID, Hotel: testHotelID, User: testUserID, Status: model.BookingStatusPending})
	newer := f.repo.add(&model.Booking{Room: otherRoomID, Hotel: testHotelID, User: testUserID, Status: model.BookingStatusPending})
	f.repo.add(&model.Booking{Room: testRoomID, Hotel: testHotelID, User: "someone-else", Status: model.BookingStatusPending})

	got, err := f.svc.GetUserBookings(context.Background(), testUserID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 bookings, got %d", len(got))
	}
	if got[0].ID != newer.ID || got[1].ID != older.ID {
		t.Errorf("bookings not newest first: %s, %s", got[0].ID, got[1].ID)
	}
	if got[0].Room == nil || got[0].Room.RoomType != "Suite" {
		t.Errorf("room not populated: %+v", got[0].Room)
	}
	if got[1].Hotel == nil || got[1].Hotel.Name != "Grand Budapest" {
		t.Errorf("hotel not populated: %+v", got[1].Hotel)
	}
}

func TestGetUserBookings_Empty(t *testing.T) {
	f := newFixture(t)

	got, err := f.svc.GetUserBookings(context.Background(), testUserID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", got)
	}
}
