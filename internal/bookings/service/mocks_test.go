package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	bookingserrors "staybook/internal/bookings/errors"
	"staybook/internal/bookings/pricing"
	"staybook/internal/bookings/validator"
	"staybook/pkg/config"
	mongotx "staybook/pkg/db/mongo"
	"staybook/pkg/logger"
	"staybook/pkg/model"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ────────────────────────────────────────────────
// In-memory booking store with the same overlap semantics as the Mongo query
// ────────────────────────────────────────────────

type fakeBookingRepository struct {
	mu              sync.Mutex
	bookings        map[string]*model.Booking
	sameDayTurnover bool
	inserted        int
	seq             int

	countDelay time.Duration
	insertErr  error
	findErr    error

	// txRuns > 1 replays the callback like the driver does after a
	// transient error; writes of every attempt but the last are rolled back
	txRuns int
}

func newFakeBookingRepository() *fakeBookingRepository {
	return &fakeBookingRepository{bookings: make(map[string]*model.Booking)}
}

func (r *fakeBookingRepository) add(b *model.Booking) *model.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b.ID == "" {
		b.ID = primitive.NewObjectID().Hex()
	}
	r.seq++
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(r.seq) * time.Minute)
	}
	r.bookings[b.ID] = b
	return b
}

func (r *fakeBookingRepository) Insert(ctx context.Context, booking *model.Booking) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	if booking.ID != "" {
		return fmt.Errorf("document failed validation: _id %q is not an objectId", booking.ID)
	}
	r.add(booking)
	r.mu.Lock()
	r.inserted++
	r.mu.Unlock()
	return nil
}

func (r *fakeBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrNotFound, id)
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBookingRepository) filter(match func(*model.Booking) bool) []*model.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.Booking{}
	for _, b := range r.bookings {
		if match(b) {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *fakeBookingRepository) FindByUser(ctx context.Context, userID string) ([]*model.Booking, error) {
	return r.filter(func(b *model.Booking) bool { return b.User == userID }), nil
}

func (r *fakeBookingRepository) FindByHotel(ctx context.Context, hotelID string) ([]*model.Booking, error) {
	return r.filter(func(b *model.Booking) bool { return b.Hotel == hotelID }), nil
}

func (r *fakeBookingRepository) CountOverlapping(ctx context.Context, roomID string, checkIn, checkOut time.Time) (int64, error) {
	// widen the check-then-insert window so races would surface
	if r.countDelay > 0 {
		time.Sleep(r.countDelay)
	}
	matches := r.filter(func(b *model.Booking) bool {
		return b.Room == roomID &&
			model.IsActiveStatus(b.Status) &&
			model.Overlaps(b.CheckInDate, b.CheckOutDate, checkIn, checkOut, r.sameDayTurnover)
	})
	return int64(len(matches)), nil
}

func (r *fakeBookingRepository) CancelIfPending(ctx context.Context, id, userID string) (*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok || b.User != userID || b.Status != model.BookingStatusPending {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrNotPending, id)
	}
	b.Status = model.BookingStatusCancelled
	cp := *b
	return &cp, nil
}

func (r *fakeBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	for attempt := 1; attempt < r.txRuns; attempt++ {
		r.mu.Lock()
		snapshot := make(map[string]*model.Booking, len(r.bookings))
		for id, b := range r.bookings {
			snapshot[id] = b
		}
		r.mu.Unlock()

		if err := fn(mongo.NewSessionContext(ctx, nil)); err != nil {
			return err
		}

		r.mu.Lock()
		r.bookings = snapshot
		r.mu.Unlock()
	}
	return fn(mongo.NewSessionContext(ctx, nil))
}

type fakeLockRepository struct {
	mu       sync.Mutex
	locks    map[string]*model.BookingLock
	acquired int
	released int
}

func newFakeLockRepository() *fakeLockRepository {
	return &fakeLockRepository{locks: make(map[string]*model.BookingLock)}
}

func (r *fakeLockRepository) Acquire(ctx context.Context, lock *model.BookingLock) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, held := r.locks[lock.ID]; held {
		return fmt.Errorf("%w: %s", bookingserrors.ErrLockHeld, lock.ID)
	}
	cp := *lock
	r.locks[lock.ID] = &cp
	r.acquired++
	return nil
}

func (r *fakeLockRepository) ReleaseExpired(ctx context.Context, key string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.locks[key]; ok && l.ExpiresAt.Before(now) {
		delete(r.locks, key)
		return true, nil
	}
	return false, nil
}

func (r *fakeLockRepository) Release(ctx context.Context, key, holder string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.locks[key]; ok && l.Holder == holder {
		delete(r.locks, key)
		r.released++
	}
	return nil
}

// ────────────────────────────────────────────────
// Catalog, users and publisher mocks
// ────────────────────────────────────────────────

type mockCatalog struct {
	rooms  map[string]*model.Room
	hotels map[string]*model.Hotel

	findRoomFunc func(ctx context.Context, id string) (*model.Room, error)
}

func (m *mockCatalog) FindRoom(ctx context.Context, id string) (*model.Room, error) {
	if m.findRoomFunc != nil {
		return m.findRoomFunc(ctx, id)
	}
	if r, ok := m.rooms[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, fmt.Errorf("%w: %s", bookingserrors.ErrRoomNotFound, id)
}

func (m *mockCatalog) FindHotel(ctx context.Context, id string) (*model.Hotel, error) {
	if h, ok := m.hotels[id]; ok {
		return h, nil
	}
	return nil, fmt.Errorf("%w: %s", bookingserrors.ErrHotelNotFound, id)
}

func (m *mockCatalog) FindHotelByOwner(ctx context.Context, ownerID string) (*model.Hotel, error) {
	for _, h := range m.hotels {
		if h.Owner == ownerID {
			return h, nil
		}
	}
	return nil, fmt.Errorf("%w: owner %s", bookingserrors.ErrHotelNotFound, ownerID)
}

func (m *mockCatalog) FindRoomsByIDs(ctx context.Context, ids []string) ([]*model.Room, error) {
	var out []*model.Room
	for _, id := range ids {
		if r, ok := m.rooms[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockCatalog) FindHotelsByIDs(ctx context.Context, ids []string) ([]*model.Hotel, error) {
	var out []*model.Hotel
	for _, id := range ids {
		if h, ok := m.hotels[id]; ok {
			out = append(out, h)
		}
	}
	return out, nil
}

type mockUsers struct {
	users        map[string]*model.User
	batchCalls   [][]string
	findByIDsErr error
}

func (m *mockUsers) FindByIDs(ctx context.Context, ids []string) ([]*model.User, error) {
	m.batchCalls = append(m.batchCalls, ids)
	if m.findByIDsErr != nil {
		return nil, m.findByIDsErr
	}
	found := []*model.User{}
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			found = append(found, u)
		}
	}
	return found, nil
}

func (m *mockUsers) FindByID(ctx context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user %s not found", id)
}

type mockPublisher struct {
	events      chan *model.BookingEvent
	publishFunc func(ctx context.Context, event *model.BookingEvent) error
}

func newMockPublisher() *mockPublisher {
	return &mockPublisher{events: make(chan *model.BookingEvent, 16)}
}

func (m *mockPublisher) Publish(ctx context.Context, event *model.BookingEvent) error {
	if m.publishFunc != nil {
		if err := m.publishFunc(ctx, event); err != nil {
			return err
		}
	}
	m.events <- event
	return nil
}

// ────────────────────────────────────────────────
// Fixture
// ────────────────────────────────────────────────

const (
	testRoomID    = "665f1f77bcf86cd799439011"
	testHotelID   = "665f1f77bcf86cd799439022"
	testUserID    = "user_guest"
	testOwnerID   = "user_owner"
	otherRoomID   = "665f1f77bcf86cd799439033"
	missingRoomID = "665f1f77bcf86cd799439099"
)

var testNow = time.Date(2030, 5, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	svc       *bookingService
	repo      *fakeBookingRepository
	locks     *fakeLockRepository
	catalog   *mockCatalog
	users     *mockUsers
	publisher *mockPublisher
	cfg       *config.Config
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Output:  io.Discard,
		Service: "test",
	})
	cfg := &config.Config{
		Log:                 log,
		ReadTimeout:         5 * time.Second,
		WriteTimeout:        5 * time.Second,
		CancellationNotice:  24 * time.Hour,
		LockTTL:             10 * time.Second,
		LockRetryAttempts:   5,
		LockRetryBackoff:    time.Millisecond,
		NotificationTimeout: time.Second,
		Currency:            "USD",
	}

	table := pricing.NewTable([]model.ExtraRate{
		{Code: "breakfast", Amount: 25, Per: model.ExtraPerNight},
		{Code: "transfer", Amount: 45, Per: model.ExtraPerStay},
		{Code: "spa", Amount: 30, Per: model.ExtraPerNight},
	})

	catalog := &mockCatalog{
		rooms: map[string]*model.Room{
			testRoomID:  {ID: testRoomID, Hotel: testHotelID, RoomType: "Double Bed", PricePerNight: 120, IsAvailable: true},
			otherRoomID: {ID: otherRoomID, Hotel: testHotelID, RoomType: "Suite", PricePerNight: 300, IsAvailable: false},
		},
		hotels: map[string]*model.Hotel{
			testHotelID: {ID: testHotelID, Name: "Grand Budapest", City: "Zubrowka", Owner: testOwnerID},
		},
	}
	users := &mockUsers{users: map[string]*model.User{
		testUserID: {ID: testUserID, Username: "Ada", Email: "ada@example.com", Role: model.RoleUser},
	}}

	repo := newFakeBookingRepository()
	locks := newFakeLockRepository()
	publisher := newMockPublisher()

	svc := NewBookingService(repo, locks, catalog, users, publisher,
		validator.NewBookingValidator(log, table), table, cfg).(*bookingService)
	svc.now = func() time.Time { return testNow }

	return &fixture{
		svc:       svc,
		repo:      repo,
		locks:     locks,
		catalog:   catalog,
		users:     users,
		publisher: publisher,
		cfg:       cfg,
	}
}

func bookingRequest(in, out string) *model.CreateBookingRequest {
	return &model.CreateBookingRequest{
		Room:         testRoomID,
		CheckInDate:  in,
		CheckOutDate: out,
		Guests:       2,
	}
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func (f *fixture) waitEvent(t *testing.T) *model.BookingEvent {
	t.Helper()
	select {
	case e := <-f.publisher.events:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for booking event")
		return nil
	}
}
