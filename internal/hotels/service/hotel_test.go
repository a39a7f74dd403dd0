package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	hotelserrors "staybook/internal/hotels/errors"
	"staybook/internal/hotels/validator"
	"staybook/pkg/config"
	mongotx "staybook/pkg/db/mongo"
	apperrors "staybook/pkg/errors"
	"staybook/pkg/logger"
	"staybook/pkg/model"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// ────────────────────────────────────────────────
// Mock repository for testing
// ────────────────────────────────────────────────

type mockHotelRepository struct {
	createFunc      func(ctx context.Context, hotel *model.Hotel) error
	findByOwnerFunc func(ctx context.Context, ownerID string) (*model.Hotel, error)
	findByIDsFunc   func(ctx context.Context, ids []string) ([]*model.Hotel, error)
	txRuns          int
	committed       bool
}

func (m *mockHotelRepository) Create(ctx context.Context, hotel *model.Hotel) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, hotel)
	}
	hotel.ID = "665f1f77bcf86cd799439011"
	return nil
}

func (m *mockHotelRepository) FindByID(ctx context.Context, id string) (*model.Hotel, error) {
	return nil, fmt.Errorf("%w: %s", hotelserrors.ErrNotFound, id)
}

func (m *mockHotelRepository) FindByOwner(ctx context.Context, ownerID string) (*model.Hotel, error) {
	if m.findByOwnerFunc != nil {
		return m.findByOwnerFunc(ctx, ownerID)
	}
	return nil, fmt.Errorf("%w: owner %s", hotelserrors.ErrNotFound, ownerID)
}

func (m *mockHotelRepository) FindByIDs(ctx context.Context, ids []string) ([]*model.Hotel, error) {
	if m.findByIDsFunc != nil {
		return m.findByIDsFunc(ctx, ids)
	}
	return []*model.Hotel{}, nil
}

func (m *mockHotelRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	runs := max(m.txRuns, 1)
	for i := 0; i < runs; i++ {
		if err := fn(mongo.NewSessionContext(ctx, nil)); err != nil {
			return err
		}
	}
	m.committed = true
	return nil
}

type mockRoleSetter struct {
	setRoleFunc func(ctx context.Context, id, role string) error
	calls       []string
}

func (m *mockRoleSetter) SetRole(ctx context.Context, id, role string) error {
	m.calls = append(m.calls, id+":"+role)
	if m.setRoleFunc != nil {
		return m.setRoleFunc(ctx, id, role)
	}
	return nil
}

func newTestService(repo *mockHotelRepository, roles *mockRoleSetter) HotelService {
	log := logger.New(logger.Config{Level: "error", Output: io.Discard, Service: "test"})
	cfg := &config.Config{
		Log:          log,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	return NewHotelService(repo, roles, validator.NewHotelValidator(log), cfg)
}

func validRequest() *model.RegisterHotelRequest {
	return &model.RegisterHotelRequest{
		Name:    "  Grand   Plaza ",
		Address: "1 Main Street",
		Contact: "+1 650-253-0000",
		City:    "new york",
	}
}

// ────────────────────────────────────────────────
// Tests for Register()
// ────────────────────────────────────────────────

func TestRegister_Success(t *testing.T) {
	repo := &mockHotelRepository{}
	roles := &mockRoleSetter{}
	svc := newTestService(repo, roles)
	owner := &model.User{ID: "user_1", Role: model.RoleUser}

	hotel, err := svc.Register(context.Background(), owner, validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if hotel.Name != "Grand Plaza" || hotel.City != "New York" || hotel.Contact != "+16502530000" {
		t.Errorf("hotel not sanitized: %+v", hotel)
	}
	if hotel.Owner != "user_1" || hotel.ID == "" {
		t.Errorf("unexpected hotel: %+v", hotel)
	}
	if len(roles.calls) != 1 || roles.calls[0] != "user_1:"+model.RoleHotelOwner {
		t.Errorf("role calls = %v", roles.calls)
	}
	if !repo.committed {
		t.Error("registration must run in a transaction")
	}
	if owner.Role != model.RoleHotelOwner {
		t.Errorf("owner role = %s", owner.Role)
	}
}

func TestRegister_RetriedTransactionInsertsFreshID(t *testing.T) {
	var seen []string
	repo := &mockHotelRepository{
		txRuns: 2,
		createFunc: func(ctx context.Context, hotel *model.Hotel) error {
			seen = append(seen, hotel.ID)
			if hotel.ID != "" {
				return fmt.Errorf("document failed validation: _id %q is not an objectId", hotel.ID)
			}
			hotel.ID = fmt.Sprintf("665f1f77bcf86cd79943901%d", len(seen))
			return nil
		},
	}
	roles := &mockRoleSetter{}
	svc := newTestService(repo, roles)

	hotel, err := svc.Register(context.Background(), &model.User{ID: "user_1", Role: model.RoleUser}, validRequest())
	if err != nil {
		t.Fatalf("retried transaction must succeed, got %v", err)
	}
	if len(seen) != 2 || seen[0] != "" || seen[1] != "" {
		t.Errorf("each attempt must insert without an id, saw %q", seen)
	}
	if hotel.ID != "665f1f77bcf86cd799439012" {
		t.Errorf("hotel id = %s, want the id of the committed attempt", hotel.ID)
	}
}

func TestRegister_Failures(t *testing.T) {
	tests := []struct {
		name     string
		req      *model.RegisterHotelRequest
		repo     *mockHotelRepository
		roles    *mockRoleSetter
		wantKind apperrors.Kind
		wantCode string
	}{
		{
			name:     "invalid contact",
			req:      &model.RegisterHotelRequest{Name: "Grand Plaza", Address: "1 Main Street", Contact: "12", City: "Paris"},
			repo:     &mockHotelRepository{},
			roles:    &mockRoleSetter{},
			wantKind: apperrors.KindValidation,
			wantCode: apperrors.CodeValidation,
		},
		{
			name: "owner already has a hotel",
			req:  validRequest(),
			repo: &mockHotelRepository{
				findByOwnerFunc: func(ctx context.Context, ownerID string) (*model.Hotel, error) {
					return &model.Hotel{ID: "h1", Owner: ownerID}, nil
				},
			},
			roles:    &mockRoleSetter{},
			wantKind: apperrors.KindConflict,
			wantCode: apperrors.CodeHotelAlreadyRegistered,
		},
		{
			name: "concurrent registration loses on the unique index",
			req:  validRequest(),
			repo: &mockHotelRepository{
				createFunc: func(ctx context.Context, hotel *model.Hotel) error {
					return fmt.Errorf("%w: %s", hotelserrors.ErrOwnerTaken, hotel.Owner)
				},
			},
			roles:    &mockRoleSetter{},
			wantKind: apperrors.KindConflict,
			wantCode: apperrors.CodeHotelAlreadyRegistered,
		},
		{
			name: "role update fails",
			req:  validRequest(),
			repo: &mockHotelRepository{},
			roles: &mockRoleSetter{
				setRoleFunc: func(ctx context.Context, id, role string) error {
					return errors.New("write conflict")
				},
			},
			wantKind: apperrors.KindDependency,
			wantCode: apperrors.CodeInternal,
		},
		{
			name: "owner lookup fails",
			req:  validRequest(),
			repo: &mockHotelRepository{
				findByOwnerFunc: func(ctx context.Context, ownerID string) (*model.Hotel, error) {
					return nil, errors.New("connection reset")
				},
			},
			roles:    &mockRoleSetter{},
			wantKind: apperrors.KindDependency,
			wantCode: apperrors.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(tt.repo, tt.roles)
			owner := &model.User{ID: "user_1", Role: model.RoleUser}

			_, err := svc.Register(context.Background(), owner, tt.req)
			if !apperrors.IsKind(err, tt.wantKind) || !apperrors.HasCode(err, tt.wantCode) {
				t.Fatalf("expected %s/%s, got %v", tt.wantKind, tt.wantCode, err)
			}
			if owner.Role != model.RoleUser {
				t.Errorf("owner promoted despite failure")
			}
			if tt.repo.committed {
				t.Errorf("transaction committed despite failure")
			}
		})
	}
}

// ────────────────────────────────────────────────
// Tests for lookups
// ────────────────────────────────────────────────

func TestGetByOwner(t *testing.T) {
	svc := newTestService(&mockHotelRepository{}, &mockRoleSetter{})

	_, err := svc.GetByOwner(context.Background(), "user_1")
	if !apperrors.HasCode(err, apperrors.CodeNoHotelFound) {
		t.Fatalf("expected NO_HOTEL_FOUND, got %v", err)
	}
}

func TestGetByIDs(t *testing.T) {
	repo := &mockHotelRepository{
		findByIDsFunc: func(ctx context.Context, ids []string) ([]*model.Hotel, error) {
			return []*model.Hotel{{ID: "h1", Name: "One"}, {ID: "h2", Name: "Two"}}, nil
		},
	}
	svc := newTestService(repo, &mockRoleSetter{})

	got, err := svc.GetByIDs(context.Background(), []string{"h1", "h2", "h1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got["h2"].Name != "Two" {
		t.Errorf("unexpected hotels: %v", got)
	}
}
