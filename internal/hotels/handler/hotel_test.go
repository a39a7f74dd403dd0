package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	apperrors "staybook/pkg/errors"
	"staybook/pkg/logger"
	"staybook/pkg/middleware"
	"staybook/pkg/model"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
)

type mockHotelService struct {
	registerFunc func(ctx context.Context, owner *model.User, req *model.RegisterHotelRequest) (*model.Hotel, error)
}

func (m *mockHotelService) Register(ctx context.Context, owner *model.User, req *model.RegisterHotelRequest) (*model.Hotel, error) {
	if m.registerFunc != nil {
		return m.registerFunc(ctx, owner, req)
	}
	return &model.Hotel{ID: "h1", Name: req.Name, Owner: owner.ID}, nil
}

func (m *mockHotelService) GetByOwner(ctx context.Context, ownerID string) (*model.Hotel, error) {
	return nil, apperrors.NotFound("Hotel")
}

func (m *mockHotelService) GetByIDs(ctx context.Context, ids []string) (map[string]*model.Hotel, error) {
	return map[string]*model.Hotel{}, nil
}

func newTestRouter(svc *mockHotelService, user *model.User) *httprouter.Router {
	log := logger.New(logger.Config{Level: "error", Output: io.Discard, Service: "test"})
	auth := func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			if user == nil {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			next(w, r.WithContext(middleware.WithUser(r.Context(), user)), ps)
		}
	}
	router := httprouter.New()
	NewHotelHandler(svc, auth, log).RegisterRoutes(router)
	return router
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name       string
		user       *model.User
		body       string
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "registered",
			user:       &model.User{ID: "user_1"},
			body:       `{"name":"Grand Plaza","address":"1 Main Street","contact":"+16502530000","city":"Paris"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "unauthenticated",
			body:       `{}`,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "empty body",
			user:       &model.User{ID: "user_1"},
			body:       ``,
			wantStatus: http.StatusBadRequest,
			wantCode:   apperrors.CodeInvalidInput,
		},
		{
			name:       "already registered",
			user:       &model.User{ID: "user_1"},
			body:       `{"name":"Grand Plaza","address":"1 Main Street","contact":"+16502530000","city":"Paris"}`,
			serviceErr: apperrors.Conflict("Hotel already registered").WithCode(apperrors.CodeHotelAlreadyRegistered),
			wantStatus: http.StatusConflict,
			wantCode:   apperrors.CodeHotelAlreadyRegistered,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockHotelService{}
			if tt.serviceErr != nil {
				svc.registerFunc = func(ctx context.Context, owner *model.User, req *model.RegisterHotelRequest) (*model.Hotel, error) {
					return nil, tt.serviceErr
				}
			}
			router := newTestRouter(svc, tt.user)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/hotels", strings.NewReader(tt.body)))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus == http.StatusUnauthorized {
				return
			}

			var body map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if tt.wantCode != "" {
				if body["success"] != false || body["code"] != tt.wantCode {
					t.Errorf("unexpected error body: %v", body)
				}
				return
			}
			hotel, ok := body["hotel"].(map[string]any)
			if body["success"] != true || !ok || hotel["owner"] != "user_1" {
				t.Errorf("unexpected body: %v", body)
			}
		})
	}
}
