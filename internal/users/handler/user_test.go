package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"staybook/internal/users/service"
	"staybook/pkg/auth"
	"staybook/pkg/logger"
	"staybook/pkg/middleware"
	"staybook/pkg/model"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
)

const testWebhookSecret = "whsec_c2VjcmV0LWZvci10ZXN0cw=="

type mockUserService struct {
	addRecentCityFunc func(ctx context.Context, user *model.User, city string) ([]string, error)
	handleEventFunc   func(ctx context.Context, event *service.IdentityEvent) error
}

func (m *mockUserService) EnsureUser(ctx context.Context, id *auth.Identity) (*model.User, error) {
	return &model.User{ID: id.Subject}, nil
}

func (m *mockUserService) AddRecentSearchedCity(ctx context.Context, user *model.User, city string) ([]string, error) {
	if m.addRecentCityFunc != nil {
		return m.addRecentCityFunc(ctx, user, city)
	}
	return []string{city}, nil
}

func (m *mockUserService) HandleIdentityEvent(ctx context.Context, event *service.IdentityEvent) error {
	if m.handleEventFunc != nil {
		return m.handleEventFunc(ctx, event)
	}
	return nil
}

func fakeAuth(user *model.User) func(httprouter.Handle) httprouter.Handle {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			if user == nil {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			next(w, r.WithContext(middleware.WithUser(r.Context(), user)), ps)
		}
	}
}

func newTestRouter(svc *mockUserService, user *model.User) *httprouter.Router {
	log := logger.New(logger.Config{Level: "error", Output: io.Discard, Service: "test"})
	router := httprouter.New()
	NewUserHandler(svc, fakeAuth(user), middleware.WebhookSignatureVerification(testWebhookSecret, log), log).RegisterRoutes(router)
	return router
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestMe(t *testing.T) {
	user := &model.User{ID: "user_1", Role: model.RoleHotelOwner, RecentSearchedCities: []string{"Paris", "Rome"}}
	router := newTestRouter(&mockUserService{}, user)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	cities, _ := body["recentSearchedCities"].([]any)
	if body["success"] != true || body["role"] != model.RoleHotelOwner || len(cities) != 2 {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestMe_Unauthenticated(t *testing.T) {
	router := newTestRouter(&mockUserService{}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAddRecentCity(t *testing.T) {
	var gotCity string
	svc := &mockUserService{
		addRecentCityFunc: func(ctx context.Context, user *model.User, city string) ([]string, error) {
			gotCity = city
			return []string{"Rome", city}, nil
		},
	}
	router := newTestRouter(svc, &model.User{ID: "user_1"})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/users/recent-cities",
		strings.NewReader(`{"recentSearchedCity":"Paris"}`)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if gotCity != "Paris" {
		t.Errorf("city = %q", gotCity)
	}
	cities, _ := decodeBody(t, rec)["recentSearchedCities"].([]any)
	if len(cities) != 2 || cities[1] != "Paris" {
		t.Errorf("unexpected cities: %v", cities)
	}
}

func signedWebhook(t *testing.T, secret, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/identity", strings.NewReader(body))
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	req.Header.Set(middleware.WebhookIDHeader, "msg_1")
	req.Header.Set(middleware.WebhookTimestampHeader, ts)
	req.Header.Set(middleware.WebhookSignatureHeader, middleware.SignWebhook(secret, "msg_1", ts, []byte(body)))
	return req
}

func TestIdentityWebhook(t *testing.T) {
	const payload = `{"type":"user.created","data":{"id":"user_1","first_name":"Ada","email_addresses":[{"email_address":"ada@example.com"}]}}`

	tests := []struct {
		name       string
		secret     string
		wantStatus int
		wantCalled bool
	}{
		{"valid signature", testWebhookSecret, http.StatusOK, true},
		{"wrong secret", "whsec_b3RoZXItc2VjcmV0", http.StatusUnauthorized, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *service.IdentityEvent
			svc := &mockUserService{
				handleEventFunc: func(ctx context.Context, event *service.IdentityEvent) error {
					got = event
					return nil
				},
			}
			router := newTestRouter(svc, nil)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, signedWebhook(t, tt.secret, payload))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if (got != nil) != tt.wantCalled {
				t.Fatalf("service called = %v, want %v", got != nil, tt.wantCalled)
			}
			if got != nil && (got.Type != service.IdentityEventUserCreated || got.Data.ID != "user_1") {
				t.Errorf("unexpected event: %+v", got)
			}
		})
	}
}

func TestIdentityWebhook_MissingHeaders(t *testing.T) {
	router := newTestRouter(&mockUserService{}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/identity", strings.NewReader(`{}`)))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
}
