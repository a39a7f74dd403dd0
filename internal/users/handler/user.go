package handler

import (
	"net/http"

	"staybook/internal/users/service"
	apperrors "staybook/pkg/errors"
	httputil "staybook/pkg/http"
	"staybook/pkg/logger"
	"staybook/pkg/middleware"

	"github.com/julienschmidt/httprouter"
)

type recentCityRequest struct {
	RecentSearchedCity string `json:"recentSearchedCity"`
}

type UserHandler struct {
	service service.UserService
	auth    func(httprouter.Handle) httprouter.Handle
	webhook func(http.Handler) http.Handler
	log     *logger.Logger
}

// NewUserHandler wires the profile routes behind auth and the identity
// webhook behind signature verification.
func NewUserHandler(service service.UserService, auth func(httprouter.Handle) httprouter.Handle, webhook func(http.Handler) http.Handler, log *logger.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		auth:    auth,
		webhook: webhook,
		log:     log,
	}
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		h.writeError(w, "Me", apperrors.Unauthorized("Not authorized"))
		return
	}

	if err := httputil.WriteSuccess(w, httputil.Envelope{
		"role":                 user.Role,
		"recentSearchedCities": user.RecentSearchedCities,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "Me", "operation", "WriteSuccess", "error", err)
	}
}

func (h *UserHandler) AddRecentCity(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		h.writeError(w, "AddRecentCity", apperrors.Unauthorized("Not authorized"))
		return
	}

	var req recentCityRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "AddRecentCity", err)
		return
	}

	cities, err := h.service.AddRecentSearchedCity(r.Context(), user, req.RecentSearchedCity)
	if err != nil {
		h.writeError(w, "AddRecentCity", err)
		return
	}

	if err := httputil.WriteSuccess(w, httputil.Envelope{
		"message":              "City added",
		"recentSearchedCities": cities,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "AddRecentCity", "operation", "WriteSuccess", "error", err)
	}
}

func (h *UserHandler) IdentityWebhook(w http.ResponseWriter, r *http.Request) {
	var event service.IdentityEvent
	if err := httputil.DecodeJSON(r, &event); err != nil {
		h.writeError(w, "IdentityWebhook", err)
		return
	}

	if err := h.service.HandleIdentityEvent(r.Context(), &event); err != nil {
		h.writeError(w, "IdentityWebhook", err)
		return
	}

	if err := httputil.WriteSuccess(w, httputil.Envelope{"message": "Webhook received"}); err != nil {
		h.log.Error("failed to write success response", "handler", "IdentityWebhook", "operation", "WriteSuccess", "error", err)
	}
}

func (h *UserHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *UserHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/users/me", h.auth(h.Me))
	router.POST("/api/v1/users/recent-cities", h.auth(h.AddRecentCity))
	router.Handler(http.MethodPost, "/api/v1/webhooks/identity", h.webhook(http.HandlerFunc(h.IdentityWebhook)))
}
