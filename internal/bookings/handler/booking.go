package handler

import (
	"net/http"

	"staybook/internal/bookings/service"
	apperrors "staybook/pkg/errors"
	httputil "staybook/pkg/http"
	"staybook/pkg/logger"
	"staybook/pkg/middleware"
	"staybook/pkg/model"
	"staybook/pkg/receipt"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	auth    func(httprouter.Handle) httprouter.Handle
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, auth func(httprouter.Handle) httprouter.Handle, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		auth:    auth,
		log:     log,
	}
}

func (h *BookingHandler) CheckAvailability(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.AvailabilityRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "CheckAvailability", err)
		return
	}

	available, err := h.service.CheckAvailability(r.Context(), &req)
	if err != nil {
		h.writeError(w, "CheckAvailability", err)
		return
	}

	if err := httputil.WriteSuccess(w, httputil.Envelope{"isAvailable": available}); err != nil {
		h.log.Error("failed to write success response", "handler", "CheckAvailability", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		h.writeError(w, "Create", apperrors.Unauthorized("Not authorized"))
		return
	}

	var req model.CreateBookingRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	booking, err := h.service.Create(r.Context(), user.ID, &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, httputil.Envelope{
		"message": "Booking created successfully",
		"booking": booking,
	}); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) UserBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		h.writeError(w, "UserBookings", apperrors.Unauthorized("Not authorized"))
		return
	}

	bookings, err := h.service.GetUserBookings(r.Context(), user.ID)
	if err != nil {
		h.writeError(w, "UserBookings", err)
		return
	}

	if err := httputil.WriteSuccess(w, httputil.Envelope{"bookings": bookings}); err != nil {
		h.log.Error("failed to write success response", "handler", "UserBookings", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) HotelBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		h.writeError(w, "HotelBookings", apperrors.Unauthorized("Not authorized"))
		return
	}

	dashboard, err := h.service.HotelDashboard(r.Context(), user.ID)
	if err != nil {
		h.writeError(w, "HotelBookings", err)
		return
	}

	if err := httputil.WriteSuccess(w, httputil.Envelope{"dashboardData": dashboard}); err != nil {
		h.log.Error("failed to write success response", "handler", "HotelBookings", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		h.writeError(w, "Cancel", apperrors.Unauthorized("Not authorized"))
		return
	}

	booking, err := h.service.Cancel(r.Context(), user.ID, ps.ByName("bookingId"))
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	if err := httputil.WriteSuccess(w, httputil.Envelope{
		"message": "Booking cancelled successfully",
		"booking": booking,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "Cancel", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Receipt(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		h.writeError(w, "Receipt", apperrors.Unauthorized("Not authorized"))
		return
	}

	bookingID := ps.ByName("bookingId")
	pdf, err := h.service.Receipt(r.Context(), user.ID, bookingID)
	if err != nil {
		h.writeError(w, "Receipt", err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+receipt.Filename(bookingID)+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		h.log.Error("failed to write receipt", "handler", "Receipt", "operation", "Write", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings/check-availability", h.auth(h.CheckAvailability))
	router.POST("/api/v1/bookings/book", h.auth(h.Create))
	router.GET("/api/v1/bookings/user", h.auth(h.UserBookings))
	router.GET("/api/v1/bookings/hotel", h.auth(h.HotelBookings))
	router.PATCH("/api/v1/bookings/cancel/:bookingId", h.auth(h.Cancel))
	router.GET("/api/v1/bookings/receipt/:bookingId", h.auth(h.Receipt))
}
