package handler

import (
	"net/http"

	"staybook/internal/hotels/service"
	apperrors "staybook/pkg/errors"
	httputil "staybook/pkg/http"
	"staybook/pkg/logger"
	"staybook/pkg/middleware"
	"staybook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type HotelHandler struct {
	service service.HotelService
	auth    func(httprouter.Handle) httprouter.Handle
	log     *logger.Logger
}

func NewHotelHandler(service service.HotelService, auth func(httprouter.Handle) httprouter.Handle, log *logger.Logger) *HotelHandler {
	return &HotelHandler{
		service: service,
		auth:    auth,
		log:     log,
	}
}

func (h *HotelHandler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		h.writeError(w, "Register", apperrors.Unauthorized("Not authorized"))
		return
	}

	var req model.RegisterHotelRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Register", err)
		return
	}

	hotel, err := h.service.Register(r.Context(), user, &req)
	if err != nil {
		h.writeError(w, "Register", err)
		return
	}

	if err := httputil.WriteCreated(w, httputil.Envelope{
		"message": "Hotel registered successfully",
		"hotel":   hotel,
	}); err != nil {
		h.log.Error("failed to write created response", "handler", "Register", "operation", "WriteCreated", "error", err)
	}
}

func (h *HotelHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *HotelHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/hotels", h.auth(h.Register))
}
