package handler

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"staybook/internal/rooms/service"
	apperrors "staybook/pkg/errors"
	httputil "staybook/pkg/http"
	"staybook/pkg/logger"
	"staybook/pkg/media"
	"staybook/pkg/middleware"
	"staybook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const (
	imagesField = "images"

	// parts beyond this are spooled to disk by the multipart reader
	multipartMemory = 8 << 20
)

type RoomHandler struct {
	service service.RoomService
	auth    func(httprouter.Handle) httprouter.Handle
	log     *logger.Logger
}

func NewRoomHandler(service service.RoomService, auth func(httprouter.Handle) httprouter.Handle, log *logger.Logger) *RoomHandler {
	return &RoomHandler{
		service: service,
		auth:    auth,
		log:     log,
	}
}

func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		h.writeError(w, "Create", apperrors.Unauthorized("Not authorized"))
		return
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.writeError(w, "Create", apperrors.New(apperrors.KindValidation, apperrors.CodeBadRequest, "Upload too large", http.StatusRequestEntityTooLarge))
			return
		}
		h.writeError(w, "Create", apperrors.InvalidInput("Expected a multipart form").WithCause(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	req, err := parseRoomForm(r)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	files, closeFiles, err := openImages(r.MultipartForm.File[imagesField])
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}
	defer closeFiles()

	room, err := h.service.Create(r.Context(), user.ID, req, files)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, httputil.Envelope{
		"message": "Room created successfully",
		"room":    room,
	}); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	rooms, count, err := h.service.ListAvailable(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WriteSuccess(w, httputil.Envelope{
		"rooms":      rooms,
		"totalCount": count,
		"limit":      limit,
		"offset":     offset,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "List", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RoomHandler) OwnerRooms(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		h.writeError(w, "OwnerRooms", apperrors.Unauthorized("Not authorized"))
		return
	}

	rooms, err := h.service.OwnerRooms(r.Context(), user.ID)
	if err != nil {
		h.writeError(w, "OwnerRooms", err)
		return
	}

	if err := httputil.WriteSuccess(w, httputil.Envelope{"rooms": rooms}); err != nil {
		h.log.Error("failed to write success response", "handler", "OwnerRooms", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RoomHandler) ToggleAvailability(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		h.writeError(w, "ToggleAvailability", apperrors.Unauthorized("Not authorized"))
		return
	}

	var req model.ToggleAvailabilityRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "ToggleAvailability", err)
		return
	}

	room, err := h.service.ToggleAvailability(r.Context(), user.ID, req.RoomID)
	if err != nil {
		h.writeError(w, "ToggleAvailability", err)
		return
	}

	if err := httputil.WriteSuccess(w, httputil.Envelope{
		"message": "Room availability updated",
		"room":    room,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "ToggleAvailability", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RoomHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *RoomHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/rooms", h.List)
	router.POST("/api/v1/rooms", h.auth(h.Create))
	router.GET("/api/v1/rooms/owner", h.auth(h.OwnerRooms))
	router.POST("/api/v1/rooms/toggle-availability", h.auth(h.ToggleAvailability))
}

// parseRoomForm reads the text fields. Amenities may be sent as a JSON array
// in one field or as repeated fields.
func parseRoomForm(r *http.Request) (*model.CreateRoomRequest, error) {
	req := &model.CreateRoomRequest{
		RoomType: r.FormValue("roomType"),
	}

	price := strings.TrimSpace(r.FormValue("pricePerNight"))
	if price == "" {
		return nil, apperrors.Validation("pricePerNight is required", map[string]any{"field": "pricePerNight"})
	}
	v, err := strconv.ParseFloat(price, 64)
	if err != nil {
		return nil, apperrors.InvalidInput("pricePerNight must be a number")
	}
	req.PricePerNight = v

	amenities := r.MultipartForm.Value["amenities"]
	if len(amenities) == 1 && strings.HasPrefix(strings.TrimSpace(amenities[0]), "[") {
		if err := json.Unmarshal([]byte(amenities[0]), &req.Amenities); err != nil {
			return nil, apperrors.InvalidInput("amenities must be a JSON array of strings")
		}
	} else {
		req.Amenities = amenities
	}

	return req, nil
}

func openImages(headers []*multipart.FileHeader) ([]media.File, func(), error) {
	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}

	files := make([]media.File, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, nil, apperrors.InvalidInput("Failed to read image " + fh.Filename).WithCause(err)
		}
		opened = append(opened, f)
		files = append(files, media.File{Name: fh.Filename, Reader: f})
	}
	return files, closeAll, nil
}
