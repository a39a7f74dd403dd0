package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	roomserrors "staybook/internal/rooms/errors"
	"staybook/internal/rooms/repository"
	"staybook/internal/rooms/validator"
	"staybook/pkg/config"
	apperrors "staybook/pkg/errors"
	"staybook/pkg/media"
	"staybook/pkg/model"
	"staybook/pkg/sanitizer"
	"staybook/pkg/validation"
)

// HotelLookup resolves hotels for room operations. GetByOwner reports a
// missing hotel as an application error.
type HotelLookup interface {
	GetByOwner(ctx context.Context, ownerID string) (*model.Hotel, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*model.Hotel, error)
}

type RoomService interface {
	Create(ctx context.Context, ownerID string, req *model.CreateRoomRequest, images []media.File) (*model.Room, error)
	ListAvailable(ctx context.Context, limit int, offset int64) ([]*model.RoomDetails, int64, error)
	OwnerRooms(ctx context.Context, ownerID string) ([]*model.RoomDetails, error)
	ToggleAvailability(ctx context.Context, ownerID, roomID string) (*model.Room, error)
}

type roomService struct {
	repo      repository.RoomRepository
	hotels    HotelLookup
	uploader  media.Uploader
	validator *validator.RoomValidator
	cfg       *config.Config
}

// NewRoomService accepts a nil uploader; rooms can then only be created
// without images.
func NewRoomService(repo repository.RoomRepository, hotels HotelLookup, uploader media.Uploader, validator *validator.RoomValidator, cfg *config.Config) RoomService {
	return &roomService{
		repo:      repo,
		hotels:    hotels,
		uploader:  uploader,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *roomService) Create(ctx context.Context, ownerID string, req *model.CreateRoomRequest, images []media.File) (*model.Room, error) {
	hotel, err := s.hotels.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if len(images) > model.MaxRoomImages {
		return nil, apperrors.Validation("Room validation failed", map[string]any{
			"fields": map[string]any{"Images": fmt.Sprintf("Images must contain at most %d files", model.MaxRoomImages)},
		})
	}

	room := &model.Room{
		Hotel:         hotel.ID,
		RoomType:      sanitizer.NormalizeRoomType(req.RoomType),
		PricePerNight: req.PricePerNight,
		Amenities:     sanitizer.NormalizeAmenities(req.Amenities),
		Images:        []string{},
		IsAvailable:   true,
	}

	// validate before uploading so a bad form never reaches the media host
	if err := s.validator.Validate(room); err != nil {
		return nil, s.validationError(ownerID, err)
	}

	if len(images) > 0 {
		if s.uploader == nil {
			return nil, apperrors.Unavailable("Media host")
		}
		urls, err := media.UploadAll(ctx, s.uploader, images)
		if err != nil {
			s.cfg.Log.Error("Failed to upload room images",
				"hotel_id", hotel.ID,
				"count", len(images),
				"error", err,
			)
			return nil, apperrors.Wrap(err, apperrors.KindDependency, apperrors.CodeUnavailable, "Failed to upload room images", http.StatusBadGateway)
		}
		room.Images = urls
	}

	if err := s.repo.Create(ctx, room); err != nil {
		s.cfg.Log.Error("Failed to create room",
			"hotel_id", hotel.ID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to create room", err)
	}

	s.cfg.Log.Info("Room created",
		"room_id", room.ID,
		"hotel_id", hotel.ID,
		"images", len(room.Images),
	)
	return room, nil
}

func (s *roomService) ListAvailable(ctx context.Context, limit int, offset int64) ([]*model.RoomDetails, int64, error) {
	rooms, err := s.repo.FindAvailable(ctx, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list rooms",
			"limit", limit,
			"offset", offset,
			"error", err,
		)
		return nil, 0, apperrors.Internal("Failed to list rooms", err)
	}

	count, err := s.repo.CountAvailable(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to count rooms", "error", err)
		return nil, 0, apperrors.Internal("Failed to list rooms", err)
	}

	ids := make([]string, 0, len(rooms))
	for _, r := range rooms {
		ids = append(ids, r.Hotel)
	}
	hotels, err := s.hotels.GetByIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	details := make([]*model.RoomDetails, 0, len(rooms))
	for _, r := range rooms {
		details = append(details, &model.RoomDetails{Room: *r, Hotel: hotels[r.Hotel]})
	}
	return details, count, nil
}

func (s *roomService) OwnerRooms(ctx context.Context, ownerID string) ([]*model.RoomDetails, error) {
	hotel, err := s.hotels.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	rooms, err := s.repo.FindByHotel(ctx, hotel.ID)
	if err != nil {
		s.cfg.Log.Error("Failed to list hotel rooms",
			"hotel_id", hotel.ID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to list rooms", err)
	}

	details := make([]*model.RoomDetails, 0, len(rooms))
	for _, r := range rooms {
		details = append(details, &model.RoomDetails{Room: *r, Hotel: hotel})
	}
	return details, nil
}

// ToggleAvailability flips a room of the caller's own hotel. Rooms of other
// hotels are reported as missing.
func (s *roomService) ToggleAvailability(ctx context.Context, ownerID, roomID string) (*model.Room, error) {
	if roomID == "" {
		return nil, apperrors.InvalidInput("Room id is required")
	}

	hotel, err := s.hotels.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	room, err := s.repo.ToggleAvailability(ctx, roomID, hotel.ID)
	if err != nil {
		if errors.Is(err, roomserrors.ErrNotFound) || errors.Is(err, roomserrors.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("Room", roomID).WithCode(apperrors.CodeRoomNotFound)
		}
		s.cfg.Log.Error("Failed to toggle room availability",
			"room_id", roomID,
			"hotel_id", hotel.ID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to update room", err)
	}

	s.cfg.Log.Info("Room availability toggled",
		"room_id", room.ID,
		"is_available", room.IsAvailable,
	)
	return room, nil
}

func (s *roomService) validationError(ownerID string, err error) *apperrors.AppError {
	s.cfg.Log.Warn("Room validation failed",
		"owner", ownerID,
		"error", err,
	)
	if errs, ok := validation.AsValidationErrors(err); ok {
		return apperrors.Validation("Room validation failed", errs.Details())
	}
	return apperrors.Validation("Room validation failed", map[string]any{"error": err.Error()})
}
