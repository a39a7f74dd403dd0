package service

import (
	"context"
	"errors"
	"fmt"
	hotelserrors "staybook/internal/hotels/errors"
	"staybook/internal/hotels/repository"
	"staybook/internal/hotels/validator"
	"staybook/pkg/config"
	apperrors "staybook/pkg/errors"
	"staybook/pkg/model"
	"staybook/pkg/sanitizer"
	"staybook/pkg/validation"

	"go.mongodb.org/mongo-driver/mongo"
)

// RoleSetter changes a user's role. Registration promotes the owner in the
// same transaction that stores the hotel.
type RoleSetter interface {
	SetRole(ctx context.Context, id, role string) error
}

type HotelService interface {
	Register(ctx context.Context, owner *model.User, req *model.RegisterHotelRequest) (*model.Hotel, error)
	GetByOwner(ctx context.Context, ownerID string) (*model.Hotel, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*model.Hotel, error)
}

type hotelService struct {
	repo      repository.HotelRepository
	roles     RoleSetter
	validator *validator.HotelValidator
	cfg       *config.Config
}

func NewHotelService(repo repository.HotelRepository, roles RoleSetter, validator *validator.HotelValidator, cfg *config.Config) HotelService {
	return &hotelService{
		repo:      repo,
		roles:     roles,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *hotelService) Register(ctx context.Context, owner *model.User, req *model.RegisterHotelRequest) (*model.Hotel, error) {
	hotel := &model.Hotel{
		Name:    sanitizer.NormalizeName(req.Name),
		Address: sanitizer.NormalizeAddress(req.Address),
		Contact: sanitizer.NormalizePhone(req.Contact),
		City:    sanitizer.NormalizeCity(req.City),
		Owner:   owner.ID,
	}

	if err := s.validator.Validate(hotel); err != nil {
		s.cfg.Log.Warn("Hotel validation failed",
			"owner", owner.ID,
			"error", err,
		)
		if errs, ok := validation.AsValidationErrors(err); ok {
			return nil, apperrors.Validation("Hotel validation failed", errs.Details())
		}
		return nil, apperrors.Validation("Hotel validation failed", map[string]any{"error": err.Error()})
	}

	if _, err := s.repo.FindByOwner(ctx, owner.ID); err == nil {
		return nil, alreadyRegistered()
	} else if !errors.Is(err, hotelserrors.ErrNotFound) {
		s.cfg.Log.Error("Failed to check existing hotel",
			"owner", owner.ID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to register hotel", err)
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		hotel.ID = ""
		if err := s.repo.Create(sessCtx, hotel); err != nil {
			if errors.Is(err, hotelserrors.ErrOwnerTaken) {
				return alreadyRegistered()
			}
			return fmt.Errorf("failed to create hotel: %w", err)
		}
		if err := s.roles.SetRole(sessCtx, owner.ID, model.RoleHotelOwner); err != nil {
			return fmt.Errorf("failed to promote owner: %w", err)
		}
		return nil
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		s.cfg.Log.Error("Failed to register hotel",
			"owner", owner.ID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to register hotel", err)
	}

	owner.Role = model.RoleHotelOwner
	s.cfg.Log.Info("Hotel registered",
		"hotel_id", hotel.ID,
		"owner", owner.ID,
		"city", hotel.City,
	)
	return hotel, nil
}

func (s *hotelService) GetByOwner(ctx context.Context, ownerID string) (*model.Hotel, error) {
	hotel, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, hotelserrors.ErrNotFound) {
			return nil, apperrors.NotFound("Hotel").WithCode(apperrors.CodeNoHotelFound)
		}
		s.cfg.Log.Error("Failed to load hotel",
			"owner", ownerID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to load hotel", err)
	}
	return hotel, nil
}

func (s *hotelService) GetByIDs(ctx context.Context, ids []string) (map[string]*model.Hotel, error) {
	hotels, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		s.cfg.Log.Error("Failed to load hotels",
			"count", len(ids),
			"error", err,
		)
		return nil, apperrors.Internal("Failed to load hotels", err)
	}

	byID := make(map[string]*model.Hotel, len(hotels))
	for _, h := range hotels {
		byID[h.ID] = h
	}
	return byID, nil
}

func alreadyRegistered() *apperrors.AppError {
	return apperrors.Conflict("Hotel already registered").WithCode(apperrors.CodeHotelAlreadyRegistered)
}
