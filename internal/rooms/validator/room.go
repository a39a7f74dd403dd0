package validator

import (
	"fmt"
	"staybook/pkg/logger"
	"staybook/pkg/model"
	"staybook/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type RoomValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewRoomValidator(log *logger.Logger) *RoomValidator {
	log.Info("Room validator initialized successfully")

	return &RoomValidator{
		validate: validator.New(),
		logger:   log,
	}
}

func (v *RoomValidator) Validate(room *model.Room) error {
	if err := validation.Struct(v.validate, room); err != nil {
		return err
	}
	return v.validateBusinessRules(room)
}

func (v *RoomValidator) validateBusinessRules(room *model.Room) error {
	if len(room.Images) > model.MaxRoomImages {
		return validation.ValidationErrors{{
			Field:   "Images",
			Message: fmt.Sprintf("Images must contain at most %d files", model.MaxRoomImages),
		}}
	}
	return nil
}
