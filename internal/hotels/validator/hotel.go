package validator

import (
	"staybook/pkg/logger"
	"staybook/pkg/model"
	"staybook/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type HotelValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewHotelValidator(log *logger.Logger) *HotelValidator {
	log.Info("Hotel validator initialized successfully")

	return &HotelValidator{
		validate: validator.New(),
		logger:   log,
	}
}

// Validate expects a sanitized hotel; the contact must already be in E.164.
func (v *HotelValidator) Validate(hotel *model.Hotel) error {
	return validation.Struct(v.validate, hotel)
}
