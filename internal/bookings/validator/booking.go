package validator

import (
	"staybook/pkg/logger"
	"staybook/pkg/model"
	"staybook/pkg/validation"

	"github.com/go-playground/validator/v10"
)

// ExtraLookup reports whether an extra code is priced.
type ExtraLookup interface {
	Has(code string) bool
}

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger, extras ExtraLookup) *BookingValidator {
	v := validator.New()

	if err := v.RegisterValidation("extra_code", func(fl validator.FieldLevel) bool {
		return extras.Has(fl.Field().String())
	}); err != nil {
		log.Fatal("Failed to register 'extra_code' validator",
			"error", err,
		)
	}

	log.Info("Booking validator initialized successfully")

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

func (v *BookingValidator) ValidateCreate(req *model.CreateBookingRequest) error {
	return validation.Struct(v.validate, req)
}

func (v *BookingValidator) ValidateAvailability(req *model.AvailabilityRequest) error {
	return validation.Struct(v.validate, req)
}
