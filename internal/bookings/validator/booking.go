package validator

import (
	"slotkeeper/pkg/daytime"
	"slotkeeper/pkg/logger"
	"slotkeeper/pkg/model"
	"slotkeeper/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v, err := validation.New()
	if err != nil {
		log.Fatal("Failed to build booking validator", "error", err)
	}

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

// ValidateRequest checks req and returns its parsed start minute.
func (v *BookingValidator) ValidateRequest(req *model.BookingRequest) (daytime.Minute, error) {
	if err := validation.Struct(v.validate, req); err != nil {
		return 0, err
	}

	start, _ := daytime.ParseMinute(req.StartTime)
	if start >= daytime.EndOfDay {
		return 0, validation.Field("StartTime", "StartTime must be before 24:00")
	}
	return start, nil
}

func (v *BookingValidator) ValidateFilter(filter *model.BookingFilter) error {
	if err := validation.Struct(v.validate, filter); err != nil {
		return err
	}
	if filter.From != "" && filter.To != "" && filter.From > filter.To {
		return validation.Field("From", "From must not be after To")
	}
	return nil
}

func (v *BookingValidator) ValidateStatus(status model.BookingStatus) error {
	switch status {
	case model.StatusPending, model.StatusConfirmed, model.StatusCancelled, model.StatusCompleted:
		return nil
	}
	return validation.Field("status", "status must be one of: PENDING CONFIRMED CANCELLED COMPLETED")
}
