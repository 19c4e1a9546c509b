package validator

import (
	"fmt"

	"slotkeeper/pkg/daytime"
	"slotkeeper/pkg/logger"
	"slotkeeper/pkg/model"
	"slotkeeper/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type CalendarValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewCalendarValidator(log *logger.Logger) *CalendarValidator {
	v, err := validation.New()
	if err != nil {
		log.Fatal("Failed to build calendar validator", "error", err)
	}

	return &CalendarValidator{
		validate: v,
		logger:   log,
	}
}

func (v *CalendarValidator) ValidateSpecialist(sp *model.Specialist) error {
	return validation.Struct(v.validate, sp)
}

// ValidateWorkingDay parses req into the window of day.
func (v *CalendarValidator) ValidateWorkingDay(day int, req *model.WorkingDayRequest) (model.WorkingDay, error) {
	if day < 0 || day > 6 {
		return model.WorkingDay{}, validation.Field("day", "day must be between 0 (Sunday) and 6 (Saturday)")
	}
	if err := validation.Struct(v.validate, req); err != nil {
		return model.WorkingDay{}, err
	}

	start, end, err := ParseWindow(req.StartTime, req.EndTime)
	if err != nil {
		return model.WorkingDay{}, err
	}

	return model.WorkingDay{Day: day, Start: start, End: end}, nil
}

// ParseWindow parses an HH:MM pair into a non-empty range within one day.
// 24:00 is accepted only as the end.
func ParseWindow(startStr, endStr string) (daytime.Minute, daytime.Minute, error) {
	var errs validation.ValidationErrors

	start, err := daytime.ParseMinute(startStr)
	if err != nil {
		errs = append(errs, validation.ValidationError{Field: "start_time", Message: err.Error()})
	} else if start == daytime.EndOfDay {
		errs = append(errs, validation.ValidationError{Field: "start_time", Message: "start_time cannot be 24:00"})
	}

	end, err := daytime.ParseMinute(endStr)
	if err != nil {
		errs = append(errs, validation.ValidationError{Field: "end_time", Message: err.Error()})
	}

	if len(errs) == 0 && start >= end {
		errs = append(errs, validation.ValidationError{
			Field:   "end_time",
			Message: fmt.Sprintf("end_time %s must be after start_time %s", end, start),
		})
	}

	if len(errs) > 0 {
		return 0, 0, errs
	}
	return start, end, nil
}

func (v *CalendarValidator) ValidateDate(date string) error {
	if !daytime.ValidDate(date) {
		return validation.Field("date", "date must be in YYYY-MM-DD format")
	}
	return nil
}
