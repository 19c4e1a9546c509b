package validator

import (
	"slotkeeper/pkg/daytime"
	"slotkeeper/pkg/logger"
	"slotkeeper/pkg/model"
	"slotkeeper/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type BlockValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBlockValidator(log *logger.Logger) *BlockValidator {
	v, err := validation.New()
	if err != nil {
		log.Fatal("Failed to build block validator", "error", err)
	}

	return &BlockValidator{
		validate: v,
		logger:   log,
	}
}

// ValidateRequest checks req and returns the blocked range.
func (v *BlockValidator) ValidateRequest(req *model.BlockRequest) (daytime.Range, error) {
	if err := validation.Struct(v.validate, req); err != nil {
		return daytime.Range{}, err
	}

	start, _ := daytime.ParseMinute(req.StartTime)
	end, _ := daytime.ParseMinute(req.EndTime)
	if start >= end {
		return daytime.Range{}, validation.Field("EndTime", "EndTime must be after StartTime")
	}
	return daytime.NewRange(start, end), nil
}

func (v *BlockValidator) ValidateDate(date string) error {
	if !daytime.ValidDate(date) {
		return validation.Field("date", "date must be a date in YYYY-MM-DD format")
	}
	return nil
}
