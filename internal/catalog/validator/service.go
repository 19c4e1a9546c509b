package validator

import (
	"slotkeeper/pkg/logger"
	"slotkeeper/pkg/model"
	"slotkeeper/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type ServiceValidator struct {
	validate *validator.Validate
}

func NewServiceValidator(log *logger.Logger) *ServiceValidator {
	v, err := validation.New()
	if err != nil {
		log.Fatal("Failed to build service validator", "error", err)
	}
	return &ServiceValidator{validate: v}
}

func (v *ServiceValidator) Validate(svc *model.Service) error {
	return validation.Struct(v.validate, svc)
}
