package validator

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yukikurage/project-management-api/internal/logger"
	"github.com/yukikurage/project-management-api/internal/models"
)

func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			logger.Fatal("failed to register validation tag", "tag", tag, "error", err)
		}
	}

	mustRegister("task_status", validateTaskStatus)
	mustRegister("trimmed", validateTrimmed)
}

func validateTaskStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return models.TaskStatus(value).Valid()
}

func validateTrimmed(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == strings.TrimSpace(value)
}
