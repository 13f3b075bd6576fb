package dto

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/leadops/lead-dashboard/internal/dashboard"
	apperrors "github.com/leadops/lead-dashboard/pkg/util/errorutil"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("lead_category", func(fl validator.FieldLevel) bool {
		return dashboard.Category(fl.Field().String()).Valid()
	})
	return v
}

// Validate checks struct tags and reports failures as a validation error
// keyed by field name.
func Validate(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	details := make(map[string]any, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fieldPath(fe.Namespace())] = fe.Tag()
	}
	return apperrors.NewValidationError("validation failed", details)
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}
