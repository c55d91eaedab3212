package service

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"school-portal/internal/model"
	"school-portal/pkg/apierror"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// fieldMessages maps a struct field name to the message shown when its first
// rule fails.
type fieldMessages map[string]string

// checkStruct runs the struct tags and reports the first failing field. Fields
// are checked in declaration order, so the order of the struct decides which
// message the user sees first.
func checkStruct(value any, messages fieldMessages) error {
	err := validate.Struct(value)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apierror.Validation(model.ErrInvalidInput, "invalid input", "")
	}

	first := fieldErrs[0]
	message, ok := messages[first.StructField()]
	if !ok {
		message = first.Error()
	}
	return apierror.Validation(model.ErrInvalidInput, message, first.StructField())
}
