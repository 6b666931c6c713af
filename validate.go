package crudgen

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared validator used by generated Create and Update
// models. Custom rules may be registered on it before first use.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateVar checks a single input value against a validator tag such as
// "required,max=200". Failures are reported as a *ValidationError for name.
func ValidateVar(name string, value any, tag string) error {
	err := Validator().Var(value, tag)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return NewValidationError(name, err)
	}
	fe := verrs[0]
	if fe.Param() != "" {
		return Invalidf(name, "failed on the %q rule (%s)", fe.Tag(), fe.Param())
	}
	return NewValidationError(name, fmt.Errorf("failed on the %q rule", fe.Tag()))
}
