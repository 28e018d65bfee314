package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"study-byte/internal/domain"

	"github.com/go-playground/validator/v10"
)

// Validator provides request validation functionality
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance with the study-byte enum rules registered
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their wire name rather than the Go field name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"form", "json"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})

	mustRegister(v, "summary_length", func(fl validator.FieldLevel) bool {
		_, ok := domain.ParseSummaryLength(fl.Field().String())
		return ok
	})
	mustRegister(v, "scenario_difficulty", func(fl validator.FieldLevel) bool {
		_, ok := domain.ParseScenarioDifficulty(fl.Field().String())
		return ok
	})

	return &Validator{validate: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

// Validate checks req against its struct tags. It returns nil when req is valid.
func (v *Validator) Validate(req interface{}) domain.ValidationErrors {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return domain.ValidationErrors{{Field: "request", Message: err.Error()}}
	}

	var errs domain.ValidationErrors
	for _, fe := range fieldErrs {
		errs = append(errs, toValidationError(fe))
	}
	return errs
}

func toValidationError(fe validator.FieldError) domain.ValidationError {
	switch fe.Tag() {
	case "required":
		return domain.NewMissingFieldError(fe.Field())
	case "min":
		return domain.ValidationError{Field: fe.Field(), Message: "must be at least " + fe.Param(), Value: fe.Value()}
	case "max":
		return domain.ValidationError{Field: fe.Field(), Message: "must be at most " + fe.Param(), Value: fe.Value()}
	case "summary_length":
		return domain.ValidationError{Field: fe.Field(), Message: "must be one of brief, detailed, comprehensive", Value: fe.Value()}
	case "scenario_difficulty":
		return domain.ValidationError{Field: fe.Field(), Message: "must be one of easy, medium, hard", Value: fe.Value()}
	default:
		return domain.NewInvalidFormatError(fe.Field(), fe.Value())
	}
}
