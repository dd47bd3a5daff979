package model

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// FieldError describes one invalid field, addressed by its JSON path
// (for example "personalInfo.email" or "workExperience[0].position").
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError is returned when a draft or document fails submit-time checks.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether field is among the invalid fields.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

var isoDatePattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])(-(0[1-9]|[12]\d|3[01]))?$`)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
			return isoDatePattern.MatchString(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// Validate runs the submit-time checks on a draft. It is not meant to run on
// every keystroke; callers invoke it before persisting.
func Validate(d Draft) error {
	return structError(validatorInstance().Struct(d))
}

// ValidateCoverLetter runs the submit-time checks on a cover letter.
func ValidateCoverLetter(c CoverLetter) error {
	return structError(validatorInstance().Struct(c))
}

func structError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fieldPath(fe.Namespace()),
			Rule:    fe.Tag(),
			Message: ruleMessage(fe),
		})
	}
	return out
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return ns
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_with":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "isodate":
		return "must be a date in YYYY-MM-DD or YYYY-MM form"
	case "min":
		return fmt.Sprintf("must have at least %s entries", fe.Param())
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "is invalid"
	}
}
