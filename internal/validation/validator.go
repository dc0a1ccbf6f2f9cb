package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Errors maps a JSON field name to a human readable message.
type Errors map[string]string

func (e Errors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

type Validator struct {
	v *validator.Validate
}

const minMobileDigits = 10

var (
	mobileChars = regexp.MustCompile(`^[\d\s\-\+\(\)]+$`)
	nonDigits   = regexp.MustCompile(`\D`)
)

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	v.RegisterValidation("mobile", func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		return IsMobile(value)
	})

	return &Validator{v: v}
}

// IsMobile accepts digits, spaces and + - ( ) with at least ten digits.
func IsMobile(value string) bool {
	if !mobileChars.MatchString(value) {
		return false
	}
	return len(nonDigits.ReplaceAllString(value, "")) >= minMobileDigits
}

func (v *Validator) Struct(s interface{}) error {
	return v.v.Struct(s)
}

// Check validates s and returns Errors describing every failing field, or nil.
func (v *Validator) Check(s interface{}) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	ve := v.ValidationErrors(err)
	if ve == nil {
		return err
	}
	out := make(Errors, len(ve))
	for _, fe := range ve {
		out[fe.Field()] = message(fe)
	}
	return out
}

func (v *Validator) ValidationErrors(err error) validator.ValidationErrors {
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s cannot exceed %s characters", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "email":
		return "Please provide a valid email address"
	case "mobile":
		return "Please provide a valid mobile number"
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
