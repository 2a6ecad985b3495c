// Package forms holds the typed inputs of every page and dialog, normalizes
// them and validates them before anything is sent to the API.
package forms

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"
	"unicode"

	"venuebook/pkg/logger"
	"venuebook/pkg/model"

	"github.com/go-playground/validator/v10"
)

var uzPhoneRegex = regexp.MustCompile(`^\+998\d{9}$`)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors are shown inline, one message per field.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	messages := make([]string, 0, len(v))
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// For returns the message for field, or "" when the field is valid.
func (v ValidationErrors) For(field string) string {
	for _, err := range v {
		if err.Field == field {
			return err.Message
		}
	}
	return ""
}

// Input is a form payload that knows how to clean itself up.
type Input interface {
	Normalize()
}

type Validator struct {
	validate *validator.Validate
	logger   *logger.Logger
	today    func() model.Date
}

func NewValidator(log *logger.Logger) *Validator {
	fv := &Validator{
		validate: validator.New(),
		logger:   log,
		today:    model.Today,
	}

	fv.validate.RegisterTagNameFunc(jsonFieldName)
	fv.validate.RegisterCustomTypeFunc(dateValue, model.Date{})

	if err := fv.validate.RegisterValidation("uz_phone", validateUzPhone); err != nil {
		log.Fatal("Failed to register 'uz_phone' validator", "error", err)
	}
	if err := fv.validate.RegisterValidation("not_past", fv.validateNotPast); err != nil {
		log.Fatal("Failed to register 'not_past' validator", "error", err)
	}

	return fv
}

// WithClock makes not_past compare against today().
func (v *Validator) WithClock(today func() model.Date) *Validator {
	v.today = today
	return v
}

func (v *Validator) Today() model.Date {
	return v.today()
}

// Validate normalizes input in place and checks it.
func (v *Validator) Validate(input Input) error {
	input.Normalize()

	if err := v.validate.Struct(input); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}

// dateValue lets the standard tags see a model.Date as a time.Time, and a
// zero date as missing.
func dateValue(field reflect.Value) any {
	d, ok := field.Interface().(model.Date)
	if !ok || d.IsZero() {
		return nil
	}
	return d.Time()
}

func validateUzPhone(fl validator.FieldLevel) bool {
	return uzPhoneRegex.MatchString(fl.Field().String())
}

func (v *Validator) validateNotPast(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	return !model.DateOf(t).Before(v.today())
}

func translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		label := fieldLabel(err.Field())
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", label)
		case "min":
			if err.Kind() == reflect.String {
				message = fmt.Sprintf("%s must be at least %s characters", label, err.Param())
			} else {
				message = fmt.Sprintf("%s must be at least %s", label, err.Param())
			}
		case "max":
			message = fmt.Sprintf("%s must be at most %s", label, err.Param())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", label, strings.ReplaceAll(err.Param(), " ", ", "))
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid id", label)
		case "uz_phone":
			message = "Phone number must be in +998xxxxxxxxx format"
		case "not_past":
			message = fmt.Sprintf("%s cannot be in the past", label)
		}

		validationErrors = append(validationErrors, FieldError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}

// fieldLabel turns a JSON field name such as "pricePerSeat" into
// "Price per seat".
func fieldLabel(field string) string {
	var b strings.Builder
	for i, r := range field {
		switch {
		case i == 0:
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsUpper(r):
			b.WriteRune(' ')
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
