package validator

import (
	"reflect"
	"regexp"
	"strings"

	"clinic-scheduling/internal/domain/entity"

	"github.com/go-playground/validator/v10"
)

var phonePattern = regexp.MustCompile(`^[\d+\s\-()]*$`)

type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	v := validator.New()

	// Report fields by their JSON name so messages match the request body.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	v.RegisterValidation("timeofday", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		_, err := entity.ParseTimeOfDay(s)
		return err == nil
	})
	v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		_, err := entity.ParseDate(fl.Field().String())
		return err == nil
	})

	return &CustomValidator{validator: v}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func (cv *CustomValidator) FormatValidationErrors(err error) map[string]string {
	errors := make(map[string]string)

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			field := e.Field()
			switch e.Tag() {
			case "required":
				errors[field] = field + " is required"
			case "email":
				errors[field] = field + " must be a valid email address"
			case "min":
				errors[field] = field + " must be at least " + e.Param() + " characters"
			case "max":
				errors[field] = field + " must be at most " + e.Param() + " characters"
			case "gte":
				errors[field] = field + " must be greater than or equal to " + e.Param()
			case "lte":
				errors[field] = field + " must be less than or equal to " + e.Param()
			case "oneof":
				errors[field] = field + " must be one of: " + e.Param()
			case "phone":
				errors[field] = field + " may only contain digits, spaces, +, - and parentheses"
			case "timeofday":
				errors[field] = field + " must be a time in HH:MM or HH:MM:SS format"
			case "date":
				errors[field] = field + " must be a date in YYYY-MM-DD format"
			case "len":
				errors[field] = field + " must have length " + e.Param()
			default:
				errors[field] = field + " is invalid"
			}
		}
	}

	return errors
}
