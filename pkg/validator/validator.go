package validator

import (
	"time"

	"github.com/go-playground/validator/v10"
)

type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	v := validator.New()

	// Domain formats used across booking requests.
	v.RegisterValidation("dateonly", validateDateOnly)
	v.RegisterValidation("timeslot", validateTimeSlot)
	v.RegisterValidation("agegroup", validateAgeGroup)
	v.RegisterValidation("locationtype", validateLocationType)

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
			case "min":
				errors[field] = field + " must be at least " + e.Param() + " characters"
			case "max":
				errors[field] = field + " must be at most " + e.Param() + " characters"
			case "dateonly":
				errors[field] = field + " must be a date in YYYY-MM-DD format"
			case "timeslot":
				errors[field] = field + " must be a time in HH:MM format"
			case "agegroup":
				errors[field] = field + " must be one of: under15, 15plus"
			case "locationtype":
				errors[field] = field + " must be one of: RESOURCE_CENTER, OUTREACH"
			case "uuid":
				errors[field] = field + " must be a valid UUID"
			default:
				errors[field] = field + " is invalid"
			}
		}
	}

	return errors
}

func validateDateOnly(fl validator.FieldLevel) bool {
	_, err := time.Parse("2006-01-02", fl.Field().String())
	return err == nil
}

func validateTimeSlot(fl validator.FieldLevel) bool {
	_, err := time.Parse("15:04", fl.Field().String())
	return err == nil
}

func validateAgeGroup(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "", "under15", "15plus":
		return true
	}
	return false
}

func validateLocationType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "RESOURCE_CENTER", "OUTREACH":
		return true
	}
	return false
}
