package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	models "github.com/chrisdamba/boatride/internal"
	"github.com/go-playground/validator/v10"
)

type CustomValidator struct {
	validator *validator.Validate
}

func NewCustomValidator() *CustomValidator {
	v := validator.New()
	v.RegisterValidation("trip_type", validateTripType)
	v.RegisterValidation("payment_method", validatePaymentMethod)
	v.RegisterValidation("booking_status", validateBookingStatus)
	v.RegisterValidation("not_past_day", validateNotPastDay)
	v.RegisterValidation("mobile", validateMobile)

	return &CustomValidator{validator: v}
}

// Validate checks i and folds every field failure into one ErrValidation.
func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %s", models.ErrValidation, err.Error())
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", models.ErrValidation, strings.Join(msgs, "; "))
}

func validateTripType(fl validator.FieldLevel) bool {
	switch models.TripType(fl.Field().String()) {
	case models.TripFull, models.TripHalf, models.TripCross:
		return true
	}
	return false
}

func validatePaymentMethod(fl validator.FieldLevel) bool {
	switch models.PaymentMethod(fl.Field().String()) {
	case models.PayNow, models.PayLater:
		return true
	}
	return false
}

func validateBookingStatus(fl validator.FieldLevel) bool {
	switch models.BookingStatus(fl.Field().String()) {
	case models.StatusPending, models.StatusAccepted, models.StatusCompleted, models.StatusCancelled:
		return true
	}
	return false
}

// rides are booked per calendar day, so today is still valid
func validateNotPastDay(fl validator.FieldLevel) bool {
	date, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	return !date.UTC().Before(today)
}

func validateMobile(fl validator.FieldLevel) bool {
	mobile := fl.Field().String()
	if len(mobile) != 10 {
		return false
	}
	for _, r := range mobile {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
