package models

import "errors"

var (
	ErrInvalidUUID = errors.New("invalid uuid")
	ErrValidation  = errors.New("validation failed")
	ErrInvalidMode = errors.New("mode must be either zone or boat")

	ErrBookingNotFound = errors.New("booking not found")
	ErrDriverNotFound  = errors.New("driver not found")
	ErrBoatNotFound    = errors.New("boat not found")
	ErrZoneNotFound    = errors.New("zone not found")
	ErrCouponNotFound  = errors.New("coupon not found")

	ErrDriverNotAuthorized = errors.New("driver not approved or inactive")
	ErrNotAssignedToDriver = errors.New("booking is not assigned to the current driver")
	ErrInvalidCredentials  = errors.New("invalid mobile number or password")
	ErrUnauthorized        = errors.New("missing or invalid token")
	ErrForbidden           = errors.New("insufficient role for this resource")

	ErrBookingNotAvailable = errors.New("booking is no longer available")
	ErrDriverAlreadyOnDuty = errors.New("driver is already on duty with another ride")
	ErrInvalidTransition   = errors.New("booking status does not allow this transition")
	ErrCouponExhausted     = errors.New("coupon usage limit reached")
	ErrMobileTaken         = errors.New("mobile number already registered")

	ErrNoBoatRegistered    = errors.New("driver has no registered boat")
	ErrZoneMismatch        = errors.New("driver zone does not match booking zone")
	ErrBoatTypeMismatch    = errors.New("booking boat type does not match driver boat type")
	ErrCouponNotApplicable = errors.New("coupon is not applicable to this booking")
)
