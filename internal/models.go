package models

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "Pending"
	StatusAccepted  BookingStatus = "Accepted"
	StatusCompleted BookingStatus = "Completed"
	StatusCancelled BookingStatus = "Cancelled"
)

// IsTerminal reports whether no further transition is allowed.
func (s BookingStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// HoldsDriver reports whether a booking in this status must carry a driver.
func (s BookingStatus) HoldsDriver() bool {
	return s == StatusAccepted || s == StatusCompleted
}

// CanMoveTo reports whether next is a forward transition from s. Staying in
// the same status is allowed so that field-only patches pass through.
func (s BookingStatus) CanMoveTo(next BookingStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case StatusPending:
		return next == StatusAccepted || next == StatusCancelled || next == StatusCompleted
	case StatusAccepted:
		return next == StatusCompleted || next == StatusCancelled
	default:
		return false
	}
}

type TripType string

const (
	TripFull  TripType = "Full Trip"
	TripHalf  TripType = "Half Trip"
	TripCross TripType = "Cross Trip"
)

type PaymentMethod string

const (
	PayNow   PaymentMethod = "Pay Now"
	PayLater PaymentMethod = "Pay Later"
)

type DriverStatus string

const (
	DriverPending  DriverStatus = "Pending"
	DriverApproved DriverStatus = "Approved"
	DriverRejected DriverStatus = "Rejected"
)

type Availability string

const (
	Available Availability = "Available"
	OnDuty    Availability = "OnDuty"
)

type MatchMode string

const (
	MatchByZone MatchMode = "zone"
	MatchByBoat MatchMode = "boat"
)

const DefaultGSTPercentage = 5.0

// Token roles.
const (
	RoleDriver = "driver"
	RoleAdmin  = "admin"
)

type Zone struct {
	ID   uuid.UUID `json:"id"`
	Code string    `json:"zone_id"`
	Name string    `json:"zone_name"`
}

type BoatType struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"boat_type"`
	Capacity int       `json:"capacity"`
}

type Boat struct {
	ID               uuid.UUID  `json:"id"`
	Code             string     `json:"boat_id"`
	Name             string     `json:"boat_name"`
	BoatTypeID       uuid.UUID  `json:"boat_type_id"`
	BoatType         string     `json:"boat_type"`
	Capacity         int        `json:"capacity"`
	ZoneID           uuid.UUID  `json:"zone_id"`
	ZoneName         string     `json:"zone_name"`
	GhatName         string     `json:"ghat_name"`
	Status           string     `json:"status"`
	AssignedDriverID *uuid.UUID `json:"assigned_driver_id"`
}

type Customer struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Phone     string    `json:"phone"`
}

type Coupon struct {
	ID           uuid.UUID `json:"id"`
	Code         string    `json:"code"`
	DiscountType string    `json:"discount_type"`
	Discount     float64   `json:"discount"`
	MinOrder     float64   `json:"min_order"`
	MaxUses      *int      `json:"max_uses"`
	CurrentUses  int       `json:"current_uses"`
	Status       string    `json:"status"`
	ExpiryDate   time.Time `json:"expiry_date"`
}

const (
	CouponPercentage = "percentage"
	CouponFixed      = "fixed"
	CouponActive     = "Active"
)

type Booking struct {
	ID                uuid.UUID     `json:"id"`
	BookingID         string        `json:"booking_id"`
	CustomerID        uuid.UUID     `json:"customer_id"`
	BoatID            uuid.UUID     `json:"boat_id"`
	BoatName          string        `json:"boat_name"`
	BoatType          string        `json:"boat_type"`
	Seats             int           `json:"seats"`
	TripType          TripType      `json:"trip_type"`
	PickupPoint       string        `json:"pickup_point"`
	ZoneID            *uuid.UUID    `json:"zone_id"`
	ZoneName          string        `json:"zone"`
	BookingDate       time.Time     `json:"booking_date"`
	TotalPrice        float64       `json:"total_price"`
	PricePerCandidate float64       `json:"price_per_candidate"`
	CouponID          *uuid.UUID    `json:"coupon_id"`
	CouponCode        string        `json:"coupon_code,omitempty"`
	DiscountAmount    float64       `json:"discount_amount"`
	FinalPrice        float64       `json:"final_price"`
	GSTAmount         float64       `json:"gst_amount"`
	GSTPercentage     float64       `json:"gst_percentage"`
	PriceWithGST      float64       `json:"price_with_gst"`
	AdvancePayment    float64       `json:"advance_payment"`
	RemainingPayment  float64       `json:"remaining_payment"`
	PaymentMethod     PaymentMethod `json:"payment_method"`
	Status            BookingStatus `json:"status"`
	DriverID          *uuid.UUID    `json:"driver_id"`
	CompletedAt       *time.Time    `json:"completed_at"`
	ReviewID          *uuid.UUID    `json:"review_id"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

type Driver struct {
	ID            uuid.UUID    `json:"id"`
	DriverID      string       `json:"driver_id"`
	FirstName     string       `json:"first_name"`
	LastName      string       `json:"last_name"`
	Address       string       `json:"address"`
	MobileNo      string       `json:"mobile_no"`
	PasswordHash  string       `json:"-" xml:"-"`
	ZoneID        uuid.UUID    `json:"zone_id"`
	ZoneName      string       `json:"zone_name"`
	BoatID        *uuid.UUID   `json:"boat_id"`
	BoatType      string       `json:"boat_type,omitempty"`
	Status        DriverStatus `json:"status"`
	IsActive      bool         `json:"is_active"`
	Availability  Availability `json:"availability"`
	Rating        float64      `json:"rating"`
	TotalTrips    int          `json:"total_trips"`
	EarningsMonth float64      `json:"earnings_month"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// CanWork reports whether the driver passed the administrative approval gate.
func (d *Driver) CanWork() bool {
	return d.Status == DriverApproved && d.IsActive
}

type AuditEntry struct {
	ID         uuid.UUID `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Actor      string    `json:"user"`
	ActorID    string    `json:"user_id"`
	Action     string    `json:"action"`
	Module     string    `json:"module"`
	Details    string    `json:"details"`
	IPAddress  string    `json:"ip_address"`
	EntityID   string    `json:"entity_id"`
	EntityType string    `json:"entity_type"`
}

type BookingRequest struct {
	CustomerID        uuid.UUID     `json:"customer_id" validate:"required"`
	BoatID            uuid.UUID     `json:"boat_id" validate:"required"`
	Seats             int           `json:"seats" validate:"required,min=1"`
	TripType          TripType      `json:"trip_type" validate:"required,trip_type"`
	PickupPoint       string        `json:"pickup_point" validate:"required,max=200"`
	ZoneID            *uuid.UUID    `json:"zone_id"`
	BookingDate       time.Time     `json:"booking_date" validate:"required,not_past_day"`
	TotalPrice        float64       `json:"total_price" validate:"gte=0"`
	PricePerCandidate float64       `json:"price_per_candidate" validate:"gte=0"`
	PaymentMethod     PaymentMethod `json:"payment_method" validate:"required,payment_method"`
	CouponID          *uuid.UUID    `json:"coupon_id"`
	GSTAmount         float64       `json:"gst_amount" validate:"gte=0"`
	GSTPercentage     float64       `json:"gst_percentage" validate:"gte=0,lte=100"`
	PriceWithGST      float64       `json:"price_with_gst" validate:"gte=0"`
	AdvancePayment    float64       `json:"advance_payment" validate:"gte=0"`
	RemainingPayment  float64       `json:"remaining_payment" validate:"gte=0"`
}

// BookingPatch carries the administrative edit. Nil fields are left alone.
type BookingPatch struct {
	Seats       *int           `json:"seats" validate:"omitempty,min=1"`
	TripType    *TripType      `json:"trip_type" validate:"omitempty,trip_type"`
	PickupPoint *string        `json:"pickup_point" validate:"omitempty,min=1,max=200"`
	BookingDate *time.Time     `json:"booking_date"`
	Status      *BookingStatus `json:"status" validate:"omitempty,booking_status"`
	DriverID    *uuid.UUID     `json:"driver_id"`
}

// BookingUpdate is a conditional write of a patched booking. The write only
// applies while the stored status still equals ExpectedStatus.
type BookingUpdate struct {
	Booking        *Booking
	ExpectedStatus BookingStatus
	OccupyDriver   *uuid.UUID
	ReleaseDriver  *uuid.UUID
}

// GetBookingsRequest pages through the ledger, optionally narrowed to one
// customer's history.
type GetBookingsRequest struct {
	Limit      int
	Cursor     string
	CustomerID *uuid.UUID
}

type AllBookingsResponse struct {
	Bookings []Booking `json:"bookings"`
	Limit    int       `json:"limit"`
	Cursor   string    `json:"cursor"`
}

type BookingStats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Accepted  int `json:"accepted"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
}

// BookingFilter narrows the pending pool offered to a driver.
type BookingFilter struct {
	BoatType string
	BoatID   *uuid.UUID
	ZoneID   *uuid.UUID
	ZoneName string
	TripType TripType
}

// BookingListing is a pending booking joined with its display data.
type BookingListing struct {
	Booking
	Customer   Customer
	BoatCode   string
	BoatStatus string
	GhatName   string
	ZoneCode   string
}

type BoatInfo struct {
	ID       uuid.UUID `json:"id"`
	BoatID   string    `json:"boat_id,omitempty"`
	BoatType string    `json:"boat_type"`
	Status   string    `json:"status,omitempty"`
	GhatName string    `json:"ghat_name,omitempty"`
	ZoneName string    `json:"zone_name,omitempty"`
}

type ZoneInfo struct {
	ID       *uuid.UUID `json:"id"`
	ZoneID   string     `json:"zone_id,omitempty"`
	ZoneName string     `json:"zone_name"`
}

type CustomerInfo struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name,omitempty"`
	Phone string    `json:"phone,omitempty"`
}

type AvailableBooking struct {
	ID               uuid.UUID     `json:"id"`
	BookingID        string        `json:"booking_id"`
	BookingDate      time.Time     `json:"booking_date"`
	PickupPoint      string        `json:"pickup_point"`
	TripType         TripType      `json:"trip_type"`
	Seats            int           `json:"seats"`
	Boat             BoatInfo      `json:"boat"`
	Zone             ZoneInfo      `json:"zone"`
	Customer         *CustomerInfo `json:"customer"`
	TotalFareWithGST float64       `json:"total_fare_with_gst"`
	AdvanceCollected float64       `json:"advance_collected"`
	DriverPayout     float64       `json:"driver_payout"`
	PaymentMethod    PaymentMethod `json:"payment_method"`
	Status           BookingStatus `json:"status"`
	CreatedAt        time.Time     `json:"created_at"`
}

type DriverSummary struct {
	ID           uuid.UUID    `json:"id"`
	ZoneID       uuid.UUID    `json:"zone_id"`
	ZoneName     string       `json:"zone_name"`
	BoatID       *uuid.UUID   `json:"boat_id"`
	BoatType     string       `json:"boat_type,omitempty"`
	Availability Availability `json:"availability"`
	FilterMode   MatchMode    `json:"filter_mode,omitempty"`
}

type AvailableBookingsResponse struct {
	Driver   DriverSummary      `json:"driver"`
	Total    int                `json:"total"`
	Bookings []AvailableBooking `json:"bookings"`
	Message  string             `json:"message,omitempty"`
}

type AcceptResponse struct {
	Booking *Booking `json:"booking"`
	Driver  *Driver  `json:"driver"`
}

type FinishResponse struct {
	Booking      *Booking `json:"booking"`
	Driver       *Driver  `json:"driver"`
	DriverPayout float64  `json:"driver_payout"`
}

type DriverRegistration struct {
	FirstName string     `json:"first_name" validate:"required,min=2,max=50"`
	LastName  string     `json:"last_name" validate:"required,min=1,max=50"`
	Address   string     `json:"address" validate:"required,max=300"`
	MobileNo  string     `json:"mobile_no" validate:"required,mobile"`
	Password  string     `json:"password" validate:"required,min=6,max=72"`
	ZoneID    uuid.UUID  `json:"zone_id" validate:"required"`
	BoatID    *uuid.UUID `json:"boat_id"`
}

type LoginRequest struct {
	MobileNo string `json:"mobile_no" validate:"required,mobile"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token  string  `json:"token"`
	Driver *Driver `json:"driver"`
}
