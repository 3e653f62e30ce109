package repository_test

import (
	"testing"
	"time"

	models "github.com/chrisdamba/boatride/internal"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

var bookingCols = []string{
	"id", "booking_id", "customer_id", "boat_id", "boat_name", "boat_type",
	"seats", "trip_type", "pickup_point", "zone_id", "zone_name", "booking_date",
	"total_price", "price_per_candidate", "coupon_id", "coupon_code",
	"discount_amount", "final_price", "gst_amount", "gst_percentage",
	"price_with_gst", "advance_payment", "remaining_payment", "payment_method",
	"status", "driver_id", "completed_at", "review_id", "created_at", "updated_at",
}

var driverCols = []string{
	"id", "driver_id", "first_name", "last_name", "address",
	"mobile_no", "password_hash", "zone_id", "zone_name", "boat_id",
	"boat_type", "status", "is_active", "availability", "rating",
	"total_trips", "earnings_month", "created_at", "updated_at",
}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	mockDb, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockDb.Close)
	return mockDb
}

func sampleBooking(status models.BookingStatus, driverID *uuid.UUID) models.Booking {
	zoneID := uuid.MustParse("00000000-0000-0000-0000-0000000000a1")
	now := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	return models.Booking{
		ID:            uuid.New(),
		BookingID:     "BOOK-012",
		CustomerID:    uuid.New(),
		BoatID:        uuid.New(),
		BoatName:      "Ganga Rani",
		BoatType:      "Small",
		Seats:         4,
		TripType:      models.TripFull,
		PickupPoint:   "Dashashwamedh Ghat",
		ZoneID:        &zoneID,
		ZoneName:      "North Ghat",
		BookingDate:   now.Add(48 * time.Hour),
		TotalPrice:    1000,
		FinalPrice:    1000,
		GSTAmount:     50,
		GSTPercentage: 5,
		PriceWithGST:  1050,
		PaymentMethod: models.PayNow,
		Status:        status,
		DriverID:      driverID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func bookingRow(b models.Booking) []interface{} {
	return []interface{}{
		b.ID, b.BookingID, b.CustomerID, b.BoatID, b.BoatName, b.BoatType,
		b.Seats, b.TripType, b.PickupPoint, b.ZoneID, b.ZoneName, b.BookingDate,
		b.TotalPrice, b.PricePerCandidate, b.CouponID, b.CouponCode,
		b.DiscountAmount, b.FinalPrice, b.GSTAmount, b.GSTPercentage,
		b.PriceWithGST, b.AdvancePayment, b.RemainingPayment, b.PaymentMethod,
		b.Status, b.DriverID, b.CompletedAt, b.ReviewID, b.CreatedAt, b.UpdatedAt,
	}
}

func bookingRows(bookings ...models.Booking) *pgxmock.Rows {
	rows := pgxmock.NewRows(bookingCols)
	for _, b := range bookings {
		rows.AddRow(bookingRow(b)...)
	}
	return rows
}

func sampleDriver(availability models.Availability) models.Driver {
	boatID := uuid.New()
	now := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	return models.Driver{
		ID:            uuid.New(),
		DriverID:      "DRV-004",
		FirstName:     "Ravi",
		LastName:      "Kumar",
		Address:       "12 Ghat Road",
		MobileNo:      "9876543210",
		PasswordHash:  "$2a$10$hash",
		ZoneID:        uuid.MustParse("00000000-0000-0000-0000-0000000000a1"),
		ZoneName:      "North Ghat",
		BoatID:        &boatID,
		BoatType:      "Small",
		Status:        models.DriverApproved,
		IsActive:      true,
		Availability:  availability,
		Rating:        4.5,
		TotalTrips:    10,
		EarningsMonth: 2400,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func driverRows(d models.Driver) *pgxmock.Rows {
	return pgxmock.NewRows(driverCols).AddRow(
		d.ID, d.DriverID, d.FirstName, d.LastName, d.Address,
		d.MobileNo, d.PasswordHash, d.ZoneID, d.ZoneName, d.BoatID,
		d.BoatType, d.Status, d.IsActive, d.Availability, d.Rating,
		d.TotalTrips, d.EarningsMonth, d.CreatedAt, d.UpdatedAt,
	)
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

// anyArgs matches a statement with n arguments of any value.
func anyArgs(n int) []interface{} {
	args := make([]interface{}, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}
