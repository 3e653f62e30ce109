package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	models "github.com/chrisdamba/boatride/internal"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const acceptedPerDriverIndex = "bookings_one_accepted_per_driver_idx"

type RideRepository struct {
	db DBConn
}

func NewRideRepository(db DBConn) *RideRepository {
	return &RideRepository{db: db}
}

// ListPendingBookings returns unassigned pending bookings matching filter,
// earliest ride date first and then earliest created.
func (r *RideRepository) ListPendingBookings(ctx context.Context, filter models.BookingFilter) ([]models.BookingListing, error) {
	query := fmt.Sprintf(`
        SELECT %s,
            COALESCE(C.first_name, ''), COALESCE(C.last_name, ''), COALESCE(C.phone, ''),
            COALESCE(BO.boat_code, ''), COALESCE(BO.status, ''), COALESCE(BO.ghat_name, ''),
            COALESCE(Z.zone_code, '')
        FROM bookings B
        LEFT JOIN customers C ON C.id = B.customer_id
        LEFT JOIN boats BO ON BO.id = B.boat_id
        LEFT JOIN zones Z ON Z.id = B.zone_id`, prefixed("B", bookingColumns))

	// names compare like the accept checks do: trimmed and case-insensitive
	conditions := []string{"B.status = 'Pending'", "B.driver_id IS NULL", "LOWER(TRIM(B.boat_type)) = LOWER(TRIM($1))"}
	args := []interface{}{filter.BoatType}

	switch {
	case filter.BoatID != nil:
		args = append(args, *filter.BoatID)
		conditions = append(conditions, fmt.Sprintf("B.boat_id = $%d", len(args)))
	case filter.ZoneID != nil:
		// bookings written before zone ids were tracked only carry the name
		args = append(args, *filter.ZoneID, filter.ZoneName)
		conditions = append(conditions, fmt.Sprintf("(B.zone_id = $%d OR (B.zone_id IS NULL AND LOWER(TRIM(B.zone_name)) = LOWER(TRIM($%d))))", len(args)-1, len(args)))
	case filter.ZoneName != "":
		args = append(args, filter.ZoneName)
		conditions = append(conditions, fmt.Sprintf("LOWER(TRIM(B.zone_name)) = LOWER(TRIM($%d))", len(args)))
	}

	if filter.TripType != "" {
		args = append(args, filter.TripType)
		conditions = append(conditions, fmt.Sprintf("B.trip_type = $%d", len(args)))
	}

	query += " WHERE " + strings.Join(conditions, " AND ")
	query += " ORDER BY B.booking_date, B.created_at"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []models.BookingListing
	for rows.Next() {
		var l models.BookingListing
		err := scanBooking(rows, &l.Booking,
			&l.Customer.FirstName, &l.Customer.LastName, &l.Customer.Phone,
			&l.BoatCode, &l.BoatStatus, &l.GhatName, &l.ZoneCode,
		)
		if err != nil {
			return nil, err
		}
		l.Customer.ID = l.CustomerID
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return listings, nil
}

// AssignDriver is the accept transition. Both compare-and-set updates run in
// one transaction: the booking must still be pending and unassigned, and the
// driver must still be available. Of two racing accepts on one booking the
// second matches no row once the first commits.
func (r *RideRepository) AssignDriver(ctx context.Context, bookingID, driverID uuid.UUID) (*models.Booking, *models.Driver, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	bookingQuery := fmt.Sprintf(`
        UPDATE bookings
        SET driver_id = $2, status = 'Accepted', updated_at = NOW()
        WHERE id = $1 AND status = 'Pending' AND driver_id IS NULL
        RETURNING %s`, prefixed("", bookingColumns))

	var booking models.Booking
	err = scanBooking(tx.QueryRow(ctx, bookingQuery, bookingID, driverID), &booking)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil, nil, models.ErrBookingNotAvailable
	case isUniqueViolation(err, acceptedPerDriverIndex):
		return nil, nil, models.ErrDriverAlreadyOnDuty
	case err != nil:
		return nil, nil, err
	}

	driverQuery := fmt.Sprintf(`
        UPDATE drivers
        SET availability = 'OnDuty', updated_at = NOW()
        WHERE id = $1 AND availability = 'Available'
        RETURNING %s`, driverColumns)

	var driver models.Driver
	err = scanDriver(tx.QueryRow(ctx, driverQuery, driverID), &driver)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, models.ErrDriverAlreadyOnDuty
	}
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return &booking, &driver, nil
}

// CompleteRide is the finish transition: the booking must be accepted by this
// driver. The payout is credited and the driver freed in the same
// transaction.
func (r *RideRepository) CompleteRide(ctx context.Context, bookingID, driverID uuid.UUID, payout float64) (*models.Booking, *models.Driver, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	bookingQuery := fmt.Sprintf(`
        UPDATE bookings
        SET status = 'Completed', completed_at = NOW(), updated_at = NOW()
        WHERE id = $1 AND driver_id = $2 AND status = 'Accepted'
        RETURNING %s`, prefixed("", bookingColumns))

	var booking models.Booking
	err = scanBooking(tx.QueryRow(ctx, bookingQuery, bookingID, driverID), &booking)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, models.ErrInvalidTransition
	}
	if err != nil {
		return nil, nil, err
	}

	driverQuery := fmt.Sprintf(`
        UPDATE drivers
        SET total_trips = total_trips + 1, earnings_month = earnings_month + $2,
            availability = 'Available', updated_at = NOW()
        WHERE id = $1
        RETURNING %s`, driverColumns)

	var driver models.Driver
	err = scanDriver(tx.QueryRow(ctx, driverQuery, driverID, payout), &driver)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, models.ErrDriverNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return &booking, &driver, nil
}
