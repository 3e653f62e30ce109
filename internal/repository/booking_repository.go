package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	models "github.com/chrisdamba/boatride/internal"
	"github.com/chrisdamba/boatride/internal/utils"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var bookingColumns = []string{
	"id", "booking_id", "customer_id", "boat_id", "boat_name", "boat_type",
	"seats", "trip_type", "pickup_point", "zone_id", "zone_name", "booking_date",
	"total_price", "price_per_candidate", "coupon_id", "coupon_code",
	"discount_amount", "final_price", "gst_amount", "gst_percentage",
	"price_with_gst", "advance_payment", "remaining_payment", "payment_method",
	"status", "driver_id", "completed_at", "review_id", "created_at", "updated_at",
}

const bookingIDConstraint = "bookings_booking_id_key"

type BookingRepository struct {
	db DBConn
}

func NewBookingRepository(db DBConn) *BookingRepository {
	return &BookingRepository{db: db}
}

// CreateBooking assigns the next booking id, then claims the coupon (if any)
// and inserts the booking in one transaction. A booking id collision with a
// concurrent writer reruns the transaction.
func (r *BookingRepository) CreateBooking(ctx context.Context, booking *models.Booking) (*models.Booking, error) {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	now := time.Now().UTC()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	var err error
	for attempt := 1; attempt <= maxIDAttempts; attempt++ {
		// the id is read on the pool, before the transaction opens, so a
		// failed read cannot abort the insert that follows
		if attempt == maxIDAttempts {
			booking.BookingID = timestampID(bookingPrefix)
		} else {
			booking.BookingID = nextSequentialID(ctx, r.db, "bookings", "booking_id", bookingPrefix)
		}
		err = r.createBookingTx(ctx, booking)
		if !isUniqueViolation(err, bookingIDConstraint) {
			break
		}
	}
	if err != nil {
		return nil, err
	}
	return booking, nil
}

func (r *BookingRepository) createBookingTx(ctx context.Context, booking *models.Booking) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if booking.CouponID != nil {
		if err := claimCouponTx(ctx, tx, *booking.CouponID); err != nil {
			return err
		}
	}

	query := fmt.Sprintf(`INSERT INTO bookings (%s) VALUES (%s)`,
		prefixed("", bookingColumns), placeholders(1, len(bookingColumns)))
	if _, err := tx.Exec(ctx, query, bookingValues(booking)...); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// claimCouponTx bumps the usage counter only while the coupon is active and
// below its limit, so concurrent bookings cannot overrun max_uses.
func claimCouponTx(ctx context.Context, tx pgx.Tx, couponID uuid.UUID) error {
	query := `
        UPDATE coupons
        SET current_uses = current_uses + 1, updated_at = NOW()
        WHERE id = $1 AND status = 'Active' AND (max_uses IS NULL OR current_uses < max_uses)
    `
	tag, err := tx.Exec(ctx, query, couponID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrCouponExhausted
	}
	return nil
}

func (r *BookingRepository) GetBookingByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE id = $1`, prefixed("", bookingColumns))

	var booking models.Booking
	err := scanBooking(r.db.QueryRow(ctx, query, id), &booking)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepository) GetBookingsPaginated(ctx context.Context, customerID *uuid.UUID, afterCursor string, limit int) ([]models.Booking, string, error) {
	query := fmt.Sprintf(`SELECT %s FROM bookings B`, prefixed("B", bookingColumns))
	var args []interface{}
	var conditions []string

	if customerID != nil {
		args = append(args, *customerID)
		conditions = append(conditions, fmt.Sprintf("B.customer_id = $%d", len(args)))
	}
	if afterCursor != "" {
		afterTime, afterUUID, err := utils.DecodeCursor(afterCursor)
		if err != nil {
			return nil, "", fmt.Errorf("%w: bad cursor", models.ErrValidation)
		}
		args = append(args, afterTime, afterUUID)
		conditions = append(conditions, fmt.Sprintf("(B.created_at, B.id) > ($%d, $%d)", len(args)-1, len(args)))
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY B.created_at, B.id"
	query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
	args = append(args, limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		var booking models.Booking
		if err := scanBooking(rows, &booking); err != nil {
			return nil, "", err
		}
		bookings = append(bookings, booking)
	}
	if err = rows.Err(); err != nil {
		return nil, "", err
	}

	var nextCursor string
	if len(bookings) == limit {
		last := bookings[len(bookings)-1]
		nextCursor = utils.EncodeCursor(last.CreatedAt, last.ID)
	}

	return bookings, nextCursor, nil
}

// UpdateBooking writes an administrative patch. The write is conditional on
// the status the caller read, and driver availability moves in the same
// transaction.
func (r *BookingRepository) UpdateBooking(ctx context.Context, update models.BookingUpdate) (*models.Booking, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	b := update.Booking
	query := fmt.Sprintf(`
        UPDATE bookings
        SET seats = $2, trip_type = $3, pickup_point = $4, booking_date = $5, total_price = $6,
            discount_amount = $7, final_price = $8, gst_amount = $9, price_with_gst = $10,
            status = $11, driver_id = $12, completed_at = $13, updated_at = NOW()
        WHERE id = $1 AND status = $14
        RETURNING %s`, prefixed("", bookingColumns))

	var updated models.Booking
	err = scanBooking(tx.QueryRow(ctx, query,
		b.ID, b.Seats, b.TripType, b.PickupPoint, b.BookingDate, b.TotalPrice,
		b.DiscountAmount, b.FinalPrice, b.GSTAmount, b.PriceWithGST,
		b.Status, b.DriverID, b.CompletedAt, update.ExpectedStatus,
	), &updated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrInvalidTransition
	}
	if err != nil {
		return nil, err
	}

	if update.ReleaseDriver != nil {
		if err := releaseDriverTx(ctx, tx, *update.ReleaseDriver); err != nil {
			return nil, err
		}
	}
	if update.OccupyDriver != nil {
		if err := occupyDriverTx(ctx, tx, *update.OccupyDriver); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &updated, nil
}

// CancelBooking locks the row, refuses completed rides, leaves an already
// cancelled booking untouched and frees the driver of an accepted one.
func (r *BookingRepository) CancelBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var current models.Booking
	lockQuery := fmt.Sprintf(`SELECT %s FROM bookings WHERE id = $1 FOR UPDATE`, prefixed("", bookingColumns))
	err = scanBooking(tx.QueryRow(ctx, lockQuery, id), &current)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}

	switch current.Status {
	case models.StatusCancelled:
		return &current, nil
	case models.StatusCompleted:
		return nil, models.ErrInvalidTransition
	}

	cancelQuery := fmt.Sprintf(`
        UPDATE bookings
        SET status = 'Cancelled', driver_id = NULL, updated_at = NOW()
        WHERE id = $1
        RETURNING %s`, prefixed("", bookingColumns))

	var cancelled models.Booking
	if err := scanBooking(tx.QueryRow(ctx, cancelQuery, id), &cancelled); err != nil {
		return nil, err
	}

	if current.Status == models.StatusAccepted && current.DriverID != nil {
		if err := releaseDriverTx(ctx, tx, *current.DriverID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &cancelled, nil
}

func (r *BookingRepository) CountByStatus(ctx context.Context) (*models.BookingStats, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM bookings GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &models.BookingStats{}
	for rows.Next() {
		var status models.BookingStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.Total += count
		switch status {
		case models.StatusPending:
			stats.Pending = count
		case models.StatusAccepted:
			stats.Accepted = count
		case models.StatusCompleted:
			stats.Completed = count
		case models.StatusCancelled:
			stats.Cancelled = count
		}
	}
	return stats, rows.Err()
}

func scanBooking(row pgx.Row, b *models.Booking, extra ...interface{}) error {
	dest := []interface{}{
		&b.ID, &b.BookingID, &b.CustomerID, &b.BoatID, &b.BoatName, &b.BoatType,
		&b.Seats, &b.TripType, &b.PickupPoint, &b.ZoneID, &b.ZoneName, &b.BookingDate,
		&b.TotalPrice, &b.PricePerCandidate, &b.CouponID, &b.CouponCode,
		&b.DiscountAmount, &b.FinalPrice, &b.GSTAmount, &b.GSTPercentage,
		&b.PriceWithGST, &b.AdvancePayment, &b.RemainingPayment, &b.PaymentMethod,
		&b.Status, &b.DriverID, &b.CompletedAt, &b.ReviewID, &b.CreatedAt, &b.UpdatedAt,
	}
	return row.Scan(append(dest, extra...)...)
}

func bookingValues(b *models.Booking) []interface{} {
	return []interface{}{
		b.ID, b.BookingID, b.CustomerID, b.BoatID, b.BoatName, b.BoatType,
		b.Seats, b.TripType, b.PickupPoint, b.ZoneID, b.ZoneName, b.BookingDate,
		b.TotalPrice, b.PricePerCandidate, b.CouponID, b.CouponCode,
		b.DiscountAmount, b.FinalPrice, b.GSTAmount, b.GSTPercentage,
		b.PriceWithGST, b.AdvancePayment, b.RemainingPayment, b.PaymentMethod,
		b.Status, b.DriverID, b.CompletedAt, b.ReviewID, b.CreatedAt, b.UpdatedAt,
	}
}
