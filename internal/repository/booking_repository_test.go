package repository_test

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	models "github.com/chrisdamba/boatride/internal"
	"github.com/chrisdamba/boatride/internal/repository"
	"github.com/chrisdamba/boatride/internal/utils"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	claimCouponQuery  = regexp.QuoteMeta(`UPDATE coupons`)
	lastBookingQuery  = regexp.QuoteMeta(`SELECT booking_id FROM bookings WHERE booking_id ~ $1`)
	insertBookingSQL  = regexp.QuoteMeta(`INSERT INTO bookings`)
	bookingByIDQuery  = regexp.QuoteMeta(`FROM bookings WHERE id = $1`)
	updateBookingSQL  = regexp.QuoteMeta(`UPDATE bookings`)
	updateDriversSQL  = regexp.QuoteMeta(`UPDATE drivers`)
	bookingsPageQuery = regexp.QuoteMeta(`FROM bookings B`)
)

func TestCreateBooking(t *testing.T) {
	ctx := context.Background()
	bookingSeq := "^BOOK-[0-9]+$"

	t.Run("Claims coupon and assigns the next id", func(t *testing.T) {
		mockDb := newMockPool(t)
		repo := repository.NewBookingRepository(mockDb)

		couponID := uuid.New()
		booking := sampleBooking(models.StatusPending, nil)
		booking.ID = uuid.Nil
		booking.BookingID = ""
		booking.CouponID = &couponID

		mockDb.ExpectQuery(lastBookingQuery).
			WithArgs(bookingSeq).
			WillReturnRows(pgxmock.NewRows([]string{"booking_id"}).AddRow("BOOK-007"))
		mockDb.ExpectBegin()
		mockDb.ExpectExec(claimCouponQuery).
			WithArgs(couponID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mockDb.ExpectExec(insertBookingSQL).
			WithArgs(anyArgs(len(bookingCols))...).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mockDb.ExpectCommit()

		created, err := repo.CreateBooking(ctx, &booking)

		require.NoError(t, err)
		assert.Equal(t, "BOOK-008", created.BookingID)
		assert.NotEqual(t, uuid.Nil, created.ID)
		assert.False(t, created.CreatedAt.IsZero())
		assert.NoError(t, mockDb.ExpectationsWereMet())
	})

	t.Run("First booking gets BOOK-001", func(t *testing.T) {
		mockDb := newMockPool(t)
		repo := repository.NewBookingRepository(mockDb)
		booking := sampleBooking(models.StatusPending, nil)

		mockDb.ExpectQuery(lastBookingQuery).WithArgs(bookingSeq).WillReturnError(pgx.ErrNoRows)
		mockDb.ExpectBegin()
		mockDb.ExpectExec(insertBookingSQL).
			WithArgs(anyArgs(len(bookingCols))...).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mockDb.ExpectCommit()

		created, err := repo.CreateBooking(ctx, &booking)

		require.NoError(t, err)
		assert.Equal(t, "BOOK-001", created.BookingID)
		assert.NoError(t, mockDb.ExpectationsWereMet())
	})

	t.Run("Failed id read still inserts with a timestamp id", func(t *testing.T) {
		mockDb := newMockPool(t)
		repo := repository.NewBookingRepository(mockDb)
		booking := sampleBooking(models.StatusPending, nil)

		mockDb.ExpectQuery(lastBookingQuery).WithArgs(bookingSeq).WillReturnError(errors.New("statement timeout"))
		mockDb.ExpectBegin()
		mockDb.ExpectExec(insertBookingSQL).
			WithArgs(anyArgs(len(bookingCols))...).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mockDb.ExpectCommit()

		created, err := repo.CreateBooking(ctx, &booking)

		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(created.BookingID, "BOOK-"))
		assert.NotEqual(t, "BOOK-001", created.BookingID)
		assert.NoError(t, mockDb.ExpectationsWereMet())
	})

	t.Run("Id collision reruns the transaction", func(t *testing.T) {
		mockDb := newMockPool(t)
		repo := repository.NewBookingRepository(mockDb)
		booking := sampleBooking(models.StatusPending, nil)

		mockDb.ExpectQuery(lastBookingQuery).
			WithArgs(bookingSeq).
			WillReturnRows(pgxmock.NewRows([]string{"booking_id"}).AddRow("BOOK-007"))
		mockDb.ExpectBegin()
		mockDb.ExpectExec(insertBookingSQL).
			WithArgs(anyArgs(len(bookingCols))...).
			WillReturnError(uniqueViolation("bookings_booking_id_key"))
		mockDb.ExpectRollback()

		mockDb.ExpectQuery(lastBookingQuery).
			WithArgs(bookingSeq).
			WillReturnRows(pgxmock.NewRows([]string{"booking_id"}).AddRow("BOOK-008"))
		mockDb.ExpectBegin()
		mockDb.ExpectExec(insertBookingSQL).
			WithArgs(anyArgs(len(bookingCols))...).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mockDb.ExpectCommit()

		created, err := repo.CreateBooking(ctx, &booking)

		require.NoError(t, err)
		assert.Equal(t, "BOOK-009", created.BookingID)
		assert.NoError(t, mockDb.ExpectationsWereMet())
	})

	t.Run("Exhausted coupon aborts", func(t *testing.T) {
		mockDb := newMockPool(t)
		repo := repository.NewBookingRepository(mockDb)

		couponID := uuid.New()
		booking := sampleBooking(models.StatusPending, nil)
		booking.CouponID = &couponID

		mockDb.ExpectQuery(lastBookingQuery).
			WithArgs(bookingSeq).
			WillReturnRows(pgxmock.NewRows([]string{"booking_id"}).AddRow("BOOK-007"))
		mockDb.ExpectBegin()
		mockDb.ExpectExec(claimCouponQuery).
			WithArgs(couponID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mockDb.ExpectRollback()

		_, err := repo.CreateBooking(ctx, &booking)

		assert.ErrorIs(t, err, models.ErrCouponExhausted)
		assert.NoError(t, mockDb.ExpectationsWereMet())
	})
}

func TestGetBookingByID(t *testing.T) {
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		mockDb := newMockPool(t)
		repo := repository.NewBookingRepository(mockDb)
		driverID := uuid.New()
		booking := sampleBooking(models.StatusAccepted, &driverID)

		mockDb.ExpectQuery(bookingByIDQuery).
			WithArgs(booking.ID).
			WillReturnRows(bookingRows(booking))

		got, err := repo.GetBookingByID(ctx, booking.ID)

		require.NoError(t, err)
		assert.Equal(t, booking.BookingID, got.BookingID)
		assert.Equal(t, models.StatusAccepted, got.Status)
		require.NotNil(t, got.DriverID)
		assert.Equal(t, driverID, *got.DriverID)
		assert.Nil(t, got.CouponID)
	})

	t.Run("Not found", func(t *testing.T) {
		mockDb := newMockPool(t)
		repo := repository.NewBookingRepository(mockDb)
		id := uuid.New()

		mockDb.ExpectQuery(bookingByIDQuery).WithArgs(id).WillReturnError(pgx.ErrNoRows)

		_, err := repo.GetBookingByID(ctx, id)

		assert.Equal(t, models.ErrBookingNotFound, err)
	})
}

func TestGetBookingsPaginated(t *testing.T) {
	ctx := context.Background()

	t.Run("Full page returns a cursor", func(t *testing.T) {
		mockDb := newMockPool(t)
		repo := repository.NewBookingRepository(mockDb)

		first := sampleBooking(models.StatusPending, nil)
		second := sampleBooking(models.StatusCancelled, nil)
		second.CreatedAt = first.CreatedAt.Add(time.Hour)

		mockDb.ExpectQuery(bookingsPageQuery).
			WithArgs(2).
			WillReturnRows(bookingRows(first, second))

		bookings, cursor, err := repo.GetBookingsPaginated(ctx, nil, "", 2)

		require.NoError(t, err)
		require.Len(t, bookings, 2)
		assert.Equal(t, utils.EncodeCursor(second.CreatedAt, second.ID), cursor)
	})

	t.Run("Cursor narrows the query", func(t *testing.T) {
		mockDb := newMockPool(t)
		repo := repository.NewBookingRepository(mockDb)

		after := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
		afterID := uuid.New()
		cursor := utils.EncodeCursor(after, afterID)
		booking := sampleBooking(models.StatusPending, nil)

		mockDb.ExpectQuery(regexp.QuoteMeta(`(B.created_at, B.id) > ($1, $2)`)).
			WithArgs(after, afterID, 10).
			WillReturnRows(bookingRows(booking))

		bookings, next, err := repo.GetBookingsPaginated(ctx, nil, cursor, 10)

		require.NoError(t, err)
		assert.Len(t, bookings, 1)
		assert.Empty(t, next)
	})

	t.Run("Customer history narrows by customer and cursor", func(t *testing.T) {
		mockDb := newMockPool(t)
		repo := repository.NewBookingRepository(mockDb)

		booking := sampleBooking(models.StatusCompleted, nil)
		after := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
		afterID := uuid.New()

		mockDb.ExpectQuery(regexp.QuoteMeta(`WHERE B.customer_id = $1 AND (B.created_at, B.id) > ($2, $3) ORDER BY B.created_at, B.id LIMIT $4`)).
			WithArgs(booking.CustomerID, after, afterID, 10).
			WillReturnRows(bookingRows(booking))

		bookings, _, err := repo.GetBookingsPaginated(ctx, &booking.CustomerID, utils.EncodeCursor(after, afterID), 10)

		require.NoError(t, err)
		require.Len(t, bookings, 1)
		assert.Equal(t, booking.CustomerID, bookings[0].CustomerID)
		assert.NoError(t, mockDb.ExpectationsWereMet())
	})

	t.Run("Malformed cursor is a validation error", func(t *testing.T) {
		mockDb := newMockPool(t)
		repo := repository.NewBookingRepository(mockDb)

		_, _, err := repo.GetBookingsPaginated(ctx, nil, "not-a-cursor", 10)

		assert.ErrorIs(t, err, models.ErrValidation)
		assert.NoError(t, mockDb.ExpectationsWereMet())
	})
}

func TestUpdateBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("Occupies the newly assigned driver", func(t *testing.T) {
		mockDb := newMockPool(t)
		repo := repository.NewBookingRepository(mockDb)

		driverID := uuid.New()
		booking := sampleBooking(models.StatusAccepted, &driverID)

		mockDb.ExpectBegin()
		mockDb.ExpectQuery(updateBookingSQL).
			WithArgs(booking.ID, booking.Seats, booking.TripType, booking.PickupPoint, booking.BookingDate,
				booking.TotalPrice, booking.DiscountAmount, booking.FinalPrice, booking.GSTAmount, booking.PriceWithGST,
				booking.Status, booking.DriverID, booking.CompletedAt, models.StatusPending).
			WillReturnRows(bookingRows(booking))
		mockDb.ExpectExec(updateDriversSQL).
			WithArgs(driverID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mockDb.ExpectCommit()

		updated, err := repo.UpdateBooking(ctx, models.BookingUpdate{
			Booking:        &booking,
			ExpectedStatus: models.StatusPending,
			OccupyDriver:   &driverID,
		})

		require.NoError(t, err)
		assert.Equal(t, models.StatusAccepted, updated.Status)
		assert.NoError(t, mockDb.ExpectationsWereMet())
	})

	t.Run("Busy driver rolls back", func(t *testing.T) {
		mockDb := newMockPool(t)
		repo := repository.NewBookingRepository(mockDb)

		driverID := uuid.New()
		booking := sampleBooking(models.StatusAccepted, &driverID)

		mockDb.ExpectBegin()
		mockDb.ExpectQuery(updateBookingSQL).WithArgs(anyArgs(14)...).WillReturnRows(bookingRows(booking))
		mockDb.ExpectExec(updateDriversSQL).
			WithArgs(driverID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mockDb.ExpectRollback()

		_, err := repo.UpdateBooking(ctx, models.BookingUpdate{
			Booking:        &booking,
			ExpectedStatus: models.StatusPending,
			OccupyDriver:   &driverID,
		})

		assert.ErrorIs(t, err, models.ErrDriverAlreadyOnDuty)
		assert.NoError(t, mockDb.ExpectationsWereMet())
	})

	t.Run("Status moved underneath", func(t *testing.T) {
		mockDb := newMockPool(t)
		repo := repository.NewBookingRepository(mockDb)
		booking := sampleBooking(models.StatusCancelled, nil)

		mockDb.ExpectBegin()
		mockDb.ExpectQuery(updateBookingSQL).WithArgs(anyArgs(14)...).WillReturnError(pgx.ErrNoRows)
		mockDb.ExpectRollback()

		_, err := repo.UpdateBooking(ctx, models.BookingUpdate{Booking: &booking, ExpectedStatus: models.StatusPending})

		assert.ErrorIs(t, err, models.ErrInvalidTransition)
		assert.NoError(t, mockDb.ExpectationsWereMet())
	})

	t.Run("Writes the repriced amounts", func(t *testing.T) {
		mockDb := newMockPool(t)
		repo := repository.NewBookingRepository(mockDb)

		booking := sampleBooking(models.StatusPending, nil)
		booking.Seats = 2
		booking.TotalPrice = 500
		booking.DiscountAmount = 50
		booking.FinalPrice = 450
		booking.GSTAmount = 22.5
		booking.PriceWithGST = 472.5

		mockDb.ExpectBegin()
		mockDb.ExpectQuery(regexp.QuoteMeta(`discount_amount = $7, final_price = $8, gst_amount = $9, price_with_gst = $10`)).
			WithArgs(booking.ID, 2, booking.TripType, booking.PickupPoint, booking.BookingDate,
				500.0, 50.0, 450.0, 22.5, 472.5,
				models.StatusPending, booking.DriverID, booking.CompletedAt, models.StatusPending).
			WillReturnRows(bookingRows(booking))
		mockDb.ExpectCommit()

		updated, err := repo.UpdateBooking(ctx, models.BookingUpdate{Booking: &booking, ExpectedStatus: models.StatusPending})

		require.NoError(t, err)
		assert.Equal(t, 450.0, updated.FinalPrice)
		assert.LessOrEqual(t, updated.FinalPrice, updated.TotalPrice)
		assert.NoError(t, mockDb.ExpectationsWereMet())
	})
}

func TestCancelBooking(t *testing.T) {
	ctx := context.Background()
	lockQuery := regexp.QuoteMeta(`FOR UPDATE`)

	t.Run("Accepted booking frees its driver", func(t *testing.T) {
		mockDb := newMockPool(t)
		repo := repository.NewBookingRepository(mockDb)

		driverID := uuid.New()
		current := sampleBooking(models.StatusAccepted, &driverID)
		cancelled := current
		cancelled.Status = models.StatusCancelled
		cancelled.DriverID = nil

		mockDb.ExpectBegin()
		mockDb.ExpectQuery(lockQuery).WithArgs(current.ID).WillReturnRows(bookingRows(current))
		mockDb.ExpectQuery(updateBookingSQL).WithArgs(current.ID).WillReturnRows(bookingRows(cancelled))
		mockDb.ExpectExec(updateDriversSQL).
			WithArgs(driverID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mockDb.ExpectCommit()

		got, err := repo.CancelBooking(ctx, current.ID)

		require.NoError(t, err)
		assert.Equal(t, models.StatusCancelled, got.Status)
		assert.Nil(t, got.DriverID)
		assert.NoError(t, mockDb.ExpectationsWereMet())
	})

	t.Run("Completed booking is refused", func(t *testing.T) {
		mockDb := newMockPool(t)
		repo := repository.NewBookingRepository(mockDb)

		driverID := uuid.New()
		current := sampleBooking(models.StatusCompleted, &driverID)

		mockDb.ExpectBegin()
		mockDb.ExpectQuery(lockQuery).WithArgs(current.ID).WillReturnRows(bookingRows(current))
		mockDb.ExpectRollback()

		_, err := repo.CancelBooking(ctx, current.ID)

		assert.ErrorIs(t, err, models.ErrInvalidTransition)
		assert.NoError(t, mockDb.ExpectationsWereMet())
	})

	t.Run("Already cancelled is returned unchanged", func(t *testing.T) {
		mockDb := newMockPool(t)
		repo := repository.NewBookingRepository(mockDb)
		current := sampleBooking(models.StatusCancelled, nil)

		mockDb.ExpectBegin()
		mockDb.ExpectQuery(lockQuery).WithArgs(current.ID).WillReturnRows(bookingRows(current))
		mockDb.ExpectRollback()

		got, err := repo.CancelBooking(ctx, current.ID)

		require.NoError(t, err)
		assert.Equal(t, current.ID, got.ID)
		assert.NoError(t, mockDb.ExpectationsWereMet())
	})

	t.Run("Unknown booking", func(t *testing.T) {
		mockDb := newMockPool(t)
		repo := repository.NewBookingRepository(mockDb)
		id := uuid.New()

		mockDb.ExpectBegin()
		mockDb.ExpectQuery(lockQuery).WithArgs(id).WillReturnError(pgx.ErrNoRows)
		mockDb.ExpectRollback()

		_, err := repo.CancelBooking(ctx, id)

		assert.Equal(t, models.ErrBookingNotFound, err)
	})
}

func TestCountByStatus(t *testing.T) {
	mockDb := newMockPool(t)
	repo := repository.NewBookingRepository(mockDb)

	mockDb.ExpectQuery(regexp.QuoteMeta(`SELECT status, COUNT(*) FROM bookings GROUP BY status`)).
		WillReturnRows(pgxmock.NewRows([]string{"status", "count"}).
			AddRow(models.StatusPending, 3).
			AddRow(models.StatusAccepted, 1).
			AddRow(models.StatusCompleted, 5))

	stats, err := repo.CountByStatus(context.Background())

	require.NoError(t, err)
	assert.Equal(t, &models.BookingStats{Total: 9, Pending: 3, Accepted: 1, Completed: 5}, stats)

	t.Run("Query failure", func(t *testing.T) {
		mockDb := newMockPool(t)
		repo := repository.NewBookingRepository(mockDb)
		mockDb.ExpectQuery(`SELECT status`).WillReturnError(errors.New("connection reset"))

		_, err := repo.CountByStatus(context.Background())
		assert.EqualError(t, err, "connection reset")
	})
}
