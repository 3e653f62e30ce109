package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	models "github.com/chrisdamba/boatride/internal"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// driverColumns works for both SELECT ... FROM drivers and RETURNING on an
// UPDATE of drivers; the boat type comes from the associated boat.
const driverColumns = `drivers.id, drivers.driver_id, drivers.first_name, drivers.last_name, drivers.address,
        drivers.mobile_no, drivers.password_hash, drivers.zone_id, drivers.zone_name, drivers.boat_id,
        COALESCE((SELECT boats.boat_type FROM boats WHERE boats.id = drivers.boat_id), ''),
        drivers.status, drivers.is_active, drivers.availability, drivers.rating, drivers.total_trips,
        drivers.earnings_month, drivers.created_at, drivers.updated_at`

const (
	driverIDConstraint = "drivers_driver_id_key"
	mobileConstraint   = "drivers_mobile_no_key"
)

type DriverRepository struct {
	db DBConn
}

func NewDriverRepository(db DBConn) *DriverRepository {
	return &DriverRepository{db: db}
}

func (r *DriverRepository) CreateDriver(ctx context.Context, driver *models.Driver) (*models.Driver, error) {
	if driver.ID == uuid.Nil {
		driver.ID = uuid.New()
	}
	now := time.Now().UTC()
	driver.CreatedAt = now
	driver.UpdatedAt = now

	var err error
	for attempt := 1; attempt <= maxIDAttempts; attempt++ {
		if attempt == maxIDAttempts {
			driver.DriverID = timestampID(driverPrefix)
		} else {
			driver.DriverID = nextSequentialID(ctx, r.db, "drivers", "driver_id", driverPrefix)
		}
		err = r.insertDriver(ctx, driver)
		if !isUniqueViolation(err, driverIDConstraint) {
			break
		}
	}
	if isUniqueViolation(err, mobileConstraint) {
		return nil, models.ErrMobileTaken
	}
	if err != nil {
		return nil, err
	}
	return driver, nil
}

func (r *DriverRepository) insertDriver(ctx context.Context, d *models.Driver) error {
	query := `
        INSERT INTO drivers (id, driver_id, first_name, last_name, address, mobile_no, password_hash,
            zone_id, zone_name, boat_id, status, is_active, availability, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
    `
	_, err := r.db.Exec(ctx, query,
		d.ID, d.DriverID, d.FirstName, d.LastName, d.Address, d.MobileNo, d.PasswordHash,
		d.ZoneID, d.ZoneName, d.BoatID, d.Status, d.IsActive, d.Availability, d.CreatedAt, d.UpdatedAt,
	)
	return err
}

func (r *DriverRepository) GetDriverByID(ctx context.Context, id uuid.UUID) (*models.Driver, error) {
	query := fmt.Sprintf(`SELECT %s FROM drivers WHERE drivers.id = $1`, driverColumns)
	return r.getDriver(ctx, query, id)
}

func (r *DriverRepository) GetDriverByMobile(ctx context.Context, mobile string) (*models.Driver, error) {
	query := fmt.Sprintf(`SELECT %s FROM drivers WHERE drivers.mobile_no = $1`, driverColumns)
	return r.getDriver(ctx, query, mobile)
}

func (r *DriverRepository) getDriver(ctx context.Context, query string, arg interface{}) (*models.Driver, error) {
	var driver models.Driver
	err := scanDriver(r.db.QueryRow(ctx, query, arg), &driver)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrDriverNotFound
	}
	if err != nil {
		return nil, err
	}
	return &driver, nil
}

// UpdateApproval moves the approval gate; is_active always mirrors Approved.
func (r *DriverRepository) UpdateApproval(ctx context.Context, id uuid.UUID, status models.DriverStatus) (*models.Driver, error) {
	query := fmt.Sprintf(`
        UPDATE drivers
        SET status = $2, is_active = $3, updated_at = NOW()
        WHERE id = $1
        RETURNING %s`, driverColumns)

	var driver models.Driver
	err := scanDriver(r.db.QueryRow(ctx, query, id, status, status == models.DriverApproved), &driver)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrDriverNotFound
	}
	if err != nil {
		return nil, err
	}
	return &driver, nil
}

// ReconcileAvailability repairs drift between driver availability and the
// accepted bookings. Both statements are idempotent.
func (r *DriverRepository) ReconcileAvailability(ctx context.Context) (int64, int64, error) {
	releaseQuery := `
        UPDATE drivers
        SET availability = 'Available', updated_at = NOW()
        WHERE availability = 'OnDuty'
          AND NOT EXISTS (SELECT 1 FROM bookings WHERE bookings.driver_id = drivers.id AND bookings.status = 'Accepted')
    `
	released, err := r.db.Exec(ctx, releaseQuery)
	if err != nil {
		return 0, 0, fmt.Errorf("release idle drivers: %w", err)
	}

	occupyQuery := `
        UPDATE drivers
        SET availability = 'OnDuty', updated_at = NOW()
        WHERE availability = 'Available'
          AND EXISTS (SELECT 1 FROM bookings WHERE bookings.driver_id = drivers.id AND bookings.status = 'Accepted')
    `
	occupied, err := r.db.Exec(ctx, occupyQuery)
	if err != nil {
		return released.RowsAffected(), 0, fmt.Errorf("occupy busy drivers: %w", err)
	}

	return released.RowsAffected(), occupied.RowsAffected(), nil
}

func occupyDriverTx(ctx context.Context, q Querier, driverID uuid.UUID) error {
	query := `
        UPDATE drivers
        SET availability = 'OnDuty', updated_at = NOW()
        WHERE id = $1 AND availability = 'Available'
    `
	tag, err := q.Exec(ctx, query, driverID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrDriverAlreadyOnDuty
	}
	return nil
}

func releaseDriverTx(ctx context.Context, q Querier, driverID uuid.UUID) error {
	query := `
        UPDATE drivers
        SET availability = 'Available', updated_at = NOW()
        WHERE id = $1
    `
	_, err := q.Exec(ctx, query, driverID)
	return err
}

func scanDriver(row pgx.Row, d *models.Driver) error {
	return row.Scan(
		&d.ID, &d.DriverID, &d.FirstName, &d.LastName, &d.Address,
		&d.MobileNo, &d.PasswordHash, &d.ZoneID, &d.ZoneName, &d.BoatID,
		&d.BoatType,
		&d.Status, &d.IsActive, &d.Availability, &d.Rating, &d.TotalTrips,
		&d.EarningsMonth, &d.CreatedAt, &d.UpdatedAt,
	)
}
