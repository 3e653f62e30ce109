package repository

import (
	"context"
	"errors"

	models "github.com/chrisdamba/boatride/internal"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DefaultSeatPrice applies when no active price row matches.
const DefaultSeatPrice = 1000.0

// CatalogRepository is the read side of the catalog: zones, boats, prices
// and coupons. Their CRUD lives elsewhere.
type CatalogRepository struct {
	db DBConn
}

func NewCatalogRepository(db DBConn) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) GetZoneByID(ctx context.Context, id uuid.UUID) (*models.Zone, error) {
	var zone models.Zone
	err := r.db.QueryRow(ctx, "SELECT id, zone_code, zone_name FROM zones WHERE id = $1", id).
		Scan(&zone.ID, &zone.Code, &zone.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrZoneNotFound
	}
	if err != nil {
		return nil, err
	}
	return &zone, nil
}

func (r *CatalogRepository) GetBoatByID(ctx context.Context, id uuid.UUID) (*models.Boat, error) {
	query := `
        SELECT id, boat_code, name, boat_type_id, boat_type, capacity, zone_id, zone_name,
            ghat_name, status, assigned_driver_id
        FROM boats
        WHERE id = $1
    `
	var boat models.Boat
	err := r.db.QueryRow(ctx, query, id).Scan(
		&boat.ID, &boat.Code, &boat.Name, &boat.BoatTypeID, &boat.BoatType, &boat.Capacity,
		&boat.ZoneID, &boat.ZoneName, &boat.GhatName, &boat.Status, &boat.AssignedDriverID,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrBoatNotFound
	}
	if err != nil {
		return nil, err
	}
	return &boat, nil
}

// ResolvePrice looks up the seat price for the zone first, then the price
// that applies to all zones, and finally falls back to DefaultSeatPrice.
func (r *CatalogRepository) ResolvePrice(ctx context.Context, boatTypeID uuid.UUID, zoneID *uuid.UUID, tripType models.TripType) (float64, error) {
	if zoneID != nil {
		price, err := r.findPrice(ctx,
			"SELECT price FROM prices WHERE boat_type_id = $1 AND zone_id = $2 AND trip_type = $3 AND is_active",
			boatTypeID, *zoneID, tripType)
		if err == nil {
			return price, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return 0, err
		}
	}

	price, err := r.findPrice(ctx,
		"SELECT price FROM prices WHERE boat_type_id = $1 AND zone_id IS NULL AND trip_type = $2 AND is_active",
		boatTypeID, tripType)
	if errors.Is(err, pgx.ErrNoRows) {
		return DefaultSeatPrice, nil
	}
	if err != nil {
		return 0, err
	}
	return price, nil
}

func (r *CatalogRepository) findPrice(ctx context.Context, query string, args ...interface{}) (float64, error) {
	var price float64
	err := r.db.QueryRow(ctx, query, args...).Scan(&price)
	return price, err
}

func (r *CatalogRepository) GetCouponByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error) {
	query := `
        SELECT id, code, discount_type, discount, min_order, max_uses, current_uses, status, expiry_date
        FROM coupons
        WHERE id = $1
    `
	var c models.Coupon
	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Code, &c.DiscountType, &c.Discount, &c.MinOrder,
		&c.MaxUses, &c.CurrentUses, &c.Status, &c.ExpiryDate,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrCouponNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
