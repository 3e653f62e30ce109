package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	models "github.com/chrisdamba/boatride/internal"
	"github.com/chrisdamba/boatride/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePrice(t *testing.T) {
	ctx := context.Background()
	zonePrice := regexp.QuoteMeta(`AND zone_id = $2 AND trip_type = $3`)
	globalPrice := regexp.QuoteMeta(`AND zone_id IS NULL AND trip_type = $2`)

	boatTypeID := uuid.New()
	zoneID := uuid.New()

	tests := []struct {
		name   string
		zoneID *uuid.UUID
		setup  func(m pgxmock.PgxPoolIface)
		want   float64
	}{
		{
			name:   "zone price wins",
			zoneID: &zoneID,
			setup: func(m pgxmock.PgxPoolIface) {
				m.ExpectQuery(zonePrice).
					WithArgs(boatTypeID, zoneID, models.TripHalf).
					WillReturnRows(pgxmock.NewRows([]string{"price"}).AddRow(650.0))
			},
			want: 650,
		},
		{
			name:   "falls back to the all-zone price",
			zoneID: &zoneID,
			setup: func(m pgxmock.PgxPoolIface) {
				m.ExpectQuery(zonePrice).
					WithArgs(boatTypeID, zoneID, models.TripHalf).
					WillReturnError(pgx.ErrNoRows)
				m.ExpectQuery(globalPrice).
					WithArgs(boatTypeID, models.TripHalf).
					WillReturnRows(pgxmock.NewRows([]string{"price"}).AddRow(700.0))
			},
			want: 700,
		},
		{
			name: "no zone skips straight to the all-zone price",
			setup: func(m pgxmock.PgxPoolIface) {
				m.ExpectQuery(globalPrice).
					WithArgs(boatTypeID, models.TripHalf).
					WillReturnRows(pgxmock.NewRows([]string{"price"}).AddRow(720.0))
			},
			want: 720,
		},
		{
			name:   "nothing configured",
			zoneID: &zoneID,
			setup: func(m pgxmock.PgxPoolIface) {
				m.ExpectQuery(zonePrice).
					WithArgs(boatTypeID, zoneID, models.TripHalf).
					WillReturnError(pgx.ErrNoRows)
				m.ExpectQuery(globalPrice).
					WithArgs(boatTypeID, models.TripHalf).
					WillReturnError(pgx.ErrNoRows)
			},
			want: repository.DefaultSeatPrice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockDb := newMockPool(t)
			repo := repository.NewCatalogRepository(mockDb)
			tt.setup(mockDb)

			price, err := repo.ResolvePrice(ctx, boatTypeID, tt.zoneID, models.TripHalf)

			require.NoError(t, err)
			assert.Equal(t, tt.want, price)
			assert.NoError(t, mockDb.ExpectationsWereMet())
		})
	}

	t.Run("Database error is not a miss", func(t *testing.T) {
		mockDb := newMockPool(t)
		repo := repository.NewCatalogRepository(mockDb)
		mockDb.ExpectQuery(zonePrice).
			WithArgs(boatTypeID, zoneID, models.TripHalf).
			WillReturnError(errors.New("timeout"))

		_, err := repo.ResolvePrice(ctx, boatTypeID, &zoneID, models.TripHalf)

		assert.EqualError(t, err, "timeout")
	})
}

func TestCatalogLookups(t *testing.T) {
	ctx := context.Background()

	t.Run("Zone", func(t *testing.T) {
		mockDb := newMockPool(t)
		repo := repository.NewCatalogRepository(mockDb)
		id := uuid.New()

		mockDb.ExpectQuery(regexp.QuoteMeta(`FROM zones WHERE id = $1`)).
			WithArgs(id).
			WillReturnRows(pgxmock.NewRows([]string{"id", "zone_code", "zone_name"}).AddRow(id, "Z-N", "North Ghat"))

		zone, err := repo.GetZoneByID(ctx, id)

		require.NoError(t, err)
		assert.Equal(t, &models.Zone{ID: id, Code: "Z-N", Name: "North Ghat"}, zone)
	})

	t.Run("Missing zone", func(t *testing.T) {
		mockDb := newMockPool(t)
		repo := repository.NewCatalogRepository(mockDb)
		mockDb.ExpectQuery(`FROM zones`).WithArgs(pgxmock.AnyArg()).WillReturnError(pgx.ErrNoRows)

		_, err := repo.GetZoneByID(ctx, uuid.New())

		assert.Equal(t, models.ErrZoneNotFound, err)
	})

	t.Run("Boat with assigned driver", func(t *testing.T) {
		mockDb := newMockPool(t)
		repo := repository.NewCatalogRepository(mockDb)
		id, typeID, zoneID, driverID := uuid.New(), uuid.New(), uuid.New(), uuid.New()

		mockDb.ExpectQuery(regexp.QuoteMeta(`FROM boats`)).
			WithArgs(id).
			WillReturnRows(pgxmock.NewRows([]string{
				"id", "boat_code", "name", "boat_type_id", "boat_type", "capacity",
				"zone_id", "zone_name", "ghat_name", "status", "assigned_driver_id",
			}).AddRow(id, "BT-07", "Ganga Rani", typeID, "Small", 6, zoneID, "North Ghat", "Assi Ghat", "Active", &driverID))

		boat, err := repo.GetBoatByID(ctx, id)

		require.NoError(t, err)
		assert.Equal(t, 6, boat.Capacity)
		require.NotNil(t, boat.AssignedDriverID)
		assert.Equal(t, driverID, *boat.AssignedDriverID)
	})

	t.Run("Missing boat", func(t *testing.T) {
		mockDb := newMockPool(t)
		repo := repository.NewCatalogRepository(mockDb)
		mockDb.ExpectQuery(`FROM boats`).WithArgs(pgxmock.AnyArg()).WillReturnError(pgx.ErrNoRows)

		_, err := repo.GetBoatByID(ctx, uuid.New())

		assert.Equal(t, models.ErrBoatNotFound, err)
	})

	t.Run("Coupon", func(t *testing.T) {
		mockDb := newMockPool(t)
		repo := repository.NewCatalogRepository(mockDb)
		id := uuid.New()
		limit := 50
		expiry := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)

		mockDb.ExpectQuery(regexp.QuoteMeta(`FROM coupons`)).
			WithArgs(id).
			WillReturnRows(pgxmock.NewRows([]string{
				"id", "code", "discount_type", "discount", "min_order", "max_uses", "current_uses", "status", "expiry_date",
			}).AddRow(id, "DIWALI10", models.CouponPercentage, 10.0, 500.0, &limit, 3, models.CouponActive, expiry))

		coupon, err := repo.GetCouponByID(ctx, id)

		require.NoError(t, err)
		assert.Equal(t, "DIWALI10", coupon.Code)
		require.NotNil(t, coupon.MaxUses)
		assert.Equal(t, 50, *coupon.MaxUses)
	})

	t.Run("Missing coupon", func(t *testing.T) {
		mockDb := newMockPool(t)
		repo := repository.NewCatalogRepository(mockDb)
		mockDb.ExpectQuery(`FROM coupons`).WithArgs(pgxmock.AnyArg()).WillReturnError(pgx.ErrNoRows)

		_, err := repo.GetCouponByID(ctx, uuid.New())

		assert.Equal(t, models.ErrCouponNotFound, err)
	})
}
