package mocks

import (
	"context"

	models "github.com/chrisdamba/boatride/internal"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) CreateBooking(ctx context.Context, booking *models.Booking) (*models.Booking, error) {
	args := m.Called(ctx, booking)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetBookingByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetBookingsPaginated(ctx context.Context, customerID *uuid.UUID, afterCursor string, limit int) ([]models.Booking, string, error) {
	args := m.Called(ctx, customerID, afterCursor, limit)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]models.Booking), args.String(1), args.Error(2)
}

func (m *MockBookingRepository) UpdateBooking(ctx context.Context, update models.BookingUpdate) (*models.Booking, error) {
	args := m.Called(ctx, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingRepository) CancelBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingRepository) CountByStatus(ctx context.Context) (*models.BookingStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BookingStats), args.Error(1)
}

type MockRideRepository struct {
	mock.Mock
}

func (m *MockRideRepository) ListPendingBookings(ctx context.Context, filter models.BookingFilter) ([]models.BookingListing, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BookingListing), args.Error(1)
}

func (m *MockRideRepository) AssignDriver(ctx context.Context, bookingID, driverID uuid.UUID) (*models.Booking, *models.Driver, error) {
	args := m.Called(ctx, bookingID, driverID)
	return bookingArg(args, 0), driverArg(args, 1), args.Error(2)
}

func (m *MockRideRepository) CompleteRide(ctx context.Context, bookingID, driverID uuid.UUID, payout float64) (*models.Booking, *models.Driver, error) {
	args := m.Called(ctx, bookingID, driverID, payout)
	return bookingArg(args, 0), driverArg(args, 1), args.Error(2)
}

type MockDriverRepository struct {
	mock.Mock
}

func (m *MockDriverRepository) CreateDriver(ctx context.Context, driver *models.Driver) (*models.Driver, error) {
	args := m.Called(ctx, driver)
	return driverArg(args, 0), args.Error(1)
}

func (m *MockDriverRepository) GetDriverByID(ctx context.Context, id uuid.UUID) (*models.Driver, error) {
	args := m.Called(ctx, id)
	return driverArg(args, 0), args.Error(1)
}

func (m *MockDriverRepository) GetDriverByMobile(ctx context.Context, mobile string) (*models.Driver, error) {
	args := m.Called(ctx, mobile)
	return driverArg(args, 0), args.Error(1)
}

func (m *MockDriverRepository) UpdateApproval(ctx context.Context, id uuid.UUID, status models.DriverStatus) (*models.Driver, error) {
	args := m.Called(ctx, id, status)
	return driverArg(args, 0), args.Error(1)
}

func (m *MockDriverRepository) ReconcileAvailability(ctx context.Context) (int64, int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

// MockCatalog stands in for the catalog, pricing and coupon stores.
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) GetZoneByID(ctx context.Context, id uuid.UUID) (*models.Zone, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Zone), args.Error(1)
}

func (m *MockCatalog) GetBoatByID(ctx context.Context, id uuid.UUID) (*models.Boat, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Boat), args.Error(1)
}

func (m *MockCatalog) ResolvePrice(ctx context.Context, boatTypeID uuid.UUID, zoneID *uuid.UUID, tripType models.TripType) (float64, error) {
	args := m.Called(ctx, boatTypeID, zoneID, tripType)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockCatalog) GetCouponByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Coupon), args.Error(1)
}

func bookingArg(args mock.Arguments, i int) *models.Booking {
	if b, ok := args.Get(i).(*models.Booking); ok {
		return b
	}
	return nil
}

func driverArg(args mock.Arguments, i int) *models.Driver {
	if d, ok := args.Get(i).(*models.Driver); ok {
		return d
	}
	return nil
}
