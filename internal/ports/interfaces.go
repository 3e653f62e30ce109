package ports

import (
	"context"

	models "github.com/chrisdamba/boatride/internal"
	"github.com/google/uuid"
)

type BookingRepository interface {
	CreateBooking(ctx context.Context, booking *models.Booking) (*models.Booking, error)
	GetBookingByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	GetBookingsPaginated(ctx context.Context, customerID *uuid.UUID, afterCursor string, limit int) ([]models.Booking, string, error)
	UpdateBooking(ctx context.Context, update models.BookingUpdate) (*models.Booking, error)
	CancelBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	CountByStatus(ctx context.Context) (*models.BookingStats, error)
}

// RideRepository owns the writes that touch a booking and its driver together.
type RideRepository interface {
	ListPendingBookings(ctx context.Context, filter models.BookingFilter) ([]models.BookingListing, error)
	AssignDriver(ctx context.Context, bookingID, driverID uuid.UUID) (*models.Booking, *models.Driver, error)
	CompleteRide(ctx context.Context, bookingID, driverID uuid.UUID, payout float64) (*models.Booking, *models.Driver, error)
}

type DriverRepository interface {
	CreateDriver(ctx context.Context, driver *models.Driver) (*models.Driver, error)
	GetDriverByID(ctx context.Context, id uuid.UUID) (*models.Driver, error)
	GetDriverByMobile(ctx context.Context, mobile string) (*models.Driver, error)
	UpdateApproval(ctx context.Context, id uuid.UUID, status models.DriverStatus) (*models.Driver, error)
	ReconcileAvailability(ctx context.Context) (released, occupied int64, err error)
}

type CatalogStore interface {
	GetZoneByID(ctx context.Context, id uuid.UUID) (*models.Zone, error)
	GetBoatByID(ctx context.Context, id uuid.UUID) (*models.Boat, error)
}

type PricingResolver interface {
	ResolvePrice(ctx context.Context, boatTypeID uuid.UUID, zoneID *uuid.UUID, tripType models.TripType) (float64, error)
}

type CouponStore interface {
	GetCouponByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error)
}

// AuditSink records state transitions. Implementations must not block the
// caller and never report failures back to it.
type AuditSink interface {
	Record(ctx context.Context, entry models.AuditEntry)
}

type TokenIssuer interface {
	IssueToken(subject uuid.UUID, role string) (string, error)
}

type BookingService interface {
	CreateBooking(ctx context.Context, request *models.BookingRequest) (*models.Booking, error)
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	AllBookings(ctx context.Context, req models.GetBookingsRequest) (*models.AllBookingsResponse, error)
	UpdateBooking(ctx context.Context, id string, patch *models.BookingPatch) (*models.Booking, error)
	CancelBooking(ctx context.Context, id string) (*models.Booking, error)
	Stats(ctx context.Context) (*models.BookingStats, error)
}

type RideService interface {
	ListAvailableForDriver(ctx context.Context, driverID uuid.UUID, mode string, tripType string) (*models.AvailableBookingsResponse, error)
	Accept(ctx context.Context, driverID uuid.UUID, bookingID string) (*models.AcceptResponse, error)
	Finish(ctx context.Context, driverID uuid.UUID, bookingID string) (*models.FinishResponse, error)
}

type DriverService interface {
	Register(ctx context.Context, req *models.DriverRegistration) (*models.Driver, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
	GetDriver(ctx context.Context, id uuid.UUID) (*models.Driver, error)
	Approve(ctx context.Context, id string) (*models.Driver, error)
	Reject(ctx context.Context, id string) (*models.Driver, error)
}
