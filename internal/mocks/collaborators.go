package mocks

import (
	"context"
	"sync"

	models "github.com/chrisdamba/boatride/internal"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// RecordingSink keeps every audit entry it receives.
type RecordingSink struct {
	mu      sync.Mutex
	entries []models.AuditEntry
}

func (s *RecordingSink) Record(_ context.Context, entry models.AuditEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
}

func (s *RecordingSink) Entries() []models.AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.AuditEntry(nil), s.entries...)
}

func (s *RecordingSink) Actions() []string {
	var actions []string
	for _, e := range s.Entries() {
		actions = append(actions, e.Action)
	}
	return actions
}

type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) IssueToken(subject uuid.UUID, role string) (string, error) {
	args := m.Called(subject, role)
	return args.String(0), args.Error(1)
}

type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) CreateBooking(ctx context.Context, request *models.BookingRequest) (*models.Booking, error) {
	args := m.Called(ctx, request)
	return bookingArg(args, 0), args.Error(1)
}

func (m *MockBookingService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	args := m.Called(ctx, id)
	return bookingArg(args, 0), args.Error(1)
}

func (m *MockBookingService) AllBookings(ctx context.Context, req models.GetBookingsRequest) (*models.AllBookingsResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AllBookingsResponse), args.Error(1)
}

func (m *MockBookingService) UpdateBooking(ctx context.Context, id string, patch *models.BookingPatch) (*models.Booking, error) {
	args := m.Called(ctx, id, patch)
	return bookingArg(args, 0), args.Error(1)
}

func (m *MockBookingService) CancelBooking(ctx context.Context, id string) (*models.Booking, error) {
	args := m.Called(ctx, id)
	return bookingArg(args, 0), args.Error(1)
}

func (m *MockBookingService) Stats(ctx context.Context) (*models.BookingStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BookingStats), args.Error(1)
}

type MockRideService struct {
	mock.Mock
}

func (m *MockRideService) ListAvailableForDriver(ctx context.Context, driverID uuid.UUID, mode string, tripType string) (*models.AvailableBookingsResponse, error) {
	args := m.Called(ctx, driverID, mode, tripType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AvailableBookingsResponse), args.Error(1)
}

func (m *MockRideService) Accept(ctx context.Context, driverID uuid.UUID, bookingID string) (*models.AcceptResponse, error) {
	args := m.Called(ctx, driverID, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AcceptResponse), args.Error(1)
}

func (m *MockRideService) Finish(ctx context.Context, driverID uuid.UUID, bookingID string) (*models.FinishResponse, error) {
	args := m.Called(ctx, driverID, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FinishResponse), args.Error(1)
}

type MockDriverService struct {
	mock.Mock
}

func (m *MockDriverService) Register(ctx context.Context, req *models.DriverRegistration) (*models.Driver, error) {
	args := m.Called(ctx, req)
	return driverArg(args, 0), args.Error(1)
}

func (m *MockDriverService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LoginResponse), args.Error(1)
}

func (m *MockDriverService) GetDriver(ctx context.Context, id uuid.UUID) (*models.Driver, error) {
	args := m.Called(ctx, id)
	return driverArg(args, 0), args.Error(1)
}

func (m *MockDriverService) Approve(ctx context.Context, id string) (*models.Driver, error) {
	args := m.Called(ctx, id)
	return driverArg(args, 0), args.Error(1)
}

func (m *MockDriverService) Reject(ctx context.Context, id string) (*models.Driver, error) {
	args := m.Called(ctx, id)
	return driverArg(args, 0), args.Error(1)
}
