package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	models "github.com/chrisdamba/boatride/internal"
	"github.com/chrisdamba/boatride/internal/ports"
	"github.com/google/uuid"
)

const (
	moduleDriverBookings = "Driver Bookings"
	onDutyMessage        = "You are currently on duty. Finish your current ride to see new bookings."
)

type rideService struct {
	rides    ports.RideRepository
	bookings ports.BookingRepository
	drivers  ports.DriverRepository
	audit    ports.AuditSink
	log      *slog.Logger
}

func NewRideService(
	rides ports.RideRepository,
	bookings ports.BookingRepository,
	drivers ports.DriverRepository,
	audit ports.AuditSink,
	log *slog.Logger,
) *rideService {
	return &rideService{
		rides:    rides,
		bookings: bookings,
		drivers:  drivers,
		audit:    audit,
		log:      log,
	}
}

func (s *rideService) ListAvailableForDriver(ctx context.Context, driverID uuid.UUID, mode string, tripType string) (*models.AvailableBookingsResponse, error) {
	matchMode, err := parseMatchMode(mode)
	if err != nil {
		return nil, err
	}
	if tripType != "" && !validTripType(models.TripType(tripType)) {
		return nil, fmt.Errorf("%w: unknown trip type %q", models.ErrValidation, tripType)
	}

	driver, err := s.workingDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}

	resp := &models.AvailableBookingsResponse{
		Driver:   driverSummary(driver, matchMode),
		Bookings: []models.AvailableBooking{},
	}

	// a driver on a ride is never offered another one
	if driver.Availability == models.OnDuty {
		resp.Message = onDutyMessage
		return resp, nil
	}

	if driver.BoatID == nil || driver.BoatType == "" {
		return nil, models.ErrNoBoatRegistered
	}

	filter := models.BookingFilter{
		BoatType: driver.BoatType,
		TripType: models.TripType(tripType),
	}
	if matchMode == models.MatchByBoat {
		filter.BoatID = driver.BoatID
	} else {
		zoneID := driver.ZoneID
		filter.ZoneID = &zoneID
		filter.ZoneName = driver.ZoneName
	}

	listings, err := s.rides.ListPendingBookings(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing pending bookings: %w", err)
	}

	for i := range listings {
		resp.Bookings = append(resp.Bookings, availableBooking(&listings[i], driver))
	}
	resp.Total = len(resp.Bookings)

	s.log.Debug("available bookings listed",
		slog.String("action", "bookings_listed"),
		slog.String("driver_id", driver.DriverID),
		slog.String("mode", string(matchMode)),
		slog.Int("total", resp.Total),
	)
	return resp, nil
}

// Accept checks eligibility on a snapshot, then lets the conditional writes
// in the repository decide the race.
func (s *rideService) Accept(ctx context.Context, driverID uuid.UUID, bookingID string) (*models.AcceptResponse, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, models.ErrInvalidUUID
	}

	driver, err := s.workingDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if driver.Availability != models.Available {
		return nil, models.ErrDriverAlreadyOnDuty
	}

	booking, err := s.bookings.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.StatusPending || booking.DriverID != nil {
		return nil, models.ErrBookingNotAvailable
	}
	if !zoneMatches(booking, driver) {
		return nil, models.ErrZoneMismatch
	}
	if driver.BoatID == nil || driver.BoatType == "" {
		return nil, models.ErrNoBoatRegistered
	}
	if !sameName(booking.BoatType, driver.BoatType) {
		return nil, models.ErrBoatTypeMismatch
	}

	accepted, updatedDriver, err := s.rides.AssignDriver(ctx, booking.ID, driver.ID)
	if err != nil {
		s.log.Warn("accept rejected",
			slog.String("action", "booking_accept_rejected"),
			slog.String("booking_id", booking.BookingID),
			slog.String("driver_id", driver.DriverID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.log.Info("booking accepted",
		slog.String("action", "booking_accepted"),
		slog.String("booking_id", accepted.BookingID),
		slog.String("driver_id", updatedDriver.DriverID),
	)
	s.audit.Record(ctx, models.AuditEntry{
		Actor:      driverName(updatedDriver),
		ActorID:    updatedDriver.ID.String(),
		Action:     "Accepted Booking",
		Module:     moduleDriverBookings,
		Details:    fmt.Sprintf("Driver %s accepted booking %s", updatedDriver.DriverID, accepted.BookingID),
		EntityID:   accepted.BookingID,
		EntityType: entityBooking,
	})

	return &models.AcceptResponse{Booking: accepted, Driver: updatedDriver}, nil
}

func (s *rideService) Finish(ctx context.Context, driverID uuid.UUID, bookingID string) (*models.FinishResponse, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, models.ErrInvalidUUID
	}

	driver, err := s.workingDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}

	booking, err := s.bookings.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.DriverID == nil || *booking.DriverID != driver.ID {
		return nil, models.ErrNotAssignedToDriver
	}
	if booking.Status != models.StatusAccepted {
		return nil, fmt.Errorf("%w: booking is %s", models.ErrInvalidTransition, booking.Status)
	}
	if !zoneMatches(booking, driver) {
		return nil, models.ErrZoneMismatch
	}

	payout := DriverPayout(booking)

	completed, updatedDriver, err := s.rides.CompleteRide(ctx, booking.ID, driver.ID, payout)
	if err != nil {
		return nil, err
	}

	s.log.Info("ride completed",
		slog.String("action", "ride_completed"),
		slog.String("booking_id", completed.BookingID),
		slog.String("driver_id", updatedDriver.DriverID),
		slog.Float64("driver_payout", payout),
	)
	s.audit.Record(ctx, models.AuditEntry{
		Actor:      driverName(updatedDriver),
		ActorID:    updatedDriver.ID.String(),
		Action:     "Completed Ride",
		Module:     moduleDriverBookings,
		Details:    fmt.Sprintf("Driver %s completed booking %s, payout %.2f", updatedDriver.DriverID, completed.BookingID, payout),
		EntityID:   completed.BookingID,
		EntityType: entityBooking,
	})

	return &models.FinishResponse{
		Booking:      completed,
		Driver:       updatedDriver,
		DriverPayout: payout,
	}, nil
}

// workingDriver resolves the driver and requires the approval gate.
func (s *rideService) workingDriver(ctx context.Context, driverID uuid.UUID) (*models.Driver, error) {
	driver, err := s.drivers.GetDriverByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if !driver.CanWork() {
		return nil, models.ErrDriverNotAuthorized
	}
	return driver, nil
}

func parseMatchMode(mode string) (models.MatchMode, error) {
	switch models.MatchMode(strings.ToLower(strings.TrimSpace(mode))) {
	case "", models.MatchByZone:
		return models.MatchByZone, nil
	case models.MatchByBoat:
		return models.MatchByBoat, nil
	default:
		return "", models.ErrInvalidMode
	}
}

func validTripType(t models.TripType) bool {
	switch t {
	case models.TripFull, models.TripHalf, models.TripCross:
		return true
	}
	return false
}

// zoneMatches compares zone ids, falling back to the zone name for bookings
// stored before zone ids were recorded.
func zoneMatches(b *models.Booking, d *models.Driver) bool {
	if b.ZoneID != nil {
		return *b.ZoneID == d.ZoneID
	}
	return b.ZoneName != "" && sameName(b.ZoneName, d.ZoneName)
}

// sameName compares boat type and zone names trimmed and case-insensitively,
// the same way the pending pool query does.
func sameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func driverSummary(d *models.Driver, mode models.MatchMode) models.DriverSummary {
	return models.DriverSummary{
		ID:           d.ID,
		ZoneID:       d.ZoneID,
		ZoneName:     d.ZoneName,
		BoatID:       d.BoatID,
		BoatType:     d.BoatType,
		Availability: d.Availability,
		FilterMode:   mode,
	}
}

func availableBooking(l *models.BookingListing, d *models.Driver) models.AvailableBooking {
	zoneName := l.ZoneName
	if zoneName == "" {
		zoneName = d.ZoneName
	}

	ab := models.AvailableBooking{
		ID:          l.ID,
		BookingID:   l.BookingID,
		BookingDate: l.BookingDate,
		PickupPoint: l.PickupPoint,
		TripType:    l.TripType,
		Seats:       l.Seats,
		Boat: models.BoatInfo{
			ID:       l.BoatID,
			BoatID:   l.BoatCode,
			BoatType: l.BoatType,
			Status:   l.BoatStatus,
			GhatName: l.GhatName,
			ZoneName: zoneName,
		},
		Zone: models.ZoneInfo{
			ID:       l.Booking.ZoneID,
			ZoneID:   l.ZoneCode,
			ZoneName: zoneName,
		},
		TotalFareWithGST: PayableBase(&l.Booking),
		AdvanceCollected: AdvanceCollected(&l.Booking),
		DriverPayout:     DriverPayout(&l.Booking),
		PaymentMethod:    l.PaymentMethod,
		Status:           l.Status,
		CreatedAt:        l.CreatedAt,
	}

	name := strings.TrimSpace(l.Customer.FirstName + " " + l.Customer.LastName)
	if l.CustomerID != uuid.Nil {
		ab.Customer = &models.CustomerInfo{
			ID:    l.CustomerID,
			Name:  name,
			Phone: l.Customer.Phone,
		}
	}
	return ab
}

func driverName(d *models.Driver) string {
	return strings.TrimSpace(d.FirstName + " " + d.LastName)
}
