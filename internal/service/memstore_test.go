package service_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	models "github.com/chrisdamba/boatride/internal"
	"github.com/google/uuid"
)

// memStore is an in-memory ledger with the same compare-and-set semantics as
// the Postgres repositories. It backs the lifecycle and race tests.
type memStore struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*models.Booking
	drivers  map[uuid.UUID]*models.Driver
}

func newMemStore() *memStore {
	return &memStore{
		bookings: map[uuid.UUID]*models.Booking{},
		drivers:  map[uuid.UUID]*models.Driver{},
	}
}

func (s *memStore) putBooking(b models.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings[b.ID] = &b
}

func (s *memStore) putDriver(d models.Driver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drivers[d.ID] = &d
}

func (s *memStore) booking(id uuid.UUID) models.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.bookings[id]
}

func (s *memStore) driver(id uuid.UUID) models.Driver {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.drivers[id]
}

func (s *memStore) CreateBooking(_ context.Context, b *models.Booking) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *b
	s.bookings[b.ID] = &cp
	return b, nil
}

func (s *memStore) GetBookingByID(_ context.Context, id uuid.UUID) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, models.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *memStore) GetBookingsPaginated(context.Context, *uuid.UUID, string, int) ([]models.Booking, string, error) {
	return nil, "", nil
}

func (s *memStore) UpdateBooking(_ context.Context, u models.BookingUpdate) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.bookings[u.Booking.ID]
	if !ok || cur.Status != u.ExpectedStatus {
		return nil, models.ErrInvalidTransition
	}
	cp := *u.Booking
	s.bookings[cp.ID] = &cp
	return &cp, nil
}

func (s *memStore) CancelBooking(_ context.Context, id uuid.UUID) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, models.ErrBookingNotFound
	}
	switch b.Status {
	case models.StatusCancelled:
		cp := *b
		return &cp, nil
	case models.StatusCompleted:
		return nil, models.ErrInvalidTransition
	}
	if b.Status == models.StatusAccepted && b.DriverID != nil {
		s.drivers[*b.DriverID].Availability = models.Available
	}
	b.Status = models.StatusCancelled
	b.DriverID = nil
	cp := *b
	return &cp, nil
}

func (s *memStore) CountByStatus(context.Context) (*models.BookingStats, error) {
	return &models.BookingStats{}, nil
}

func (s *memStore) ListPendingBookings(_ context.Context, f models.BookingFilter) ([]models.BookingListing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.BookingListing
	for _, b := range s.bookings {
		if b.Status != models.StatusPending || b.DriverID != nil || !strings.EqualFold(strings.TrimSpace(b.BoatType), strings.TrimSpace(f.BoatType)) {
			continue
		}
		if f.BoatID != nil && b.BoatID != *f.BoatID {
			continue
		}
		if f.BoatID == nil && f.ZoneID != nil {
			legacy := b.ZoneID == nil && strings.EqualFold(strings.TrimSpace(b.ZoneName), strings.TrimSpace(f.ZoneName))
			if !legacy && (b.ZoneID == nil || *b.ZoneID != *f.ZoneID) {
				continue
			}
		}
		if f.TripType != "" && b.TripType != f.TripType {
			continue
		}
		out = append(out, models.BookingListing{Booking: *b})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].BookingDate.Equal(out[j].BookingDate) {
			return out[i].BookingDate.Before(out[j].BookingDate)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *memStore) AssignDriver(_ context.Context, bookingID, driverID uuid.UUID) (*models.Booking, *models.Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[bookingID]
	if !ok || b.Status != models.StatusPending || b.DriverID != nil {
		return nil, nil, models.ErrBookingNotAvailable
	}
	d, ok := s.drivers[driverID]
	if !ok || d.Availability != models.Available {
		return nil, nil, models.ErrDriverAlreadyOnDuty
	}
	id := driverID
	b.DriverID = &id
	b.Status = models.StatusAccepted
	d.Availability = models.OnDuty
	bc, dc := *b, *d
	return &bc, &dc, nil
}

func (s *memStore) CompleteRide(_ context.Context, bookingID, driverID uuid.UUID, payout float64) (*models.Booking, *models.Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[bookingID]
	if !ok || b.Status != models.StatusAccepted || b.DriverID == nil || *b.DriverID != driverID {
		return nil, nil, models.ErrInvalidTransition
	}
	d := s.drivers[driverID]
	now := time.Now().UTC()
	b.Status = models.StatusCompleted
	b.CompletedAt = &now
	d.TotalTrips++
	d.EarningsMonth += payout
	d.Availability = models.Available
	bc, dc := *b, *d
	return &bc, &dc, nil
}

func (s *memStore) CreateDriver(_ context.Context, d *models.Driver) (*models.Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *d
	s.drivers[d.ID] = &cp
	return d, nil
}

func (s *memStore) GetDriverByID(_ context.Context, id uuid.UUID) (*models.Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drivers[id]
	if !ok {
		return nil, models.ErrDriverNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *memStore) GetDriverByMobile(_ context.Context, mobile string) (*models.Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.drivers {
		if d.MobileNo == mobile {
			cp := *d
			return &cp, nil
		}
	}
	return nil, models.ErrDriverNotFound
}

func (s *memStore) UpdateApproval(_ context.Context, id uuid.UUID, status models.DriverStatus) (*models.Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drivers[id]
	if !ok {
		return nil, models.ErrDriverNotFound
	}
	d.Status = status
	d.IsActive = status == models.DriverApproved
	cp := *d
	return &cp, nil
}

func (s *memStore) ReconcileAvailability(context.Context) (int64, int64, error) {
	return 0, 0, nil
}
