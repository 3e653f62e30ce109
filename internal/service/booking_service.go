package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	models "github.com/chrisdamba/boatride/internal"
	"github.com/chrisdamba/boatride/internal/ports"
	"github.com/chrisdamba/boatride/internal/validator"
	"github.com/google/uuid"
)

const (
	moduleBookings   = "Bookings"
	entityBooking    = "Booking"
	defaultPageLimit = 10
)

type bookingService struct {
	repo      ports.BookingRepository
	catalog   ports.CatalogStore
	pricing   ports.PricingResolver
	coupons   ports.CouponStore
	audit     ports.AuditSink
	validator *validator.CustomValidator
	log       *slog.Logger
}

func NewBookingService(
	repo ports.BookingRepository,
	catalog ports.CatalogStore,
	pricing ports.PricingResolver,
	coupons ports.CouponStore,
	audit ports.AuditSink,
	log *slog.Logger,
) *bookingService {
	return &bookingService{
		repo:      repo,
		catalog:   catalog,
		pricing:   pricing,
		coupons:   coupons,
		audit:     audit,
		validator: validator.NewCustomValidator(),
		log:       log,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, request *models.BookingRequest) (*models.Booking, error) {
	if err := s.validator.Validate(request); err != nil {
		return nil, err
	}

	boat, err := s.catalog.GetBoatByID(ctx, request.BoatID)
	if err != nil {
		return nil, fmt.Errorf("invalid boat: %w", err)
	}
	if boat.Capacity > 0 && request.Seats > boat.Capacity {
		return nil, fmt.Errorf("%w: seats exceed boat capacity of %d", models.ErrValidation, boat.Capacity)
	}

	// the booking zone defaults to the zone the boat operates in
	zoneID := boat.ZoneID
	if request.ZoneID != nil {
		zoneID = *request.ZoneID
	}
	zone, err := s.catalog.GetZoneByID(ctx, zoneID)
	if err != nil {
		return nil, fmt.Errorf("invalid zone: %w", err)
	}

	pricePerSeat := request.PricePerCandidate
	if pricePerSeat <= 0 {
		pricePerSeat, err = s.pricing.ResolvePrice(ctx, boat.BoatTypeID, &zone.ID, request.TripType)
		if err != nil {
			return nil, fmt.Errorf("error resolving price: %w", err)
		}
	}
	totalPrice := request.TotalPrice
	if totalPrice <= 0 {
		totalPrice = round2(pricePerSeat * float64(request.Seats))
	}

	booking := &models.Booking{
		ID:                uuid.New(),
		CustomerID:        request.CustomerID,
		BoatID:            boat.ID,
		BoatName:          boat.Name,
		BoatType:          boat.BoatType,
		Seats:             request.Seats,
		TripType:          request.TripType,
		PickupPoint:       request.PickupPoint,
		ZoneID:            &zone.ID,
		ZoneName:          zone.Name,
		BookingDate:       request.BookingDate.UTC(),
		TotalPrice:        totalPrice,
		PricePerCandidate: pricePerSeat,
		AdvancePayment:    request.AdvancePayment,
		RemainingPayment:  request.RemainingPayment,
		PaymentMethod:     request.PaymentMethod,
		Status:            models.StatusPending,
	}

	if request.CouponID != nil {
		coupon, err := s.coupons.GetCouponByID(ctx, *request.CouponID)
		if err != nil {
			return nil, fmt.Errorf("invalid coupon: %w", err)
		}
		discount, err := couponDiscount(coupon, totalPrice, time.Now().UTC())
		if err != nil {
			return nil, err
		}
		booking.CouponID = &coupon.ID
		booking.CouponCode = coupon.Code
		booking.DiscountAmount = discount
	}
	booking.FinalPrice = round2(totalPrice - booking.DiscountAmount)

	// GST is recorded as the client quoted it; nothing is added server side
	booking.GSTPercentage = request.GSTPercentage
	if booking.GSTPercentage <= 0 {
		booking.GSTPercentage = models.DefaultGSTPercentage
	}
	booking.GSTAmount = round2(request.GSTAmount)
	booking.PriceWithGST = request.PriceWithGST
	if booking.PriceWithGST <= 0 {
		booking.PriceWithGST = round2(booking.FinalPrice + booking.GSTAmount)
	}

	saved, err := s.repo.CreateBooking(ctx, booking)
	if err != nil {
		return nil, fmt.Errorf("error creating booking: %w", err)
	}

	s.log.Info("booking created",
		slog.String("action", "booking_created"),
		slog.String("booking_id", saved.BookingID),
		slog.String("boat_type", saved.BoatType),
		slog.String("zone", saved.ZoneName),
	)
	s.audit.Record(ctx, models.AuditEntry{
		Action:     "Created Booking",
		Module:     moduleBookings,
		Details:    fmt.Sprintf("Booking %s created for %d seat(s) on %s", saved.BookingID, saved.Seats, saved.BoatName),
		EntityID:   saved.BookingID,
		EntityType: entityBooking,
	})

	return saved, nil
}

// couponDiscount returns the discount the coupon grants on total. It never
// exceeds total so the final price stays non-negative.
func couponDiscount(c *models.Coupon, total float64, now time.Time) (float64, error) {
	if c.Status != models.CouponActive {
		return 0, fmt.Errorf("%w: coupon %s is not active", models.ErrCouponNotApplicable, c.Code)
	}
	if !c.ExpiryDate.IsZero() && c.ExpiryDate.Before(now) {
		return 0, fmt.Errorf("%w: coupon %s has expired", models.ErrCouponNotApplicable, c.Code)
	}
	if c.MaxUses != nil && c.CurrentUses >= *c.MaxUses {
		return 0, models.ErrCouponExhausted
	}
	if total < c.MinOrder {
		return 0, fmt.Errorf("%w: order below minimum of %.2f", models.ErrCouponNotApplicable, c.MinOrder)
	}

	return discountOn(c, total)
}

func discountOn(c *models.Coupon, total float64) (float64, error) {
	var discount float64
	switch c.DiscountType {
	case models.CouponPercentage:
		discount = total * c.Discount / 100
	case models.CouponFixed:
		discount = c.Discount
	default:
		return 0, fmt.Errorf("%w: unknown discount type %q", models.ErrCouponNotApplicable, c.DiscountType)
	}
	if discount > total {
		discount = total
	}
	return round2(discount), nil
}

// reprice recomputes the money fields of b for its current seat count. The
// applied coupon is re-evaluated against the new total without re-checking
// its eligibility, since its use was claimed when the booking was made. A
// booking that was quoted with GST keeps its rate.
func (s *bookingService) reprice(ctx context.Context, b *models.Booking) error {
	b.TotalPrice = round2(b.PricePerCandidate * float64(b.Seats))

	if b.CouponID != nil {
		coupon, err := s.coupons.GetCouponByID(ctx, *b.CouponID)
		switch {
		case errors.Is(err, models.ErrCouponNotFound):
			b.DiscountAmount = math.Min(b.DiscountAmount, b.TotalPrice)
		case err != nil:
			return fmt.Errorf("error resolving coupon: %w", err)
		default:
			if b.DiscountAmount, err = discountOn(coupon, b.TotalPrice); err != nil {
				return err
			}
		}
	} else {
		b.DiscountAmount = math.Min(b.DiscountAmount, b.TotalPrice)
	}
	b.FinalPrice = round2(b.TotalPrice - b.DiscountAmount)

	if b.GSTAmount > 0 {
		b.GSTAmount = round2(b.FinalPrice * b.GSTPercentage / 100)
	}
	b.PriceWithGST = round2(b.FinalPrice + b.GSTAmount)
	return nil
}

func (s *bookingService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	bookingID, err := uuid.Parse(id)
	if err != nil {
		return nil, models.ErrInvalidUUID
	}
	return s.repo.GetBookingByID(ctx, bookingID)
}

func (s *bookingService) AllBookings(ctx context.Context, req models.GetBookingsRequest) (*models.AllBookingsResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}

	bookings, nextCursor, err := s.repo.GetBookingsPaginated(ctx, req.CustomerID, req.Cursor, limit)
	if err != nil {
		return nil, fmt.Errorf("error fetching bookings: %w", err)
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}

	return &models.AllBookingsResponse{
		Bookings: bookings,
		Limit:    limit,
		Cursor:   nextCursor,
	}, nil
}

// UpdateBooking applies an administrative patch. Status only moves forward
// and driver availability follows the booking in and out of Accepted.
func (s *bookingService) UpdateBooking(ctx context.Context, id string, patch *models.BookingPatch) (*models.Booking, error) {
	bookingID, err := uuid.Parse(id)
	if err != nil {
		return nil, models.ErrInvalidUUID
	}
	if err := s.validator.Validate(patch); err != nil {
		return nil, err
	}

	current, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	next := *current
	var boat *models.Boat
	if patch.Seats != nil && *patch.Seats != current.Seats {
		boat, err = s.catalog.GetBoatByID(ctx, current.BoatID)
		if err != nil {
			return nil, fmt.Errorf("error resolving boat: %w", err)
		}
		if boat.Capacity > 0 && *patch.Seats > boat.Capacity {
			return nil, fmt.Errorf("%w: seats exceed boat capacity of %d", models.ErrValidation, boat.Capacity)
		}
		next.Seats = *patch.Seats
		if err := s.reprice(ctx, &next); err != nil {
			return nil, err
		}
	}
	if patch.TripType != nil {
		next.TripType = *patch.TripType
	}
	if patch.PickupPoint != nil {
		next.PickupPoint = *patch.PickupPoint
	}
	if patch.BookingDate != nil {
		next.BookingDate = patch.BookingDate.UTC()
	}
	if patch.DriverID != nil {
		driverID := *patch.DriverID
		next.DriverID = &driverID
	}
	if patch.Status != nil {
		if !current.Status.CanMoveTo(*patch.Status) {
			return nil, fmt.Errorf("%w: %s to %s", models.ErrInvalidTransition, current.Status, *patch.Status)
		}
		next.Status = *patch.Status
	}

	if next.Status == models.StatusCompleted && current.Status != models.StatusCompleted {
		if next.DriverID == nil {
			if boat == nil {
				if boat, err = s.catalog.GetBoatByID(ctx, next.BoatID); err != nil {
					return nil, fmt.Errorf("error resolving boat driver: %w", err)
				}
			}
			next.DriverID = boat.AssignedDriverID
		}
		now := time.Now().UTC()
		next.CompletedAt = &now
	}

	switch {
	case next.Status.HoldsDriver() && next.DriverID == nil:
		return nil, fmt.Errorf("%w: a %s booking needs a driver", models.ErrValidation, next.Status)
	case !next.Status.HoldsDriver() && next.Status != models.StatusCancelled && next.DriverID != nil:
		return nil, fmt.Errorf("%w: a %s booking cannot carry a driver", models.ErrValidation, next.Status)
	case next.Status == models.StatusCancelled:
		next.DriverID = nil
	}

	update := models.BookingUpdate{
		Booking:        &next,
		ExpectedStatus: current.Status,
	}
	if current.Status == models.StatusAccepted && current.DriverID != nil {
		leaving := next.Status != models.StatusAccepted || !sameID(current.DriverID, next.DriverID)
		if leaving {
			update.ReleaseDriver = current.DriverID
		}
	}
	if next.Status == models.StatusAccepted {
		entering := current.Status != models.StatusAccepted || !sameID(current.DriverID, next.DriverID)
		if entering {
			update.OccupyDriver = next.DriverID
		}
	}

	updated, err := s.repo.UpdateBooking(ctx, update)
	if err != nil {
		return nil, fmt.Errorf("error updating booking: %w", err)
	}

	s.log.Info("booking updated",
		slog.String("action", "booking_updated"),
		slog.String("booking_id", updated.BookingID),
		slog.String("from_status", string(current.Status)),
		slog.String("to_status", string(updated.Status)),
	)
	s.audit.Record(ctx, models.AuditEntry{
		Action:     "Updated Booking",
		Module:     moduleBookings,
		Details:    fmt.Sprintf("Booking %s updated, status %s -> %s", updated.BookingID, current.Status, updated.Status),
		EntityID:   updated.BookingID,
		EntityType: entityBooking,
	})

	return updated, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, id string) (*models.Booking, error) {
	bookingID, err := uuid.Parse(id)
	if err != nil {
		return nil, models.ErrInvalidUUID
	}

	cancelled, err := s.repo.CancelBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, models.ErrInvalidTransition) {
			return nil, fmt.Errorf("%w: completed bookings cannot be cancelled", err)
		}
		return nil, err
	}

	s.log.Info("booking cancelled",
		slog.String("action", "booking_cancelled"),
		slog.String("booking_id", cancelled.BookingID),
	)
	s.audit.Record(ctx, models.AuditEntry{
		Action:     "Cancelled Booking",
		Module:     moduleBookings,
		Details:    fmt.Sprintf("Booking %s cancelled", cancelled.BookingID),
		EntityID:   cancelled.BookingID,
		EntityType: entityBooking,
	})

	return cancelled, nil
}

func (s *bookingService) Stats(ctx context.Context) (*models.BookingStats, error) {
	stats, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("error counting bookings: %w", err)
	}
	return stats, nil
}

func sameID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
