package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	models "github.com/chrisdamba/boatride/internal"
	"github.com/chrisdamba/boatride/internal/ports"
	"github.com/chrisdamba/boatride/internal/validator"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	moduleDrivers = "Drivers"
	entityDriver  = "Driver"
)

type driverService struct {
	repo      ports.DriverRepository
	catalog   ports.CatalogStore
	tokens    ports.TokenIssuer
	audit     ports.AuditSink
	validator *validator.CustomValidator
	log       *slog.Logger
	hashCost  int
}

func NewDriverService(
	repo ports.DriverRepository,
	catalog ports.CatalogStore,
	tokens ports.TokenIssuer,
	audit ports.AuditSink,
	log *slog.Logger,
) *driverService {
	return &driverService{
		repo:      repo,
		catalog:   catalog,
		tokens:    tokens,
		audit:     audit,
		validator: validator.NewCustomValidator(),
		log:       log,
		hashCost:  bcrypt.DefaultCost,
	}
}

func (s *driverService) Register(ctx context.Context, req *models.DriverRegistration) (*models.Driver, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	zone, err := s.catalog.GetZoneByID(ctx, req.ZoneID)
	if err != nil {
		return nil, fmt.Errorf("invalid zone: %w", err)
	}

	driver := &models.Driver{
		ID:           uuid.New(),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Address:      strings.TrimSpace(req.Address),
		MobileNo:     req.MobileNo,
		ZoneID:       zone.ID,
		ZoneName:     zone.Name,
		Status:       models.DriverPending,
		IsActive:     false,
		Availability: models.Available,
	}

	if req.BoatID != nil {
		boat, err := s.catalog.GetBoatByID(ctx, *req.BoatID)
		if err != nil {
			return nil, fmt.Errorf("invalid boat: %w", err)
		}
		if boat.ZoneID != zone.ID {
			return nil, fmt.Errorf("%w: boat %s operates in %s", models.ErrZoneMismatch, boat.Code, boat.ZoneName)
		}
		driver.BoatID = &boat.ID
		driver.BoatType = boat.BoatType
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}
	driver.PasswordHash = string(hash)

	saved, err := s.repo.CreateDriver(ctx, driver)
	if err != nil {
		return nil, fmt.Errorf("error registering driver: %w", err)
	}

	s.log.Info("driver registered",
		slog.String("action", "driver_registered"),
		slog.String("driver_id", saved.DriverID),
		slog.String("zone", saved.ZoneName),
	)
	s.audit.Record(ctx, models.AuditEntry{
		Actor:      driverName(saved),
		ActorID:    saved.ID.String(),
		Action:     "Registered Driver",
		Module:     moduleDrivers,
		Details:    fmt.Sprintf("Driver %s registered in zone %s", saved.DriverID, saved.ZoneName),
		EntityID:   saved.DriverID,
		EntityType: entityDriver,
	})

	return saved, nil
}

// Login checks the password and returns a driver token. Unknown mobiles and
// wrong passwords give the same error.
func (s *driverService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	driver, err := s.repo.GetDriverByMobile(ctx, req.MobileNo)
	if errors.Is(err, models.ErrDriverNotFound) {
		return nil, models.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(driver.PasswordHash), []byte(req.Password)); err != nil {
		s.log.Warn("driver login failed",
			slog.String("action", "driver_login_failed"),
			slog.String("driver_id", driver.DriverID),
		)
		return nil, models.ErrInvalidCredentials
	}

	token, err := s.tokens.IssueToken(driver.ID, models.RoleDriver)
	if err != nil {
		return nil, fmt.Errorf("error issuing token: %w", err)
	}

	s.log.Info("driver logged in",
		slog.String("action", "driver_login"),
		slog.String("driver_id", driver.DriverID),
	)
	return &models.LoginResponse{Token: token, Driver: driver}, nil
}

func (s *driverService) GetDriver(ctx context.Context, id uuid.UUID) (*models.Driver, error) {
	return s.repo.GetDriverByID(ctx, id)
}

func (s *driverService) Approve(ctx context.Context, id string) (*models.Driver, error) {
	return s.setApproval(ctx, id, models.DriverApproved, "Approved Driver")
}

func (s *driverService) Reject(ctx context.Context, id string) (*models.Driver, error) {
	return s.setApproval(ctx, id, models.DriverRejected, "Rejected Driver")
}

func (s *driverService) setApproval(ctx context.Context, id string, status models.DriverStatus, action string) (*models.Driver, error) {
	driverID, err := uuid.Parse(id)
	if err != nil {
		return nil, models.ErrInvalidUUID
	}

	driver, err := s.repo.UpdateApproval(ctx, driverID, status)
	if err != nil {
		return nil, err
	}

	s.log.Info("driver approval changed",
		slog.String("action", "driver_approval"),
		slog.String("driver_id", driver.DriverID),
		slog.String("status", string(driver.Status)),
	)
	s.audit.Record(ctx, models.AuditEntry{
		Actor:      "Admin",
		Action:     action,
		Module:     moduleDrivers,
		Details:    fmt.Sprintf("Driver %s is now %s", driver.DriverID, driver.Status),
		EntityID:   driver.DriverID,
		EntityType: entityDriver,
	})
	return driver, nil
}
