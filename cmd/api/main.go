package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	models "github.com/chrisdamba/boatride/internal"
	"github.com/chrisdamba/boatride/internal/api"
	"github.com/chrisdamba/boatride/internal/audit"
	"github.com/chrisdamba/boatride/internal/auth"
	"github.com/chrisdamba/boatride/internal/ports"
	"github.com/chrisdamba/boatride/internal/repository"
	"github.com/chrisdamba/boatride/internal/service"
	"github.com/chrisdamba/boatride/internal/utils"
	"github.com/chrisdamba/boatride/pkg/config"
	"github.com/chrisdamba/boatride/pkg/health"
	"github.com/chrisdamba/boatride/pkg/logger"
	"github.com/jackc/pgx/v5/pgxpool"
)

type App struct {
	config     *config.Config
	log        *slog.Logger
	server     *http.Server
	db         *pgxpool.Pool
	audit      *audit.Dispatcher
	publisher  *audit.Publisher
	reconciler *service.Reconciler
	stop       context.CancelFunc
}

func NewApp(cfg *config.Config, log *slog.Logger) *App {
	return &App{
		config: cfg,
		log:    log,
	}
}

func (a *App) Initialize(ctx context.Context) error {
	if err := a.setupDatabase(ctx); err != nil {
		return fmt.Errorf("database setup failed: %w", err)
	}

	if err := a.setupAudit(); err != nil {
		return fmt.Errorf("audit setup failed: %w", err)
	}

	if err := a.setupServer(); err != nil {
		return fmt.Errorf("server setup failed: %w", err)
	}

	return nil
}

func (a *App) setupDatabase(ctx context.Context) error {
	config, err := pgxpool.ParseConfig(a.config.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if err := repository.Migrate(ctx, pool); err != nil {
		pool.Close()
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	a.db = pool
	a.log.Info("database ready", slog.String("action", "db_ready"), slog.String("host", a.config.Database.Host))
	return nil
}

func (a *App) setupAudit() error {
	writers := []audit.Writer{repository.NewAuditRepository(a.db)}

	if a.config.AMQP.Enabled() {
		publisher, err := audit.DialPublisher(a.config.AMQP.URL, a.config.AMQP.Exchange)
		if err != nil {
			return err
		}
		a.publisher = publisher
		writers = append(writers, publisher)
		a.log.Info("audit publishing enabled",
			slog.String("action", "amqp_connected"),
			slog.String("exchange", a.config.AMQP.Exchange),
		)
	}

	a.audit = audit.NewDispatcher(a.log, a.config.Audit.BufferSize, writers...)
	a.audit.Start()
	return nil
}

func (a *App) setupServer() error {
	services := a.setupServices()
	router := a.setupRouter(services)

	a.server = &http.Server{
		Addr:         a.config.Server.Address,
		Handler:      utils.Chain(router, utils.RequestID, utils.AccessLog(a.log)),
		WriteTimeout: a.config.Server.WriteTimeout,
		ReadTimeout:  a.config.Server.ReadTimeout,
		IdleTimeout:  a.config.Server.IdleTimeout,
	}

	return nil
}

type Services struct {
	BookingService ports.BookingService
	RideService    ports.RideService
	DriverService  ports.DriverService
	Tokens         *auth.TokenManager
}

func (a *App) setupServices() Services {
	bookings := repository.NewBookingRepository(a.db)
	rides := repository.NewRideRepository(a.db)
	drivers := repository.NewDriverRepository(a.db)
	catalog := repository.NewCatalogRepository(a.db)
	tokens := auth.NewTokenManager(a.config.Auth.JWTSecret, a.config.Auth.TokenTTL)

	a.reconciler = service.NewReconciler(drivers, a.config.Reconcile.Interval, a.log)

	return Services{
		BookingService: service.NewBookingService(bookings, catalog, catalog, catalog, a.audit, a.log),
		RideService:    service.NewRideService(rides, bookings, drivers, a.audit, a.log),
		DriverService:  service.NewDriverService(drivers, catalog, tokens, a.audit, a.log),
		Tokens:         tokens,
	}
}

func (a *App) setupRouter(services Services) http.Handler {
	router := http.NewServeMux()
	const versionPrefix = "/v1"

	jsonOnly := func(h http.HandlerFunc) http.HandlerFunc {
		return utils.AllowedContentTypes(h, "application/json")
	}
	admin := auth.RequireRole(services.Tokens, models.RoleAdmin)
	driver := auth.RequireRole(services.Tokens, models.RoleDriver)

	bs, rs, ds := services.BookingService, services.RideService, services.DriverService

	router.HandleFunc("GET "+versionPrefix+"/health", health.HealthGet(a.db))

	router.HandleFunc("POST "+versionPrefix+"/bookings", jsonOnly(api.CreateBookingHandler(bs, a.log)))
	router.Handle("GET "+versionPrefix+"/bookings", admin(api.ListBookingsHandler(bs, a.log)))
	router.Handle("GET "+versionPrefix+"/bookings/stats", admin(api.BookingStatsHandler(bs, a.log)))
	router.Handle("GET "+versionPrefix+"/bookings/{id}", admin(api.GetBookingHandler(bs, a.log)))
	router.Handle("PUT "+versionPrefix+"/bookings/{id}", admin(jsonOnly(api.UpdateBookingHandler(bs, a.log))))
	router.HandleFunc("PUT "+versionPrefix+"/bookings/{id}/cancel", api.CancelBookingHandler(bs, a.log))

	router.Handle("GET "+versionPrefix+"/driver-bookings/available", driver(api.AvailableBookingsHandler(rs, a.log)))
	router.Handle("POST "+versionPrefix+"/driver-bookings/{bookingId}/accept", driver(api.AcceptBookingHandler(rs, a.log)))
	router.Handle("POST "+versionPrefix+"/driver-bookings/{bookingId}/finish", driver(api.FinishBookingHandler(rs, a.log)))

	router.HandleFunc("POST "+versionPrefix+"/drivers/register", jsonOnly(api.RegisterDriverHandler(ds, a.log)))
	router.HandleFunc("POST "+versionPrefix+"/drivers/login", jsonOnly(api.LoginDriverHandler(ds, a.log)))
	router.Handle("GET "+versionPrefix+"/drivers/me", driver(api.CurrentDriverHandler(ds, a.log)))
	router.Handle("PUT "+versionPrefix+"/drivers/{id}/approve", admin(api.ApproveDriverHandler(ds, a.log)))
	router.Handle("PUT "+versionPrefix+"/drivers/{id}/reject", admin(api.RejectDriverHandler(ds, a.log)))

	return router
}

func (a *App) Run(ctx context.Context) error {
	ctx, a.stop = context.WithCancel(ctx)
	go a.reconciler.Run(ctx)

	serverErrors := make(chan error, 1)

	go func() {
		a.log.Info("starting server", slog.String("action", "server_start"), slog.String("address", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		a.Shutdown(ctx)
		return fmt.Errorf("server error: %w", err)
	case <-shutdown:
		a.log.Info("starting graceful shutdown", slog.String("action", "server_shutdown"))
		return a.Shutdown(ctx)
	case <-ctx.Done():
		return a.Shutdown(ctx)
	}
}

func (a *App) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if a.stop != nil {
		a.stop()
	}

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	// the queue drains into the database, so close it before the pool
	if a.audit != nil {
		a.audit.Close()
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Warn("amqp close failed", slog.String("action", "amqp_close"), slog.String("error", err.Error()))
		}
	}
	if a.db != nil {
		a.db.Close()
	}

	return nil
}

func main() {
	ctx := context.Background()

	cfg, err := config.NewConfig()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New(os.Stdout, cfg.Log.Service, cfg.Log.Level)

	app := NewApp(cfg, log)
	if err := app.Initialize(ctx); err != nil {
		log.Error("failed to initialize application", slog.String("action", "startup_failed"), slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		log.Error("application error", slog.String("action", "server_error"), slog.String("error", err.Error()))
		os.Exit(1)
	}
}
