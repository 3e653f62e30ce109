package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/chrisdamba/boatride/internal/ports"
)

// Reconciler periodically realigns driver availability with the bookings a
// driver actually holds, repairing any drift the transactional writes missed.
type Reconciler struct {
	drivers  ports.DriverRepository
	interval time.Duration
	log      *slog.Logger
}

func NewReconciler(drivers ports.DriverRepository, interval time.Duration, log *slog.Logger) *Reconciler {
	return &Reconciler{drivers: drivers, interval: interval, log: log}
}

// Run blocks until ctx is done. A non-positive interval disables it.
func (r *Reconciler) Run(ctx context.Context) {
	if r.interval <= 0 {
		r.log.Info("availability reconciler disabled", slog.String("action", "reconcile_disabled"))
		return
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.RunOnce(ctx)
		}
	}
}

func (r *Reconciler) RunOnce(ctx context.Context) {
	released, occupied, err := r.drivers.ReconcileAvailability(ctx)
	if err != nil {
		r.log.Error("availability reconcile failed",
			slog.String("action", "reconcile_failed"),
			slog.String("error", err.Error()),
		)
		return
	}
	if released > 0 || occupied > 0 {
		r.log.Warn("driver availability drift repaired",
			slog.String("action", "reconcile_repaired"),
			slog.Int64("released", released),
			slog.Int64("occupied", occupied),
		)
		return
	}
	r.log.Debug("driver availability consistent", slog.String("action", "reconcile_ok"))
}
