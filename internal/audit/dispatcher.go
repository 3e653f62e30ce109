package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	models "github.com/chrisdamba/boatride/internal"
	"github.com/chrisdamba/boatride/internal/utils"
	"github.com/google/uuid"
)

// Writer is one destination for audit entries.
type Writer interface {
	Name() string
	Write(ctx context.Context, entry models.AuditEntry) error
}

const writeTimeout = 5 * time.Second

// Dispatcher queues entries and hands them to its writers from a single
// background goroutine. Record never blocks: when the queue is full the
// entry is dropped and a warning is logged.
type Dispatcher struct {
	writers []Writer
	queue   chan models.AuditEntry
	log     *slog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(log *slog.Logger, bufferSize int, writers ...Writer) *Dispatcher {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Dispatcher{
		writers: writers,
		queue:   make(chan models.AuditEntry, bufferSize),
		log:     log,
	}
}

func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for entry := range d.queue {
			d.deliver(entry)
		}
	}()
}

// Record fills in the id, timestamp and request origin, then enqueues.
func (d *Dispatcher) Record(ctx context.Context, entry models.AuditEntry) {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	if entry.Actor == "" {
		entry.Actor = "System"
	}
	if entry.IPAddress == "" {
		entry.IPAddress = utils.RequestMetaFrom(ctx).ClientIP
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.log.Warn("audit entry after shutdown dropped",
			slog.String("action", "audit_dropped"),
			slog.String("audit_action", entry.Action),
			slog.String("entity_id", entry.EntityID),
		)
		return
	}

	select {
	case d.queue <- entry:
	default:
		d.log.Warn("audit queue full, entry dropped",
			slog.String("action", "audit_dropped"),
			slog.String("audit_action", entry.Action),
			slog.String("entity_id", entry.EntityID),
		)
	}
}

// Close stops accepting entries and waits until the queue is drained.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) deliver(entry models.AuditEntry) {
	for _, w := range d.writers {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := w.Write(ctx, entry)
		cancel()
		if err != nil {
			d.log.Error("audit write failed",
				slog.String("action", "audit_write_failed"),
				slog.String("writer", w.Name()),
				slog.String("audit_action", entry.Action),
				slog.String("entity_id", entry.EntityID),
				slog.String("error", err.Error()),
			)
			continue
		}
		d.log.Debug("audit entry written",
			slog.String("action", "audit_written"),
			slog.String("writer", w.Name()),
			slog.String("audit_action", entry.Action),
		)
	}
}
