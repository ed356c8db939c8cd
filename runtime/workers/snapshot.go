package workers

import (
	"context"
	"event-lab/domain"
	"event-lab/repositories"
	"event-lab/runtime"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"
)

// SnapshotWorker keeps the candidate snapshot in sync with the event store.
// It reloads on every tick and whenever Notify is called.
type SnapshotWorker struct {
	repository repositories.IEventRepository
	snapshot   *runtime.Snapshot
	interval   time.Duration
	trigger    chan struct{}
	log        *slog.Logger
	now        func() time.Time
}

func NewSnapshotWorker(repository repositories.IEventRepository, snapshot *runtime.Snapshot,
	interval time.Duration, log *slog.Logger) *SnapshotWorker {
	return &SnapshotWorker{
		repository: repository,
		snapshot:   snapshot,
		interval:   interval,
		trigger:    make(chan struct{}, 1),
		log:        log,
		now:        time.Now,
	}
}

// Notify asks for a reload without waiting for the next tick. It never blocks.
func (w *SnapshotWorker) Notify() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

func (w *SnapshotWorker) Run(ctx context.Context) error {
	if err := w.Refresh(); err != nil {
		return err
	}
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		case <-w.trigger:
		}
		if err := w.Refresh(); err != nil {
			return err
		}
	}
}

// Refresh loads every event and publishes the ones carrying a date.
func (w *SnapshotWorker) Refresh() error {
	events, err := w.repository.List()
	if err != nil {
		return fmt.Errorf("load events: %w", err)
	}
	dated := lo.Filter(events, func(e domain.Event, _ int) bool {
		return e.HasDate()
	})
	if skipped := len(events) - len(dated); skipped > 0 {
		w.log.Debug("Events without date left out of the snapshot", "count", skipped)
	}
	w.snapshot.Publish(dated, w.now())
	return nil
}
