package workers

import (
	"context"
	"event-lab/contract"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

// HealthSample is one reading of the assistant process and its event snapshot.
type HealthSample struct {
	Events      int
	SnapshotAge time.Duration
	CPUPercent  float64
	RAMPercent  float32
	Status      string
}

// HealthWorker periodically logs resource usage and how stale the snapshot is.
type HealthWorker struct {
	log      *slog.Logger
	source   contract.EventSource
	interval time.Duration
	now      func() time.Time
	pid      int32
}

func NewHealthWorker(source contract.EventSource, interval time.Duration, log *slog.Logger) *HealthWorker {
	return &HealthWorker{
		log:      log,
		source:   source,
		interval: interval,
		now:      time.Now,
		pid:      int32(os.Getpid()),
	}
}

func (w *HealthWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping health monitoring")
			return nil
		case <-ticker.C:
			sample, err := w.Sample()
			if err != nil {
				w.log.Debug("Error while sampling process", "pid", w.pid, "error", err)
				continue
			}
			w.log.Info("Health",
				"events", sample.Events,
				"snapshot_age", sample.SnapshotAge.Round(time.Millisecond),
				"cpu", sample.CPUPercent,
				"ram", sample.RAMPercent,
				"status", sample.Status)
		}
	}
}

// Sample reads the snapshot first so a process error still reports it.
func (w *HealthWorker) Sample() (HealthSample, error) {
	sample := HealthSample{Events: len(w.source.Events())}
	if at := w.source.RefreshedAt(); !at.IsZero() {
		sample.SnapshotAge = w.now().Sub(at)
	}

	p, err := process.NewProcess(w.pid)
	if err != nil {
		return sample, err
	}
	if sample.Status, err = p.Status(); err != nil {
		return sample, err
	}
	if sample.CPUPercent, err = p.CPUPercent(); err != nil {
		return sample, err
	}
	if sample.RAMPercent, err = p.MemoryPercent(); err != nil {
		return sample, err
	}
	return sample, nil
}
