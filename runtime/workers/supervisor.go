package workers

import (
	"context"
	"event-lab/contract"
	"event-lab/errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Supervisor keeps background workers alive. A worker returning an error or
// panicking is restarted after restartInterval. A worker returning nil is done.
type Supervisor struct {
	log             *slog.Logger
	workers         []contract.Worker
	restartInterval time.Duration

	wg       sync.WaitGroup
	mu       sync.Mutex
	cancel   context.CancelFunc
	restarts map[string]int
}

func NewSupervisor(log *slog.Logger, restartInterval time.Duration) *Supervisor {
	return &Supervisor{log: log, restartInterval: restartInterval, restarts: make(map[string]int)}
}

func (s *Supervisor) Add(worker ...contract.Worker) contract.ISupervisor {
	s.workers = append(s.workers, worker...)
	return s
}

// Run starts every added worker and blocks until all of them returned.
func (s *Supervisor) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	for _, w := range s.workers {
		s.Start(ctx, w)
	}
	s.wg.Wait()
}

// Start supervises one more worker under ctx.
func (s *Supervisor) Start(ctx context.Context, worker contract.Worker) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.supervise(ctx, contract.WorkerName(worker), worker)
	}()
}

// Stop cancels the workers started by Run.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// Restarts reports how many times the named worker was restarted.
func (s *Supervisor) Restarts(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restarts[name]
}

func (s *Supervisor) supervise(ctx context.Context, name string, worker contract.Worker) {
	for attempt := 1; ; attempt++ {
		err := runOnce(ctx, worker)
		switch {
		case ctx.Err() != nil:
			s.log.Info("Worker stopped", "name", name)
			return
		case err == nil:
			s.log.Info("Worker finished", "name", name)
			return
		}

		s.mu.Lock()
		s.restarts[name]++
		s.mu.Unlock()
		s.log.Warn("Worker crashed, restarting", "name", name, "attempt", attempt, "error", err)

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.restartInterval):
		}
	}
}

// runOnce turns a panic into ErrWorkerPanic.
func runOnce(ctx context.Context, worker contract.Worker) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errors.ErrWorkerPanic, r)
		}
	}()
	return worker.Run(ctx)
}
