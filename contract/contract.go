//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"event-lab/domain"
	"reflect"
	"time"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker does one job until ctx is done.
// Returning nil means finished, an error asks the supervisor for a restart.
type Worker interface {
	Run(ctx context.Context) error
}

// Named lets a worker choose the name it is logged under.
type Named interface {
	Name() string
}

// WorkerName prefers Named and falls back to the concrete type name.
func WorkerName(w Worker) string {
	if w == nil {
		return "nil"
	}
	if n, ok := w.(Named); ok {
		return n.Name()
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

// EventSource hands out the point-in-time list of events queries are matched against.
type EventSource interface {
	Events() []domain.Event
	RefreshedAt() time.Time
}
