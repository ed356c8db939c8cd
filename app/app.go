// Package app assembles the stores, workers and services of the event assistant.
package app

import (
	"context"
	"errors"
	"event-lab/auth"
	"event-lab/dateparse"
	"event-lab/internal"
	"event-lab/interpreter"
	"event-lab/media"
	"event-lab/moderation"
	"event-lab/repositories"
	"event-lab/runtime"
	"event-lab/runtime/workers"
	"event-lab/search"
	"event-lab/services"
	"fmt"
	"log/slog"
	"sync"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
)

type App struct {
	Auth      *services.AuthService
	Events    *services.EventService
	Assistant *services.AssistantService
	Profiles  *services.ProfileService
	Images    *media.ImageStore
	Snapshot  *runtime.Snapshot

	supervisor    *workers.Supervisor
	db            *badger.DB
	writer        *bluge.Writer
	conversations *repositories.ConversationRepository
	log           *slog.Logger

	mu      sync.Mutex
	closed  bool
	stop    context.CancelFunc
	running sync.WaitGroup
}

// New opens the stores and wires every component. Close releases them.
func New(config internal.Config, log *slog.Logger) (*App, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return nil, err
	}
	location, err := internal.Location(config.Timezone)
	if err != nil {
		return nil, err
	}
	tokens, err := auth.NewTokenIssuer(config.SessionSecret, config.SessionTTL)
	if err != nil {
		return nil, err
	}
	images, err := media.NewImageStore(config.ImageDirpath, config.ImageMaxBytes, log)
	if err != nil {
		return nil, err
	}
	vocabulary := interpreter.DefaultVocabulary()
	if config.VocabularyFilepath != "" {
		if vocabulary, err = interpreter.LoadVocabulary(config.VocabularyFilepath); err != nil {
			return nil, err
		}
	}

	a := &App{Images: images, log: log}
	a.db, err = badger.Open(buildBadgerOpts(config, log))
	if err != nil {
		return nil, fmt.Errorf("database opening failed: %w", err)
	}
	a.writer, err = bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	a.conversations, err = repositories.NewConversationRepository(a.db, log, config.LimitMessages)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	moderator, err := moderation.NewModerator(vocabulary.Denylist, charReplacement, log)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("moderator: %w", err)
	}

	eventRepository := repositories.NewEventRepository(a.db, log)
	users := repositories.NewUserRepository(a.db)

	a.Snapshot = runtime.NewSnapshot()
	snapshotWorker := workers.NewSnapshotWorker(eventRepository, a.Snapshot, config.SnapshotInterval, log)
	a.supervisor = workers.NewSupervisor(log, config.RestartInterval)
	a.supervisor.Add(snapshotWorker)
	a.supervisor.Add(workers.NewHealthWorker(a.Snapshot, config.MetricInterval, log))

	a.Events = services.NewEventService(
		eventRepository,
		repositories.NewRegistrationRepository(a.db, log),
		users,
		search.NewEventIndex(a.writer, log),
		log,
		services.WithEventLocation(location),
		services.WithDefaultMaxAttendees(config.DefaultMaxAttendees),
		services.WithOnChange(snapshotWorker.Notify),
	)
	a.Auth = services.NewAuthService(users, tokens, log)
	a.Profiles = services.NewProfileService(users, log)

	interp := interpreter.New(vocabulary, dateparse.NewWhenParser(),
		interpreter.WithLocation(location),
		interpreter.WithLogger(log))
	a.Assistant = services.NewAssistantService(interp, a.Snapshot, a.conversations, &moderator, log)
	return a, nil
}

// Run blocks while the background workers run, until ctx is canceled or Close is called.
// After Close it returns at once.
func (a *App) Run(ctx context.Context) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	a.stop = cancel
	a.running.Add(1)
	a.mu.Unlock()

	defer a.running.Done()
	defer cancel()
	a.supervisor.Run(ctx)
}

// Close stops the workers, waits for them to return, then releases every store.
func (a *App) Close() error {
	a.mu.Lock()
	a.closed = true
	if a.stop != nil {
		a.stop()
	}
	a.mu.Unlock()
	a.running.Wait()

	var errs []error
	if a.conversations != nil {
		errs = append(errs, a.conversations.Close())
	}
	if a.writer != nil {
		a.log.Info("Closing Bluge...")
		errs = append(errs, a.writer.Close())
	}
	if a.db != nil {
		a.log.Info("Closing BadgerDB...")
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}

func buildBadgerOpts(config internal.Config, log *slog.Logger) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)
	if log.Enabled(context.Background(), slog.LevelDebug) {
		return options.WithLoggingLevel(badger.DEBUG)
	}
	return options.WithLoggingLevel(badger.WARNING)
}
