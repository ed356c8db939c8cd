package e2e

import (
	"context"
	"event-lab/app"
	"event-lab/domain"
	"event-lab/internal"
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"
)

// BaseAppSuite boots a full application on temporary stores for every test.
type BaseAppSuite struct {
	suite.Suite
	Config Config
	App    *app.App

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseAppSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
}

func (s *BaseAppSuite) SetupTest() {
	dir := s.T().TempDir()
	config := internal.Config{
		BadgerFilepath:      filepath.Join(dir, "badger"),
		BlugeFilepath:       filepath.Join(dir, "bluge"),
		LogLevel:            s.Config.LogLevel,
		CharReplacement:     "*",
		Timezone:            "UTC",
		SnapshotInterval:    time.Minute,
		RestartInterval:     50 * time.Millisecond,
		MetricInterval:      time.Minute,
		DefaultMaxAttendees: 50,
		SessionSecret:       "e2e-secret-0123456789abcdef012345",
		SessionTTL:          time.Hour,
		ImageDirpath:        filepath.Join(dir, "images"),
		ImageMaxBytes:       1 << 20,
	}

	var err error
	s.App, err = app.New(config, logs.GetLoggerFromString(config.LogLevel))
	s.Require().NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.App.Run(ctx)
	}()
}

func (s *BaseAppSuite) TearDownTest() {
	s.cancel()
	s.wg.Wait()
	s.Require().NoError(s.App.Close())
}

// Step prints a colorized header then runs fn as a subtest.
func (s *BaseAppSuite) Step(name string, fn func()) {
	s.Run(name, func() {
		header := fmt.Sprintf("  ====== %s ======", name)
		if s.Config.Colours {
			header = color.New(color.BgBlack, color.FgGreen).Render(header)
		}
		s.T().Log(header)
		fn()
	})
}

// WaitForSnapshot blocks until the assistant sees the event, or fails the test.
func (s *BaseAppSuite) WaitForSnapshot(id domain.EventID) {
	s.Require().Eventually(func() bool {
		return slices.ContainsFunc(s.App.Snapshot.Events(), func(e domain.Event) bool {
			return e.ID == id
		})
	}, s.Config.SnapshotTimeout, 20*time.Millisecond, "event %s never reached the snapshot", id)
}
