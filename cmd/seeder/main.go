package main

import (
	"errors"
	"event-lab/app"
	"event-lab/auth"
	"event-lab/domain"
	apperrors "event-lab/errors"
	"event-lab/internal"
	"event-lab/services"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/mama165/sdk-go/logs"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// SeedConfig drives the demo data. Everything has a default.
type SeedConfig struct {
	Hosts     []string `envconfig:"SEED_HOSTS" default:"alice@example.com,bob@example.com,clara@example.com"`
	Locations []string `envconfig:"SEED_LOCATIONS" default:"Dallas,Austin,Houston"`
	DaysAhead int      `envconfig:"SEED_DAYS_AHEAD" default:"14"`
	Password  string   `envconfig:"SEED_PASSWORD" default:"event-lab-demo"`
}

type demoEvent struct {
	name, description, category string
}

var demoEvents = []demoEvent{
	{"Spring fest", "Food trucks, open air music and games", "Party / Social"},
	{"Jazz night", "Live jazz quartet in a cosy club", "Concert / Music"},
	{"Go meetup", "Talks about concurrency and tooling", "Tech Meetup"},
	{"Pottery workshop", "Hands-on introduction to the wheel", "Workshop"},
	{"Farmers expo", "Local producers and craft stands", "Market / Expo"},
	{"Morning yoga", "Gentle flow in the park", "Health / Wellness"},
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Seeder terminated with error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	var seed SeedConfig
	if err := envconfig.Process("", &seed); err != nil {
		return exitConfig, fmt.Errorf("seed config error: %w", err)
	}
	if len(seed.Hosts) == 0 || len(seed.Locations) == 0 || seed.DaysAhead < 1 {
		return exitConfig, fmt.Errorf("seed config error: hosts, locations and a positive SEED_DAYS_AHEAD are required")
	}
	color.Enable = config.Colours
	logger := logs.GetLoggerFromString(config.LogLevel)

	application, err := app.New(config, logger)
	if err != nil {
		return exitConfig, err
	}
	defer func() {
		_ = application.Close()
	}()

	hosts := make([]domain.User, 0, len(seed.Hosts))
	for _, email := range seed.Hosts {
		user, err := signUpOrIn(application.Auth, email, seed.Password)
		if err != nil {
			return exitRuntime, fmt.Errorf("seed host %s: %w", email, err)
		}
		hosts = append(hosts, user)
	}

	tomorrow := time.Now().Truncate(time.Hour).Add(24 * time.Hour)
	created := 0
	for i, e := range demoEvents {
		request := services.CreateEventRequest{
			CreatorID:    hosts[i%len(hosts)].ID,
			Name:         e.name,
			Description:  e.description,
			Category:     e.category,
			Location:     seed.Locations[i%len(seed.Locations)],
			Date:         tomorrow.Add(time.Duration(i%seed.DaysAhead) * 24 * time.Hour),
			MaxAttendees: 5 + i,
		}
		event, err := application.Events.CreateEvent(request)
		if errors.Is(err, apperrors.ErrScheduleConflict) {
			color.Yellow.Printf("skipped %s: %v\n", e.name, err)
			continue
		}
		if err != nil {
			return exitRuntime, fmt.Errorf("seed event %s: %w", e.name, err)
		}
		created++
		color.Green.Printf("created %s (%s) on %s\n", event.Name, event.ID, event.Date.Format("Mon Jan 02 2006 15:04"))
	}

	color.Cyan.Printf("%d hosts, %d events\n", len(hosts), created)
	return exitOK, nil
}

// signUpOrIn makes reruns idempotent: hosts created by a previous run just sign in.
func signUpOrIn(auths *services.AuthService, email, password string) (domain.User, error) {
	name, _, _ := strings.Cut(email, "@")
	if name != "" {
		name = strings.ToUpper(name[:1]) + name[1:]
	}
	session, err := auths.SignUp(auth.SignUpRequest{
		FullName:        name,
		Email:           email,
		Password:        password,
		ConfirmPassword: password,
	})
	if errors.Is(err, apperrors.ErrUserAlreadyExists) {
		session, err = auths.SignIn(email, password)
	}
	return session.User, err
}
