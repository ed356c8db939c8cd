package internal

import (
	"fmt"
	"time"
)

type Config struct {
	BadgerFilepath      string        `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath       string        `env:"BLUGE_FILEPATH,required=true"`
	LogLevel            string        `env:"LOG_LEVEL,default=INFO"`
	CharReplacement     string        `env:"CHARACTER_REPLACEMENT,default=*"`
	Timezone            string        `env:"TIMEZONE,default=Local"`
	VocabularyFilepath  string        `env:"VOCABULARY_FILEPATH"`
	SnapshotInterval    time.Duration `env:"SNAPSHOT_INTERVAL,default=30s"`
	RestartInterval     time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	MetricInterval      time.Duration `env:"METRIC_INTERVAL,default=1m"`
	LimitMessages       *int          `env:"LIMIT_MESSAGES"`
	DefaultMaxAttendees int           `env:"DEFAULT_MAX_ATTENDEES,default=50"`
	Colours             bool          `env:"COLOURS,default=true"`
	SessionSecret       string        `env:"SESSION_SECRET,required=true"`
	SessionTTL          time.Duration `env:"SESSION_TTL,default=720h"`
	SessionFilepath     string        `env:"SESSION_FILEPATH,default=.event-lab-session"`
	ImageDirpath        string        `env:"IMAGE_DIRPATH,default=images"`
	ImageMaxBytes       int64         `env:"IMAGE_MAX_BYTES,default=5242880"`
}

// Validate checks what the env tags cannot express.
func (c Config) Validate() error {
	if c.SnapshotInterval <= 0 {
		return fmt.Errorf("SNAPSHOT_INTERVAL must be positive, got %s", c.SnapshotInterval)
	}
	if c.RestartInterval <= 0 {
		return fmt.Errorf("RESTART_INTERVAL must be positive, got %s", c.RestartInterval)
	}
	if c.MetricInterval <= 0 {
		return fmt.Errorf("METRIC_INTERVAL must be positive, got %s", c.MetricInterval)
	}
	if c.LimitMessages != nil && *c.LimitMessages <= 0 {
		return fmt.Errorf("LIMIT_MESSAGES must be positive, got %d", *c.LimitMessages)
	}
	if c.DefaultMaxAttendees < 1 || c.DefaultMaxAttendees > 50 {
		return fmt.Errorf("DEFAULT_MAX_ATTENDEES must be between 1 and 50, got %d", c.DefaultMaxAttendees)
	}
	return nil
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}

// Location resolves TIMEZONE. "Local" and "" mean the machine zone.
func Location(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE %q: %w", name, err)
	}
	return loc, nil
}
