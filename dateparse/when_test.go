package dateparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// a Monday
var ref = time.Date(2026, time.April, 20, 10, 0, 0, 0, time.UTC)

func TestWhenParser_RecognizedPhrases(t *testing.T) {
	req := require.New(t)
	parser := NewWhenParser()

	dates, err := parser.ParseDates("events on may 1", ref)
	req.NoError(err)
	req.Len(dates, 1)
	req.Equal(time.May, dates[0].Month())
	req.Equal(1, dates[0].Day())

	dates, err = parser.ParseDates("anything tomorrow", ref)
	req.NoError(err)
	req.Len(dates, 1)
	req.Equal(time.April, dates[0].Month())
	req.Equal(21, dates[0].Day())
}

func TestWhenParser_SlashDates(t *testing.T) {
	tests := []struct {
		text  string
		year  int
		month time.Month
		day   int
	}{
		{"events on 12/25", 2026, time.December, 25},
		{"12/25/2025", 2025, time.December, 25},
		{"party 1/3", 2027, time.January, 3},
		{"show me 4/20", 2026, time.April, 20},
		{"5/6 concerts", 2026, time.May, 6},
		{"25/12/2026", 2026, time.December, 25},
	}
	parser := NewWhenParser()
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			req := require.New(t)
			dates, err := parser.ParseDates(tt.text, ref)
			req.NoError(err)
			req.Len(dates, 1)
			req.Equal(tt.year, dates[0].Year())
			req.Equal(tt.month, dates[0].Month())
			req.Equal(tt.day, dates[0].Day())
		})
	}
}

func TestWhenParser_Month_Without_Day_Is_The_First(t *testing.T) {
	req := require.New(t)

	dates, err := NewWhenParser().ParseDates("march band", ref)
	req.NoError(err)
	req.Len(dates, 1)
	req.Equal(time.March, dates[0].Month())
	req.Equal(1, dates[0].Day())
}

func TestWhenParser_NothingRecognized(t *testing.T) {
	tests := []string{
		"jazz in dallas",
		"what may be fun",
		"mar the mood",
		"2/30/2026",
	}
	parser := NewWhenParser()
	for _, text := range tests {
		t.Run(text, func(t *testing.T) {
			req := require.New(t)
			dates, err := parser.ParseDates(text, ref)
			req.NoError(err)
			req.Empty(dates)
		})
	}
}
