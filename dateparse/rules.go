package dateparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when/rules"
	"github.com/olebedev/when/rules/en"
)

// slashMDY reads "12/25", "12/25/2025" or "12\25" month first.
// Without a year the next occurrence from ref is used, today included.
func slashMDY(s rules.Strategy) rules.Rule {
	return &rules.F{
		RegExp: regexp.MustCompile(`(?:\W|^)` +
			`(0?[1-9]|1[0-2])` +
			`[/\\]` +
			`(0?[1-9]|[12][0-9]|3[01])` +
			`(?:[/\\]([12][0-9]{3}))?` +
			`(?:\W|$)`),
		Applier: func(m *rules.Match, c *rules.Context, _ *rules.Options, ref time.Time) (bool, error) {
			if (c.Day != nil || c.Month != nil || c.Year != nil) && s != rules.Override {
				return false, nil
			}
			month, _ := strconv.Atoi(m.Captures[0])
			day, _ := strconv.Atoi(m.Captures[1])

			year := ref.Year()
			if m.Captures[2] != "" {
				year, _ = strconv.Atoi(m.Captures[2])
			} else if time.Month(month) < ref.Month() || (time.Month(month) == ref.Month() && day < ref.Day()) {
				year++
			}
			if day > daysIn(year, month) {
				return false, nil
			}
			c.Year, c.Month, c.Day = &year, &month, &day
			return true, nil
		},
	}
}

func daysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// fullMonths holds the names a month may be given by on its own.
// "may" is left out, alone it is nearly always the verb.
var fullMonths = map[string]bool{
	"january": true, "february": true, "march": true, "april": true,
	"june": true, "july": true, "august": true, "september": true,
	"october": true, "november": true, "december": true,
}

// monthName wraps en.ExactMonthDate: a month named without a day means its 1st,
// and an abbreviation or "may" without a day is not a date.
type monthName struct {
	inner rules.Rule
}

func newMonthName(s rules.Strategy) rules.Rule {
	return monthName{inner: en.ExactMonthDate(s)}
}

func (r monthName) Find(text string) *rules.Match {
	for offset := 0; offset < len(text); {
		m := r.inner.Find(text[offset:])
		if m == nil {
			return nil
		}
		m.Left += offset
		m.Right += offset
		offset = m.Right

		if !hasDay(m) {
			if !fullMonths[strings.ToLower(strings.TrimSpace(m.Captures[2]))] {
				continue
			}
			apply := m.Applier
			m.Applier = func(m *rules.Match, c *rules.Context, o *rules.Options, ref time.Time) (bool, error) {
				ok, err := apply(m, c, o, ref)
				if ok && err == nil && c.Day == nil {
					first := 1
					c.Day = &first
				}
				return ok, err
			}
		}
		return m
	}
	return nil
}

// hasDay reports whether a day, ordinal or numeric, was captured around the month.
func hasDay(m *rules.Match) bool {
	return strings.TrimSpace(m.Captures[0]) != "" || strings.TrimSpace(m.Captures[1]) != "" ||
		strings.TrimSpace(m.Captures[3]) != "" || strings.TrimSpace(m.Captures[4]) != ""
}
