// Package dateparse recognizes calendar dates in English free text.
package dateparse

import (
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// WhenParser understands phrases like "may 1", "march", "tomorrow", "next friday",
// "12/25" or "25/12/2026". Slashed dates are read month first when both readings are valid.
type WhenParser struct {
	parser *when.Parser
}

func NewWhenParser() *WhenParser {
	w := when.New(nil)
	w.Add(
		en.Weekday(rules.Override),
		en.CasualDate(rules.Override),
		en.CasualTime(rules.Override),
		en.Hour(rules.Override),
		en.HourMinute(rules.Override),
		en.Deadline(rules.Override),
		en.PastTime(rules.Override),
		newMonthName(rules.Override),
		slashMDY(rules.Skip),
		common.SlashDMY(rules.Skip),
	)
	return &WhenParser{parser: w}
}

// ParseDates returns at most one date: the first phrase the rules recognize.
func (p *WhenParser) ParseDates(text string, ref time.Time) ([]time.Time, error) {
	result, err := p.parser.Parse(text, ref)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}
	return []time.Time{result.Time}, nil
}
