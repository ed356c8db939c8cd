// Package interpreter turns a free-text chat utterance into an intent and
// the list of events it asks for.
//
// Classification precedence is Greeting > Abusive > DateFilter > KeywordFilter > Unrecognized.
// An Interpreter holds no mutable state and can be shared between goroutines.
package interpreter

import (
	"event-lab/domain"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type IntentKind int

const (
	Unrecognized IntentKind = iota
	Greeting
	Abusive
	DateFilter
	KeywordFilter
)

func (k IntentKind) String() string {
	switch k {
	case Greeting:
		return "greeting"
	case Abusive:
		return "abusive"
	case DateFilter:
		return "date_filter"
	case KeywordFilter:
		return "keyword_filter"
	default:
		return "unrecognized"
	}
}

// DateRange is a closed interval of time.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// DayRange spans the calendar day of t in loc, from midnight to 23:59:59.999.
func DayRange(t time.Time, loc *time.Location) DateRange {
	local := t.In(loc)
	y, m, d := local.Date()
	return DateRange{
		Start: time.Date(y, m, d, 0, 0, 0, 0, loc),
		End:   time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), loc),
	}
}

// Contains is inclusive of both bounds.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Intent is the classified purpose of one utterance.
// DateRange is only set for DateFilter, Keywords only for KeywordFilter.
type Intent struct {
	Kind      IntentKind
	DateRange *DateRange
	Keywords  []string
}

// Suggestion is an actionable reply entry pointing to a matched event.
type Suggestion struct {
	EventID domain.EventID
	Label   string
}

type Result struct {
	Intent      Intent
	ReplyText   string
	Matches     []domain.Event
	Suggestions []Suggestion
}

// Messages converts the result into assistant messages: the reply first,
// then one linked message per suggestion in the same order.
func (r Result) Messages(conversation domain.ConversationID, at time.Time) []domain.ChatMessage {
	messages := make([]domain.ChatMessage, 0, len(r.Suggestions)+1)
	messages = append(messages, domain.ChatMessage{
		ID:           uuid.New(),
		Conversation: conversation,
		Sender:       domain.SenderAssistant,
		Text:         r.ReplyText,
		At:           at,
	})
	for _, s := range r.Suggestions {
		messages = append(messages, domain.ChatMessage{
			ID:            uuid.New(),
			Conversation:  conversation,
			Sender:        domain.SenderAssistant,
			Text:          s.Label,
			LinkedEventID: s.EventID,
			At:            at,
		})
	}
	return messages
}

// DateParser extracts calendar dates from free text.
// ref anchors relative phrases such as "tomorrow" or "next friday".
type DateParser interface {
	ParseDates(text string, ref time.Time) ([]time.Time, error)
}

type Option func(*Interpreter)

// WithLocation sets the zone in which a recognized date is expanded to a whole day.
func WithLocation(loc *time.Location) Option {
	return func(i *Interpreter) {
		if loc != nil {
			i.location = loc
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(i *Interpreter) {
		if now != nil {
			i.now = now
		}
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(i *Interpreter) {
		if log != nil {
			i.log = log
		}
	}
}

type Interpreter struct {
	lexicon  lexicon
	parser   DateParser
	location *time.Location
	now      func() time.Time
	log      *slog.Logger
}

// New builds an Interpreter from a vocabulary and a date parser.
// A nil parser disables date extraction.
func New(vocabulary Vocabulary, parser DateParser, opts ...Option) *Interpreter {
	i := &Interpreter{
		lexicon:  newLexicon(vocabulary),
		parser:   parser,
		location: time.Local,
		now:      time.Now,
		log:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Welcome is the opening line of a new conversation.
func (i *Interpreter) Welcome() string {
	return i.lexicon.replies.Welcome
}

// Interpret classifies the utterance and filters candidates accordingly.
// Candidates are never modified and keep their relative order in the result.
func (i *Interpreter) Interpret(utterance string, candidates []domain.Event) Result {
	normalized := Normalize(utterance)
	tokens := Tokenize(normalized)

	if i.lexicon.greetings.containsAny(tokens) {
		return Result{Intent: Intent{Kind: Greeting}, ReplyText: i.lexicon.replies.Greeting}
	}
	if i.lexicon.denylist.containsAny(tokens) {
		return Result{Intent: Intent{Kind: Abusive}, ReplyText: i.lexicon.replies.Abusive}
	}

	cleaned := StripOrdinals(normalized)

	if dateRange, ok := i.extractDate(cleaned); ok {
		intent := Intent{Kind: DateFilter, DateRange: &dateRange}
		matches := lo.Filter(candidates, func(e domain.Event, _ int) bool {
			return dateRange.Contains(e.Date)
		})
		return i.respond(intent, matches)
	}

	keywords := i.extractKeywords(cleaned)
	if len(keywords) == 0 {
		return Result{Intent: Intent{Kind: Unrecognized}, ReplyText: i.lexicon.replies.Unrecognized}
	}
	intent := Intent{Kind: KeywordFilter, Keywords: keywords}
	matches := lo.Filter(candidates, func(e domain.Event, _ int) bool {
		return matchesAnyKeyword(e, keywords)
	})
	return i.respond(intent, matches)
}

// extractDate keeps only the first recognized date. Parser failures count as no date.
func (i *Interpreter) extractDate(text string) (DateRange, bool) {
	if i.parser == nil {
		return DateRange{}, false
	}
	dates, err := i.parser.ParseDates(text, i.now().In(i.location))
	if err != nil {
		i.log.Warn("Date parsing failed, falling back to keywords", "text", text, "error", err)
		return DateRange{}, false
	}
	if len(dates) == 0 {
		return DateRange{}, false
	}
	return DayRange(dates[0], i.location), true
}

func (i *Interpreter) extractKeywords(text string) []string {
	keywords := lo.Filter(Tokenize(text), func(token string, _ int) bool {
		return len([]rune(token)) >= i.lexicon.minKeywordLength && !i.lexicon.stopwords.has(token)
	})
	return lo.Uniq(keywords)
}

// matchesAnyKeyword is a case-insensitive substring test over name, category, location and description.
func matchesAnyKeyword(e domain.Event, keywords []string) bool {
	fields := []string{
		strings.ToLower(e.Name),
		strings.ToLower(e.Category),
		strings.ToLower(e.Location),
		strings.ToLower(e.Description),
	}
	for _, k := range keywords {
		for _, f := range fields {
			if strings.Contains(f, k) {
				return true
			}
		}
	}
	return false
}

func (i *Interpreter) respond(intent Intent, matches []domain.Event) Result {
	if len(matches) == 0 {
		return Result{Intent: intent, ReplyText: i.lexicon.replies.NoMatch}
	}

	lines := make([]string, 0, len(matches))
	suggestions := make([]Suggestion, 0, len(matches))
	for idx, e := range matches {
		name := displayName(e.Name)
		lines = append(lines, fmt.Sprintf("%d. %s (%s, %s)",
			idx+1, name, strings.ToLower(e.Category), e.Date.In(i.location).Format(calendarDateLayout)))
		suggestions = append(suggestions, Suggestion{EventID: e.ID, Label: "Open " + name})
	}

	i.log.Debug("Events matched", "intent", intent.Kind.String(), "matches", len(matches))
	return Result{
		Intent:      intent,
		ReplyText:   strings.Join(lines, "\n"),
		Matches:     matches,
		Suggestions: suggestions,
	}
}

// calendarDateLayout renders dates as "Fri May 01 2026".
const calendarDateLayout = "Mon Jan 02 2006"
