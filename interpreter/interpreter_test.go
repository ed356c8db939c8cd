package interpreter

import (
	"event-lab/dateparse"
	"event-lab/domain"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

// stubParser recognizes fixed phrases, in declaration order.
type stubParser struct {
	phrases []phrase
	err     error
	mu      sync.Mutex
	calls   []string
}

type phrase struct {
	text string
	date time.Time
}

func (s *stubParser) ParseDates(text string, _ time.Time) ([]time.Time, error) {
	s.mu.Lock()
	s.calls = append(s.calls, text)
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	for _, p := range s.phrases {
		if strings.Contains(text, p.text) {
			return []time.Time{p.date}, nil
		}
	}
	return nil, nil
}

func newTestInterpreter(parser DateParser) *Interpreter {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	now := time.Date(2026, time.April, 20, 9, 0, 0, 0, time.UTC)
	return New(DefaultVocabulary(), parser,
		WithLocation(time.UTC),
		WithClock(func() time.Time { return now }),
		WithLogger(log))
}

func mayFirstParser() *stubParser {
	return &stubParser{phrases: []phrase{
		{text: "may 1", date: time.Date(2026, time.May, 1, 9, 0, 0, 0, time.UTC)},
	}}
}

func TestInterpreter_GreetingWinsOverAbuse(t *testing.T) {
	req := require.New(t)
	parser := mayFirstParser()
	interp := newTestInterpreter(parser)

	res := interp.Interpret("hey, what the shit is on may 1st?", nil)

	req.Equal(Greeting, res.Intent.Kind)
	req.Equal(DefaultVocabulary().Replies.Greeting, res.ReplyText)
	req.Empty(res.Suggestions)
	req.Empty(parser.calls, "no date parsing after a greeting")
}

func TestInterpreter_Abusive(t *testing.T) {
	req := require.New(t)
	parser := mayFirstParser()
	interp := newTestInterpreter(parser)

	res := interp.Interpret("DAMN events on may 1st", []domain.Event{
		{ID: "1", Name: "spring fest", Date: time.Date(2026, time.May, 1, 14, 0, 0, 0, time.UTC)},
	})

	req.Equal(Abusive, res.Intent.Kind)
	req.Equal(DefaultVocabulary().Replies.Abusive, res.ReplyText)
	req.Empty(res.Matches)
	req.Empty(parser.calls)
}

func TestInterpreter_GreetingIsWholeToken(t *testing.T) {
	req := require.New(t)
	interp := newTestInterpreter(nil)

	// "this" contains "hi" but is not a greeting
	res := interp.Interpret("this weekend", nil)
	req.Equal(KeywordFilter, res.Intent.Kind)
	req.Equal([]string{"this", "weekend"}, res.Intent.Keywords)
}

func TestInterpreter_OrdinalsAreNormalizedBeforeDateParsing(t *testing.T) {
	req := require.New(t)
	parser := mayFirstParser()
	interp := newTestInterpreter(parser)

	withSuffix := interp.Interpret("May 1st", nil)
	bare := interp.Interpret("May 1", nil)

	req.Equal(DateFilter, withSuffix.Intent.Kind)
	req.Equal(DateFilter, bare.Intent.Kind)
	req.Equal(bare.Intent.DateRange, withSuffix.Intent.DateRange)
	req.Equal([]string{"may 1", "may 1"}, parser.calls)
}

func TestInterpreter_DateRangeIsInclusive(t *testing.T) {
	req := require.New(t)
	interp := newTestInterpreter(mayFirstParser())

	midnight := time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)
	lastMillisecond := time.Date(2026, time.May, 1, 23, 59, 59, int(999*time.Millisecond), time.UTC)
	candidates := []domain.Event{
		{ID: "before", Name: "before", Date: midnight.Add(-time.Millisecond)},
		{ID: "start", Name: "start", Date: midnight},
		{ID: "end", Name: "end", Date: lastMillisecond},
		{ID: "after", Name: "after", Date: lastMillisecond.Add(time.Millisecond)},
	}

	res := interp.Interpret("what is on may 1", candidates)

	req.Equal(DateFilter, res.Intent.Kind)
	req.NotNil(res.Intent.DateRange)
	req.Equal(midnight, res.Intent.DateRange.Start)
	req.Equal(lastMillisecond, res.Intent.DateRange.End)
	req.Len(res.Matches, 2)
	req.Equal(domain.EventID("start"), res.Matches[0].ID)
	req.Equal(domain.EventID("end"), res.Matches[1].ID)
}

func TestInterpreter_DateRangeFollowsLocation(t *testing.T) {
	req := require.New(t)
	loc := time.FixedZone("UTC-5", -5*60*60)
	parser := &stubParser{phrases: []phrase{
		{text: "may 1", date: time.Date(2026, time.May, 1, 12, 0, 0, 0, loc)},
	}}
	interp := New(DefaultVocabulary(), parser, WithLocation(loc))

	// 2026-05-02 03:00 UTC is still May 1st at 22:00 in UTC-5
	late := domain.Event{ID: "late", Name: "late show", Date: time.Date(2026, time.May, 2, 3, 0, 0, 0, time.UTC)}
	res := interp.Interpret("may 1", []domain.Event{late})

	req.Len(res.Matches, 1)
	req.Contains(res.ReplyText, "Fri May 01 2026")
}

func TestInterpreter_KeywordsUseOrSemantics(t *testing.T) {
	req := require.New(t)
	interp := newTestInterpreter(nil)
	expo := domain.Event{
		ID: "expo", Name: "Spring market", Category: "Other",
		Location: "Convention Expo Hall", Date: time.Date(2026, time.May, 3, 10, 0, 0, 0, time.UTC),
	}
	other := domain.Event{
		ID: "other", Name: "Chess club", Category: "Other",
		Location: "Library", Date: time.Date(2026, time.May, 3, 10, 0, 0, 0, time.UTC),
	}

	res := interp.Interpret("jazz expo", []domain.Event{other, expo})

	req.Equal(KeywordFilter, res.Intent.Kind)
	req.Equal([]string{"jazz", "expo"}, res.Intent.Keywords)
	req.Len(res.Matches, 1)
	req.Equal(domain.EventID("expo"), res.Matches[0].ID)
}

func TestInterpreter_KeywordMatchesDescription(t *testing.T) {
	req := require.New(t)
	interp := newTestInterpreter(mayFirstParser())
	night := domain.Event{
		ID: "night", Name: "Friday nights", Category: "Concert / Music",
		Location: "Dallas", Description: "Live jazz night with local bands",
		Date: time.Date(2026, time.May, 8, 20, 0, 0, 0, time.UTC),
	}
	austin := domain.Event{
		ID: "austin", Name: "Code camp", Category: "Workshop",
		Location: "Austin", Description: "Learn Go",
		Date: time.Date(2026, time.May, 8, 9, 0, 0, 0, time.UTC),
	}

	res := interp.Interpret("find jazz in dallas", []domain.Event{night, austin})

	req.Equal(KeywordFilter, res.Intent.Kind)
	req.Equal([]string{"jazz", "dallas"}, res.Intent.Keywords)
	req.Len(res.Matches, 1)
	req.Equal(domain.EventID("night"), res.Matches[0].ID)

	// The description alone is enough
	res = interp.Interpret("jazz", []domain.Event{night, austin})
	req.Len(res.Matches, 1)
	req.Equal(domain.EventID("night"), res.Matches[0].ID)
}

func TestInterpreter_StopwordsOnly(t *testing.T) {
	req := require.New(t)
	interp := newTestInterpreter(mayFirstParser())
	candidates := []domain.Event{{ID: "1", Name: "the event", Date: time.Now()}}

	res := interp.Interpret("show me the event", candidates)

	req.Equal(Unrecognized, res.Intent.Kind)
	req.NotEmpty(res.ReplyText)
	req.Equal(DefaultVocabulary().Replies.Unrecognized, res.ReplyText)
	req.Empty(res.Suggestions)
	req.Empty(res.Matches)
}

func TestInterpreter_EmptyAndPunctuationOnly(t *testing.T) {
	req := require.New(t)
	interp := newTestInterpreter(mayFirstParser())

	for _, utterance := range []string{"", "   ", "?!...", "a b c"} {
		res := interp.Interpret(utterance, nil)
		req.Equal(Unrecognized, res.Intent.Kind, "utterance=%q", utterance)
		req.NotEmpty(res.ReplyText)
	}
}

func TestInterpreter_NoMatch(t *testing.T) {
	req := require.New(t)
	interp := newTestInterpreter(mayFirstParser())
	candidates := []domain.Event{
		{ID: "gala", Name: "gala", Date: time.Date(2026, time.May, 2, 10, 0, 0, 0, time.UTC)},
	}

	res := interp.Interpret("events on may 1st", candidates)
	req.Equal(DateFilter, res.Intent.Kind)
	req.Equal(DefaultVocabulary().Replies.NoMatch, res.ReplyText)
	req.Empty(res.Suggestions)

	res = interp.Interpret("salsa", candidates)
	req.Equal(KeywordFilter, res.Intent.Kind)
	req.Equal(DefaultVocabulary().Replies.NoMatch, res.ReplyText)
	req.Empty(res.Suggestions)
}

func TestInterpreter_EndToEndDateQuery(t *testing.T) {
	req := require.New(t)
	interp := newTestInterpreter(mayFirstParser())
	springFest := domain.Event{
		ID: "spring-fest-id", Name: "spring fest", Category: "Party / Social",
		Date: time.Date(2026, time.May, 1, 14, 0, 0, 0, time.UTC),
	}
	gala := domain.Event{
		ID: "gala-id", Name: "gala", Category: "Other",
		Date: time.Date(2026, time.May, 2, 10, 0, 0, 0, time.UTC),
	}

	res := interp.Interpret("events on May 1st", []domain.Event{springFest, gala})

	req.Equal(DateFilter, res.Intent.Kind)
	req.Equal([]domain.Event{springFest}, res.Matches)
	req.Contains(res.ReplyText, "1. Spring fest")
	req.Equal("1. Spring fest (party / social, Fri May 01 2026)", res.ReplyText)
	req.Equal([]Suggestion{{EventID: "spring-fest-id", Label: "Open Spring fest"}}, res.Suggestions)
}

func TestInterpreter_ReplyKeepsCandidateOrder(t *testing.T) {
	req := require.New(t)
	interp := newTestInterpreter(nil)
	at := time.Date(2026, time.June, 6, 18, 0, 0, 0, time.UTC)
	candidates := []domain.Event{
		{ID: "c", Name: "Zumba in the park", Category: "Health / Wellness", Date: at},
		{ID: "a", Name: "ART walk", Category: "Art & Culture", Location: "Park avenue", Date: at},
		{ID: "b", Name: "Bakery tour", Category: "Other", Date: at},
	}

	res := interp.Interpret("park", candidates)

	req.Len(res.Suggestions, 2)
	req.Equal("1. Zumba in the park (health / wellness, Sat Jun 06 2026)\n"+
		"2. Art walk (art & culture, Sat Jun 06 2026)", res.ReplyText)
	req.Equal([]Suggestion{
		{EventID: "c", Label: "Open Zumba in the park"},
		{EventID: "a", Label: "Open Art walk"},
	}, res.Suggestions)
}

func TestInterpreter_ParserErrorFallsBackToKeywords(t *testing.T) {
	req := require.New(t)
	parser := &stubParser{err: fmt.Errorf("boom")}
	interp := newTestInterpreter(parser)
	candidates := []domain.Event{{ID: "1", Name: "Tech meetup", Category: "Tech Meetup", Date: time.Now()}}

	res := interp.Interpret("tech tomorrow", candidates)

	req.Equal(KeywordFilter, res.Intent.Kind)
	req.Nil(res.Intent.DateRange)
	req.Len(res.Matches, 1)
}

func TestInterpreter_DoesNotMutateCandidates(t *testing.T) {
	req := require.New(t)
	interp := newTestInterpreter(nil)
	candidates := []domain.Event{
		{ID: "1", Name: "lower", Category: "Other", Date: time.Now()},
		{ID: "2", Name: "Gala NIGHT", Category: "Party / Social", Date: time.Now()},
	}
	snapshot := append([]domain.Event(nil), candidates...)

	_ = interp.Interpret("gala", candidates)

	req.Equal(snapshot, candidates)
}

func TestInterpreter_DuplicateKeywordsAreCollapsed(t *testing.T) {
	req := require.New(t)
	interp := newTestInterpreter(nil)

	res := interp.Interpret("AI ai, ai workshop", nil)

	req.Equal([]string{"ai", "workshop"}, res.Intent.Keywords)
}

func TestInterpreter_CustomVocabulary(t *testing.T) {
	req := require.New(t)
	vocab := Vocabulary{
		Greetings:        []string{"bonjour"},
		Denylist:         []string{"zut"},
		Stopwords:        []string{"events"},
		MinKeywordLength: 3,
		Replies: Replies{
			Greeting: "Salut !",
			NoMatch:  "Rien.",
		},
	}
	interp := New(vocab, nil)

	req.Equal(Greeting, interp.Interpret("Bonjour", nil).Intent.Kind)
	req.Equal("Salut !", interp.Interpret("Bonjour", nil).ReplyText)
	req.Equal(Abusive, interp.Interpret("zut alors", nil).Intent.Kind)

	// "hi" is no longer a greeting, and two-letter words are too short
	res := interp.Interpret("hi ai events", nil)
	req.Equal(Unrecognized, res.Intent.Kind)
	req.Equal(DefaultVocabulary().Replies.Unrecognized, res.ReplyText)

	res = interp.Interpret("jazz", nil)
	req.Equal("Rien.", res.ReplyText)
}

func TestInterpreter_VocabularyIsCopied(t *testing.T) {
	req := require.New(t)
	vocab := DefaultVocabulary()
	interp := New(vocab, nil)

	vocab.Greetings[0] = "jazz"

	req.Equal(KeywordFilter, interp.Interpret("jazz", nil).Intent.Kind)
	req.Equal(Greeting, interp.Interpret("hi", nil).Intent.Kind)
}

func TestResult_Messages(t *testing.T) {
	req := require.New(t)
	at := time.Now().UTC()
	res := Result{
		ReplyText: "1. Gala (other, Sat May 02 2026)",
		Suggestions: []Suggestion{
			{EventID: "gala-id", Label: "Open Gala"},
		},
	}

	messages := res.Messages("conv", at)

	req.Len(messages, 2)
	req.Equal(domain.SenderAssistant, messages[0].Sender)
	req.Equal(res.ReplyText, messages[0].Text)
	req.False(messages[0].IsSuggestion())
	req.Equal(domain.EventID("gala-id"), messages[1].LinkedEventID)
	req.Equal("Open Gala", messages[1].Text)
	req.True(messages[1].IsSuggestion())
	req.NotEqual(messages[0].ID, messages[1].ID)
	for _, m := range messages {
		req.Equal(domain.ConversationID("conv"), m.Conversation)
		req.Equal(at, m.At)
	}
}

func TestInterpreter_ConcurrentCalls(t *testing.T) {
	req := require.New(t)
	interp := newTestInterpreter(mayFirstParser())
	candidates := []domain.Event{
		{ID: "1", Name: "spring fest", Date: time.Date(2026, time.May, 1, 14, 0, 0, 0, time.UTC)},
		{ID: "2", Name: "jazz brunch", Date: time.Date(2026, time.May, 2, 11, 0, 0, 0, time.UTC)},
	}

	var wg sync.WaitGroup
	results := make([]Result, 50)
	for n := range results {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if n%2 == 0 {
				results[n] = interp.Interpret("may 1st", candidates)
			} else {
				results[n] = interp.Interpret("jazz", candidates)
			}
		}(n)
	}
	wg.Wait()

	for n, res := range results {
		req.Len(res.Matches, 1)
		if n%2 == 0 {
			req.Equal(domain.EventID("1"), res.Matches[0].ID)
		} else {
			req.Equal(domain.EventID("2"), res.Matches[0].ID)
		}
	}
}

func TestInterpreter_WhenParser(t *testing.T) {
	interp := newTestInterpreter(dateparse.NewWhenParser())
	christmas := domain.Event{
		ID: "xmas", Name: "Christmas market", Category: "Market / Expo", Location: "Dallas",
		Date: time.Date(2026, time.December, 25, 18, 0, 0, 0, time.UTC),
	}
	funFair := domain.Event{
		ID: "fair", Name: "Fun fair", Category: "Party / Social", Location: "Austin",
		Date: time.Date(2026, time.May, 20, 12, 0, 0, 0, time.UTC),
	}
	band := domain.Event{
		ID: "band", Name: "Brass band", Category: "Concert / Music", Location: "Houston",
		Date: time.Date(2026, time.March, 1, 20, 0, 0, 0, time.UTC),
	}
	candidates := []domain.Event{christmas, funFair, band}

	tests := []struct {
		utterance string
		kind      IntentKind
		matches   []domain.Event
	}{
		{"events on 12/25", DateFilter, []domain.Event{christmas}},
		{"events on 12/25/2026", DateFilter, []domain.Event{christmas}},
		{"march band", DateFilter, []domain.Event{band}},
		{"what may be fun", KeywordFilter, []domain.Event{funFair}},
	}
	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			req := require.New(t)
			res := interp.Interpret(tt.utterance, candidates)
			req.Equal(tt.kind, res.Intent.Kind)
			req.Equal(tt.matches, res.Matches)
		})
	}
}
