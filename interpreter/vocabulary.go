package interpreter

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Replies holds the fixed texts the assistant answers with when no event list is produced.
type Replies struct {
	Welcome      string `yaml:"welcome"`
	Greeting     string `yaml:"greeting"`
	Abusive      string `yaml:"abusive"`
	Unrecognized string `yaml:"unrecognized"`
	NoMatch      string `yaml:"no_match"`
}

// Vocabulary is the configuration data driving classification.
// It is copied when an Interpreter is built, later changes have no effect on it.
type Vocabulary struct {
	Greetings        []string `yaml:"greetings"`
	Denylist         []string `yaml:"denylist"`
	Stopwords        []string `yaml:"stopwords"`
	MinKeywordLength int      `yaml:"min_keyword_length"`
	Replies          Replies  `yaml:"replies"`
}

// DefaultVocabulary returns the built-in English vocabulary.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Greetings: []string{"hi", "hello", "hey", "greetings", "yo"},
		Denylist:  []string{"fuck", "shit", "damn", "bitch", "cunt"},
		Stopwords: []string{
			"in", "on", "at", "the", "and", "or",
			"events", "event", "for", "show", "me", "find",
		},
		MinKeywordLength: 2,
		Replies: Replies{
			Welcome:      "Hi! Ask me about events.",
			Greeting:     "Hello! Try asking something like “Events in Dallas” or “Events on May 1st”.",
			Abusive:      "Please keep it polite. You can ask something like “Events in Dallas”.",
			Unrecognized: "Please try asking “Events in Dallas” or “Events on May 1st”.",
			NoMatch:      "Sorry, no events matched your query.",
		},
	}
}

// LoadVocabulary reads a YAML vocabulary file.
// Lists absent from the file and empty reply texts are taken from DefaultVocabulary.
func LoadVocabulary(path string) (Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("read vocabulary %s: %w", path, err)
	}
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return Vocabulary{}, fmt.Errorf("parse vocabulary %s: %w", path, err)
	}
	v.Normalize()
	return v, nil
}

// Normalize fills missing values with defaults so partially written files still behave.
// An explicitly empty list is kept empty.
func (v *Vocabulary) Normalize() {
	def := DefaultVocabulary()
	if v.Greetings == nil {
		v.Greetings = def.Greetings
	}
	if v.Denylist == nil {
		v.Denylist = def.Denylist
	}
	if v.Stopwords == nil {
		v.Stopwords = def.Stopwords
	}
	if v.MinKeywordLength <= 0 {
		v.MinKeywordLength = def.MinKeywordLength
	}
	if v.Replies.Welcome == "" {
		v.Replies.Welcome = def.Replies.Welcome
	}
	if v.Replies.Greeting == "" {
		v.Replies.Greeting = def.Replies.Greeting
	}
	if v.Replies.Abusive == "" {
		v.Replies.Abusive = def.Replies.Abusive
	}
	if v.Replies.Unrecognized == "" {
		v.Replies.Unrecognized = def.Replies.Unrecognized
	}
	if v.Replies.NoMatch == "" {
		v.Replies.NoMatch = def.Replies.NoMatch
	}
}

type wordSet map[string]struct{}

func newWordSet(words []string) wordSet {
	set := make(wordSet, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		set[w] = struct{}{}
	}
	return set
}

func (s wordSet) has(word string) bool {
	_, ok := s[word]
	return ok
}

// containsAny reports whether at least one token belongs to the set.
func (s wordSet) containsAny(tokens []string) bool {
	for _, t := range tokens {
		if s.has(t) {
			return true
		}
	}
	return false
}

// lexicon is the frozen form of a Vocabulary.
type lexicon struct {
	greetings        wordSet
	denylist         wordSet
	stopwords        wordSet
	minKeywordLength int
	replies          Replies
}

func newLexicon(v Vocabulary) lexicon {
	v.Normalize()
	return lexicon{
		greetings:        newWordSet(v.Greetings),
		denylist:         newWordSet(v.Denylist),
		stopwords:        newWordSet(v.Stopwords),
		minKeywordLength: v.MinKeywordLength,
		replies:          v.Replies,
	}
}
