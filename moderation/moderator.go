// Package moderation masks denylisted words in free text before it is stored.
package moderation

import (
	"log/slog"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

// Moderator finds denylisted words even when they are written in leet speak,
// upper case or split by punctuation ("S-N-A-K-E", "B.4.d.g.€r").
type Moderator struct {
	machine *goahocorasick.Machine
	mask    rune
	log     *slog.Logger
}

// folded is the searchable form of a text. origin[i] is the index, in the
// original runes, of runes[i], word[i] the whitespace separated word it belongs to
// and letter[i] whether the original rune was a letter.
type folded struct {
	runes  []rune
	origin []int
	word   []int
	letter []bool
}

// whole reports whether runes[start:end] is not glued to letters of the same word,
// so "dam night" or "scunthorpe" never match while "damn!" does.
func (f folded) whole(start, end int) bool {
	return (start == 0 || f.word[start-1] != f.word[start] || !f.letter[start-1]) &&
		(end == len(f.word) || f.word[end] != f.word[end-1] || !f.letter[end])
}

var leet = map[rune]rune{
	'4': 'a', '@': 'a',
	'3': 'e', '€': 'e',
	'1': 'i', '!': 'i', '|': 'i',
	'0': 'o',
	'5': 's', '$': 's',
}

// NewModerator builds the automaton from the folded denylist.
// Entries made only of noise are skipped. With nothing left, Censor is a no-op.
func NewModerator(denylist []string, mask rune, log *slog.Logger) (Moderator, error) {
	patterns := make([][]rune, 0, len(denylist))
	for _, word := range denylist {
		if f := fold([]rune(word)); len(f.runes) > 0 {
			patterns = append(patterns, f.runes)
		}
	}
	log.Debug("Moderator built", "patterns", len(patterns))
	if len(patterns) == 0 {
		return Moderator{mask: mask, log: log}, nil
	}

	machine := new(goahocorasick.Machine)
	if err := machine.Build(patterns); err != nil {
		return Moderator{}, err
	}
	return Moderator{machine: machine, mask: mask, log: log}, nil
}

// Censor masks every whole-word match rune by rune, noise inside the match included,
// and returns the folded words it found in order of appearance.
func (m *Moderator) Censor(text string) (string, []string) {
	if m.machine == nil {
		return text, nil
	}
	original := []rune(text)
	f := fold(original)
	if len(f.runes) == 0 {
		return text, nil
	}

	var words []string
	for _, term := range m.machine.MultiPatternSearch(f.runes, false) {
		end := term.Pos + len(term.Word)
		if term.Pos < 0 || end > len(f.origin) || !f.whole(term.Pos, end) {
			continue
		}
		for i := f.origin[term.Pos]; i <= f.origin[end-1]; i++ {
			original[i] = m.mask
		}
		words = append(words, string(term.Word))
	}
	if len(words) == 0 {
		return text, nil
	}
	m.log.Debug("Message censored", "words", len(words))
	return string(original), words
}

func fold(input []rune) folded {
	f := folded{
		runes:  make([]rune, 0, len(input)),
		origin: make([]int, 0, len(input)),
		word:   make([]int, 0, len(input)),
		letter: make([]bool, 0, len(input)),
	}
	word, spaced := 0, false
	for i, original := range input {
		r := original
		if unicode.IsSpace(r) {
			spaced = true
			continue
		}
		if plain, ok := leet[r]; ok {
			r = plain
		}
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			continue
		}
		if spaced && len(f.runes) > 0 {
			word++
		}
		spaced = false
		f.runes = append(f.runes, unicode.ToLower(r))
		f.origin = append(f.origin, i)
		f.word = append(f.word, word)
		f.letter = append(f.letter, unicode.IsLetter(original))
	}
	return f
}
