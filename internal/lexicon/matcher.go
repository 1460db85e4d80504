package lexicon

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

// Replacement is one rewrite performed by a Matcher.
type Replacement struct {
	Original    string
	Replacement string
}

// Matcher finds lexicon keys in text as whole words, ignoring case.
type Matcher struct {
	lex *Lexicon
	re  *regexp2.Regexp
}

// NewMatcher compiles the lexicon's keys into one alternation. Longer keys
// come first so they win when several match at the same position.
func NewMatcher(l *Lexicon) *Matcher {
	m := &Matcher{lex: l}
	if l.Len() == 0 {
		return m
	}
	entries := l.Entries()
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return utf8.RuneCountInString(b.Key) - utf8.RuneCountInString(a.Key)
	})
	alternatives := make([]string, 0, len(entries))
	for _, e := range entries {
		alternatives = append(alternatives, regexp2.Escape(e.Key))
	}
	m.re = regexp2.MustCompile(`\b(?:`+strings.Join(alternatives, "|")+`)\b`, regexp2.IgnoreCase)
	return m
}

// Rewrite replaces every whole-word occurrence of a key in text and returns
// the new text plus the replacements in order of occurrence.
func (m *Matcher) Rewrite(text string) (string, []Replacement) {
	if m == nil || m.re == nil {
		return text, nil
	}
	var reps []Replacement
	out, err := m.re.ReplaceFunc(text, func(match regexp2.Match) string {
		original := match.String()
		replacement, ok := m.lex.Lookup(original)
		if !ok {
			return original
		}
		reps = append(reps, Replacement{Original: original, Replacement: replacement})
		return replacement
	}, -1, -1)
	if err != nil || len(reps) == 0 {
		return text, nil
	}
	return out, reps
}
