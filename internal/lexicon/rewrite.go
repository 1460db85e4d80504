package lexicon

import (
	"voiceregen/internal/record"
	"voiceregen/internal/stage"
)

// PairCount counts how often one original spelling was replaced.
type PairCount struct {
	Original    string
	Replacement string
	Count       int
}

// Tally groups replacements by (original, replacement) in first-seen order.
func Tally(reps []Replacement) []PairCount {
	index := make(map[Replacement]int, len(reps))
	var out []PairCount
	for _, r := range reps {
		if idx, ok := index[r]; ok {
			out[idx].Count++
			continue
		}
		index[r] = len(out)
		out = append(out, PairCount{Original: r.Original, Replacement: r.Replacement, Count: 1})
	}
	return out
}

// RewriteRecord rewrites every "sentence" string in doc, including those of
// nested objects, and returns the replacements made.
func RewriteRecord(doc *record.Document, m *Matcher) ([]Replacement, error) {
	var all []Replacement
	_, err := doc.RewriteStrings(record.SentenceKey, func(sentence string) (string, bool) {
		rewritten, reps := m.Rewrite(sentence)
		all = append(all, reps...)
		return rewritten, len(reps) > 0
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}

// RewriteFile applies RewriteRecord to the record at path and writes it back
// when anything was replaced.
func RewriteFile(path string, m *Matcher) ([]Replacement, error) {
	doc, err := stage.LoadRecord(path)
	if err != nil {
		return nil, err
	}
	reps, err := RewriteRecord(doc, m)
	if err != nil || len(reps) == 0 {
		return nil, err
	}
	if err := record.Save(path, doc); err != nil {
		return nil, err
	}
	return reps, nil
}
