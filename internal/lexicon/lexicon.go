package lexicon

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"

	"voiceregen/internal/record"
	"voiceregen/internal/services"
)

// Entry is one word mapping.
type Entry struct {
	Key         string
	Replacement string
}

// Lexicon is an ordered word replacement map. Keys are compared after
// Unicode case folding; when two keys fold alike the later one wins.
type Lexicon struct {
	entries []Entry
	index   map[string]int
	folder  cases.Caser
}

// New builds a lexicon from entries in order. Empty keys are ignored.
func New(entries []Entry) *Lexicon {
	l := &Lexicon{index: make(map[string]int, len(entries)), folder: cases.Fold()}
	for _, e := range entries {
		if e.Key == "" {
			continue
		}
		folded := l.fold(e.Key)
		if idx, ok := l.index[folded]; ok {
			l.entries[idx] = e
			continue
		}
		l.index[folded] = len(l.entries)
		l.entries = append(l.entries, e)
	}
	return l
}

func (l *Lexicon) fold(s string) string {
	return l.folder.String(s)
}

// Len reports the number of distinct keys.
func (l *Lexicon) Len() int {
	if l == nil {
		return 0
	}
	return len(l.entries)
}

// Entries returns the mappings in load order.
func (l *Lexicon) Entries() []Entry {
	return append([]Entry(nil), l.entries...)
}

// Lookup returns the replacement for word, ignoring case.
func (l *Lexicon) Lookup(word string) (string, bool) {
	idx, ok := l.index[l.fold(word)]
	if !ok {
		return "", false
	}
	return l.entries[idx].Replacement, true
}

// Chains returns the keys whose replacement text itself contains a key as a
// whole word. A lexicon with chains is not idempotent: a second pass over
// already rewritten text rewrites it again.
func (l *Lexicon) Chains() []string {
	m := NewMatcher(l)
	var chains []string
	for _, e := range l.entries {
		if _, reps := m.Rewrite(e.Replacement); len(reps) > 0 {
			chains = append(chains, e.Key)
		}
	}
	return chains
}

// Load reads a lexicon from a .json, .yaml, or .yml file. Any failure is a
// configuration error.
func Load(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "lexicon", "load", "Lexicon file not readable", err)
	}
	var entries []Entry
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		entries, err = parseYAML(data)
	default:
		entries, err = parseJSON(data)
	}
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "lexicon", "parse", fmt.Sprintf("Lexicon file %s is not a valid string mapping", path), err)
	}
	return New(entries), nil
}

func parseJSON(data []byte) ([]Entry, error) {
	doc, err := record.Decode(data)
	if err != nil {
		return nil, err
	}
	root := doc.Root()
	if !root.IsObject() {
		return nil, fmt.Errorf("top level is %s, want an object", root.Type)
	}
	var entries []Entry
	root.ForEach(func(key, value gjson.Result) bool {
		if value.Type != gjson.String {
			err = fmt.Errorf("value for %q is not a string", key.Str)
			return false
		}
		entries = append(entries, Entry{Key: key.Str, Replacement: value.Str})
		return true
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func parseYAML(data []byte) ([]Entry, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root.Kind == 0 {
		return nil, nil
	}
	node := &root
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("top level is not a mapping (line %d)", node.Line)
	}
	entries := make([]Entry, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if key.Kind != yaml.ScalarNode || value.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("entry at line %d is not a scalar pair", key.Line)
		}
		entries = append(entries, Entry{Key: key.Value, Replacement: value.Value})
	}
	return entries, nil
}
