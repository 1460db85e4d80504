package lexicon

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"voiceregen/internal/services"
)

func writeLexicon(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadJSONKeepsOrder(t *testing.T) {
	lex, err := Load(writeLexicon(t, "lexicon.json", `{"zeta": "z", "alpha": "a"}`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []Entry{{"zeta", "z"}, {"alpha", "a"}}
	if got := lex.Entries(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Entries = %v, want %v", got, want)
	}
}

func TestLoadYAML(t *testing.T) {
	lex, err := Load(writeLexicon(t, "lexicon.yaml", "Eorzea: Your-zay-uh\n\"Ul'dah\": Ool-dah\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []Entry{{"Eorzea", "Your-zay-uh"}, {"Ul'dah", "Ool-dah"}}
	if got := lex.Entries(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Entries = %v, want %v", got, want)
	}
}

func TestLoadErrorsAreConfigurationErrors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"missing", func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.json") }},
		{"invalid json", func(t *testing.T) string { return writeLexicon(t, "l.json", `{"a": `) }},
		{"non-string value", func(t *testing.T) string { return writeLexicon(t, "l.json", `{"a": 1}`) }},
		{"array", func(t *testing.T) string { return writeLexicon(t, "l.json", `["a"]`) }},
		{"yaml list", func(t *testing.T) string { return writeLexicon(t, "l.yml", "- a\n- b\n") }},
		{"yaml nested", func(t *testing.T) string { return writeLexicon(t, "l.yaml", "a:\n  b: c\n") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path(t))
			if !errors.Is(err, services.ErrConfiguration) {
				t.Fatalf("expected configuration error, got %v", err)
			}
		})
	}
}
