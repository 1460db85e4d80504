package regeneration

import (
	"strings"
	"unicode/utf8"

	"github.com/dlclark/regexp2"

	"voiceregen/internal/placeholder"
)

// Prompt is the text sent to the synthesizer together with its pacing.
type Prompt struct {
	Text   string
	Speed  float64
	Suffix string
}

type pacing struct {
	below  int
	speed  float64
	suffix string
}

// Shorter lines are spoken slower and get a trailing pause so the model
// does not rush or clip them.
var pacingBuckets = []pacing{
	{below: 10, speed: 0.4, suffix: " ..."},
	{below: 20, speed: 0.5, suffix: " ..."},
	{below: 40, speed: 0.6, suffix: " ..."},
	{below: 60, speed: 0.8, suffix: ""},
}

const (
	longSpeed  = 0.9
	longSuffix = ""
)

var leadingPunctuation = regexp2.MustCompile(`^[^\w\s]+`, regexp2.None)

// Pacing maps a prompt length in runes to its speech speed and suffix.
func Pacing(length int) (float64, string) {
	for _, b := range pacingBuckets {
		if length < b.below {
			return b.speed, b.suffix
		}
	}
	return longSpeed, longSuffix
}

// PromptBuilder turns record sentences into synthesis prompts.
type PromptBuilder struct {
	pattern         *placeholder.Pattern
	name            string
	stripCommaPause bool
	warrior         *regexp2.Regexp
}

// NewPromptBuilder returns a builder that substitutes name for every
// placeholder matched by pattern.
func NewPromptBuilder(pattern *placeholder.Pattern, name string, stripCommaPause bool) *PromptBuilder {
	alternatives := make([]string, 0, 3)
	for _, token := range pattern.Tokens() {
		alternatives = append(alternatives, regexp2.Escape(token))
	}
	if fragment := pattern.Fragment(); fragment != "" {
		alternatives = append(alternatives, regexp2.Escape(fragment))
	}
	return &PromptBuilder{
		pattern:         pattern,
		name:            name,
		stripCommaPause: stripCommaPause,
		warrior:         regexp2.MustCompile(`\bWarrior of\s+(?:`+strings.Join(alternatives, "|")+`)(?=[^a-zA-Z]|$)`, regexp2.None),
	}
}

// Build applies the prompt rules in order:
//
//  1. "Warrior of <placeholder>" becomes "Warrior of Light".
//  2. Comma pauses around placeholders are removed (when enabled).
//  3. Placeholders are replaced with the configured name.
//  4. A trailing period is dropped.
//  5. Leading punctuation is stripped.
//  6. Speed and suffix are chosen from the length of the result.
//  7. The suffix is appended.
//  8. "!" becomes ".".
func (b *PromptBuilder) Build(sentence string) Prompt {
	text := replaceAll(b.warrior, sentence, "Warrior of Light")
	if b.stripCommaPause {
		text = b.pattern.StripCommaPauses(text)
	}
	text = b.pattern.Replace(text, b.name)
	if strings.HasSuffix(text, ".") {
		text = strings.TrimSuffix(strings.TrimSpace(text), ".")
	}
	text = replaceAll(leadingPunctuation, strings.TrimSpace(text), "")

	speed, suffix := Pacing(utf8.RuneCountInString(strings.TrimSpace(text)))
	text += suffix
	text = strings.ReplaceAll(text, "!", ".")
	return Prompt{Text: text, Speed: speed, Suffix: suffix}
}

// replaceAll substitutes repl for every match of re. The patterns here carry
// no match timeout, so Replace cannot fail.
func replaceAll(re *regexp2.Regexp, text, repl string) string {
	out, err := re.Replace(text, repl, -1, -1)
	if err != nil {
		return text
	}
	return out
}
