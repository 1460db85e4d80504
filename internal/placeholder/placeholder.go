// Package placeholder detects the name placeholders that mark a voice line
// for regeneration.
//
// A pattern combines a name fragment (matched only when the next character is
// outside a-z, so "Arc," matches but "Arcane" does not) with literal tokens
// such as _NAME_ and _FIRSTNAME_.
package placeholder

import (
	"errors"
	"strings"

	"github.com/dlclark/regexp2"
)

// Pattern finds placeholder occurrences in text.
type Pattern struct {
	fragment string
	tokens   []string
	expr     string
	re       *regexp2.Regexp
	before   *regexp2.Regexp
	after    *regexp2.Regexp
}

// New compiles a pattern from a name fragment and literal tokens. Either may
// be empty, not both.
func New(fragment string, tokens []string) (*Pattern, error) {
	fragment = strings.TrimSpace(fragment)
	alternatives := make([]string, 0, len(tokens)+1)
	if fragment != "" {
		alternatives = append(alternatives, regexp2.Escape(fragment)+"(?=[^a-z])")
	}
	kept := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if token = strings.TrimSpace(token); token != "" {
			kept = append(kept, token)
			alternatives = append(alternatives, regexp2.Escape(token))
		}
	}
	if fragment == "" && len(kept) == 0 {
		return nil, errors.New("placeholder pattern needs a name fragment or at least one token")
	}
	expr := strings.Join(alternatives, "|")
	re, err := regexp2.Compile(expr, regexp2.None)
	if err != nil {
		return nil, err
	}
	before, err := regexp2.Compile(`,\s+(?=`+expr+`)`, regexp2.None)
	if err != nil {
		return nil, err
	}
	after, err := regexp2.Compile(`(`+expr+`),(?=\s)`, regexp2.None)
	if err != nil {
		return nil, err
	}
	return &Pattern{fragment: fragment, tokens: kept, expr: expr, re: re, before: before, after: after}, nil
}

// MustNew is like New but panics on error.
func MustNew(fragment string, tokens []string) *Pattern {
	p, err := New(fragment, tokens)
	if err != nil {
		panic(err)
	}
	return p
}

// Fragment returns the name fragment.
func (p *Pattern) Fragment() string { return p.fragment }

// Tokens returns the literal placeholder tokens.
func (p *Pattern) Tokens() []string { return append([]string(nil), p.tokens...) }

// String returns the compiled alternation.
func (p *Pattern) String() string { return p.expr }

// Match reports whether text contains at least one placeholder.
func (p *Pattern) Match(text string) bool {
	ok, err := p.re.MatchString(text)
	return err == nil && ok
}

// MatchBytes is Match for serialized documents.
func (p *Pattern) MatchBytes(data []byte) bool {
	return p.Match(string(data))
}

// Replace substitutes every placeholder in text with name. The name is
// inserted verbatim.
func (p *Pattern) Replace(text, name string) string {
	out, err := p.re.ReplaceFunc(text, func(regexp2.Match) string { return name }, -1, -1)
	if err != nil {
		return text
	}
	return out
}

// StripCommaPauses removes the comma pauses around placeholders that make the
// synthesized voice stop before or after the name. A comma and the whitespace
// after it are collapsed to a single space when a placeholder follows; a comma
// directly after a placeholder is dropped when whitespace follows it.
func (p *Pattern) StripCommaPauses(text string) string {
	out, err := p.after.Replace(text, "$1", -1, -1)
	if err != nil {
		return text
	}
	stripped, err := p.before.Replace(out, " ", -1, -1)
	if err != nil {
		return out
	}
	return stripped
}
