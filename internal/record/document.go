package record

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// SentenceKey names the text field every record carries.
const SentenceKey = "sentence"

// Width 0 keeps every array element on its own line.
var indentOptions = &pretty.Options{Indent: "  "}

// Document is a record held as its raw JSON bytes.
type Document struct {
	raw []byte
}

// Decode validates a JSON document and wraps a copy of it.
func Decode(data []byte) (*Document, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("decode record: not a single valid JSON document")
	}
	return &Document{raw: bytes.Clone(data)}, nil
}

// Load reads and decodes the record at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read record: %w", err)
	}
	doc, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Save writes doc to path with two-space indentation, creating parent
// directories as needed.
func Save(path string, doc *Document) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create record directory: %w", err)
	}
	if err := os.WriteFile(path, doc.Indent(), 0o644); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}

// Bytes returns the document as it is currently held.
func (d *Document) Bytes() []byte {
	if d == nil {
		return nil
	}
	return d.raw
}

// Root returns the top-level value.
func (d *Document) Root() gjson.Result {
	return gjson.ParseBytes(d.Bytes())
}

// IsObject reports whether the top-level value is an object.
func (d *Document) IsObject() bool {
	return d.Root().IsObject()
}

// Keys returns the top-level member names in document order.
func (d *Document) Keys() []string {
	var keys []string
	d.Root().ForEach(func(key, _ gjson.Result) bool {
		if key.Type == gjson.String {
			keys = append(keys, key.Str)
		}
		return true
	})
	return keys
}

// Field returns the top-level member named key. When the key repeats the
// last occurrence wins.
func (d *Document) Field(key string) gjson.Result {
	var field gjson.Result
	root := d.Root()
	if !root.IsObject() {
		return field
	}
	root.ForEach(func(k, v gjson.Result) bool {
		if k.Str == key {
			field = v
		}
		return true
	})
	return field
}

// Sentence returns the top-level sentence field. Documents without one
// report an empty string.
func (d *Document) Sentence() (string, bool) {
	v := d.Field(SentenceKey)
	if v.Type != gjson.String {
		return "", false
	}
	return v.Str, true
}

// Clone returns an independent copy of the document.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	return &Document{raw: bytes.Clone(d.raw)}
}

// Compact renders the document on a single line.
func (d *Document) Compact() []byte {
	return pretty.Ugly(d.Bytes())
}

// Indent renders the document with two-space indentation. String escapes
// are kept as they appear in the source.
func (d *Document) Indent() []byte {
	return bytes.TrimSuffix(pretty.PrettyOptions(d.Bytes(), indentOptions), []byte("\n"))
}

// Set stores value under the top-level key. A new key is appended after the
// existing members; an existing key keeps its position.
func (d *Document) Set(key string, value any) error {
	if !d.IsObject() {
		return fmt.Errorf("set %q: record is not an object", key)
	}
	raw, err := setMember(d.raw, key, value)
	if err != nil {
		return err
	}
	d.raw = raw
	return nil
}

type splice struct {
	start, end int
	raw        []byte
}

// RewriteStrings passes every string member named key to fn, visiting each
// object's own members before its children. Values fn reports as changed are
// spliced into the document; all other bytes stay as they were. It returns
// how many values were replaced.
func (d *Document) RewriteStrings(key string, fn func(string) (string, bool)) (int, error) {
	var (
		splices []splice
		encErr  error
	)
	var walk func(v gjson.Result)
	walk = func(v gjson.Result) {
		if !v.IsObject() && !v.IsArray() {
			return
		}
		if v.IsObject() {
			v.ForEach(func(k, member gjson.Result) bool {
				if k.Str != key || member.Type != gjson.String {
					return true
				}
				next, changed := fn(member.Str)
				if !changed {
					return true
				}
				raw, err := encodeString(next)
				if err != nil {
					encErr = err
					return false
				}
				splices = append(splices, splice{start: member.Index, end: member.Index + len(member.Raw), raw: raw})
				return true
			})
		}
		v.ForEach(func(_, child gjson.Result) bool {
			walk(child)
			return encErr == nil
		})
	}
	walk(d.Root())
	if encErr != nil {
		return 0, encErr
	}
	if len(splices) == 0 {
		return 0, nil
	}
	slices.SortFunc(splices, func(a, b splice) int { return a.start - b.start })
	var buf bytes.Buffer
	buf.Grow(len(d.raw))
	last := 0
	for _, s := range splices {
		buf.Write(d.raw[last:s.start])
		buf.Write(s.raw)
		last = s.end
	}
	buf.Write(d.raw[last:])
	d.raw = buf.Bytes()
	return len(splices), nil
}
