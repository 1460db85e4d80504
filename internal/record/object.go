package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/sjson"
)

// Object builds a JSON object whose members keep the order they were set in.
type Object struct {
	raw []byte
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{raw: []byte("{}")}
}

// Set stores value under key. New keys are appended; existing keys keep
// their position.
func (o *Object) Set(key string, value any) error {
	raw, err := setMember(o.raw, key, value)
	if err != nil {
		return err
	}
	o.raw = raw
	return nil
}

// Bytes returns the encoded object.
func (o *Object) Bytes() []byte {
	return o.raw
}

func setMember(raw []byte, key string, value any) ([]byte, error) {
	// sjson reads keys as paths.
	if key == "" || strings.ContainsAny(key, `.|#@*?\:`) {
		return nil, fmt.Errorf("set %q: key is not a plain member name", key)
	}
	encoded, err := Marshal(value)
	if err != nil {
		return nil, err
	}
	out, err := sjson.SetRawBytes(raw, key, encoded)
	if err != nil {
		return nil, fmt.Errorf("set %q: %w", key, err)
	}
	return out, nil
}

// Marshal encodes a Go value the way records store it. Strings keep HTML
// characters unescaped, whole floats keep a ".0" fraction, nil pointers
// become null and an *Object is embedded as built.
func Marshal(v any) ([]byte, error) {
	switch t := v.(type) {
	case nil:
		return []byte("null"), nil
	case *Object:
		if t == nil {
			return []byte("null"), nil
		}
		return bytes.Clone(t.raw), nil
	case string:
		return encodeString(t)
	case bool:
		return []byte(strconv.FormatBool(t)), nil
	case int:
		return []byte(strconv.Itoa(t)), nil
	case int64:
		return []byte(strconv.FormatInt(t, 10)), nil
	case *int64:
		if t == nil {
			return []byte("null"), nil
		}
		return []byte(strconv.FormatInt(*t, 10)), nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil, fmt.Errorf("encode record: unsupported float %v", t)
		}
		s := strconv.FormatFloat(t, 'f', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return []byte(s), nil
	case json.Number:
		return []byte(t.String()), nil
	default:
		return encodeJSON(t)
	}
}

// encodeString quotes s without the HTML escaping sjson would apply to
// non-ASCII strings.
func encodeString(s string) ([]byte, error) {
	return encodeJSON(s)
}

func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
