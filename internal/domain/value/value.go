// Package value models decoded JSON as a tagged variant so that callers can
// tell lists from maps, and numbers from strings, structurally.
package value

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	// Undefined is the zero Kind and marks an absent value.
	Undefined Kind = iota
	Null
	Bool
	Number
	String
	List
	Map
)

// TypeName returns the JSON type name used in validation messages.
func (k Kind) TypeName() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case List:
		return "array"
	case Map:
		return "object"
	default:
		return "undefined"
	}
}

// Value is an immutable decoded JSON value.
type Value struct {
	kind  Kind
	b     bool
	n     float64
	s     string
	items []Value
	keys  []string // object keys in document order
	m     map[string]Value
}

// NullValue returns the JSON null.
func NullValue() Value { return Value{kind: Null} }

// FromBool wraps a boolean.
func FromBool(b bool) Value { return Value{kind: Bool, b: b} }

// FromNumber wraps a number.
func FromNumber(n float64) Value { return Value{kind: Number, n: n} }

// FromString wraps a string.
func FromString(s string) Value { return Value{kind: String, s: s} }

// FromList wraps an ordered list of values.
func FromList(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: List, items: items}
}

// Kind reports the variant.
func (v Value) Kind() Kind { return v.kind }

// IsZero reports whether v is Undefined. It lets `omitzero` drop absent values.
func (v Value) IsZero() bool { return v.kind == Undefined }

// IsAbsent reports whether v is Undefined or null.
func (v Value) IsAbsent() bool { return v.kind == Undefined || v.kind == Null }

// AsBool returns the boolean and whether v holds one.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == Bool }

// AsNumber returns the number and whether v holds one.
func (v Value) AsNumber() (float64, bool) { return v.n, v.kind == Number }

// AsString returns the string and whether v holds one.
func (v Value) AsString() (string, bool) { return v.s, v.kind == String }

// IsInteger reports whether v is a number without a fractional part.
func (v Value) IsInteger() bool {
	return v.kind == Number && v.n == math.Trunc(v.n) && !math.IsInf(v.n, 0)
}

// Items returns the elements of a list, or nil for other kinds.
func (v Value) Items() []Value {
	if v.kind != List {
		return nil
	}
	return v.items
}

// Keys returns object keys in document order, or nil for other kinds.
func (v Value) Keys() []string {
	if v.kind != Map {
		return nil
	}
	return v.keys
}

// Get returns the member stored under key. The second result is false when v
// is not an object or has no such key.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != Map {
		return Value{}, false
	}
	m, ok := v.m[key]
	return m, ok
}

// Field is Get without the presence flag; a missing member is Undefined.
func (v Value) Field(key string) Value {
	m, _ := v.Get(key)
	return m
}

// Len returns the element count of lists and objects.
func (v Value) Len() int {
	switch v.kind {
	case List:
		return len(v.items)
	case Map:
		return len(v.keys)
	default:
		return 0
	}
}

// Interface converts v into the plain Go shapes produced by encoding/json.
func (v Value) Interface() any {
	switch v.kind {
	case Bool:
		return v.b
	case Number:
		return v.n
	case String:
		return v.s
	case List:
		out := make([]any, len(v.items))
		for i, it := range v.items {
			out[i] = it.Interface()
		}
		return out
	case Map:
		out := make(map[string]any, len(v.keys))
		for _, k := range v.keys {
			out[k] = v.m[k].Interface()
		}
		return out
	default:
		return nil
	}
}

// Display renders scalars the way they appear in human-facing messages.
func (v Value) Display() string {
	switch v.kind {
	case Bool:
		return strconv.FormatBool(v.b)
	case Number:
		return FormatNumber(v.n)
	case String:
		return v.s
	case Null:
		return "null"
	default:
		b, _ := v.MarshalJSON()
		return string(b)
	}
}

// FormatNumber prints n without exponent or trailing zeros.
func FormatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// MarshalJSON encodes v, keeping object keys in document order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) encode(buf *bytes.Buffer) error {
	switch v.kind {
	case Undefined, Null:
		buf.WriteString("null")
	case Bool:
		buf.WriteString(strconv.FormatBool(v.b))
	case Number:
		b, err := json.Marshal(v.n)
		if err != nil {
			return err
		}
		buf.Write(b)
	case String:
		b, err := json.Marshal(v.s)
		if err != nil {
			return err
		}
		buf.Write(b)
	case List:
		buf.WriteByte('[')
		for i, it := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := it.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case Map:
		buf.WriteByte('{')
		for i, k := range v.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			if err := v.m[k].encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

// UnmarshalJSON decodes data with Parse.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
