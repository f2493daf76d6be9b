package value

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/buger/jsonparser"
)

// MaxDepth bounds container nesting accepted by Parse.
const MaxDepth = 64

// ErrInvalidJSON is returned for input that is not a single JSON document.
var ErrInvalidJSON = errors.New("invalid JSON")

// Parse decodes a JSON document into a Value.
func Parse(data []byte) (Value, error) {
	if len(bytes.TrimSpace(data)) == 0 || !json.Valid(data) {
		return Value{}, ErrInvalidJSON
	}
	raw, typ, _, err := jsonparser.Get(data)
	if err != nil {
		return Value{}, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return decode(raw, typ, 0)
}

func decode(raw []byte, typ jsonparser.ValueType, depth int) (Value, error) {
	switch typ {
	case jsonparser.Null:
		return NullValue(), nil
	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(raw)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}
		return FromBool(b), nil
	case jsonparser.Number:
		n, err := jsonparser.ParseFloat(raw)
		if err != nil {
			return Value{}, fmt.Errorf("%w: number %s: %v", ErrInvalidJSON, raw, err)
		}
		return FromNumber(n), nil
	case jsonparser.String:
		s, err := jsonparser.ParseString(raw)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}
		return FromString(s), nil
	case jsonparser.Array:
		if depth >= MaxDepth {
			return Value{}, fmt.Errorf("%w: nesting deeper than %d", ErrInvalidJSON, MaxDepth)
		}
		return decodeList(raw, depth+1)
	case jsonparser.Object:
		if depth >= MaxDepth {
			return Value{}, fmt.Errorf("%w: nesting deeper than %d", ErrInvalidJSON, MaxDepth)
		}
		return decodeMap(raw, depth+1)
	default:
		return Value{}, fmt.Errorf("%w: unexpected token %q", ErrInvalidJSON, raw)
	}
}

func decodeList(raw []byte, depth int) (Value, error) {
	items := []Value{}
	if isEmptyContainer(raw) {
		return FromList(items...), nil
	}
	var decodeErr error
	_, err := jsonparser.ArrayEach(raw, func(elem []byte, typ jsonparser.ValueType, _ int, err error) {
		if decodeErr != nil {
			return
		}
		if err != nil {
			decodeErr = err
			return
		}
		v, err := decode(elem, typ, depth)
		if err != nil {
			decodeErr = err
			return
		}
		items = append(items, v)
	})
	if decodeErr != nil {
		return Value{}, decodeErr
	}
	if err != nil {
		return Value{}, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return FromList(items...), nil
}

func decodeMap(raw []byte, depth int) (Value, error) {
	out := Value{kind: Map, keys: []string{}, m: map[string]Value{}}
	if isEmptyContainer(raw) {
		return out, nil
	}
	err := jsonparser.ObjectEach(raw, func(rawKey, elem []byte, typ jsonparser.ValueType, _ int) error {
		key, err := jsonparser.ParseString(rawKey)
		if err != nil {
			return err
		}
		v, err := decode(elem, typ, depth)
		if err != nil {
			return err
		}
		if _, dup := out.m[key]; !dup {
			out.keys = append(out.keys, key)
		}
		out.m[key] = v
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidJSON) {
			return Value{}, err
		}
		return Value{}, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return out, nil
}

// isEmptyContainer reports whether raw is "[]" or "{}" modulo whitespace.
func isEmptyContainer(raw []byte) bool {
	t := bytes.TrimSpace(raw)
	if len(t) < 2 {
		return false
	}
	return len(bytes.TrimSpace(t[1:len(t)-1])) == 0
}
