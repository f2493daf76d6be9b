package event

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Strob0t/lightlogger/internal/domain/project"
	"github.com/Strob0t/lightlogger/internal/domain/value"
)

// FieldError names one violation. Nested data fields use a "data." prefix.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// Result is the verdict for a single payload.
type Result struct {
	Errors []FieldError
}

// Accepted reports whether the payload had no violations.
func (r Result) Accepted() bool { return len(r.Errors) == 0 }

// ItemError groups the violations of one batch item by its zero-based index.
type ItemError struct {
	Index  int          `json:"index"`
	Errors []FieldError `json:"errors"`
}

// BatchResult is the verdict for a batch.
type BatchResult struct {
	Accepted []int
	Rejected []ItemError
}

// Validate checks payload against the core fields and, when schema declares
// any fields, against the schema. It never stops at the first violation.
func Validate(payload value.Value, schema *project.Schema) Result {
	v := validator{}
	v.core(payload)
	if schema.HasFields() {
		v.data(payload.Field("data"), schema)
	}
	return Result{Errors: v.errs}
}

// ValidateBatch validates each item independently.
func ValidateBatch(items []value.Value, schema *project.Schema) BatchResult {
	var out BatchResult
	for i, item := range items {
		res := Validate(item, schema)
		if res.Accepted() {
			out.Accepted = append(out.Accepted, i)
			continue
		}
		out.Rejected = append(out.Rejected, ItemError{Index: i, Errors: res.Errors})
	}
	return out
}

type validator struct {
	errs []FieldError
}

func (v *validator) add(field, format string, args ...any) {
	v.errs = append(v.errs, FieldError{Field: field, Error: fmt.Sprintf(format, args...)})
}

func (v *validator) core(payload value.Value) {
	ts := payload.Field("timestamp")
	if ts.IsAbsent() {
		v.add("timestamp", "Timestamp is required")
	} else if s, ok := ts.AsString(); !ok {
		v.add("timestamp", "Invalid timestamp format. Use ISO 8601 format")
	} else if _, err := ParseTimestamp(s); err != nil {
		v.add("timestamp", "Invalid timestamp format. Use ISO 8601 format")
	}

	lvl := payload.Field("level")
	if lvl.IsAbsent() {
		v.add("level", "Level is required")
	} else if s, _ := lvl.AsString(); !isLevel(s, lvl) {
		v.add("level", "Invalid level. Allowed values: %s", levelList())
	}

	title := payload.Field("title")
	if title.IsAbsent() {
		v.add("title", "Title is required")
	} else if s, ok := title.AsString(); !ok || strings.TrimSpace(s) == "" {
		v.add("title", "Title must be a non-empty string")
	}
}

func isLevel(s string, raw value.Value) bool {
	if raw.Kind() != value.String {
		return false
	}
	_, ok := ParseLevel(s)
	return ok
}

func (v *validator) data(data value.Value, schema *project.Schema) {
	if data.IsAbsent() {
		if schema.HasRequired() {
			v.add("data", "Data field is required when schema has required fields")
		}
		return
	}
	if data.Kind() != value.Map {
		v.add("data", "Data must be an object")
		return
	}

	for i := range schema.Fields {
		def := &schema.Fields[i]
		path := "data." + def.Name
		got, present := data.Get(def.Name)
		if !present {
			if def.Required {
				v.add(path, "Field '%s' is required", def.Name)
			}
			continue
		}
		if !matchesType(got, def.Type) {
			v.add(path, "Expected type '%s', got '%s'", def.Type, got.Kind().TypeName())
			continue
		}
		switch def.Type {
		case project.TypeString:
			s, _ := got.AsString()
			v.stringRules(path, s, def.StringRules())
		case project.TypeNumber:
			n, _ := got.AsNumber()
			v.numberRules(path, n, def.NumberRules())
		}
	}
}

func matchesType(got value.Value, t project.FieldType) bool {
	switch t {
	case project.TypeString:
		return got.Kind() == value.String
	case project.TypeNumber:
		return got.Kind() == value.Number
	case project.TypeBoolean:
		return got.Kind() == value.Bool
	case project.TypeArray:
		return got.Kind() == value.List
	case project.TypeObject:
		return got.Kind() == value.Map
	case project.TypeDatetime:
		s, ok := got.AsString()
		if !ok {
			return false
		}
		_, err := ParseTimestamp(s)
		return err == nil
	default:
		return false
	}
}

func (v *validator) stringRules(path, s string, r project.StringRules) {
	length := float64(utf8.RuneCountInString(s))
	if r.MinLength != nil && length < *r.MinLength {
		v.add(path, "Minimum length is %s characters", value.FormatNumber(*r.MinLength))
	}
	if r.MaxLength != nil && length > *r.MaxLength {
		v.add(path, "Maximum length is %s characters", value.FormatNumber(*r.MaxLength))
	}
	if r.Pattern != nil {
		re, err := project.CompilePattern(*r.Pattern)
		if err != nil || !re.MatchString(s) {
			v.add(path, "Value does not match required pattern")
		}
	}
	if r.HasEnum && !inEnum(s, r.Enum) {
		allowed := make([]string, len(r.Enum))
		for i, e := range r.Enum {
			allowed[i] = e.Display()
		}
		v.add(path, "Value must be one of: %s", strings.Join(allowed, ", "))
	}
}

func inEnum(s string, enum []value.Value) bool {
	for _, e := range enum {
		if es, ok := e.AsString(); ok && es == s {
			return true
		}
	}
	return false
}

func (v *validator) numberRules(path string, n float64, r project.NumberRules) {
	if r.Min != nil && n < *r.Min {
		v.add(path, "Minimum value is %s", value.FormatNumber(*r.Min))
	}
	if r.Max != nil && n > *r.Max {
		v.add(path, "Maximum value is %s", value.FormatNumber(*r.Max))
	}
}
