package project

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/Strob0t/lightlogger/internal/domain"
	"github.com/Strob0t/lightlogger/internal/domain/value"
)

// FieldType is the declared type of a schema field.
type FieldType string

const (
	TypeString   FieldType = "string"
	TypeNumber   FieldType = "number"
	TypeBoolean  FieldType = "boolean"
	TypeArray    FieldType = "array"
	TypeObject   FieldType = "object"
	TypeDatetime FieldType = "datetime"
)

// FieldTypes lists the accepted field types in their documented order.
var FieldTypes = []FieldType{TypeString, TypeNumber, TypeBoolean, TypeArray, TypeObject, TypeDatetime}

var fieldNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Schema describes the expected shape of an event's data member.
type Schema struct {
	Fields []FieldDef `json:"fields"`
}

// FieldDef declares one member of an event's data object.
type FieldDef struct {
	Name     string    `json:"name"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
	Indexed  bool      `json:"indexed"`
	// Validation is stored verbatim so unknown rules survive a round trip.
	Validation value.Value `json:"validation,omitzero"`
}

// HasFields reports whether s is non-nil and declares at least one field.
func (s *Schema) HasFields() bool {
	return s != nil && len(s.Fields) > 0
}

// HasRequired reports whether any field is required.
func (s *Schema) HasRequired() bool {
	if s == nil {
		return false
	}
	for i := range s.Fields {
		if s.Fields[i].Required {
			return true
		}
	}
	return false
}

// StringRules are the rules honored for string fields.
type StringRules struct {
	MinLength *float64
	MaxLength *float64
	Pattern   *string
	Enum      []value.Value
	HasEnum   bool
}

// NumberRules are the rules honored for number fields.
type NumberRules struct {
	Min *float64
	Max *float64
}

// StringRules extracts string rules. Rules of the wrong JSON type are ignored.
func (f *FieldDef) StringRules() StringRules {
	var r StringRules
	r.MinLength = numberRule(f.Validation, "min_length")
	r.MaxLength = numberRule(f.Validation, "max_length")
	if p, ok := f.Validation.Field("pattern").AsString(); ok {
		r.Pattern = &p
	}
	if enum := f.Validation.Field("enum"); enum.Kind() == value.List {
		r.Enum = enum.Items()
		r.HasEnum = true
	}
	return r
}

// NumberRules extracts number rules. Rules of the wrong JSON type are ignored.
func (f *FieldDef) NumberRules() NumberRules {
	return NumberRules{
		Min: numberRule(f.Validation, "min"),
		Max: numberRule(f.Validation, "max"),
	}
}

func numberRule(rules value.Value, key string) *float64 {
	n, ok := rules.Field(key).AsNumber()
	if !ok {
		return nil
	}
	return &n
}

var patternCache sync.Map // string -> *regexp.Regexp

// CompilePattern compiles a validation pattern, caching successful results.
func CompilePattern(pattern string) (*regexp.Regexp, error) {
	if re, ok := patternCache.Load(pattern); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	patternCache.Store(pattern, re)
	return re, nil
}

// ParseSchema checks the shape of a submitted schema document and converts
// it. All violations are collected; nothing is returned unless the whole
// document is well formed.
func ParseSchema(doc value.Value) (*Schema, error) {
	if doc.IsAbsent() {
		return nil, domain.NewValidationError("Schema is required")
	}
	if doc.Kind() != value.Map {
		return nil, domain.NewValidationError("Schema must be an object")
	}
	fields := doc.Field("fields")
	if fields.Kind() != value.List {
		return nil, domain.NewValidationError("Schema must contain a fields array")
	}

	var problems []string
	seen := make(map[string]int)
	out := &Schema{Fields: make([]FieldDef, 0, fields.Len())}

	for i, raw := range fields.Items() {
		path := fmt.Sprintf("fields[%d]", i)
		if raw.Kind() != value.Map {
			problems = append(problems, path+": must be an object")
			continue
		}

		var def FieldDef
		name, isString := raw.Field("name").AsString()
		switch {
		case !isString || strings.TrimSpace(name) == "":
			problems = append(problems, path+": 'name' is required and must be a non-empty string")
		case !fieldNamePattern.MatchString(name):
			problems = append(problems, path+": Field name must start with letter or underscore, contain only letters, numbers, and underscores")
		default:
			if first, dup := seen[name]; dup {
				problems = append(problems, fmt.Sprintf("%s: duplicate field name '%s' (first declared at fields[%d])", path, name, first))
			} else {
				seen[name] = i
			}
			def.Name = name
		}

		typ, _ := raw.Field("type").AsString()
		if !isFieldType(typ) {
			problems = append(problems, path+": 'type' must be one of: "+fieldTypeList())
		}
		def.Type = FieldType(typ)

		indexed, ok := raw.Field("indexed").AsBool()
		if !ok {
			problems = append(problems, path+": 'indexed' is required and must be boolean")
		}
		def.Indexed = indexed

		required, ok := raw.Field("required").AsBool()
		if !ok {
			problems = append(problems, path+": 'required' is required and must be boolean")
		}
		def.Required = required

		rules := raw.Field("validation")
		switch {
		case rules.IsAbsent():
		case rules.Kind() != value.Map:
			problems = append(problems, path+": 'validation' must be an object")
		default:
			if p, ok := rules.Field("pattern").AsString(); ok && def.Type == TypeString {
				if _, err := CompilePattern(p); err != nil {
					problems = append(problems, path+": 'validation.pattern' must be a valid regular expression")
				}
			}
			def.Validation = rules
		}

		out.Fields = append(out.Fields, def)
	}

	if len(problems) > 0 {
		return nil, domain.NewValidationError("Invalid schema definition", problems...)
	}
	return out, nil
}

func isFieldType(s string) bool {
	for _, t := range FieldTypes {
		if string(t) == s {
			return true
		}
	}
	return false
}

func fieldTypeList() string {
	names := make([]string, len(FieldTypes))
	for i, t := range FieldTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
