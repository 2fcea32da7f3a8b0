// Package schema implements structural validation of activity configurations.
//
// Validation is a pure function of (schema, configuration): identical inputs
// always produce identical results, so callers can pre-check a configuration
// before committing a state transition. Failures are returned as data, never
// as errors.
package schema

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Kind identifies the expected value type of a field.
type Kind string

const (
	KindString Kind = "string"
	KindInt    Kind = "integer"
	KindNumber Kind = "number"
	KindBool   Kind = "boolean"
	KindArray  Kind = "array"
	KindObject Kind = "object"
)

// Code is a stable, machine-distinguishable failure class. Codes are embedded
// in the surfaced message strings so callers can branch on failure kind.
type Code string

const (
	CodeMissingField Code = "missing_field"
	CodeTypeMismatch Code = "type_mismatch"
	CodeOutOfRange   Code = "out_of_range"
	CodeInvalidValue Code = "invalid_value"
	CodeUnknownField Code = "unknown_field"
)

// Field describes the constraints on a single configuration key.
type Field struct {
	Kind        Kind
	Required    bool
	Description string

	// String constraints.
	MinLen int
	MaxLen int

	// Numeric constraints (applies to integer and number kinds).
	Min *float64
	Max *float64

	// Array constraints.
	MinItems int
	MaxItems int
	Item     *Field

	// Enumerated string values, when non-empty.
	Enum []string

	// Default value reported through Describe; not applied during validation.
	Default any
}

// Rule is a cross-field consistency check. It receives the full configuration
// and returns any issues it finds.
type Rule func(cfg map[string]any) []Issue

// Schema is a structural description of an accepted configuration object.
type Schema struct {
	Fields map[string]Field
	Rules  []Rule
}

// Issue is a single validation finding.
type Issue struct {
	Code    Code
	Field   string
	Message string
}

func (i Issue) String() string {
	if i.Field == "" {
		return fmt.Sprintf("%s: %s", i.Code, i.Message)
	}
	return fmt.Sprintf("%s: %s: %s", i.Field, i.Code, i.Message)
}

// Result is the outcome of validating a configuration against a schema.
// Unknown keys are warnings, not errors, so metadata additions stay
// forward-compatible.
type Result struct {
	Valid    bool    `json:"valid"`
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings,omitempty"`
}

// Strings returns the error messages as plain strings.
func (r Result) Strings() []string {
	out := make([]string, 0, len(r.Errors))
	for _, issue := range r.Errors {
		out = append(out, issue.String())
	}
	return out
}

// MarshalJSON surfaces issues as human-readable strings.
func (i Issue) MarshalJSON() ([]byte, error) {
	s := i.String()
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
	return []byte(`"` + escaped + `"`), nil
}

// Validate checks cfg against the schema. A nil cfg validates like an empty
// one.
func (s Schema) Validate(cfg map[string]any) Result {
	var errs, warns []Issue

	names := make([]string, 0, len(s.Fields))
	for name := range s.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		field := s.Fields[name]
		value, ok := cfg[name]
		if !ok {
			if field.Required {
				errs = append(errs, Issue{
					Code:    CodeMissingField,
					Field:   name,
					Message: "required field is missing",
				})
			}
			continue
		}
		errs = append(errs, checkValue(name, field, value)...)
	}

	unknown := make([]string, 0)
	for key := range cfg {
		if _, ok := s.Fields[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		warns = append(warns, Issue{
			Code:    CodeUnknownField,
			Field:   key,
			Message: "unknown field ignored",
		})
	}

	// Cross-field rules only run once the per-field structure holds, so rules
	// can assume well-typed values.
	if len(errs) == 0 {
		for _, rule := range s.Rules {
			errs = append(errs, rule(cfg)...)
		}
	}

	return Result{
		Valid:    len(errs) == 0,
		Errors:   errs,
		Warnings: warns,
	}
}

// Describe returns a plain-data description of the schema suitable for
// serving to clients that render configuration editors.
func (s Schema) Describe() map[string]any {
	props := make(map[string]any, len(s.Fields))
	required := make([]string, 0)

	names := make([]string, 0, len(s.Fields))
	for name := range s.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		field := s.Fields[name]
		props[name] = describeField(field)
		if field.Required {
			required = append(required, name)
		}
	}

	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

func describeField(field Field) map[string]any {
	desc := map[string]any{"type": string(field.Kind)}
	if field.Description != "" {
		desc["description"] = field.Description
	}
	if field.Kind == KindString {
		if field.MinLen > 0 {
			desc["minLength"] = field.MinLen
		}
		if field.MaxLen > 0 {
			desc["maxLength"] = field.MaxLen
		}
	}
	if field.Min != nil {
		desc["minimum"] = *field.Min
	}
	if field.Max != nil {
		desc["maximum"] = *field.Max
	}
	if field.Kind == KindArray {
		if field.MinItems > 0 {
			desc["minItems"] = field.MinItems
		}
		if field.MaxItems > 0 {
			desc["maxItems"] = field.MaxItems
		}
		if field.Item != nil {
			desc["items"] = describeField(*field.Item)
		}
	}
	if len(field.Enum) > 0 {
		desc["enum"] = append([]string(nil), field.Enum...)
	}
	if field.Default != nil {
		desc["default"] = field.Default
	}
	return desc
}

func checkValue(name string, field Field, value any) []Issue {
	switch field.Kind {
	case KindString:
		return checkString(name, field, value)
	case KindInt:
		return checkInt(name, field, value)
	case KindNumber:
		return checkNumber(name, field, value)
	case KindBool:
		if _, ok := value.(bool); !ok {
			return []Issue{mismatch(name, "boolean", value)}
		}
		return nil
	case KindArray:
		return checkArray(name, field, value)
	case KindObject:
		if _, ok := value.(map[string]any); !ok {
			return []Issue{mismatch(name, "object", value)}
		}
		return nil
	default:
		return []Issue{{
			Code:    CodeInvalidValue,
			Field:   name,
			Message: fmt.Sprintf("schema declares unsupported kind %q", field.Kind),
		}}
	}
}

func checkString(name string, field Field, value any) []Issue {
	s, ok := value.(string)
	if !ok {
		return []Issue{mismatch(name, "string", value)}
	}
	if strings.TrimSpace(s) == "" && (field.Required || field.MinLen > 0) {
		return []Issue{{
			Code:    CodeInvalidValue,
			Field:   name,
			Message: "must be a non-empty string",
		}}
	}
	if field.MinLen > 0 && len(s) < field.MinLen {
		return []Issue{outOfRange(name, fmt.Sprintf("length must be at least %d", field.MinLen))}
	}
	if field.MaxLen > 0 && len(s) > field.MaxLen {
		return []Issue{outOfRange(name, fmt.Sprintf("length must be at most %d", field.MaxLen))}
	}
	if len(field.Enum) > 0 {
		for _, allowed := range field.Enum {
			if s == allowed {
				return nil
			}
		}
		return []Issue{{
			Code:    CodeInvalidValue,
			Field:   name,
			Message: fmt.Sprintf("must be one of %s", strings.Join(field.Enum, ", ")),
		}}
	}
	return nil
}

func checkInt(name string, field Field, value any) []Issue {
	n, ok := asInt(value)
	if !ok {
		return []Issue{mismatch(name, "integer", value)}
	}
	return checkBounds(name, field, float64(n))
}

func checkNumber(name string, field Field, value any) []Issue {
	n, ok := asFloat(value)
	if !ok {
		return []Issue{mismatch(name, "number", value)}
	}
	return checkBounds(name, field, n)
}

func checkBounds(name string, field Field, n float64) []Issue {
	if field.Min != nil && n < *field.Min {
		return []Issue{outOfRange(name, fmt.Sprintf("must be at least %v", *field.Min))}
	}
	if field.Max != nil && n > *field.Max {
		return []Issue{outOfRange(name, fmt.Sprintf("must be at most %v", *field.Max))}
	}
	return nil
}

func checkArray(name string, field Field, value any) []Issue {
	items, ok := value.([]any)
	if !ok {
		// Configurations built in-process may carry typed string slices.
		if strs, isStrs := value.([]string); isStrs {
			items = make([]any, len(strs))
			for i, s := range strs {
				items[i] = s
			}
		} else {
			return []Issue{mismatch(name, "array", value)}
		}
	}
	if field.MinItems > 0 && len(items) < field.MinItems {
		return []Issue{outOfRange(name, fmt.Sprintf("must contain at least %d items", field.MinItems))}
	}
	if field.MaxItems > 0 && len(items) > field.MaxItems {
		return []Issue{outOfRange(name, fmt.Sprintf("must contain at most %d items", field.MaxItems))}
	}
	if field.Item != nil {
		var issues []Issue
		for i, item := range items {
			issues = append(issues, checkValue(fmt.Sprintf("%s[%d]", name, i), *field.Item, item)...)
		}
		return issues
	}
	return nil
}

func mismatch(name, want string, got any) Issue {
	return Issue{
		Code:    CodeTypeMismatch,
		Field:   name,
		Message: fmt.Sprintf("expected %s, got %T", want, got),
	}
}

func outOfRange(name, msg string) Issue {
	return Issue{Code: CodeOutOfRange, Field: name, Message: msg}
}

func asInt(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		// JSON decoding yields float64; accept integral values only.
		if v == math.Trunc(v) {
			return int64(v), true
		}
		return 0, false
	default:
		return 0, false
	}
}

func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}

// IntPtr is a convenience for building numeric bounds in schema literals.
func IntPtr(n int) *float64 {
	f := float64(n)
	return &f
}
