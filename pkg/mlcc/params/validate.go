package params

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jamesainslie/mlcc/pkg/mlcc/types"
)

// Violation describes one unsupported value.
type Violation struct {
	Key    string
	Value  any
	Reason string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s=%s: %s", v.Key, formatValue(v.Value), v.Reason)
}

// ValidationError aggregates every violation found in an answer set.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 1 {
		return "unsupported option: " + e.Violations[0].String()
	}
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return fmt.Sprintf("%d unsupported options: %s", len(e.Violations), strings.Join(parts, "; "))
}

// Keys returns the keys of every violation, in order.
func (e *ValidationError) Keys() []string {
	keys := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		keys[i] = v.Key
	}
	return keys
}

// Validate checks every value in a against the matrix and the framework
// profile. It returns nil or a *ValidationError listing every violation.
func Validate(m Matrix, a types.Answers) error {
	var vs []Violation
	add := func(key string, val any, format string, args ...any) {
		vs = append(vs, Violation{Key: key, Value: val, Reason: fmt.Sprintf(format, args...)})
	}

	for _, key := range a.Keys() {
		val, _ := a.Get(key)
		p, ok := m.Lookup(key)
		if !ok {
			add(key, val, "unknown parameter")
			continue
		}
		if reason := checkParam(p, val); reason != "" {
			add(key, val, "%s", reason)
		}
	}

	fw := a.String(Framework)
	profile, ok := ProfileFor(fw)
	if !ok {
		return wrap(vs)
	}
	for _, key := range []string{ModelFormat, ModelServer, Model, InstanceType} {
		v := a.String(key)
		if v == "" {
			continue
		}
		if !profile.Asks(key) {
			add(key, v, "not used with framework %s", fw)
			continue
		}
		if choices := profile.Choices(key); !slices.Contains(choices, v) {
			add(key, v, "not supported with framework %s (choose from %s)", fw, strings.Join(choices, ", "))
		}
	}
	if a.Bool(IncludeSampleModel) && !profile.SampleModel {
		add(IncludeSampleModel, true, "no sample model for framework %s", fw)
	}
	if a.Bool(IncludeTesting) {
		for _, tt := range a.Strings(TestTypes) {
			if !slices.Contains(profile.TestTypes, tt) {
				add(TestTypes, tt, "not supported with framework %s (choose from %s)", fw, strings.Join(profile.TestTypes, ", "))
			}
		}
	}
	return wrap(vs)
}

func wrap(vs []Violation) error {
	if len(vs) == 0 {
		return nil
	}
	return &ValidationError{Violations: vs}
}

// checkParam returns a reason when val does not satisfy p, or "".
func checkParam(p Param, val any) string {
	switch p.Kind {
	case KindBool:
		if _, ok := val.(bool); !ok {
			return "expected a boolean"
		}
	case KindString:
		s, ok := val.(string)
		if !ok {
			return "expected a string"
		}
		if s == "" {
			if p.Optional {
				return ""
			}
			return "must not be empty"
		}
		if len(p.Allowed) > 0 && !slices.Contains(p.Allowed, s) {
			return "supported values: " + strings.Join(p.Allowed, ", ")
		}
		if p.Pattern != nil && !p.Pattern.MatchString(s) {
			return "must match " + p.Pattern.String()
		}
	case KindStringSet:
		set, ok := val.([]string)
		if !ok {
			return "expected a list of strings"
		}
		for _, s := range set {
			if len(p.Allowed) > 0 && !slices.Contains(p.Allowed, s) {
				return fmt.Sprintf("%q unsupported, supported values: %s", s, strings.Join(p.Allowed, ", "))
			}
		}
	}
	return ""
}

func formatValue(v any) string {
	switch val := v.(type) {
	case []string:
		return "[" + strings.Join(val, ",") + "]"
	case string:
		return fmt.Sprintf("%q", val)
	default:
		return fmt.Sprint(val)
	}
}
