// Package types provides the core value types shared by the mlcc packages.
// The central type is Answers, the resolved set of parameter values that
// drives template generation, along with the Source that supplied each value.
package types

import (
	"slices"
	"sort"
)

// Source identifies where an answer value came from.
type Source string

// Answer sources, listed from lowest to highest precedence during
// configuration resolution. SourcePrompt and SourceDerived are applied
// after resolution.
const (
	// SourceDefault is a value declared in the parameter matrix.
	SourceDefault Source = "default"

	// SourceGlobal is a value from the per-user global config file.
	SourceGlobal Source = "global"

	// SourcePackage is a value embedded in the project's package.json.
	SourcePackage Source = "package"

	// SourceProject is a value from the project config dotfile.
	SourceProject Source = "project"

	// SourceFlag is a value set explicitly on the command line.
	SourceFlag Source = "flag"

	// SourcePrompt is a value entered interactively.
	SourcePrompt Source = "prompt"

	// SourceDerived is a value computed from other answers.
	SourceDerived Source = "derived"
)

// Answers is an immutable mapping from parameter name to resolved value.
// Values are string, bool or []string. Every method that changes the set
// returns a new Answers and leaves the receiver untouched, so a value can
// be passed between components without defensive copying.
//
// The zero value is an empty set ready to use.
type Answers struct {
	values  map[string]any
	sources map[string]Source
}

// Get returns the value stored for key.
func (a Answers) Get(key string) (any, bool) {
	v, ok := a.values[key]
	if !ok {
		return nil, false
	}
	return copyValue(v), true
}

// Has reports whether key has a value.
func (a Answers) Has(key string) bool {
	_, ok := a.values[key]
	return ok
}

// String returns the string value for key, or "" if it is unset or not a string.
func (a Answers) String(key string) string {
	s, _ := a.values[key].(string)
	return s
}

// Bool returns the boolean value for key, or false if it is unset or not a bool.
func (a Answers) Bool(key string) bool {
	b, _ := a.values[key].(bool)
	return b
}

// Strings returns a copy of the string-set value for key.
func (a Answers) Strings(key string) []string {
	s, _ := a.values[key].([]string)
	return slices.Clone(s)
}

// Source returns the source that supplied key, or "" if key is unset.
func (a Answers) Source(key string) Source {
	return a.sources[key]
}

// Len returns the number of keys in the set.
func (a Answers) Len() int {
	return len(a.values)
}

// Keys returns all keys in sorted order.
func (a Answers) Keys() []string {
	keys := make([]string, 0, len(a.values))
	for k := range a.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Map returns a copy of all key-value pairs.
func (a Answers) Map() map[string]any {
	m := make(map[string]any, len(a.values))
	for k, v := range a.values {
		m[k] = copyValue(v)
	}
	return m
}

// With returns a new set with every non-nil entry of values applied on top
// of the receiver, each attributed to src. Nil entries are skipped so an
// absent value never overwrites an earlier concrete one.
func (a Answers) With(values map[string]any, src Source) Answers {
	next := a.clone(len(values))
	for k, v := range values {
		if v == nil {
			continue
		}
		next.values[k] = copyValue(v)
		next.sources[k] = src
	}
	return next
}

// Set returns a new set with key set to v and attributed to src.
// A nil v leaves the set unchanged.
func (a Answers) Set(key string, v any, src Source) Answers {
	return a.With(map[string]any{key: v}, src)
}

// Without returns a new set with key removed.
func (a Answers) Without(key string) Answers {
	if !a.Has(key) {
		return a
	}
	next := a.clone(0)
	delete(next.values, key)
	delete(next.sources, key)
	return next
}

// Sources returns a copy of the key to source mapping.
func (a Answers) Sources() map[string]Source {
	m := make(map[string]Source, len(a.sources))
	for k, s := range a.sources {
		m[k] = s
	}
	return m
}

func (a Answers) clone(extra int) Answers {
	next := Answers{
		values:  make(map[string]any, len(a.values)+extra),
		sources: make(map[string]Source, len(a.sources)+extra),
	}
	for k, v := range a.values {
		next.values[k] = v
	}
	for k, s := range a.sources {
		next.sources[k] = s
	}
	return next
}

// copyValue clones slice values so callers never share backing arrays
// with the set.
func copyValue(v any) any {
	if s, ok := v.([]string); ok {
		return slices.Clone(s)
	}
	return v
}
