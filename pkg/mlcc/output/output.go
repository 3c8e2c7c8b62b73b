// Package output renders a resolved answer set in the formats offered by
// `mlcc config show` (pretty, plain, json, yaml, toml).
//
// Formatters are looked up by name in a registry:
//
//	formatter, err := output.Get("yaml")
//	if err != nil {
//	    return err
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, output.FromAnswers(answers, nil)); err != nil {
//	    return err
//	}
package output

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/jamesainslie/mlcc/pkg/mlcc/types"
)

// ErrUnknownFormatter is returned by Get for unregistered names.
var ErrUnknownFormatter = errors.New("unknown formatter")

// Entry is one resolved parameter.
type Entry struct {
	Key    string `json:"key" yaml:"key"`
	Value  any    `json:"value" yaml:"value"`
	Source string `json:"source" yaml:"source"`
}

// Result is the data handed to formatters.
type Result struct {
	// Entries are sorted by key.
	Entries []Entry

	// Warnings are non-fatal resolution problems.
	Warnings []string

	// Error describes why the answers failed validation, if they did.
	Error string
}

// FromAnswers builds a Result from a.
func FromAnswers(a types.Answers, warnings []string) *Result {
	r := &Result{Warnings: warnings}
	for _, k := range a.Keys() {
		v, _ := a.Get(k)
		r.Entries = append(r.Entries, Entry{Key: k, Value: v, Source: string(a.Source(k))})
	}
	return r
}

// Values returns the entries as a key to value map.
func (r *Result) Values() map[string]any {
	m := make(map[string]any, len(r.Entries))
	for _, e := range r.Entries {
		m[e.Key] = e.Value
	}
	return m
}

// Sources returns the entries as a key to source map.
func (r *Result) Sources() map[string]string {
	m := make(map[string]string, len(r.Entries))
	for _, e := range r.Entries {
		m[e.Key] = e.Source
	}
	return m
}

// FormatValue renders a value for text output. Sets are comma-joined.
func FormatValue(v any) string {
	switch val := v.(type) {
	case []string:
		return strings.Join(val, ",")
	case nil:
		return ""
	default:
		return fmt.Sprint(val)
	}
}

// document is the structured form shared by the encoding formatters.
type document struct {
	Answers  map[string]any    `json:"answers" yaml:"answers" toml:"answers"`
	Sources  map[string]string `json:"sources" yaml:"sources" toml:"sources"`
	Warnings []string          `json:"warnings,omitempty" yaml:"warnings,omitempty" toml:"warnings,omitempty"`
	Error    string            `json:"error,omitempty" yaml:"error,omitempty" toml:"error,omitempty"`
}

func newDocument(r *Result) document {
	return document{
		Answers:  r.Values(),
		Sources:  r.Sources(),
		Warnings: r.Warnings,
		Error:    r.Error,
	}
}

// Formatter renders a Result.
type Formatter interface {
	// Format writes the formatted output to the buffer.
	Format(w *bytes.Buffer, r *Result) error
}

// FormatterFactory creates a Formatter.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]FormatterFactory)}
}

// Register adds a formatter factory, replacing any with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter by name.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s (available: %s)", ErrUnknownFormatter, name, strings.Join(r.available(), ", "))
	}
	return factory(), nil
}

// Available returns the registered names, sorted.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.available()
}

func (r *Registry) available() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry holds the built-in formatters.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a formatter from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available returns the formatter names in the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}
