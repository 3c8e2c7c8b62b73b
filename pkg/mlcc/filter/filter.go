package filter

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// Matcher matches template paths against compiled exclusion patterns.
type Matcher struct {
	patterns []string
	globs    []glob.Glob
}

// New compiles patterns. Patterns use '/' as the separator; "**" crosses
// directories and "*" does not.
func New(patterns ...string) (*Matcher, error) {
	m := &Matcher{
		patterns: make([]string, 0, len(patterns)),
		globs:    make([]glob.Glob, 0, len(patterns)),
	}
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
		m.patterns = append(m.patterns, p)
		m.globs = append(m.globs, g)
	}
	return m, nil
}

// Match reports whether the slash-separated relative path rel is excluded.
func (m *Matcher) Match(rel string) bool {
	_, ok := m.Which(rel)
	return ok
}

// Which returns the first pattern excluding rel.
func (m *Matcher) Which(rel string) (string, bool) {
	if m == nil {
		return "", false
	}
	path := "/" + strings.TrimPrefix(rel, "/")
	for i, g := range m.globs {
		if g.Match(path) {
			return m.patterns[i], true
		}
	}
	return "", false
}

// Patterns returns the compiled patterns in order.
func (m *Matcher) Patterns() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.patterns...)
}
