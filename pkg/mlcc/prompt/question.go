// Package prompt asks the interactive questions that complete an answer
// set. Questions are grouped into phases and each phase sees the answers
// of the phases before it, so choice lists follow the chosen framework.
//
// A Prompter answers one question at a time. Terminal drives a bubbletea
// program per question, Defaults accepts every default and Scripted
// replays fixed answers in tests.
package prompt

import (
	"fmt"
	"slices"
)

// Kind identifies how a question is presented.
type Kind int

const (
	// KindInput reads free text.
	KindInput Kind = iota
	// KindSelect picks one of Choices.
	KindSelect
	// KindConfirm reads yes or no.
	KindConfirm
	// KindMultiSelect picks any subset of Choices.
	KindMultiSelect
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindSelect:
		return "select"
	case KindConfirm:
		return "confirm"
	case KindMultiSelect:
		return "multiselect"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Question is a single prompt.
type Question struct {
	Key     string
	Kind    Kind
	Message string

	// Choices for KindSelect and KindMultiSelect.
	Choices []string

	// Default is a string for input and select, a bool for confirm and a
	// []string for multiselect.
	Default any

	// Validate checks free-text input. Nil accepts anything.
	Validate func(string) error
}

// DefaultValue returns Default normalized to the value type of the kind.
func (q Question) DefaultValue() any {
	switch q.Kind {
	case KindConfirm:
		b, _ := q.Default.(bool)
		return b
	case KindMultiSelect:
		s, _ := q.Default.([]string)
		return slices.Clone(s)
	case KindSelect:
		s, _ := q.Default.(string)
		if s == "" && len(q.Choices) > 0 {
			return q.Choices[0]
		}
		return s
	default:
		s, _ := q.Default.(string)
		return s
	}
}

// check reports whether v is an acceptable answer to q.
func (q Question) check(v any) error {
	switch q.Kind {
	case KindInput:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("%s: expected text, got %T", q.Key, v)
		}
		if q.Validate != nil {
			return q.Validate(s)
		}
	case KindSelect:
		s, ok := v.(string)
		if !ok || !slices.Contains(q.Choices, s) {
			return fmt.Errorf("%s: %v is not one of %v", q.Key, v, q.Choices)
		}
	case KindConfirm:
		if _, ok := v.(bool); !ok {
			return fmt.Errorf("%s: expected yes or no, got %T", q.Key, v)
		}
	case KindMultiSelect:
		items, ok := v.([]string)
		if !ok {
			return fmt.Errorf("%s: expected a list, got %T", q.Key, v)
		}
		for _, item := range items {
			if !slices.Contains(q.Choices, item) {
				return fmt.Errorf("%s: %s is not one of %v", q.Key, item, q.Choices)
			}
		}
	}
	return nil
}
