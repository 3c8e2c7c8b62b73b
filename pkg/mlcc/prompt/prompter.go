package prompt

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/term"
)

// ErrAborted is returned when the user cancels a prompt.
var ErrAborted = errors.New("prompt aborted")

// Prompter answers questions.
type Prompter interface {
	// Ask returns the answer to q, typed per q.Kind.
	Ask(q Question) (any, error)

	// Interactive reports whether a person is answering.
	Interactive() bool
}

// Defaults accepts the default of every question.
type Defaults struct{}

// Ask returns the question's default.
func (Defaults) Ask(q Question) (any, error) {
	return q.DefaultValue(), nil
}

// Interactive returns false.
func (Defaults) Interactive() bool { return false }

// Scripted answers from a fixed map and falls back to defaults. It records
// every key it was asked.
type Scripted struct {
	Answers map[string]any
	Asked   []string
}

// Ask returns the scripted answer for q.Key, or its default.
func (s *Scripted) Ask(q Question) (any, error) {
	s.Asked = append(s.Asked, q.Key)
	v, ok := s.Answers[q.Key]
	if !ok {
		return q.DefaultValue(), nil
	}
	if err, isErr := v.(error); isErr {
		return nil, err
	}
	if err := q.check(v); err != nil {
		return nil, fmt.Errorf("scripted answer: %w", err)
	}
	return v, nil
}

// Interactive returns true so scripted runs follow the interactive path.
func (s *Scripted) Interactive() bool { return true }

// IsTerminal reports whether stdin and stdout are both terminals.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

var (
	_ Prompter = Defaults{}
	_ Prompter = (*Scripted)(nil)
	_ Prompter = (*Terminal)(nil)
)
