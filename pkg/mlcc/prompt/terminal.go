package prompt

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Terminal asks questions with a bubbletea program per question.
type Terminal struct {
	in  io.Reader
	out io.Writer
}

// NewTerminal returns a prompter reading in and drawing to out. Nil
// values use stdin and stdout.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &Terminal{in: in, out: out}
}

// Interactive returns true.
func (t *Terminal) Interactive() bool { return true }

// Ask runs the question until it is answered or cancelled. Cancelling
// returns ErrAborted.
func (t *Terminal) Ask(q Question) (any, error) {
	p := tea.NewProgram(newQuestionModel(q), tea.WithInput(t.in), tea.WithOutput(t.out))
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("prompt %s: %w", q.Key, err)
	}
	m, ok := final.(questionModel)
	if !ok {
		return nil, fmt.Errorf("prompt %s: unexpected model %T", q.Key, final)
	}
	if m.aborted {
		return nil, ErrAborted
	}
	return m.value, nil
}

// questionModel is the bubbletea model for a single question.
type questionModel struct {
	q Question

	input    textinput.Model
	cursor   int
	selected map[int]bool
	confirm  bool

	value   any
	done    bool
	aborted bool
	err     string
}

func newQuestionModel(q Question) questionModel {
	m := questionModel{q: q, selected: make(map[int]bool)}
	def := q.DefaultValue()

	switch q.Kind {
	case KindInput:
		ti := textinput.New()
		ti.Prompt = "> "
		ti.Placeholder = def.(string)
		ti.Focus()
		m.input = ti
	case KindSelect:
		if i := slices.Index(q.Choices, def.(string)); i >= 0 {
			m.cursor = i
		}
	case KindConfirm:
		m.confirm = def.(bool)
	case KindMultiSelect:
		for _, d := range def.([]string) {
			if i := slices.Index(q.Choices, d); i >= 0 {
				m.selected[i] = true
			}
		}
	}
	return m
}

func (m questionModel) Init() tea.Cmd {
	if m.q.Kind == KindInput {
		return textinput.Blink
	}
	return nil
}

func (m questionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.q.Kind == KindInput {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "esc":
		m.aborted = true
		return m, tea.Quit
	case "enter":
		return m.submit()
	}

	switch m.q.Kind {
	case KindInput:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.err = ""
		return m, cmd
	case KindSelect, KindMultiSelect:
		m.handleListKey(key.String())
	case KindConfirm:
		switch key.String() {
		case "y", "Y":
			m.confirm = true
			return m.submit()
		case "n", "N":
			m.confirm = false
			return m.submit()
		case "left", "right", "h", "l", "tab":
			m.confirm = !m.confirm
		}
	}
	return m, nil
}

func (m *questionModel) handleListKey(key string) {
	switch key {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.q.Choices)-1 {
			m.cursor++
		}
	case " ", "space":
		if m.q.Kind == KindMultiSelect {
			m.selected[m.cursor] = !m.selected[m.cursor]
		}
	case "a":
		if m.q.Kind == KindMultiSelect {
			for i := range m.q.Choices {
				m.selected[i] = true
			}
		}
	case "n":
		if m.q.Kind == KindMultiSelect {
			clear(m.selected)
		}
	}
}

func (m questionModel) submit() (tea.Model, tea.Cmd) {
	var v any
	switch m.q.Kind {
	case KindInput:
		s := strings.TrimSpace(m.input.Value())
		if s == "" {
			s = m.q.DefaultValue().(string)
		}
		v = s
	case KindSelect:
		if len(m.q.Choices) == 0 {
			v = ""
		} else {
			v = m.q.Choices[m.cursor]
		}
	case KindConfirm:
		v = m.confirm
	case KindMultiSelect:
		items := []string{}
		for i, c := range m.q.Choices {
			if m.selected[i] {
				items = append(items, c)
			}
		}
		v = items
	}

	if err := m.q.check(v); err != nil {
		m.err = err.Error()
		return m, nil
	}
	m.value = v
	m.done = true
	return m, tea.Quit
}

func (m questionModel) View() string {
	var b strings.Builder
	b.WriteString(questionStyle.Render("? " + m.q.Message))

	if m.done {
		b.WriteString(" ")
		b.WriteString(answerStyle.Render(displayValue(m.value)))
		b.WriteString("\n")
		return b.String()
	}
	if m.aborted {
		b.WriteString("\n")
		return b.String()
	}

	switch m.q.Kind {
	case KindInput:
		b.WriteString("\n")
		b.WriteString(m.input.View())
	case KindConfirm:
		yes, no := "yes", "no"
		if m.confirm {
			yes = cursorStyle.Render("[yes]")
		} else {
			no = cursorStyle.Render("[no]")
		}
		b.WriteString(" ")
		b.WriteString(yes + " / " + no)
	case KindSelect, KindMultiSelect:
		b.WriteString("\n")
		for i, c := range m.q.Choices {
			pointer := "  "
			if i == m.cursor {
				pointer = cursorStyle.Render("> ")
			}
			b.WriteString(pointer)
			if m.q.Kind == KindMultiSelect {
				if m.selected[i] {
					b.WriteString(checkedStyle.Render("[x] "))
				} else {
					b.WriteString(uncheckedStyle.Render("[ ] "))
				}
			}
			if i == m.cursor {
				b.WriteString(cursorStyle.Render(c))
			} else {
				b.WriteString(c)
			}
			b.WriteString("\n")
		}
		b.WriteString(hintStyle.Render(listHint(m.q.Kind)))
	}

	if m.err != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.err))
	}
	b.WriteString("\n")
	return b.String()
}

func listHint(k Kind) string {
	if k == KindMultiSelect {
		return "↑/↓ move • space toggle • a all • n none • enter confirm"
	}
	return "↑/↓ move • enter select"
}

func displayValue(v any) string {
	switch val := v.(type) {
	case []string:
		if len(val) == 0 {
			return "(none)"
		}
		return strings.Join(val, ", ")
	case bool:
		if val {
			return "yes"
		}
		return "no"
	case string:
		if val == "" {
			return "(empty)"
		}
		return val
	default:
		return fmt.Sprint(val)
	}
}
