package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/sptdl/internal/shared"
)

// Model is a single-line text prompt.
type Model struct {
	label   string
	input   textinput.Model
	help    help.Model
	keys    keyMap
	done    bool
	warning string
	err     error
}

// NewModel creates a focused prompt model.
func NewModel(label, placeholder string) *Model {
	input := textinput.New()
	input.Placeholder = placeholder
	input.Prompt = "> "
	input.Focus()

	return &Model{
		label: label,
		input: input,
		help:  help.New(),
		keys:  newKeyMap(),
	}
}

// Init starts the cursor blink.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles key presses. Empty answers are rejected with a warning.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.cancel):
			m.err = shared.ErrCancelled
			return m, tea.Quit
		case key.Matches(msg, m.keys.submit):
			if m.Value() == "" {
				m.warning = "a value is required"
				return m, nil
			}
			m.done = true
			return m, tea.Quit
		}
		m.warning = ""
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the label, input and key help.
func (m *Model) View() string {
	if m.done || m.err != nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(Styles.Title(m.label))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.warning != "" {
		b.WriteString(Styles.Warn(m.warning))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}

// Value returns the trimmed answer.
func (m *Model) Value() string {
	return strings.TrimSpace(m.input.Value())
}

// Done reports whether the answer was submitted.
func (m *Model) Done() bool {
	return m.done
}

// Err returns [shared.ErrCancelled] when the prompt was dismissed.
func (m *Model) Err() error {
	return m.err
}

// Ask runs a prompt on in/out and returns the submitted answer.
func Ask(ctx context.Context, in io.Reader, out io.Writer, label, placeholder string) (string, error) {
	p := tea.NewProgram(NewModel(label, placeholder), tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out))

	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrCancelled, err)
	}

	m, ok := final.(*Model)
	if !ok {
		return "", fmt.Errorf("unexpected prompt model %T", final)
	}
	if m.Err() != nil {
		return "", m.Err()
	}
	if !m.Done() {
		return "", shared.ErrCancelled
	}
	return m.Value(), nil
}
