// Package prompt asks the user for values the configuration is missing.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/skipera/skipera/internal/ui/components"
	"github.com/skipera/skipera/internal/ui/theme"
)

// ErrCanceled is returned when the user dismisses the prompt.
var ErrCanceled = errors.New("prompt canceled")

type keyModel struct {
	title    string
	input    components.TextInput
	value    string
	canceled bool
}

func newKeyModel(provider string) keyModel {
	return keyModel{
		title: fmt.Sprintf("Enter your %s API key", provider),
		input: components.NewTextInput("API key", true, 48),
	}
}

func (m keyModel) Init() tea.Cmd {
	return m.input.Init()
}

func (m keyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyPressMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			m.canceled = true
			return m, tea.Quit
		case "enter":
			v := strings.TrimSpace(m.input.Value())
			if v == "" {
				m.input.Submit(false)
				return m, nil
			}
			m.value = v
			m.input.Submit(true)
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m keyModel) View() tea.View {
	return tea.NewView(m.render())
}

func (m keyModel) render() string {
	body := strings.Join([]string{
		theme.Title.Render(m.title),
		theme.Body.Render("Graded items are answered by a language model."),
		"",
		m.input.View(),
		"",
		theme.Hint.Render("enter to confirm, esc to cancel"),
	}, "\n")
	return theme.Card.Render(body) + "\n"
}

// APIKey runs a masked input on in/out and returns the trimmed key.
func APIKey(ctx context.Context, provider string, in io.Reader, out io.Writer) (string, error) {
	p := tea.NewProgram(newKeyModel(provider),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("run key prompt: %w", err)
	}

	m, ok := final.(keyModel)
	if !ok || m.canceled || m.value == "" {
		return "", ErrCanceled
	}
	return m.value, nil
}
