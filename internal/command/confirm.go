// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// confirmModel is the Bubble Tea model backing the destroy confirmation
// prompt. The user must type the expected phrase exactly for the prompt to
// accept.
type confirmModel struct {
	input    textinput.Model
	phrase   string
	done     bool
	accepted bool
}

func newConfirmModel(phrase string) confirmModel {
	ti := textinput.New()
	ti.Placeholder = phrase
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 64
	ti.Prompt = ""
	ti.Cursor.SetMode(cursor.CursorBlink)

	return confirmModel{
		input:  ti,
		phrase: phrase,
	}
}

func (m confirmModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			m.done = true
			m.accepted = m.input.Value() == m.phrase
			return m, tea.Quit

		case "ctrl+c", "esc":
			m.done = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m confirmModel) View() string {
	if m.done {
		return ""
	}

	warnStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#d9534f"))

	return fmt.Sprintf("%s\nType %q to confirm: %s",
		warnStyle.Render("This removes the state backend resources and cannot be undone."),
		m.phrase,
		m.input.View())
}

// ConfirmPhrase prompts interactively for the given phrase and reports
// whether the typed value matched. A non-terminal stdin cannot confirm, so
// callers running unattended must pass --yes instead.
func ConfirmPhrase(phrase string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, fmt.Errorf("stdin is not a terminal; pass --yes to skip confirmation")
	}

	p := tea.NewProgram(newConfirmModel(phrase))
	out, err := p.Run()
	if err != nil {
		return false, err
	}

	m, ok := out.(confirmModel)
	return ok && m.accepted, nil
}
