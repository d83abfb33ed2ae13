// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-tfe"
)

// S3 version ids run long; keep the picker rows readable.
const idDisplayLen = 16

// SelectStateVersions runs an interactive picker over the provided versions
// and returns the two selections, or nil when the user bails.
func SelectStateVersions(items []*tfe.StateVersion) []*tfe.StateVersion {
	p := tea.NewProgram(pickerModel{items: items})
	m, _ := p.Run()
	return m.(pickerModel).selected
}

type pickerModel struct {
	items    []*tfe.StateVersion
	cursor   int
	selected []*tfe.StateVersion
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "w":
			return m, tea.WindowSize()
		case "q", "esc":
			m.selected = nil
			return m, tea.Quit
		case "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case " ":
			if picked(m.selected, m.items[m.cursor]) {
				// Remove item from selected
				for i, v := range m.selected {
					if v.ID == m.items[m.cursor].ID {
						m.selected = append(m.selected[:i], m.selected[i+1:]...)
						break
					}
				}
			} else if len(m.selected) < 2 {
				m.selected = append(m.selected, m.items[m.cursor])
			}
		case "enter":
			if len(m.selected) == 2 {
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m pickerModel) View() string {
	s := "Select two state versions to diff:\n\n"
	for i, sv := range m.items {
		cursor := " "
		if m.cursor == i {
			cursor = ">"
		}
		mark := " "
		if picked(m.selected, sv) {
			mark = "x"
		}

		s += fmt.Sprintf("%s [%s] %s %4d %s\n",
			cursor, mark, displayID(sv.ID), sv.Serial, humanize.Time(sv.CreatedAt))
	}
	return s + "\nSPACE: toggle, ENTER: go, Q/ESCAPE: quit\n"
}

func displayID(id string) string {
	if len(id) > idDisplayLen {
		return id[:idDisplayLen] + ".."
	}
	return id
}

func picked(versions []*tfe.StateVersion, version *tfe.StateVersion) bool {
	for _, v := range versions {
		if v.ID == version.ID {
			return true
		}
	}
	return false
}
