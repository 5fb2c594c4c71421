// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// codePromptModel reads one auth code with masked echo. The program quits
// as soon as a non-empty code is entered or the prompt is cancelled.
type codePromptModel struct {
	title string
	input textinput.Model

	errMsg    string
	value     string
	cancelled bool
}

func newCodePromptModel(title string) *codePromptModel {
	input := textinput.New()
	input.Placeholder = "auth code"
	input.CharLimit = 256
	input.Width = 40
	input.EchoMode = textinput.EchoPassword
	input.EchoCharacter = '*'
	input.Focus()

	return &codePromptModel{title: title, input: input}
}

func (m *codePromptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *codePromptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, keys.cancel):
			m.cancelled = true
			return m, tea.Quit
		case key.Matches(keyMsg, keys.enter):
			code := strings.TrimSpace(m.input.Value())
			if code == "" {
				m.errMsg = "The auth code must not be empty"
				return m, nil
			}
			m.value = code
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *codePromptModel) View() string {
	var b strings.Builder
	b.WriteString("Code │ [")
	b.WriteString(m.input.View())
	b.WriteString("]")

	if m.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(errorStyle.Render("Error: " + m.errMsg))
	}

	return renderPage(m.title, b.String(), "esc: cancel │ enter: confirm") + "\n"
}
