package chat

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit

	case tea.KeyEsc:
		switch {
		case m.emojiOpen:
			m.emojiOpen = false
			m.resize()
		case m.editFocus != 0:
			m.closeEdit(m.editFocus)
		case m.replyOpenFor != 0:
			m.closeReply()
		}
		return m, nil

	case tea.KeyCtrlE:
		m.emojiOpen = !m.emojiOpen
		m.resize()
		return m, nil

	// Terminals cannot tell ctrl+enter from ctrl+j, so ctrl+j (and
	// alt+enter, which does survive) is the newline chord on every input.
	case tea.KeyCtrlJ:
		m.insertText("\n")
		return m, nil

	case tea.KeyEnter:
		if msg.Alt {
			m.insertText("\n")
			return m, nil
		}
		return m, m.handleSubmit()

	case tea.KeyRunes:
		if strings.ContainsRune(string(msg.Runes), '\n') {
			m.insertText(normalizeNewlines(string(msg.Runes)))
			return m, nil
		}
	}

	return m, m.updateFocusedEditor(msg)
}

// handleSubmit sends the focused input's content. Empty bodies are dropped
// by the engine; the editor closes or clears either way.
func (m *Model) handleSubmit() tea.Cmd {
	switch {
	case m.editFocus != 0:
		id := m.editFocus
		if editor, ok := m.editEditors[id]; ok {
			if err := m.engine.SendEdit(id, editor.Value()); err != nil {
				m.status = err.Error()
			}
		}
		m.closeEdit(id)

	case m.replyOpenFor != 0:
		parentID := m.replyOpenFor
		if err := m.engine.SendMessage(m.replyEditor.Value(), &parentID); err != nil {
			m.status = err.Error()
		}
		m.closeReply()

	default:
		if err := m.engine.SendMessage(m.composer.Value(), nil); err != nil {
			m.status = err.Error()
		}
		m.composer.Reset()
		m.resize()
	}
	return nil
}

// insertText puts literal text at the caret of whichever input has focus.
func (m *Model) insertText(text string) {
	if text == "" {
		return
	}
	switch {
	case m.editFocus != 0:
		if editor, ok := m.editEditors[m.editFocus]; ok {
			editor.InsertString(text)
			m.refreshViewport(false)
		}
	case m.replyOpenFor != 0:
		m.replyEditor.InsertString(text)
		m.refreshViewport(false)
	default:
		m.composer.InsertString(text)
		m.resize()
	}
}

func normalizeNewlines(value string) string {
	value = strings.ReplaceAll(value, "\r\n", "\n")
	value = strings.ReplaceAll(value, "\r", "\n")
	return value
}
