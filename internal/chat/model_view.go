package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m *Model) View() string {
	if !m.sized {
		return "connecting..."
	}

	header := m.renderHeader()

	var lines []string
	lines = append(lines, header, m.viewport.View())
	if panel := m.renderEmojiPanel(); panel != "" {
		lines = append(lines, panel)
	} else {
		lines = append(lines, "")
	}
	lines = append(lines, m.renderComposer(), m.statusLine())

	output := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return m.zoneManager.Scan(output)
}

func (m *Model) renderHeader() string {
	title := lipgloss.NewStyle().Bold(true).Render(m.topic.Title)
	id := metaStyle.Render(fmt.Sprintf("  topic #%d", m.topic.ID))
	return title + id
}

func (m *Model) renderComposer() string {
	trigger := m.zoneManager.Mark("emoji-open", actionStyle.Render("☺"))
	return lipgloss.JoinHorizontal(lipgloss.Top, m.composer.View(), " ", trigger)
}

func (m *Model) statusLine() string {
	if m.status != "" {
		return lipgloss.NewStyle().Foreground(statusColor).Render(m.status)
	}
	hint := "enter send · ctrl+j newline · ctrl+e emoji · ctrl+c quit"
	if m.replyOpenFor != 0 {
		hint = fmt.Sprintf("replying to #%d · esc cancel · %s", m.replyOpenFor, hint)
	}
	if m.editFocus != 0 {
		hint = fmt.Sprintf("editing #%d · esc cancel · %s", m.editFocus, hint)
	}
	return lipgloss.NewStyle().Foreground(statusColor).Render("@" + m.user.Username + " · " + hint)
}

// resize recomputes the viewport and composer dimensions. The composer
// grows with its content up to a cap, the viewport takes the rest.
func (m *Model) resize() {
	if !m.sized {
		return
	}
	const composerMaxHeight = 6

	width := m.width
	if width < 10 {
		width = 10
	}
	m.composer.SetWidth(width - 4)
	m.replyEditor.SetWidth(width - 8)
	for _, editor := range m.editEditors {
		editor.SetWidth(width - 8)
	}

	composerHeight := strings.Count(m.composer.Value(), "\n") + 1
	if composerHeight > composerMaxHeight {
		composerHeight = composerMaxHeight
	}
	m.composer.SetHeight(composerHeight)

	emojiHeight := 1
	if m.emojiOpen {
		emojiHeight = lipgloss.Height(m.renderEmojiPanel())
	}

	// header + emoji slot + composer + status
	chromeHeight := 1 + emojiHeight + composerHeight + 1
	viewportHeight := m.height - chromeHeight
	if viewportHeight < 1 {
		viewportHeight = 1
	}
	m.viewport.Width = width
	m.viewport.Height = viewportHeight
}
