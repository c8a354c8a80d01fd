package chat

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var emojiGlyphs = []string{
	"😀", "😂", "😅", "😉", "😍", "🤔", "😱", "😴",
	"👍", "👎", "👋", "🙏", "💪", "🔥", "✨", "🎉",
	"❤️", "💡", "✅", "❌", "☕", "🍕", "🚀", "🐛",
}

var emojiPanelStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(metaColor).
	Padding(0, 1)

// renderEmojiPanel draws the picker. Each glyph is its own click zone; the
// panel stays open across picks until dismissed.
func (m *Model) renderEmojiPanel() string {
	if !m.emojiOpen {
		return ""
	}
	const perRow = 8
	var rows []string
	for start := 0; start < len(emojiGlyphs); start += perRow {
		end := start + perRow
		if end > len(emojiGlyphs) {
			end = len(emojiGlyphs)
		}
		cells := make([]string, 0, perRow)
		for i := start; i < end; i++ {
			cells = append(cells, m.zoneManager.Mark(fmt.Sprintf("emoji-pick-%d", i), emojiGlyphs[i]))
		}
		rows = append(rows, strings.Join(cells, " "))
	}
	return emojiPanelStyle.Render(strings.Join(rows, "\n"))
}

// emojiAt resolves a click inside the picker to its glyph.
func (m *Model) emojiAt(msg tea.MouseMsg) (string, bool) {
	for i, glyph := range emojiGlyphs {
		if m.zoneManager.Get(fmt.Sprintf("emoji-pick-%d", i)).InBounds(msg) {
			return glyph, true
		}
	}
	return "", false
}

type emojiClick int

const (
	emojiClickOutside emojiClick = iota
	emojiClickTrigger
	emojiClickGlyph
)

// emojiClickTarget classifies a click for the picker.
func (m *Model) emojiClickTarget(msg tea.MouseMsg) (emojiClick, string) {
	if m.zoneManager.Get("emoji-open").InBounds(msg) {
		return emojiClickTrigger, ""
	}
	if m.emojiOpen {
		if glyph, ok := m.emojiAt(msg); ok {
			return emojiClickGlyph, glyph
		}
	}
	return emojiClickOutside, ""
}

// applyEmojiClick advances the picker state. It reports whether the click
// was consumed; a dismissing outside click still lands on whatever is
// underneath it.
func (m *Model) applyEmojiClick(target emojiClick, glyph string) bool {
	switch target {
	case emojiClickTrigger:
		m.emojiOpen = !m.emojiOpen
		m.resize()
		return true

	case emojiClickGlyph:
		if m.emojiOpen {
			m.insertText(glyph)
			return true
		}

	case emojiClickOutside:
		if m.emojiOpen {
			m.emojiOpen = false
			m.resize()
		}
	}
	return false
}
