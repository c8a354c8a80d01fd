package chat

import "github.com/charmbracelet/lipgloss"

// AtBottom reports whether the viewport is scrolled to (or near) the
// bottom. The engine samples this before each mutation.
func (m *Model) AtBottom() bool {
	return m.atBottom()
}

// Render redraws the tree from the engine's mapping.
func (m *Model) Render(scrollToBottom bool) {
	m.refreshViewport(scrollToBottom)
}

func (m *Model) refreshViewport(scrollToBottom bool) {
	if m.viewport.Height <= 0 {
		return
	}
	content := m.renderMessages()
	// Pad short content so the viewport always has scroll room; an exact
	// height match clips the first line (bubbletea renderer bug #1232).
	if h := lipgloss.Height(content); h > 0 && h <= m.viewport.Height {
		content = "\n" + content
	}
	m.viewport.SetContent(content)
	if scrollToBottom {
		m.viewport.GotoBottom()
		return
	}
	maxOffset := lipgloss.Height(content) - m.viewport.Height
	if maxOffset < 0 {
		maxOffset = 0
	}
	if m.viewport.YOffset > maxOffset {
		m.viewport.SetYOffset(maxOffset)
	}
}

// atBottom treats "within 3 lines of the bottom" as bottom so a render
// that grows the tree by a line or two does not break the stickiness.
func (m *Model) atBottom() bool {
	if m.viewport.Height <= 0 {
		return true
	}
	maxOffset := m.viewport.TotalLineCount() - m.viewport.Height
	if maxOffset < 0 {
		maxOffset = 0
	}
	return m.viewport.YOffset >= maxOffset-3
}
