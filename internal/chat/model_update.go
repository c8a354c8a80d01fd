package chat

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/adamavenir/branch/internal/protocol"
	"github.com/adamavenir/branch/internal/wsclient"
)

type socketEventMsg struct {
	item wsclient.Event
}

type socketClosedMsg struct{}

// waitForEvent blocks on the connection's event channel and feeds the next
// item back into the update loop.
func (m *Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		item, ok := <-m.client.Events()
		if !ok {
			return socketClosedMsg{}
		}
		return socketEventMsg{item: item}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSizeMsg(msg)
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.MouseMsg:
		return m.handleMouseMsg(msg)
	case socketEventMsg:
		return m.handleSocketEvent(msg)
	case socketClosedMsg:
		m.status = "disconnected"
		return m, tea.Quit
	default:
		return m, m.updateFocusedEditor(msg)
	}
}

func (m *Model) handleWindowSizeMsg(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	wasAtBottom := !m.sized || m.atBottom()
	m.width = msg.Width
	m.height = msg.Height
	m.sized = true
	m.resize()
	m.refreshViewport(wasAtBottom)
	return m, nil
}

func (m *Model) handleSocketEvent(msg socketEventMsg) (tea.Model, tea.Cmd) {
	if msg.item.Err != nil {
		m.status = "connection lost: " + msg.item.Err.Error()
		return m, tea.Quit
	}
	if event := msg.item.Event; event != nil && event.Type != protocol.TypeReady {
		m.engine.ApplyEvent(event)
	}
	return m, m.waitForEvent()
}

func (m *Model) handleMouseMsg(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
		if handled, cmd := m.handleMouseClick(msg); handled {
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// updateFocusedEditor routes a message to whichever input currently holds
// focus: an open edit editor, the reply editor, or the composer.
func (m *Model) updateFocusedEditor(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch {
	case m.editFocus != 0:
		if editor, ok := m.editEditors[m.editFocus]; ok {
			*editor, cmd = editor.Update(msg)
			m.refreshViewport(false)
		}
	case m.replyOpenFor != 0:
		m.replyEditor, cmd = m.replyEditor.Update(msg)
		m.refreshViewport(false)
	default:
		m.composer, cmd = m.composer.Update(msg)
	}
	return cmd
}
