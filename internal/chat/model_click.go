package chat

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/adamavenir/branch/internal/types"
)

func (m *Model) handleMouseClick(msg tea.MouseMsg) (bool, tea.Cmd) {
	if handled := m.applyEmojiClick(m.emojiClickTarget(msg)); handled {
		return true, nil
	}

	for id := range m.engine.Messages() {
		if handled := m.handleNodeClick(id, msg); handled {
			return true, nil
		}
	}
	return false, nil
}

func (m *Model) handleNodeClick(id int64, msg tea.MouseMsg) bool {
	zone := func(kind string) bool {
		return m.zoneManager.Get(fmt.Sprintf("%s-%d", kind, id)).InBounds(msg)
	}

	switch {
	case zone("author"):
		if message, ok := m.engine.Get(id); ok {
			m.composer.InsertString("@" + message.Username + " ")
			m.resize()
		}

	case zone("reply"):
		m.openReply(id)

	case zone("like"):
		if err := m.engine.SendReaction(id, types.ReactionLike); err != nil {
			m.status = err.Error()
		}

	case zone("dislike"):
		if err := m.engine.SendReaction(id, types.ReactionDislike); err != nil {
			m.status = err.Error()
		}

	case zone("edit"):
		m.openEdit(id)

	case zone("collapse"):
		m.collapsed[id] = !m.collapsed[id]
		m.refreshViewport(false)

	default:
		return false
	}
	return true
}
