package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/adamavenir/branch/internal/format"
	"github.com/adamavenir/branch/internal/thread"
	"github.com/adamavenir/branch/internal/types"
)

const indentStep = "  "

func (m *Model) renderMessages() string {
	roots := thread.Build(m.engine.Messages())
	if len(roots) == 0 {
		return metaStyle.Render("No messages yet. Say something.")
	}
	var b strings.Builder
	m.renderNodes(&b, roots, 0)
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderNodes(b *strings.Builder, nodes []*thread.Node, depth int) {
	for _, node := range nodes {
		m.renderNode(b, node, depth)
		if !m.collapsed[node.ID] {
			m.renderNodes(b, node.Children, depth+1)
		}
	}
}

func (m *Model) renderNode(b *strings.Builder, node *thread.Node, depth int) {
	indent := strings.Repeat(indentStep, depth)

	b.WriteString(indent)
	b.WriteString(m.renderByline(node))
	b.WriteString("\n")

	if editor, open := m.editEditors[node.ID]; open {
		b.WriteString(indentLines(editor.View(), indent))
		b.WriteString("\n")
	} else {
		b.WriteString(indentLines(m.renderBody(node.Message), indent))
		b.WriteString("\n")
	}

	b.WriteString(indent)
	b.WriteString(m.renderActions(node))
	b.WriteString("\n")

	if m.replyOpenFor == node.ID {
		replyIndent := indent + indentStep
		b.WriteString(indentLines(m.replyEditor.View(), replyIndent))
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

// renderByline draws "author · time · #id" with an unread marker. The
// author is a click zone that drops "@author " into the composer.
func (m *Model) renderByline(node *thread.Node) string {
	authorStyle := lipgloss.NewStyle().Foreground(colorForAuthor(node.Username)).Bold(true)
	author := m.zoneManager.Mark(fmt.Sprintf("author-%d", node.ID), authorStyle.Render(node.Username))

	parts := []string{author}
	if created := node.Created(); !created.IsZero() {
		parts = append(parts, metaStyle.Render(created.Local().Format("Jan 2 15:04")))
	}
	parts = append(parts, metaStyle.Render(fmt.Sprintf("#%d", node.ID)))
	if m.isUnread(node.Message) {
		parts = append(parts, unreadStyle.Render("●"))
	}
	return strings.Join(parts, metaStyle.Render(" · "))
}

// renderBody styles the message's inline segments: links underlined,
// mentions tinted, mentions of the viewer highlighted.
func (m *Model) renderBody(msg types.Message) string {
	var b strings.Builder
	for _, segment := range format.Render(msg.Body, m.user.Username) {
		switch segment.Kind {
		case format.KindLink:
			b.WriteString(linkStyle.Render(segment.Text))
		case format.KindMention:
			if segment.Self {
				b.WriteString(selfMentionStyle.Render(segment.Text))
			} else {
				b.WriteString(mentionStyle.Render(segment.Text))
			}
		default:
			b.WriteString(segment.Text)
		}
	}
	return b.String()
}

// renderActions draws the click-zone row under a message: reply, reaction
// counts, edit (own messages only), collapse (nodes with children only).
func (m *Model) renderActions(node *thread.Node) string {
	parts := []string{
		m.zoneManager.Mark(fmt.Sprintf("reply-%d", node.ID), actionStyle.Render("↳ reply")),
		m.zoneManager.Mark(fmt.Sprintf("like-%d", node.ID), actionStyle.Render(fmt.Sprintf("+%d", node.Likes))),
		m.zoneManager.Mark(fmt.Sprintf("dislike-%d", node.ID), actionStyle.Render(fmt.Sprintf("-%d", node.Dislikes))),
	}
	if node.Username == m.user.Username {
		parts = append(parts, m.zoneManager.Mark(fmt.Sprintf("edit-%d", node.ID), actionStyle.Render("edit")))
	}
	if len(node.Children) > 0 {
		label := fmt.Sprintf("[-] %d", thread.Count(node.Children))
		if m.collapsed[node.ID] {
			label = fmt.Sprintf("[+] %d", thread.Count(node.Children))
		}
		parts = append(parts, m.zoneManager.Mark(fmt.Sprintf("collapse-%d", node.ID), actionStyle.Render(label)))
	}
	return strings.Join(parts, "  ")
}

// isUnread applies the session boundary: the viewer's own messages are
// never unread; with no stored boundary everything else is; otherwise a
// message is unread when it arrived after the boundary.
func (m *Model) isUnread(msg types.Message) bool {
	if msg.Username == m.user.Username {
		return false
	}
	if !m.sessionHasSeen {
		return true
	}
	return msg.Created().After(m.sessionLastSeen)
}

func indentLines(text, indent string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = indent + line
	}
	return strings.Join(lines, "\n")
}
