package chat

import (
	"hash/fnv"

	"github.com/charmbracelet/lipgloss"
)

var authorPalette = []lipgloss.Color{
	lipgloss.Color("111"),
	lipgloss.Color("157"),
	lipgloss.Color("216"),
	lipgloss.Color("36"),
	lipgloss.Color("183"),
	lipgloss.Color("230"),
}

var (
	metaColor   = lipgloss.Color("241")
	statusColor = lipgloss.Color("244")
	unreadColor = lipgloss.Color("214")

	metaStyle        = lipgloss.NewStyle().Foreground(metaColor)
	actionStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	linkStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("75")).Underline(true)
	mentionStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("183"))
	selfMentionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("16")).Background(lipgloss.Color("214"))
	unreadStyle      = lipgloss.NewStyle().Foreground(unreadColor)
)

// colorForAuthor hashes a username onto the palette so each author keeps a
// stable color for the whole session.
func colorForAuthor(username string) lipgloss.Color {
	h := fnv.New32a()
	_, _ = h.Write([]byte(username))
	return authorPalette[int(h.Sum32())%len(authorPalette)]
}
