// Package chat is the live topic view: a threaded message tree in a
// viewport, a composer, inline reply and edit editors, and mouse zones for
// the per-message actions.
package chat

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/adamavenir/branch/internal/engine"
	"github.com/adamavenir/branch/internal/protocol"
	"github.com/adamavenir/branch/internal/readstate"
	"github.com/adamavenir/branch/internal/types"
	"github.com/adamavenir/branch/internal/wsclient"
)

// Options configure a chat session.
type Options struct {
	Client    *wsclient.Client
	Ready     *protocol.ReadyPayload
	ReadState *readstate.Store
}

// Run starts the chat UI and blocks until the user leaves.
func Run(opts Options) error {
	model := NewModel(opts)
	fmt.Printf("\033]0;branch · %s\007", opts.Ready.Topic.Title)

	program := tea.NewProgram(model, tea.WithMouseCellMotion())
	_, err := program.Run()
	model.Close()
	return err
}

// Model implements the topic view.
type Model struct {
	engine *engine.Engine
	client *wsclient.Client
	user   types.User
	topic  types.Topic

	viewport viewport.Model
	composer textarea.Model

	// The reply editor is a singleton: at most one open across the whole
	// tree, keyed by the node it replies to. Zero means closed.
	replyOpenFor int64
	replyEditor  textarea.Model

	// Edit editors are per-node; several can be open at once but only the
	// most recently opened holds focus.
	editEditors map[int64]*textarea.Model
	editFocus   int64

	emojiOpen bool
	collapsed map[int64]bool

	// The unread boundary is fixed at session start; messages the viewer
	// watches arrive are marked read on disk but stay highlighted until the
	// next session, like a margin bookmark.
	sessionLastSeen time.Time
	sessionHasSeen  bool

	zoneManager *zone.Manager
	status      string
	width       int
	height      int
	sized       bool
}

// NewModel builds the model from an established connection.
func NewModel(opts Options) *Model {
	m := &Model{
		client:      opts.Client,
		user:        opts.Ready.User,
		topic:       opts.Ready.Topic,
		viewport:    viewport.New(0, 0),
		composer:    newEditor("Write a message..."),
		replyEditor: newEditor("Write a reply..."),
		editEditors: make(map[int64]*textarea.Model),
		collapsed:   make(map[int64]bool),
		zoneManager: zone.New(),
	}
	m.sessionLastSeen, m.sessionHasSeen = opts.ReadState.Get(opts.Ready.Topic.ID)
	m.composer.Focus()

	m.engine = engine.New(opts.Ready.Topic.ID, m, opts.ReadState, opts.Client)
	m.engine.ApplySnapshot(opts.Ready.Messages)
	return m
}

func newEditor(placeholder string) textarea.Model {
	input := textarea.New()
	input.Placeholder = placeholder
	input.Prompt = "┃ "
	input.ShowLineNumbers = false
	input.SetHeight(1)
	// Enter is submit; newline insertion goes through ctrl+j / alt+enter.
	input.KeyMap.InsertNewline.SetEnabled(false)
	return input
}

func (m *Model) Init() tea.Cmd {
	return m.waitForEvent()
}

// Close flushes the read boundary so everything on screen at teardown is
// treated as seen next session.
func (m *Model) Close() {
	m.engine.Flush()
	_ = m.client.Close()
}
