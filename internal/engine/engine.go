// Package engine owns the canonical in-memory message mapping for one topic
// session and decides when a change re-renders, auto-scrolls, and advances
// the persisted read boundary.
package engine

import (
	"strings"
	"time"

	"github.com/adamavenir/branch/internal/protocol"
	"github.com/adamavenir/branch/internal/readstate"
	"github.com/adamavenir/branch/internal/types"
)

// View is the rendering surface the engine drives. The chat UI implements
// it with a viewport; tests implement it with a recorder.
type View interface {
	// AtBottom reports whether the viewport is currently scrolled to the
	// bottom. Sampled before every mutation for the sticky-bottom policy.
	AtBottom() bool
	// Render redraws the whole tree from the current mapping, scrolling to
	// the bottom when told to.
	Render(scrollToBottom bool)
}

// Transport carries outbound events. Sends are fire-and-forget: the engine
// never waits for acknowledgement and updates local state only when the
// event echoes back through ApplyEvent.
type Transport interface {
	SendNewMessage(body string, parentID *int64) error
	SendEditMessage(messageID int64, body string) error
	SendReact(messageID int64, value types.ReactionValue) error
}

// Engine applies the inbound event stream to the canonical mapping. All
// methods run on the single UI goroutine; nothing here locks.
type Engine struct {
	topicID   int64
	messages  map[int64]types.Message
	view      View
	store     *readstate.Store
	transport Transport
}

// New creates an engine for one topic session.
func New(topicID int64, view View, store *readstate.Store, transport Transport) *Engine {
	return &Engine{
		topicID:   topicID,
		messages:  make(map[int64]types.Message),
		view:      view,
		store:     store,
		transport: transport,
	}
}

// Messages exposes the canonical mapping for tree building. Callers must
// treat it as read-only; the engine is the only writer.
func (e *Engine) Messages() map[int64]types.Message {
	return e.messages
}

// Get returns one message by id.
func (e *Engine) Get(id int64) (types.Message, bool) {
	msg, ok := e.messages[id]
	return msg, ok
}

// ApplySnapshot seeds the mapping from the connect-time snapshot, renders
// with a forced scroll to bottom, and advances the read boundary to the
// newest message in the batch.
func (e *Engine) ApplySnapshot(messages []types.Message) {
	for _, msg := range messages {
		e.messages[msg.ID] = msg
	}
	e.view.Render(true)
	if len(messages) > 0 {
		e.advanceReadState()
	}
}

// ApplyEvent upserts the full message record carried by a message, edit, or
// reaction event. The at-bottom check happens before the mutation: scroll
// (and read-boundary advance) only follow when the user was already reading
// the latest messages, never when they have scrolled up into history.
func (e *Engine) ApplyEvent(event *protocol.ServerEvent) {
	if event == nil || event.Message == nil {
		return
	}
	wasAtBottom := e.view.AtBottom()
	e.messages[event.Message.ID] = *event.Message
	e.view.Render(wasAtBottom)
	if wasAtBottom {
		e.advanceReadState()
	}
}

// Flush advances the read boundary unconditionally. Called on teardown so
// messages seen just before leaving are not re-flagged unread next session.
func (e *Engine) Flush() {
	e.advanceReadState()
}

// SendMessage posts a new message or reply. Whitespace-only bodies are
// dropped silently; the caller clears its input either way.
func (e *Engine) SendMessage(body string, parentID *int64) error {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil
	}
	return e.transport.SendNewMessage(body, parentID)
}

// SendEdit replaces a message body. Whitespace-only bodies are dropped.
func (e *Engine) SendEdit(messageID int64, body string) error {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil
	}
	return e.transport.SendEditMessage(messageID, body)
}

// SendReaction sets the viewer's reaction on a message.
func (e *Engine) SendReaction(messageID int64, value types.ReactionValue) error {
	if !value.Valid() {
		return nil
	}
	return e.transport.SendReact(messageID, value)
}

// LatestCreated returns the maximum creation timestamp across all known
// messages, zero when the mapping is empty.
func (e *Engine) LatestCreated() time.Time {
	var latest time.Time
	for _, msg := range e.messages {
		if created := msg.Created(); created.After(latest) {
			latest = created
		}
	}
	return latest
}

func (e *Engine) advanceReadState() {
	if latest := e.LatestCreated(); !latest.IsZero() {
		_ = e.store.Set(e.topicID, latest)
	}
}
