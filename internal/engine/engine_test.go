package engine

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/adamavenir/branch/internal/protocol"
	"github.com/adamavenir/branch/internal/readstate"
	"github.com/adamavenir/branch/internal/types"
)

type renderCall struct {
	scrollToBottom bool
}

type fakeView struct {
	atBottom bool
	renders  []renderCall
}

func (v *fakeView) AtBottom() bool { return v.atBottom }

func (v *fakeView) Render(scrollToBottom bool) {
	v.renders = append(v.renders, renderCall{scrollToBottom})
}

type sentFrame struct {
	kind      string
	body      string
	parentID  *int64
	messageID int64
	value     types.ReactionValue
}

type fakeTransport struct {
	frames []sentFrame
}

func (t *fakeTransport) SendNewMessage(body string, parentID *int64) error {
	t.frames = append(t.frames, sentFrame{kind: "new", body: body, parentID: parentID})
	return nil
}

func (t *fakeTransport) SendEditMessage(messageID int64, body string) error {
	t.frames = append(t.frames, sentFrame{kind: "edit", messageID: messageID, body: body})
	return nil
}

func (t *fakeTransport) SendReact(messageID int64, value types.ReactionValue) error {
	t.frames = append(t.frames, sentFrame{kind: "react", messageID: messageID, value: value})
	return nil
}

func newTestEngine(t *testing.T) (*Engine, *fakeView, *fakeTransport, *readstate.Store) {
	t.Helper()
	view := &fakeView{atBottom: true}
	transport := &fakeTransport{}
	store := readstate.Load(filepath.Join(t.TempDir(), "lastseen.json"))
	return New(42, view, store, transport), view, transport, store
}

func msg(id int64, username, createdAt string) types.Message {
	return types.Message{ID: id, Username: username, Body: "body", CreatedAt: createdAt}
}

func messageEvent(frameType string, m types.Message) *protocol.ServerEvent {
	return &protocol.ServerEvent{Type: frameType, Message: &m}
}

func TestApplySnapshotRendersAndAdvances(t *testing.T) {
	eng, view, _, store := newTestEngine(t)

	eng.ApplySnapshot([]types.Message{
		msg(1, "bob", "2026-08-28T10:00:00Z"),
		msg(2, "carol", "2026-08-28T10:05:00Z"),
	})

	if len(view.renders) != 1 || !view.renders[0].scrollToBottom {
		t.Fatalf("expected one forced-scroll render, got %+v", view.renders)
	}
	seen, ok := store.Get(42)
	if !ok {
		t.Fatal("expected read boundary after snapshot")
	}
	want := time.Date(2026, 8, 28, 10, 5, 0, 0, time.UTC)
	if !seen.Equal(want) {
		t.Fatalf("expected boundary %v, got %v", want, seen)
	}
}

func TestApplySnapshotEmptyDoesNotAdvance(t *testing.T) {
	eng, view, _, store := newTestEngine(t)

	eng.ApplySnapshot(nil)

	if len(view.renders) != 1 {
		t.Fatalf("expected render even for empty snapshot, got %d", len(view.renders))
	}
	if _, ok := store.Get(42); ok {
		t.Fatal("expected no read boundary for empty snapshot")
	}
}

func TestApplyEventStickyBottom(t *testing.T) {
	eng, view, _, store := newTestEngine(t)
	view.atBottom = true

	eng.ApplyEvent(messageEvent(protocol.TypeMessage, msg(1, "bob", "2026-08-28T10:00:00Z")))

	if len(view.renders) != 1 || !view.renders[0].scrollToBottom {
		t.Fatalf("expected scroll-to-bottom render, got %+v", view.renders)
	}
	if _, ok := store.Get(42); !ok {
		t.Fatal("expected read boundary to advance while at bottom")
	}
}

func TestApplyEventScrolledUpDoesNotAdvance(t *testing.T) {
	eng, view, _, store := newTestEngine(t)
	view.atBottom = false

	eng.ApplyEvent(messageEvent(protocol.TypeMessage, msg(1, "bob", "2026-08-28T10:00:00Z")))

	if len(view.renders) != 1 || view.renders[0].scrollToBottom {
		t.Fatalf("expected render without scroll, got %+v", view.renders)
	}
	if _, ok := store.Get(42); ok {
		t.Fatal("read boundary must not advance while scrolled up")
	}
}

func TestApplyEventEditPreservesIdentity(t *testing.T) {
	eng, _, _, _ := newTestEngine(t)
	parent := int64(9)
	original := types.Message{
		ID: 5, Username: "bob", Body: "first", CreatedAt: "2026-08-28T10:00:00Z",
		ParentID: &parent, Likes: 2, Dislikes: 1,
	}
	eng.ApplyEvent(messageEvent(protocol.TypeMessage, original))

	edited := original
	edited.Body = "second"
	eng.ApplyEvent(messageEvent(protocol.TypeEdit, edited))

	got, ok := eng.Get(5)
	if !ok {
		t.Fatal("message missing after edit")
	}
	if got.Body != "second" {
		t.Fatalf("expected edited body, got %q", got.Body)
	}
	if got.ID != 5 || got.ParentID == nil || *got.ParentID != 9 {
		t.Fatalf("edit must preserve id and parent, got %+v", got)
	}
}

func TestApplyEventReactionReplacesCounts(t *testing.T) {
	eng, _, _, _ := newTestEngine(t)
	original := msg(5, "bob", "2026-08-28T10:00:00Z")
	eng.ApplyEvent(messageEvent(protocol.TypeMessage, original))

	reacted := original
	reacted.Likes = 3
	reacted.Dislikes = 1
	eng.ApplyEvent(messageEvent(protocol.TypeReaction, reacted))

	got, _ := eng.Get(5)
	if got.Likes != 3 || got.Dislikes != 1 {
		t.Fatalf("expected counts 3/1, got %d/%d", got.Likes, got.Dislikes)
	}
	if got.Body != original.Body {
		t.Fatalf("reaction must not change body, got %q", got.Body)
	}
	if len(eng.Messages()) != 1 {
		t.Fatalf("reaction event must upsert, not insert; have %d messages", len(eng.Messages()))
	}
}

func TestFlushAdvancesRegardlessOfScroll(t *testing.T) {
	eng, view, _, store := newTestEngine(t)
	view.atBottom = false
	eng.ApplyEvent(messageEvent(protocol.TypeMessage, msg(1, "bob", "2026-08-28T11:00:00Z")))
	if _, ok := store.Get(42); ok {
		t.Fatal("precondition: no boundary while scrolled up")
	}

	eng.Flush()

	seen, ok := store.Get(42)
	if !ok {
		t.Fatal("expected boundary after flush")
	}
	want := time.Date(2026, 8, 28, 11, 0, 0, 0, time.UTC)
	if !seen.Equal(want) {
		t.Fatalf("expected %v, got %v", want, seen)
	}
}

func TestSendMessageTrimsAndDropsEmpty(t *testing.T) {
	eng, _, transport, _ := newTestEngine(t)

	if err := eng.SendMessage("   \n\t ", nil); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(transport.frames) != 0 {
		t.Fatalf("whitespace-only body must not send, got %+v", transport.frames)
	}

	parent := int64(3)
	if err := eng.SendMessage("  hello  ", &parent); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(transport.frames) != 1 {
		t.Fatalf("expected one frame, got %d", len(transport.frames))
	}
	frame := transport.frames[0]
	if frame.kind != "new" || frame.body != "hello" || frame.parentID == nil || *frame.parentID != 3 {
		t.Fatalf("unexpected frame %+v", frame)
	}

	// No optimistic insert: the mapping only changes when the echo arrives.
	if len(eng.Messages()) != 0 {
		t.Fatalf("send must not mutate the mapping, have %d messages", len(eng.Messages()))
	}
}

func TestSendEditAndReactionValidation(t *testing.T) {
	eng, _, transport, _ := newTestEngine(t)

	if err := eng.SendEdit(5, "  "); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if err := eng.SendReaction(5, types.ReactionValue(0)); err != nil {
		t.Fatalf("react: %v", err)
	}
	if len(transport.frames) != 0 {
		t.Fatalf("invalid sends must be dropped, got %+v", transport.frames)
	}

	if err := eng.SendEdit(5, "updated"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if err := eng.SendReaction(5, types.ReactionDislike); err != nil {
		t.Fatalf("react: %v", err)
	}
	if len(transport.frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(transport.frames))
	}
	if transport.frames[0].kind != "edit" || transport.frames[0].body != "updated" {
		t.Fatalf("unexpected edit frame %+v", transport.frames[0])
	}
	if transport.frames[1].kind != "react" || transport.frames[1].value != types.ReactionDislike {
		t.Fatalf("unexpected react frame %+v", transport.frames[1])
	}
}
