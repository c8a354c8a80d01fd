package chat

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestEmojiTriggerClickToggles(t *testing.T) {
	m := testModel(t, seedMessages())

	if handled := m.applyEmojiClick(emojiClickTrigger, ""); !handled {
		t.Fatal("trigger click must be consumed")
	}
	if !m.emojiOpen {
		t.Fatal("trigger click must open the picker")
	}

	if handled := m.applyEmojiClick(emojiClickTrigger, ""); !handled {
		t.Fatal("trigger click must be consumed while open")
	}
	if m.emojiOpen {
		t.Fatal("a second trigger click must close the picker")
	}
}

func TestEmojiKeyToggles(t *testing.T) {
	m := testModel(t, seedMessages())

	m.handleKeyMsg(tea.KeyMsg{Type: tea.KeyCtrlE})
	if !m.emojiOpen {
		t.Fatal("ctrl+e must open the picker")
	}
	m.handleKeyMsg(tea.KeyMsg{Type: tea.KeyCtrlE})
	if m.emojiOpen {
		t.Fatal("ctrl+e must close the picker")
	}
}

func TestEmojiPickInsertsAtComposerCaret(t *testing.T) {
	m := testModel(t, seedMessages())
	m.composer.SetValue("good morning")

	m.applyEmojiClick(emojiClickTrigger, "")
	if handled := m.applyEmojiClick(emojiClickGlyph, "☕"); !handled {
		t.Fatal("picking a glyph must be consumed")
	}
	if got := m.composer.Value(); got != "good morning☕" {
		t.Fatalf("glyph must land at the composer caret, got %q", got)
	}
	if !m.emojiOpen {
		t.Fatal("the picker stays open across picks")
	}

	m.applyEmojiClick(emojiClickGlyph, "🎉")
	if got := m.composer.Value(); got != "good morning☕🎉" {
		t.Fatalf("successive picks must keep appending, got %q", got)
	}
}

func TestEmojiPickTargetsFocusedInput(t *testing.T) {
	m := testModel(t, seedMessages())
	m.openReply(2)

	m.applyEmojiClick(emojiClickTrigger, "")
	m.applyEmojiClick(emojiClickGlyph, "👍")
	if got := m.replyEditor.Value(); got != "👍" {
		t.Fatalf("glyph must go to the focused reply editor, got %q", got)
	}
	if m.composer.Value() != "" {
		t.Fatalf("composer must be untouched, got %q", m.composer.Value())
	}
}

func TestEmojiOutsideClickDismisses(t *testing.T) {
	m := testModel(t, seedMessages())

	m.applyEmojiClick(emojiClickTrigger, "")
	if handled := m.applyEmojiClick(emojiClickOutside, ""); handled {
		t.Fatal("a dismissing click must still land on what is underneath")
	}
	if m.emojiOpen {
		t.Fatal("an outside click must dismiss the picker")
	}
}

func TestEmojiGlyphIgnoredWhileClosed(t *testing.T) {
	m := testModel(t, seedMessages())

	if handled := m.applyEmojiClick(emojiClickGlyph, "🔥"); handled {
		t.Fatal("a glyph hit on a stale zone must be ignored while closed")
	}
	if m.composer.Value() != "" {
		t.Fatalf("nothing may be inserted while closed, got %q", m.composer.Value())
	}
}
