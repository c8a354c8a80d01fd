package protocol

import (
	"encoding/json"
	"testing"

	"github.com/adamavenir/branch/internal/types"
)

func TestDecodeServerEventMessage(t *testing.T) {
	data := []byte(`{"type":"message","message":{"id":7,"username":"bob","body":"hi","created_at":"2026-08-28T10:00:00Z","parent_id":3,"likes":1,"dislikes":0}}`)

	event, err := DecodeServerEvent(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if event.Type != TypeMessage {
		t.Fatalf("expected message, got %s", event.Type)
	}
	if event.Message.ID != 7 || event.Message.Username != "bob" {
		t.Fatalf("unexpected message %+v", event.Message)
	}
	if event.Message.ParentID == nil || *event.Message.ParentID != 3 {
		t.Fatalf("unexpected parent %v", event.Message.ParentID)
	}
}

func TestDecodeServerEventReady(t *testing.T) {
	payload := ReadyPayload{
		User:  types.User{ID: 1, Username: "alice"},
		Topic: types.Topic{ID: 4, Title: "plans"},
		Messages: []types.Message{
			{ID: 1, Username: "bob", Body: "root", CreatedAt: "2026-08-28T09:00:00Z"},
		},
	}
	data, err := EncodeReady(payload)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	event, err := DecodeServerEvent(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if event.Type != TypeReady {
		t.Fatalf("expected ready, got %s", event.Type)
	}
	if event.Ready.User.Username != "alice" || event.Ready.Topic.ID != 4 {
		t.Fatalf("unexpected ready payload %+v", event.Ready)
	}
	if len(event.Ready.Messages) != 1 || event.Ready.Messages[0].Body != "root" {
		t.Fatalf("unexpected snapshot %+v", event.Ready.Messages)
	}
}

func TestDecodeServerEventUnknownTypeDropped(t *testing.T) {
	event, err := DecodeServerEvent([]byte(`{"type":"presence","user_id":9}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if event != nil {
		t.Fatalf("expected unknown type to be dropped, got %+v", event)
	}
}

func TestDecodeServerEventMalformed(t *testing.T) {
	if _, err := DecodeServerEvent([]byte(`{"type":"message"`)); err == nil {
		t.Fatal("expected error for truncated frame")
	}
	if _, err := DecodeServerEvent([]byte(`{"type":"edit"}`)); err == nil {
		t.Fatal("expected error for edit frame without message")
	}
}

func TestDecodeClientCommand(t *testing.T) {
	parent := int64(12)
	data, err := json.Marshal(NewMessage{Type: TypeNewMessage, Body: "reply", ParentID: &parent})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	cmd, err := DecodeClientCommand(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cmd.Type != TypeNewMessage || cmd.Body != "reply" {
		t.Fatalf("unexpected command %+v", cmd)
	}
	if cmd.ParentID == nil || *cmd.ParentID != 12 {
		t.Fatalf("unexpected parent %v", cmd.ParentID)
	}

	cmd, err = DecodeClientCommand([]byte(`{"type":"react","message_id":5,"value":-1}`))
	if err != nil {
		t.Fatalf("decode react: %v", err)
	}
	if cmd.MessageID != 5 || cmd.Value != types.ReactionDislike {
		t.Fatalf("unexpected react %+v", cmd)
	}

	cmd, err = DecodeClientCommand([]byte(`{"type":"typing"}`))
	if err != nil || cmd != nil {
		t.Fatalf("expected unknown command dropped, got %+v err=%v", cmd, err)
	}
}
