// Package protocol defines the JSON frames exchanged between the branch
// server and its clients. Every frame carries a "type" discriminator;
// unrecognized types decode to nil so callers can drop them silently.
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/adamavenir/branch/internal/types"
)

// Server → client frame types.
const (
	TypeReady    = "ready"
	TypeMessage  = "message"
	TypeReaction = "reaction"
	TypeEdit     = "edit"
)

// Client → server frame types.
const (
	TypeNewMessage  = "new_message"
	TypeEditMessage = "edit_message"
	TypeReact       = "react"
)

// ServerEvent is one inbound frame. Exactly one payload field is set,
// according to Type.
type ServerEvent struct {
	Type    string
	Ready   *ReadyPayload
	Message *types.Message
}

// ReadyPayload is the first frame sent after the websocket is established:
// the viewer's identity, the topic, and a full snapshot of its messages.
type ReadyPayload struct {
	User     types.User      `json:"user"`
	Topic    types.Topic     `json:"topic"`
	Messages []types.Message `json:"messages"`
}

// NewMessage asks the server to create a message, optionally as a reply.
type NewMessage struct {
	Type     string `json:"type"`
	Body     string `json:"body"`
	ParentID *int64 `json:"parent_id"`
}

// EditMessage asks the server to replace a message body.
type EditMessage struct {
	Type      string `json:"type"`
	MessageID int64  `json:"message_id"`
	Body      string `json:"body"`
}

// React sets the caller's reaction on a message.
type React struct {
	Type      string              `json:"type"`
	MessageID int64               `json:"message_id"`
	Value     types.ReactionValue `json:"value"`
}

type rawFrame struct {
	Type    string          `json:"type"`
	User    json.RawMessage `json:"user"`
	Topic   json.RawMessage `json:"topic"`
	Msgs    json.RawMessage `json:"messages"`
	Message json.RawMessage `json:"message"`
}

// DecodeServerEvent parses one inbound frame. A frame with an unknown type
// returns (nil, nil); malformed JSON returns an error.
func DecodeServerEvent(data []byte) (*ServerEvent, error) {
	var raw rawFrame
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}

	switch raw.Type {
	case TypeReady:
		var ready ReadyPayload
		if err := json.Unmarshal(data, &ready); err != nil {
			return nil, fmt.Errorf("decode ready: %w", err)
		}
		return &ServerEvent{Type: TypeReady, Ready: &ready}, nil

	case TypeMessage, TypeReaction, TypeEdit:
		if raw.Message == nil {
			return nil, fmt.Errorf("frame %q missing message payload", raw.Type)
		}
		var msg types.Message
		if err := json.Unmarshal(raw.Message, &msg); err != nil {
			return nil, fmt.Errorf("decode message payload: %w", err)
		}
		return &ServerEvent{Type: raw.Type, Message: &msg}, nil
	}

	return nil, nil
}

// EncodeMessageEvent builds the broadcast frame for a created, edited, or
// reacted-to message. frameType is one of TypeMessage, TypeReaction, TypeEdit.
func EncodeMessageEvent(frameType string, msg types.Message) ([]byte, error) {
	return json.Marshal(struct {
		Type    string        `json:"type"`
		Message types.Message `json:"message"`
	}{frameType, msg})
}

// EncodeReady builds the snapshot frame sent on connect.
func EncodeReady(payload ReadyPayload) ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		ReadyPayload
	}{TypeReady, payload})
}

// ClientCommand is one decoded client → server frame.
type ClientCommand struct {
	Type      string
	Body      string
	ParentID  *int64
	MessageID int64
	Value     types.ReactionValue
}

type rawCommand struct {
	Type      string              `json:"type"`
	Body      string              `json:"body"`
	ParentID  *int64              `json:"parent_id"`
	MessageID int64               `json:"message_id"`
	Value     types.ReactionValue `json:"value"`
}

// DecodeClientCommand parses one client frame. Unknown types return
// (nil, nil) and are dropped by the caller.
func DecodeClientCommand(data []byte) (*ClientCommand, error) {
	var raw rawCommand
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode command: %w", err)
	}
	switch raw.Type {
	case TypeNewMessage, TypeEditMessage, TypeReact:
		return &ClientCommand{
			Type:      raw.Type,
			Body:      raw.Body,
			ParentID:  raw.ParentID,
			MessageID: raw.MessageID,
			Value:     raw.Value,
		}, nil
	}
	return nil, nil
}
