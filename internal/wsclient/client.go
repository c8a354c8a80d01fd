// Package wsclient is the chat client's connection to one topic room. It
// owns the websocket, pumps decoded server events onto a channel for the UI
// loop, and sends outbound frames fire-and-forget.
package wsclient

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/adamavenir/branch/internal/protocol"
	"github.com/adamavenir/branch/internal/types"
)

const writeWait = 10 * time.Second

// Event is one item from the read loop: a decoded server event, or the
// terminal error that ended the connection. The events channel closes after
// an Err item is delivered.
type Event struct {
	Event *protocol.ServerEvent
	Err   error
}

// Client is a live connection to a topic room.
type Client struct {
	conn   *websocket.Conn
	events chan Event

	writeMu sync.Mutex
	once    sync.Once
}

// Dial connects to a topic room and waits for the ready frame. The returned
// payload carries the viewer identity, the topic, and the message snapshot;
// everything after it arrives on Events.
func Dial(serverURL string, topicID int64, token string) (*Client, *protocol.ReadyPayload, error) {
	u, err := socketURL(serverURL, topicID, token)
	if err != nil {
		return nil, nil, err
	}

	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("dial %s: %w", u, err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("read ready frame: %w", err)
	}
	event, err := protocol.DecodeServerEvent(data)
	if err != nil || event == nil || event.Type != protocol.TypeReady {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("expected ready frame, got %q", string(data))
	}
	_ = conn.SetReadDeadline(time.Time{})

	c := &Client{conn: conn, events: make(chan Event, 16)}
	go c.readLoop()
	return c, event.Ready, nil
}

// Events is the inbound stream. It closes when the connection ends; the
// last item before close carries the terminal error.
func (c *Client) Events() <-chan Event {
	return c.events
}

// Close tears the connection down. The read loop notices and closes Events.
func (c *Client) Close() error {
	var err error
	c.once.Do(func() {
		c.writeMu.Lock()
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.writeMu.Unlock()
		err = c.conn.Close()
	})
	return err
}

// SendNewMessage posts a message, optionally as a reply.
func (c *Client) SendNewMessage(body string, parentID *int64) error {
	return c.write(protocol.NewMessage{Type: protocol.TypeNewMessage, Body: body, ParentID: parentID})
}

// SendEditMessage replaces a message body.
func (c *Client) SendEditMessage(messageID int64, body string) error {
	return c.write(protocol.EditMessage{Type: protocol.TypeEditMessage, MessageID: messageID, Body: body})
}

// SendReact sets the viewer's reaction on a message.
func (c *Client) SendReact(messageID int64, value types.ReactionValue) error {
	return c.write(protocol.React{Type: protocol.TypeReact, MessageID: messageID, Value: value})
}

func (c *Client) write(frame any) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *Client) readLoop() {
	defer close(c.events)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.events <- Event{Err: err}
			}
			return
		}
		event, err := protocol.DecodeServerEvent(data)
		if err != nil {
			continue // malformed frame, skip
		}
		if event == nil {
			continue // unknown type, dropped by contract
		}
		c.events <- Event{Event: event}
	}
}

// socketURL turns the configured http(s) server URL into the ws(s) endpoint
// for a topic room.
func socketURL(serverURL string, topicID int64, token string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("parse server url: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws/topic/" + strconv.FormatInt(topicID, 10)
	u.RawQuery = url.Values{"token": {token}}.Encode()
	return u.String(), nil
}
