package server

import (
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/adamavenir/branch/internal/protocol"
	"github.com/adamavenir/branch/internal/store"
	"github.com/adamavenir/branch/internal/types"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxFrameSize   = 8192
	sendBufferSize = 64
)

// client is one websocket connection bound to a topic room. Reads and
// writes run on separate goroutines; gorilla/websocket supports exactly one
// concurrent reader and one concurrent writer per connection.
type client struct {
	server  *Server
	conn    *websocket.Conn
	topicID int64
	user    types.User
	send    chan []byte
}

func (c *client) readPump() {
	defer func() {
		c.server.hub.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.server.log.Warn("unexpected close", "user", c.user.Username, "err", err)
			}
			return
		}

		cmd, err := protocol.DecodeClientCommand(data)
		if err != nil {
			c.server.log.Warn("bad frame", "user", c.user.Username, "err", err)
			continue
		}
		if cmd == nil {
			continue // unknown type, dropped by contract
		}
		c.handleCommand(cmd)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleCommand validates one client frame and, when accepted, persists the
// change and broadcasts the full updated record to the room. Invalid
// frames are ignored without a reply.
func (c *client) handleCommand(cmd *protocol.ClientCommand) {
	switch cmd.Type {
	case protocol.TypeNewMessage:
		body := clampBody(cmd.Body, c.server.cfg.MaxMessageLen)
		if body == "" {
			return
		}
		msg, err := store.CreateMessage(c.server.db, c.topicID, cmd.ParentID, c.user.ID, body)
		if err != nil {
			c.server.log.Error("create message", "err", err)
			return
		}
		c.broadcast(protocol.TypeMessage, msg)

	case protocol.TypeEditMessage:
		body := clampBody(cmd.Body, c.server.cfg.MaxMessageLen)
		if body == "" || !c.inTopic(cmd.MessageID) {
			return
		}
		msg, ok, err := store.UpdateMessage(c.server.db, cmd.MessageID, c.user.ID, body)
		if err != nil {
			c.server.log.Error("update message", "err", err)
			return
		}
		if !ok {
			return
		}
		c.broadcast(protocol.TypeEdit, msg)

	case protocol.TypeReact:
		if !cmd.Value.Valid() || !c.inTopic(cmd.MessageID) {
			return
		}
		msg, err := store.SetReaction(c.server.db, cmd.MessageID, c.user.ID, cmd.Value)
		if err != nil {
			c.server.log.Error("set reaction", "err", err)
			return
		}
		c.broadcast(protocol.TypeReaction, msg)
	}
}

func (c *client) inTopic(messageID int64) bool {
	topicID, err := store.TopicForMessage(c.server.db, messageID)
	return err == nil && topicID == c.topicID
}

func (c *client) broadcast(frameType string, msg types.Message) {
	frame, err := protocol.EncodeMessageEvent(frameType, msg)
	if err != nil {
		c.server.log.Error("encode frame", "err", err)
		return
	}
	c.server.hub.Broadcast(c.topicID, frame)
}

func clampBody(body string, maxLen int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) > maxLen {
		body = string(runes[:maxLen])
	}
	return body
}
