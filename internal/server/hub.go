// Package server hosts the branch HTTP API and the per-topic websocket
// rooms that fan events out to connected clients.
package server

import (
	"log/slog"
	"sync"
)

// Hub tracks the clients connected to each topic room and broadcasts
// encoded frames to them. A slow client whose send buffer fills is dropped
// rather than allowed to stall the room.
type Hub struct {
	mu    sync.RWMutex
	rooms map[int64]map[*client]bool
	log   *slog.Logger
}

// NewHub creates an empty hub.
func NewHub(log *slog.Logger) *Hub {
	return &Hub{rooms: make(map[int64]map[*client]bool), log: log}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[c.topicID]
	if !ok {
		room = make(map[*client]bool)
		h.rooms[c.topicID] = room
	}
	room[c] = true
	h.log.Info("client joined", "topic", c.topicID, "user", c.user.Username, "room_size", len(room))
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[c.topicID]
	if !ok || !room[c] {
		return
	}
	delete(room, c)
	close(c.send)
	if len(room) == 0 {
		delete(h.rooms, c.topicID)
	}
	h.log.Info("client left", "topic", c.topicID, "user", c.user.Username, "room_size", len(room))
}

// Broadcast queues a frame for every client in a topic room.
func (h *Hub) Broadcast(topicID int64, frame []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.rooms[topicID] {
		select {
		case c.send <- frame:
		default:
			// Buffer full: the write pump has stalled. Drop the frame and
			// let the read pump tear the connection down.
			h.log.Warn("dropping frame for slow client", "topic", topicID, "user", c.user.Username)
		}
	}
}

// Shutdown closes every connection so in-flight sessions end cleanly.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, room := range h.rooms {
		for c := range room {
			_ = c.conn.Close()
		}
	}
	h.rooms = make(map[int64]map[*client]bool)
}
