package types

import "time"

// Message is one post within a topic. The server always ships the full
// record; edits and reaction changes arrive as complete replacements.
type Message struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
	ParentID  *int64 `json:"parent_id"`
	Likes     int    `json:"likes"`
	Dislikes  int    `json:"dislikes"`
}

// Created parses the message timestamp. Zero time on malformed input.
func (m Message) Created() time.Time {
	t, err := time.Parse(time.RFC3339, m.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Topic is a discussion thread container.
type Topic struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	CreatedBy    string `json:"created_by"`
	CreatedAt    string `json:"created_at"`
	LastActivity string `json:"last_activity,omitempty"`
}

// User is the viewing identity handed to the client at connection time.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// ReactionValue is a like (+1) or dislike (-1).
type ReactionValue int

const (
	ReactionLike    ReactionValue = 1
	ReactionDislike ReactionValue = -1
)

// Valid reports whether the value is one of the two allowed reactions.
func (v ReactionValue) Valid() bool {
	return v == ReactionLike || v == ReactionDislike
}

// Timestamp formats a time the way the server stores it.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
