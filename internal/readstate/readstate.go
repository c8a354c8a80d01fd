// Package readstate persists the per-topic "last seen" boundary used to
// compute unread indicators. State is local to the client, one JSON blob
// under the user config dir; it is deliberately not synced to the server.
package readstate

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Store maps topic ids to the timestamp of the last message the user saw.
// Corrupt or missing files load as empty state — unread computation treats
// an absent entry as "everything is unread", never as an error.
type Store struct {
	path     string
	lastSeen map[string]string
}

// DefaultPath returns the standard location of the read-state blob.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "branch", "lastseen.json"), nil
}

// Load reads the blob at path. Parse failures and missing files yield an
// empty store.
func Load(path string) *Store {
	store := &Store{path: path, lastSeen: map[string]string{}}
	data, err := os.ReadFile(path)
	if err != nil {
		return store
	}
	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err == nil && entries != nil {
		store.lastSeen = entries
	}
	return store
}

// Get returns the stored last-seen time for a topic, ok=false when the
// topic has never been seen (or the stored value is unparseable).
func (s *Store) Get(topicID int64) (time.Time, bool) {
	raw, ok := s.lastSeen[key(topicID)]
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Set advances the last-seen boundary for a topic and writes the blob
// immediately. A value earlier than the stored one is ignored — the
// boundary never regresses within or across sessions.
func (s *Store) Set(topicID int64, seen time.Time) error {
	if current, ok := s.Get(topicID); ok && !seen.After(current) {
		return nil
	}
	s.lastSeen[key(topicID)] = seen.UTC().Format(time.RFC3339)
	return s.save()
}

func (s *Store) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s.lastSeen, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}

func key(topicID int64) string {
	return strconv.FormatInt(topicID, 10)
}
