package store

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/adamavenir/branch/internal/types"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "branch.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedUser(t *testing.T, db *sql.DB, username string) types.User {
	t.Helper()
	user, err := CreateUser(db, username, "hunter2-"+username)
	if err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return user
}

func seedTopic(t *testing.T, db *sql.DB, title string, createdBy int64) types.Topic {
	t.Helper()
	topic, err := CreateTopic(db, title, createdBy)
	if err != nil {
		t.Fatalf("seed topic %s: %v", title, err)
	}
	return topic
}

func seedMessage(t *testing.T, db *sql.DB, topicID int64, parentID *int64, userID int64, body string) types.Message {
	t.Helper()
	msg, err := CreateMessage(db, topicID, parentID, userID, body)
	if err != nil {
		t.Fatalf("seed message %q: %v", body, err)
	}
	return msg
}
