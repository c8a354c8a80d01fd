package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/adamavenir/branch/internal/types"
)

// CreateTopic creates a discussion container and returns it.
func CreateTopic(db *sql.DB, title string, createdBy int64) (types.Topic, error) {
	now := types.Timestamp(time.Now())
	result, err := db.Exec(`
		INSERT INTO topics (title, created_by, created_at) VALUES (?, ?, ?)
	`, title, createdBy, now)
	if err != nil {
		return types.Topic{}, fmt.Errorf("create topic: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return types.Topic{}, err
	}
	return GetTopic(db, id)
}

// GetTopic loads one topic. sql.ErrNoRows for unknown ids.
func GetTopic(db *sql.DB, id int64) (types.Topic, error) {
	var topic types.Topic
	err := db.QueryRow(`
		SELECT t.id, t.title, u.username, t.created_at
		FROM topics t JOIN users u ON u.id = t.created_by
		WHERE t.id = ?
	`, id).Scan(&topic.ID, &topic.Title, &topic.CreatedBy, &topic.CreatedAt)
	if err != nil {
		return types.Topic{}, err
	}
	return topic, nil
}

// ListTopics returns all topics, newest activity first. LastActivity is the
// created-at of the newest message, falling back to the topic's own
// created-at for empty topics; the lobby compares it against the local
// read state to badge unread topics.
func ListTopics(db *sql.DB) ([]types.Topic, error) {
	rows, err := db.Query(`
		SELECT t.id, t.title, u.username, t.created_at,
		       COALESCE(MAX(m.created_at), t.created_at) AS last_activity
		FROM topics t
		JOIN users u ON u.id = t.created_by
		LEFT JOIN messages m ON m.topic_id = t.id
		GROUP BY t.id
		ORDER BY last_activity DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics []types.Topic
	for rows.Next() {
		var topic types.Topic
		if err := rows.Scan(&topic.ID, &topic.Title, &topic.CreatedBy, &topic.CreatedAt, &topic.LastActivity); err != nil {
			return nil, err
		}
		topics = append(topics, topic)
	}
	return topics, rows.Err()
}

// TopicExists reports whether a topic id is known.
func TopicExists(db *sql.DB, id int64) (bool, error) {
	var one int
	err := db.QueryRow(`SELECT 1 FROM topics WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
