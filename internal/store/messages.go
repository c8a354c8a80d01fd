package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/adamavenir/branch/internal/types"
)

// messageSelect aggregates reaction counts into the wire shape. The GROUP BY
// keeps one row per message regardless of how many reactions it has.
const messageSelect = `
	SELECT m.id,
	       u.username,
	       m.body,
	       m.created_at,
	       m.parent_id,
	       COALESCE(SUM(CASE WHEN r.value = 1 THEN 1 END), 0) AS likes,
	       COALESCE(SUM(CASE WHEN r.value = -1 THEN 1 END), 0) AS dislikes
	FROM messages m
	JOIN users u ON u.id = m.user_id
	LEFT JOIN reactions r ON r.message_id = m.id
`

func scanMessage(row *sql.Row) (types.Message, error) {
	var msg types.Message
	err := row.Scan(&msg.ID, &msg.Username, &msg.Body, &msg.CreatedAt, &msg.ParentID, &msg.Likes, &msg.Dislikes)
	return msg, err
}

// GetMessage loads one message with its reaction counts.
func GetMessage(db *sql.DB, id int64) (types.Message, error) {
	return scanMessage(db.QueryRow(messageSelect+`WHERE m.id = ? GROUP BY m.id`, id))
}

// ListMessages returns every message in a topic ascending by id — the
// snapshot order clients seed their mapping from.
func ListMessages(db *sql.DB, topicID int64) ([]types.Message, error) {
	rows, err := db.Query(messageSelect+`WHERE m.topic_id = ? GROUP BY m.id ORDER BY m.id ASC`, topicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []types.Message
	for rows.Next() {
		var msg types.Message
		if err := rows.Scan(&msg.ID, &msg.Username, &msg.Body, &msg.CreatedAt, &msg.ParentID, &msg.Likes, &msg.Dislikes); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// CreateMessage inserts a post and returns the stored record. A parent id
// that does not resolve to a message in the same topic is stored as NULL —
// the post becomes a root instead of failing.
func CreateMessage(db *sql.DB, topicID int64, parentID *int64, userID int64, body string) (types.Message, error) {
	if parentID != nil {
		var parentTopic int64
		err := db.QueryRow(`SELECT topic_id FROM messages WHERE id = ?`, *parentID).Scan(&parentTopic)
		if err != nil || parentTopic != topicID {
			parentID = nil
		}
	}

	result, err := db.Exec(`
		INSERT INTO messages (topic_id, parent_id, user_id, body, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, topicID, parentID, userID, body, types.Timestamp(time.Now()))
	if err != nil {
		return types.Message{}, fmt.Errorf("create message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return types.Message{}, err
	}
	return GetMessage(db, id)
}

// UpdateMessage replaces a message body. Only the author may edit;
// ok=false when the message is missing or owned by someone else.
func UpdateMessage(db *sql.DB, id, userID int64, body string) (types.Message, bool, error) {
	result, err := db.Exec(`
		UPDATE messages SET body = ?, edited_at = ? WHERE id = ? AND user_id = ?
	`, body, types.Timestamp(time.Now()), id, userID)
	if err != nil {
		return types.Message{}, false, fmt.Errorf("update message: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Message{}, false, err
	}
	if affected == 0 {
		return types.Message{}, false, nil
	}

	msg, err := GetMessage(db, id)
	if err != nil {
		return types.Message{}, false, err
	}
	return msg, true, nil
}

// SetReaction records the caller's reaction, overwriting any previous one,
// and returns the message with refreshed counts.
func SetReaction(db *sql.DB, messageID, userID int64, value types.ReactionValue) (types.Message, error) {
	_, err := db.Exec(`
		INSERT INTO reactions (message_id, user_id, value, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(message_id, user_id)
		DO UPDATE SET value = excluded.value, created_at = excluded.created_at
	`, messageID, userID, int(value), types.Timestamp(time.Now()))
	if err != nil {
		return types.Message{}, fmt.Errorf("set reaction: %w", err)
	}
	return GetMessage(db, messageID)
}

// TopicForMessage returns the topic a message belongs to.
func TopicForMessage(db *sql.DB, messageID int64) (int64, error) {
	var topicID int64
	err := db.QueryRow(`SELECT topic_id FROM messages WHERE id = ?`, messageID).Scan(&topicID)
	return topicID, err
}
