package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/adamavenir/branch/internal/types"
)

// CreateSession issues a new bearer token for a user.
func CreateSession(db *sql.DB, userID int64) (string, error) {
	token := uuid.NewString()
	now := types.Timestamp(time.Now())
	_, err := db.Exec(`
		INSERT INTO sessions (token, user_id, created_at, last_seen)
		VALUES (?, ?, ?, ?)
	`, token, userID, now, now)
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return token, nil
}

// GetUserBySession resolves a bearer token to its user and refreshes the
// session's last-seen stamp. ok=false for unknown tokens.
func GetUserBySession(db *sql.DB, token string) (types.User, bool, error) {
	var user types.User
	err := db.QueryRow(`
		SELECT u.id, u.username
		FROM sessions s JOIN users u ON u.id = s.user_id
		WHERE s.token = ?
	`, token).Scan(&user.ID, &user.Username)
	if errors.Is(err, sql.ErrNoRows) {
		return types.User{}, false, nil
	}
	if err != nil {
		return types.User{}, false, err
	}

	_, _ = db.Exec(`UPDATE sessions SET last_seen = ? WHERE token = ?`,
		types.Timestamp(time.Now()), token)
	return user, true, nil
}

// DeleteSession revokes a token. Deleting an unknown token is a no-op.
func DeleteSession(db *sql.DB, token string) error {
	_, err := db.Exec(`DELETE FROM sessions WHERE token = ?`, token)
	return err
}
