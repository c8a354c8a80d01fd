package store

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/pbkdf2"

	"github.com/adamavenir/branch/internal/types"
)

const (
	pbkdf2Iterations = 200_000
	saltBytes        = 16
)

// ErrUsernameTaken is returned by CreateUser for duplicate usernames.
var ErrUsernameTaken = errors.New("username already exists")

func hashPassword(password string, salt []byte) string {
	return hex.EncodeToString(pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, sha256.Size, sha256.New))
}

// CreateUser registers a new account.
func CreateUser(db *sql.DB, username, password string) (types.User, error) {
	exists, err := UserExists(db, username)
	if err != nil {
		return types.User{}, err
	}
	if exists {
		return types.User{}, ErrUsernameTaken
	}

	salt := make([]byte, saltBytes)
	if _, err := rand.Read(salt); err != nil {
		return types.User{}, err
	}

	result, err := db.Exec(`
		INSERT INTO users (username, password_hash, password_salt, created_at)
		VALUES (?, ?, ?, ?)
	`, username, hashPassword(password, salt), hex.EncodeToString(salt), types.Timestamp(time.Now()))
	if err != nil {
		return types.User{}, fmt.Errorf("create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return types.User{}, err
	}
	return types.User{ID: id, Username: username}, nil
}

// VerifyUser checks credentials. ok=false for unknown users and wrong
// passwords alike; the two cases are indistinguishable to the caller.
func VerifyUser(db *sql.DB, username, password string) (types.User, bool, error) {
	var (
		user    types.User
		hash    string
		saltHex string
	)
	err := db.QueryRow(`
		SELECT id, username, password_hash, password_salt FROM users WHERE username = ?
	`, username).Scan(&user.ID, &user.Username, &hash, &saltHex)
	if errors.Is(err, sql.ErrNoRows) {
		return types.User{}, false, nil
	}
	if err != nil {
		return types.User{}, false, err
	}

	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return types.User{}, false, err
	}
	if !hmac.Equal([]byte(hashPassword(password, salt)), []byte(hash)) {
		return types.User{}, false, nil
	}
	return user, true, nil
}

// UserExists reports whether a username is taken.
func UserExists(db *sql.DB, username string) (bool, error) {
	var one int
	err := db.QueryRow(`SELECT 1 FROM users WHERE username = ?`, username).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
