package server

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is the server configuration, read from the environment with an
// optional .env file.
type Config struct {
	Addr          string
	DBPath        string
	MaxMessageLen int
	MaxTopicTitle int
}

// LoadConfig reads configuration. A missing .env file is fine; explicit
// environment variables win over file values either way.
func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		Addr:          envString("BRANCH_ADDR", ":8080"),
		DBPath:        envString("BRANCH_DB", "branch.db"),
		MaxMessageLen: envInt("BRANCH_MAX_MESSAGE_LEN", 2000),
		MaxTopicTitle: envInt("BRANCH_MAX_TOPIC_TITLE", 80),
	}
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
