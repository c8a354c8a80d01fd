// Package config persists the client-side session: which server to talk to
// and the bearer token obtained at login.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Client is the saved client state under ~/.config/branch/.
type Client struct {
	ServerURL string `json:"server_url"`
	Token     string `json:"token,omitempty"`
	Username  string `json:"username,omitempty"`
}

// DefaultServerURL is used when no config exists yet.
const DefaultServerURL = "http://localhost:8080"

func clientConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "branch", "config.json"), nil
}

// Load reads the saved client config. A missing file yields the defaults,
// not an error.
func Load() (Client, error) {
	path, err := clientConfigPath()
	if err != nil {
		return Client{}, err
	}
	return LoadFrom(path)
}

// LoadFrom reads a client config from an explicit path.
func LoadFrom(path string) (Client, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Client{ServerURL: DefaultServerURL}, nil
		}
		return Client{}, err
	}
	var client Client
	if err := json.Unmarshal(data, &client); err != nil {
		return Client{}, err
	}
	if client.ServerURL == "" {
		client.ServerURL = DefaultServerURL
	}
	return client, nil
}

// Save writes the client config, creating the config dir if needed.
func Save(client Client) error {
	path, err := clientConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(path, client)
}

// SaveTo writes a client config to an explicit path.
func SaveTo(path string, client Client) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(client, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
