package client

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultTokenFileName is where the CLI keeps the bearer token between
// runs, relative to the user's home directory.
const DefaultTokenFileName = ".bookstore-token"

// TokenFile persists one bearer token on disk with owner-only
// permissions, so a login survives process restarts.
type TokenFile struct {
	path string
}

// NewTokenFile uses the given path, or ~/.bookstore-token when empty.
func NewTokenFile(path string) (*TokenFile, error) {
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, DefaultTokenFileName)
	}
	return &TokenFile{path: path}, nil
}

// Path returns the file location in use.
func (f *TokenFile) Path() string {
	return f.path
}

// Save writes the token, replacing any previous one.
func (f *TokenFile) Save(token string) error {
	if err := os.WriteFile(f.path, []byte(token+"\n"), 0600); err != nil {
		return fmt.Errorf("failed to save token to %s: %w", f.path, err)
	}
	return nil
}

// Load reads the stored token. A missing file means ErrNoToken.
func (f *TokenFile) Load() (string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoToken
		}
		return "", fmt.Errorf("failed to read token from %s: %w", f.path, err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// Clear removes the stored token. Clearing an absent file is fine.
func (f *TokenFile) Clear() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token file %s: %w", f.path, err)
	}
	return nil
}
