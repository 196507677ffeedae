// Package auth persists the session cookie in the OS keychain so the CLI
// stays logged in across invocations without ever writing the cookie to disk.
package auth

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	service = "atrium-cli"
)

// ErrNotAuthenticated is returned when no session is stored for a server
var ErrNotAuthenticated = errors.New("not authenticated. Please run 'atrium login' first")

// getKeyringKey returns a unique key for storing session cookies per server
func getKeyringKey(serverURL string) string {
	return fmt.Sprintf("session-%s", serverURL)
}

// SaveSession persists the session cookie securely in the OS keychain/credential manager
func SaveSession(serverURL, cookie string) error {
	key := getKeyringKey(serverURL)
	if err := keyring.Set(service, key, cookie); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// LoadSession retrieves the session cookie from the OS keychain/credential manager
func LoadSession(serverURL string) (string, error) {
	key := getKeyringKey(serverURL)
	cookie, err := keyring.Get(service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotAuthenticated
		}
		return "", fmt.Errorf("failed to load session: %w", err)
	}
	return cookie, nil
}

// DeleteSession removes the session cookie from the OS keychain/credential manager
func DeleteSession(serverURL string) error {
	key := getKeyringKey(serverURL)
	if err := keyring.Delete(service, key); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
