// Package session carries the authenticated-user context through the client.
// It replaces the ambient current-user global of the original app with an
// explicit object handed to whatever needs the user and credentials, with an
// init (restore from disk) and teardown (logout) lifecycle.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"finman/internal/core"
)

// ErrNoSession means no persisted session exists; the user must log in.
var ErrNoSession = errors.New("no active session")

// Session is the persisted record of one login: the user's public fields
// plus the bearer token the gateway attaches to every call. The password is
// never stored.
type Session struct {
	User  core.User `json:"user"`
	Token string    `json:"token"`
}

// Manager owns the persisted session slot, a single JSON file.
type Manager struct {
	mu      sync.Mutex
	path    string
	current *Session
}

// DefaultPath places the session file under the user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "finman", "session.json"), nil
}

// NewManager creates a manager over the given session file path.
func NewManager(path string) *Manager {
	return &Manager{path: path}
}

// Restore loads the persisted session, if any. A missing file returns
// ErrNoSession; a corrupt file is treated the same way after being removed,
// since a half-written session is unusable anyway.
func (m *Manager) Restore() (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.path)
	if errors.Is(err, os.ErrNotExist) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, fmt.Errorf("read session file: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil || s.Token == "" || s.User.ID == 0 {
		_ = os.Remove(m.path)
		return Session{}, ErrNoSession
	}
	m.current = &s
	return s, nil
}

// Save persists the session and makes it current.
func (m *Manager) Save(s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	m.current = &s
	return nil
}

// Clear removes the persisted session. Called on logout and when the
// backend rejects the stored token.
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = nil
	if err := os.Remove(m.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// Current returns the in-memory session, if one was restored or saved.
func (m *Manager) Current() (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return Session{}, false
	}
	return *m.current, true
}
