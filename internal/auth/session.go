package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Session is the locally persisted backend session. The token is what the
// API client sends as a bearer credential; mutating operations are gated on
// it before any network call happens.
type Session struct {
	Token       string    `json:"token"`
	DisplayName string    `json:"displayName,omitempty"`
	Email       string    `json:"email,omitempty"`
	SavedAt     time.Time `json:"savedAt"`
}

// Authenticated reports whether a session token is present.
func (s *Session) Authenticated() bool {
	return s != nil && s.Token != ""
}

// DefaultPath is where the session file lives.
func DefaultPath() string {
	return filepath.Join(xdg.StateHome, "jobcrap", "session.json")
}

// Load reads the persisted session. A missing file is not an error: it
// returns an empty (unauthenticated) session.
func Load(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Session{}, nil
		}
		return nil, fmt.Errorf("reading session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing session %s: %w", path, err)
	}
	return &s, nil
}

// Save persists the session with owner-only permissions.
func Save(path string, s *Session) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating session dir: %w", err)
	}
	s.SavedAt = time.Now().UTC()
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing session: %w", err)
	}
	return nil
}

// Clear removes the persisted session. Clearing an absent session is fine.
func Clear(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing session: %w", err)
	}
	return nil
}
