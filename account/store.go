// Copyright 2026 The ResearchAgent Authors
// SPDX-License-Identifier: Apache-2.0

package account

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/researchagent-labs/researchagent/api"
)

// SessionFileEnv overrides the session file location when set.
const SessionFileEnv = "RESEARCHAGENT_SESSION_FILE"

// SessionData is the JSON structure of the session file, written after
// a successful login or signup.
type SessionData struct {
	AccessToken string   `json:"access_token"`
	User        api.User `json:"user"`
}

// Store persists one login session as a single JSON file. Saving
// writes token and user together; clearing removes the file. There is
// no way to end up with a token on disk but no user, or the reverse.
type Store struct {
	path string
}

// NewStore creates a store at the given path. An empty path selects
// the default location: $RESEARCHAGENT_SESSION_FILE if set, otherwise
// session.json under the user config directory.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = os.Getenv(SessionFileEnv)
	}
	if path == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("account: resolving config directory: %w", err)
		}
		path = filepath.Join(configDir, "researchagent", "session.json")
	}
	return &Store{path: path}, nil
}

// Path returns the session file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted session. Returns nil with no error when no
// session file exists.
func (s *Store) Load() (*SessionData, error) {
	jsonData, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("account: reading session from %s: %w", s.path, err)
	}

	var data SessionData
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return nil, fmt.Errorf("account: parsing session from %s: %w", s.path, err)
	}
	if data.AccessToken == "" {
		return nil, fmt.Errorf("account: session file %s has empty access token", s.path)
	}
	return &data, nil
}

// Save writes the session file with owner-only permissions, creating
// the parent directory if needed.
func (s *Store) Save(data SessionData) error {
	if data.AccessToken == "" {
		return fmt.Errorf("account: refusing to save session with empty access token")
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("account: marshaling session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("account: creating session directory: %w", err)
	}
	if err := os.WriteFile(s.path, jsonData, 0600); err != nil {
		return fmt.Errorf("account: writing session to %s: %w", s.path, err)
	}
	return nil
}

// Clear removes the session file. Clearing an absent session is not an
// error.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("account: removing session file %s: %w", s.path, err)
	}
	return nil
}
