// Copyright 2026 The ResearchAgent Authors
// SPDX-License-Identifier: Apache-2.0

package account

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/researchagent-labs/researchagent/api"
)

// Authenticator is the slice of the backend client the manager needs.
// *api.Client satisfies it.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*api.AuthResponse, error)
	Signup(ctx context.Context, email, password, name string) (*api.AuthResponse, error)
	VerifyToken(ctx context.Context, token string) error
}

// Manager holds the in-memory authentication state and keeps it in
// step with the session file. It implements api.TokenSource, so a
// backend client constructed with the manager as its token source
// automatically sends the current session's bearer token.
//
// All methods are safe for concurrent use.
type Manager struct {
	store  *Store
	auth   Authenticator
	logger *slog.Logger

	mu      sync.Mutex
	session *SessionData
}

// NewManager creates a manager over the given store and backend
// authenticator. The manager starts logged out; call Load to restore a
// persisted session.
func NewManager(store *Store, auth Authenticator, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{store: store, auth: auth, logger: logger}
}

// Token returns the current access token, or "" when logged out.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return ""
	}
	return m.session.AccessToken
}

// User returns the logged-in user, or nil when logged out.
func (m *Manager) User() *api.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil
	}
	user := m.session.User
	return &user
}

// Load restores a persisted session and verifies its token against
// the backend. A token the backend rejects clears the stored session —
// both token and user, as a unit — and leaves the manager logged out
// without error; the caller simply is not authenticated anymore.
// Transport failures (backend unreachable) are returned as errors and
// leave the stored session untouched.
func (m *Manager) Load(ctx context.Context) error {
	data, err := m.store.Load()
	if err != nil {
		return err
	}
	if data == nil {
		return nil
	}

	if err := m.auth.VerifyToken(ctx, data.AccessToken); err != nil {
		if _, ok := err.(*api.APIError); !ok {
			return fmt.Errorf("account: verifying stored token: %w", err)
		}
		m.logger.Info("stored session rejected by backend, clearing", "path", m.store.Path())
		if err := m.store.Clear(); err != nil {
			return err
		}
		return nil
	}

	m.mu.Lock()
	m.session = data
	m.mu.Unlock()
	m.logger.Debug("session restored", "email", data.User.Email)
	return nil
}

// Login authenticates with the backend and persists the resulting
// session.
func (m *Manager) Login(ctx context.Context, email, password string) (*api.User, error) {
	response, err := m.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return m.adopt(response)
}

// Signup creates an account and persists its first session.
func (m *Manager) Signup(ctx context.Context, email, password, name string) (*api.User, error) {
	response, err := m.auth.Signup(ctx, email, password, name)
	if err != nil {
		return nil, err
	}
	return m.adopt(response)
}

// adopt stores an auth response in memory and on disk.
func (m *Manager) adopt(response *api.AuthResponse) (*api.User, error) {
	if response.AccessToken == "" {
		return nil, fmt.Errorf("account: backend returned empty access token")
	}
	data := SessionData{AccessToken: response.AccessToken, User: response.User}
	if err := m.store.Save(data); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.session = &data
	m.mu.Unlock()

	user := response.User
	return &user, nil
}

// Logout clears the session from memory and disk. Logging out while
// already logged out is not an error.
func (m *Manager) Logout() error {
	m.mu.Lock()
	m.session = nil
	m.mu.Unlock()
	return m.store.Clear()
}
