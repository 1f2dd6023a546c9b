// Copyright 2026 The ResearchAgent Authors
// SPDX-License-Identifier: Apache-2.0

package account

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/researchagent-labs/researchagent/api"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "session.json"))
	if err != nil {
		t.Fatalf("NewStore() error: %v", err)
	}
	return store
}

func TestStoreRoundTrip(t *testing.T) {
	store := testStore(t)

	t.Run("load absent", func(t *testing.T) {
		data, err := store.Load()
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if data != nil {
			t.Errorf("Load() = %+v, want nil for absent file", data)
		}
	})

	t.Run("save and load", func(t *testing.T) {
		saved := SessionData{
			AccessToken: "tok-1",
			User:        api.User{ID: "u1", Email: "ada@example.test", Name: "Ada"},
		}
		if err := store.Save(saved); err != nil {
			t.Fatalf("Save() error: %v", err)
		}

		info, err := os.Stat(store.Path())
		if err != nil {
			t.Fatalf("Stat() error: %v", err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("session file permissions = %o, want 0600", info.Mode().Perm())
		}

		loaded, err := store.Load()
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if loaded == nil {
			t.Fatal("Load() = nil after Save()")
		}
		if loaded.AccessToken != "tok-1" || loaded.User.Email != "ada@example.test" {
			t.Errorf("Load() = %+v, want saved data", loaded)
		}
	})

	t.Run("clear", func(t *testing.T) {
		if err := store.Clear(); err != nil {
			t.Fatalf("Clear() error: %v", err)
		}
		data, err := store.Load()
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if data != nil {
			t.Errorf("Load() = %+v after Clear(), want nil", data)
		}
		// Clearing twice is fine.
		if err := store.Clear(); err != nil {
			t.Errorf("second Clear() error: %v", err)
		}
	})
}

func TestStoreRejectsEmptyToken(t *testing.T) {
	store := testStore(t)
	if err := store.Save(SessionData{User: api.User{ID: "u1"}}); err == nil {
		t.Error("Save() accepted a session with an empty token")
	}
}

func TestStoreEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "override.json")
	t.Setenv(SessionFileEnv, path)

	store, err := NewStore("")
	if err != nil {
		t.Fatalf("NewStore() error: %v", err)
	}
	if store.Path() != path {
		t.Errorf("Path() = %q, want %q", store.Path(), path)
	}
}

// fakeAuth scripts the backend side of the manager tests.
type fakeAuth struct {
	loginResponse *api.AuthResponse
	loginErr      error
	verifyErr     error
	verifiedToken string
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (*api.AuthResponse, error) {
	return f.loginResponse, f.loginErr
}

func (f *fakeAuth) Signup(ctx context.Context, email, password, name string) (*api.AuthResponse, error) {
	return f.loginResponse, f.loginErr
}

func (f *fakeAuth) VerifyToken(ctx context.Context, token string) error {
	f.verifiedToken = token
	return f.verifyErr
}

func TestManagerLoginLogout(t *testing.T) {
	store := testStore(t)
	auth := &fakeAuth{
		loginResponse: &api.AuthResponse{
			AccessToken: "tok-login",
			User:        api.User{ID: "u1", Email: "ada@example.test"},
		},
	}
	manager := NewManager(store, auth, nil)
	ctx := context.Background()

	if manager.Token() != "" {
		t.Errorf("Token() = %q before login, want empty", manager.Token())
	}

	user, err := manager.Login(ctx, "ada@example.test", "pw")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if user.Email != "ada@example.test" {
		t.Errorf("user email = %q", user.Email)
	}
	if manager.Token() != "tok-login" {
		t.Errorf("Token() = %q, want tok-login", manager.Token())
	}

	// The session survived to disk.
	persisted, err := store.Load()
	if err != nil || persisted == nil {
		t.Fatalf("Load() = %+v, %v; want persisted session", persisted, err)
	}

	if err := manager.Logout(); err != nil {
		t.Fatalf("Logout() error: %v", err)
	}
	if manager.Token() != "" {
		t.Errorf("Token() = %q after logout, want empty", manager.Token())
	}
	persisted, err = store.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if persisted != nil {
		t.Error("session file survived logout")
	}
}

func TestManagerLoad(t *testing.T) {
	t.Run("valid token restores session", func(t *testing.T) {
		store := testStore(t)
		if err := store.Save(SessionData{
			AccessToken: "tok-stored",
			User:        api.User{ID: "u1", Email: "ada@example.test"},
		}); err != nil {
			t.Fatalf("Save() error: %v", err)
		}

		auth := &fakeAuth{}
		manager := NewManager(store, auth, nil)
		if err := manager.Load(context.Background()); err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if manager.Token() != "tok-stored" {
			t.Errorf("Token() = %q, want tok-stored", manager.Token())
		}
		if auth.verifiedToken != "tok-stored" {
			t.Errorf("verified token = %q, want tok-stored", auth.verifiedToken)
		}
	})

	t.Run("rejected token clears both token and user", func(t *testing.T) {
		store := testStore(t)
		if err := store.Save(SessionData{
			AccessToken: "tok-expired",
			User:        api.User{ID: "u1"},
		}); err != nil {
			t.Fatalf("Save() error: %v", err)
		}

		auth := &fakeAuth{verifyErr: &api.APIError{StatusCode: http.StatusUnauthorized, Body: "token expired"}}
		manager := NewManager(store, auth, nil)
		if err := manager.Load(context.Background()); err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if manager.Token() != "" {
			t.Errorf("Token() = %q after rejected verify, want empty", manager.Token())
		}
		if manager.User() != nil {
			t.Error("User() survived rejected verify")
		}

		data, err := store.Load()
		if err != nil {
			t.Fatalf("store Load() error: %v", err)
		}
		if data != nil {
			t.Error("session file survived rejected verify")
		}
	})

	t.Run("transport failure keeps stored session", func(t *testing.T) {
		store := testStore(t)
		if err := store.Save(SessionData{AccessToken: "tok-keep", User: api.User{ID: "u1"}}); err != nil {
			t.Fatalf("Save() error: %v", err)
		}

		auth := &fakeAuth{verifyErr: errors.New("connection refused")}
		manager := NewManager(store, auth, nil)
		if err := manager.Load(context.Background()); err == nil {
			t.Fatal("Load() succeeded despite transport failure")
		}

		data, err := store.Load()
		if err != nil || data == nil {
			t.Fatalf("store Load() = %+v, %v; stored session should survive", data, err)
		}
	})

	t.Run("no stored session is a no-op", func(t *testing.T) {
		store := testStore(t)
		manager := NewManager(store, &fakeAuth{}, nil)
		if err := manager.Load(context.Background()); err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if manager.Token() != "" {
			t.Errorf("Token() = %q, want empty", manager.Token())
		}
	})
}
