// Copyright 2026 The ResearchAgent Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"fmt"
	"net/http"
)

// Login exchanges credentials for an access token and user record.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("api: email and password are required")
	}
	request := map[string]string{"email": email, "password": password}
	var response AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", request, nil, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// Signup creates an account and returns its first access token.
func (c *Client) Signup(ctx context.Context, email, password, name string) (*AuthResponse, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("api: email and password are required")
	}
	request := map[string]string{"email": email, "password": password, "name": name}
	var response AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/signup", request, nil, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// VerifyToken checks a stored token against the backend. A nil return
// means the token is still valid; any error (including *APIError for
// an expired or revoked token) means the caller should treat the
// session as unauthenticated.
func (c *Client) VerifyToken(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("api: token is required")
	}
	request := map[string]string{"token": token}
	return c.doJSON(ctx, http.MethodPost, "/api/auth/verify", request, nil, nil)
}
