// Package identity verifies bearer tokens against the external identity
// provider. The provider owns registration, login and token issuance; the
// core only ever asks "who is this token".
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrUnauthorized is returned for any token the provider rejects.
var ErrUnauthorized = errors.New("identity: invalid or expired token")

// User is the identity attached to a verified token.
type User struct {
	ID       string                 `json:"id"`
	Email    string                 `json:"email"`
	Metadata map[string]interface{} `json:"metadata"`
}

// Verifier resolves a bearer token to a user, or rejects it.
type Verifier interface {
	Verify(ctx context.Context, token string) (*User, error)
}

// Client talks to a GoTrue-style identity endpoint over HTTP.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates an identity client. baseURL is the provider root, e.g.
// https://project.supabase.co; apiKey is the service key sent alongside
// user tokens.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Verify asks the provider who the token belongs to. Any non-OK response
// maps to ErrUnauthorized; transport failures are returned as-is.
func (c *Client) Verify(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("Verify: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Verify: identity provider request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrUnauthorized
	}

	var payload struct {
		ID           string                 `json:"id"`
		Email        string                 `json:"email"`
		UserMetadata map[string]interface{} `json:"user_metadata"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("Verify: decode response: %w", err)
	}
	if payload.ID == "" {
		return nil, ErrUnauthorized
	}

	return &User{ID: payload.ID, Email: payload.Email, Metadata: payload.UserMetadata}, nil
}

var _ Verifier = (*Client)(nil)
