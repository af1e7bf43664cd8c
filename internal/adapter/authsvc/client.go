// Package authsvc is the HTTP client for the external identity provider.
// The token stays opaque end to end; this service only forwards it and
// relays the provider's verdict.
package authsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/895623789/fresh-store-backend/internal/apperr"
	"github.com/895623789/fresh-store-backend/internal/usecase"
)

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}
}

var _ usecase.AuthService = (*Client)(nil)

type verifyResp struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
	IsActive    bool   `json:"isActive"`
}

func (c *Client) VerifyToken(ctx context.Context, token string) (*usecase.UserProfile, error) {
	if token == "" {
		return nil, apperr.New(apperr.Validation, "token is required")
	}
	var out verifyResp
	if err := c.post(ctx, "/v1/tokens/verify", map[string]string{"token": token}, &out); err != nil {
		return nil, err
	}
	return &usecase.UserProfile{
		UID:         out.UID,
		Email:       out.Email,
		DisplayName: out.DisplayName,
		Role:        out.Role,
		IsActive:    out.IsActive,
	}, nil
}

func (c *Client) CustomToken(ctx context.Context, uid string, claims map[string]any) (string, error) {
	if uid == "" {
		return "", apperr.New(apperr.Validation, "uid is required")
	}
	var out struct {
		Token string `json:"token"`
	}
	body := map[string]any{"uid": uid, "claims": claims}
	if err := c.post(ctx, "/v1/tokens/custom", body, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "encode auth request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return apperr.Wrap(apperr.Internal, "build auth request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &apperr.Error{Kind: apperr.Gateway, Message: "auth service unreachable", Retryable: true, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return apperr.New(apperr.VerificationFailed, "invalid or expired token")
	case resp.StatusCode == http.StatusNotFound:
		return apperr.New(apperr.NotFound, "user not found")
	case resp.StatusCode >= 400:
		return &apperr.Error{Kind: apperr.Gateway, Message: "auth service error", Retryable: resp.StatusCode >= 500}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
