// Package backendapi is the HTTP client for the remote grading backend. The
// gateway owns no persistence or credential verification of its own; every
// authentication decision ultimately comes from these endpoints.
package backendapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	errs "github.com/gradeflow/session-gateway/internal/errors"
)

// Service is the backend surface the session orchestrator depends on.
type Service interface {
	SignIn(ctx context.Context, email, password string) (*SignInResult, error)
	OAuthExchange(ctx context.Context, req OAuthRequest, action string) (*OAuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Signup(ctx context.Context, fullName, email, password string) (*AuthResult, error)
}

// Client is the default HTTP implementation of Service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

var _ Service = (*Client)(nil)

// NewClient creates a backend client. A nil httpClient gets a bounded
// default so a hung backend call cannot stall the whole flow.
func NewClient(baseURL string, httpClient *http.Client, log zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		log:        log,
	}
}

// SignIn exchanges credentials for an identity and token bundle.
func (c *Client) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	env, _, err := c.postJSON(ctx, "/api/auth/signin", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, errs.Wrapf(err, "[SignIn] backend call failed")
	}
	if !env.Success {
		return nil, newError(0, messageOrDefault(env.Message, "Invalid credentials"), errs.ErrInvalidCredentials)
	}

	var result SignInResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		return nil, errs.Wrapf(err, "[SignIn] decoding response")
	}
	return &result, nil
}

// OAuthExchange maps a provider identity onto an application user and returns
// the application token pair. A 401 is the distinguished "not registered"
// outcome rather than a generic failure.
func (c *Client) OAuthExchange(ctx context.Context, req OAuthRequest, action string) (*OAuthResult, error) {
	path := "/api/auth/oauth"
	if action != "" {
		path += "?action=" + url.QueryEscape(action)
	}

	env, status, err := c.postJSON(ctx, path, req)
	if err != nil {
		return nil, errs.Wrapf(err, "[OAuthExchange] backend call failed")
	}
	if status == http.StatusUnauthorized {
		return nil, newError(status,
			messageOrDefault(env.Message, "User not registered. Please sign up first."),
			errs.ErrNotRegistered)
	}
	if status < 200 || status > 299 {
		return nil, newError(status,
			fmt.Sprintf("Backend API error: %d - %s", status, messageOrDefault(env.Message, "Unknown error")),
			errs.ErrBackendRejected)
	}
	if !env.Success {
		return nil, newError(status, messageOrDefault(env.Message, "Failed to process OAuth"), errs.ErrBackendRejected)
	}

	var result OAuthResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		return nil, errs.Wrapf(err, "[OAuthExchange] decoding response")
	}
	return &result, nil
}

// Refresh exchanges a refresh token for a new access/refresh pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	env, status, err := c.postJSON(ctx, "/api/auth/refresh", map[string]string{
		"refreshToken": refreshToken,
	})
	if err != nil {
		return nil, errs.Wrapf(err, "[Refresh] backend call failed")
	}
	if status < 200 || status > 299 {
		return nil, newError(status, messageOrDefault(env.Message, "Failed to refresh token"), errs.ErrRefreshFailed)
	}

	var result RefreshResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		return nil, errs.Wrapf(err, "[Refresh] decoding response")
	}
	return &result, nil
}

// Login calls the simple credential endpoint, which replies {user, token}
// or {error} without the standard envelope.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	return c.simpleAuth(ctx, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, "Login failed")
}

// Signup registers a new account through the simple endpoint.
func (c *Client) Signup(ctx context.Context, fullName, email, password string) (*AuthResult, error) {
	return c.simpleAuth(ctx, "/api/auth/signup", map[string]string{
		"fullName": fullName,
		"email":    email,
		"password": password,
	}, "Signup failed")
}

func (c *Client) simpleAuth(ctx context.Context, path string, body any, fallback string) (*AuthResult, error) {
	resp, err := c.post(ctx, path, body)
	if err != nil {
		return nil, errs.Wrapf(err, "[simpleAuth] backend call failed")
	}
	defer resp.Body.Close()

	var result AuthResult
	if err := decodeBody(resp.Body, &result); err != nil {
		return nil, errs.Wrapf(err, "[simpleAuth] decoding response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newError(resp.StatusCode, messageOrDefault(result.Error, fallback), errs.ErrBackendRejected)
	}
	return &result, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body any) (*Envelope, int, error) {
	resp, err := c.post(ctx, path, body)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	var env Envelope
	if err := decodeBody(resp.Body, &env); err != nil {
		return nil, resp.StatusCode, err
	}
	return &env, resp.StatusCode, nil
}

func (c *Client) post(ctx context.Context, path string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.log.Debug().Str("path", path).Msg("backend request")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrBackendUnavailable, err)
	}
	return resp, nil
}

// decodeBody decodes a JSON body, tolerating an empty one so error statuses
// without a payload still reach the status handling.
func decodeBody(r io.Reader, v any) error {
	if err := json.NewDecoder(io.LimitReader(r, 1<<20)).Decode(v); err != nil && err != io.EOF {
		return err
	}
	return nil
}

func messageOrDefault(message, fallback string) string {
	if message != "" {
		return message
	}
	return fallback
}
