// Package refreshclient wraps backend calls so an expired access token is
// refreshed and the original request replayed once, without the transient
// 401 reaching the caller.
package refreshclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	errs "github.com/gradeflow/session-gateway/internal/errors"
)

// refreshPayload is the body of a successful refresh response.
type refreshPayload struct {
	Data struct {
		Token        string `json:"token"`
		RefreshToken string `json:"refreshToken"`
		ClassroomID  string `json:"classroomId"`
	} `json:"data"`
}

// Client issues authenticated requests with at most one silent
// refresh-and-retry on a 401.
type Client struct {
	httpClient *http.Client
	store      TokenStore

	// refreshURL is the backend refresh endpoint; the refresh token travels
	// in the HTTP-only cookie, never in the request body.
	refreshURL string

	// cookieSyncURL is the local endpoint that rewrites the HTTP-only
	// refresh-token cookie after a successful refresh.
	cookieSyncURL string

	// onSessionExpired runs when a refresh fails; the caller's session is
	// gone and there is nothing further to retry.
	onSessionExpired func()

	// rotationHook, when set, replaces the cookie-sync call. Server-side
	// callers use it to rewrite the cookie on their own response.
	rotationHook func(refreshToken string)

	group singleflight.Group
	log   zerolog.Logger
}

// Option modifies a Client instance.
type Option func(*Client)

// WithRotationHook overrides how a rotated refresh token is propagated.
func WithRotationHook(fn func(refreshToken string)) Option {
	return func(c *Client) {
		c.rotationHook = fn
	}
}

// New creates a refresh-aware client. httpClient must carry a cookie jar so
// the refresh call presents the HTTP-only refresh-token cookie.
func New(httpClient *http.Client, store TokenStore, refreshURL, cookieSyncURL string, onSessionExpired func(), log zerolog.Logger, options ...Option) (*Client, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if store == nil {
		return nil, errs.Wrapf(errs.ErrInternal, "[refreshclient New] token store is required")
	}
	if refreshURL == "" {
		return nil, errs.Wrapf(errs.ErrInternal, "[refreshclient New] refresh URL is required")
	}
	if onSessionExpired == nil {
		onSessionExpired = func() {}
	}
	c := &Client{
		httpClient:       httpClient,
		store:            store,
		refreshURL:       refreshURL,
		cookieSyncURL:    cookieSyncURL,
		onSessionExpired: onSessionExpired,
		log:              log,
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// Do issues the request with the current access token attached. Anything but
// a 401 is returned verbatim. On a 401 the token pair is refreshed and the
// request retried exactly once; the retried response is returned as-is, so a
// second 401 surfaces to the caller instead of looping.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	c.attachBearer(req, c.store.AccessToken())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	// Token expired. Drop the 401 body before replaying.
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	newToken, err := c.refresh(req)
	if err != nil {
		return nil, err
	}

	retry, err := c.replayable(req)
	if err != nil {
		return nil, err
	}
	c.attachBearer(retry, newToken)
	return c.httpClient.Do(retry)
}

// refresh exchanges the cookie-held refresh token for a new pair. Concurrent
// 401s share a single backend call. Failure is terminal: local token state
// is cleared and the session-expired hook fires.
func (c *Client) refresh(origin *http.Request) (string, error) {
	v, err, _ := c.group.Do("refresh", func() (any, error) {
		refreshReq, err := http.NewRequestWithContext(origin.Context(), http.MethodPost, c.refreshURL, nil)
		if err != nil {
			return nil, err
		}
		refreshReq.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(refreshReq)
		if err != nil {
			return nil, errs.Wrapf(err, "refresh call failed")
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, fmt.Errorf("%w: refresh returned status %d", errs.ErrSessionExpired, resp.StatusCode)
		}

		var payload refreshPayload
		if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&payload); err != nil {
			return nil, errs.Wrapf(err, "decoding refresh response")
		}

		c.store.SetTokens(payload.Data.Token, payload.Data.ClassroomID)
		if c.rotationHook != nil {
			c.rotationHook(payload.Data.RefreshToken)
		} else {
			c.syncRefreshCookie(origin, payload.Data.RefreshToken)
		}
		return payload.Data.Token, nil
	})
	if err != nil {
		c.store.Clear()
		c.onSessionExpired()
		c.log.Warn().Err(err).Msg("session refresh failed")
		return "", err
	}
	return v.(string), nil
}

// syncRefreshCookie pushes the rotated refresh token into the HTTP-only
// cookie store. Best effort: a failed sync leaves the old cookie, which the
// next refresh attempt will reject.
func (c *Client) syncRefreshCookie(origin *http.Request, refreshToken string) {
	if c.cookieSyncURL == "" || refreshToken == "" {
		return
	}
	body, _ := json.Marshal(map[string]string{"refreshToken": refreshToken})
	req, err := http.NewRequestWithContext(origin.Context(), http.MethodPost, c.cookieSyncURL, bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Msg("refresh-token cookie sync failed")
		return
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

// replayable rebuilds the original request with a fresh body for the retry.
func (c *Client) replayable(req *http.Request) (*http.Request, error) {
	retry := req.Clone(req.Context())
	if req.Body == nil || req.GetBody == nil {
		return retry, nil
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, errs.Wrapf(err, "rebuilding request body for retry")
	}
	retry.Body = body
	return retry, nil
}

func (c *Client) attachBearer(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if req.Header.Get("Content-Type") == "" && req.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
}
