// Package repository provides typed access to the grading backend's
// resource endpoints through the refresh-aware client.
package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gradeflow/session-gateway/refreshclient"
	errs "github.com/gradeflow/session-gateway/internal/errors"
)

// APIResponse is the backend's resource envelope.
type APIResponse[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data"`
}

// Doer issues an authenticated, refresh-aware request.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// httpRepository is the shared plumbing for all resource repositories.
type httpRepository struct {
	baseURL string
	client  Doer
	store   refreshclient.TokenStore
}

func newHTTPRepository(baseURL string, client Doer, store refreshclient.TokenStore) httpRepository {
	return httpRepository{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		store:   store,
	}
}

// requireToken rejects before any network call when no access token is held.
func (r httpRepository) requireToken() error {
	if r.store.AccessToken() == "" {
		return errs.ErrNoAuthToken
	}
	return nil
}

func (r httpRepository) get(ctx context.Context, path string, out any) error {
	return r.call(ctx, http.MethodGet, path, nil, out)
}

func (r httpRepository) post(ctx context.Context, path string, body, out any) error {
	return r.call(ctx, http.MethodPost, path, body, out)
}

func (r httpRepository) call(ctx context.Context, method, path string, body, out any) error {
	if err := r.requireToken(); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errs.Wrapf(err, "encoding request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reader)
	if err != nil {
		return errs.Wrapf(err, "building request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var failure struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&failure)
		if failure.Message == "" {
			failure.Message = fmt.Sprintf("request failed with status %d", resp.StatusCode)
		}
		return fmt.Errorf("%w: %s", errs.ErrBackendRejected, failure.Message)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(out); err != nil {
		return errs.Wrapf(err, "decoding response")
	}
	return nil
}
