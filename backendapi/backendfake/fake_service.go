// Package backendfake provides a configurable test double for the grading
// backend service.
package backendfake

import (
	"context"
	"sync"

	"github.com/gradeflow/session-gateway/backendapi"
)

// FakeService implements backendapi.Service with per-method stubs and call
// counters. Unstubbed methods return zero values.
type FakeService struct {
	mu sync.Mutex

	SignInFunc        func(ctx context.Context, email, password string) (*backendapi.SignInResult, error)
	OAuthExchangeFunc func(ctx context.Context, req backendapi.OAuthRequest, action string) (*backendapi.OAuthResult, error)
	RefreshFunc       func(ctx context.Context, refreshToken string) (*backendapi.RefreshResult, error)
	LoginFunc         func(ctx context.Context, email, password string) (*backendapi.AuthResult, error)
	SignupFunc        func(ctx context.Context, fullName, email, password string) (*backendapi.AuthResult, error)

	SignInCalls        int
	OAuthExchangeCalls int
	RefreshCalls       int
	LoginCalls         int
	SignupCalls        int
}

var _ backendapi.Service = (*FakeService)(nil)

func (f *FakeService) SignIn(ctx context.Context, email, password string) (*backendapi.SignInResult, error) {
	f.mu.Lock()
	f.SignInCalls++
	fn := f.SignInFunc
	f.mu.Unlock()
	if fn == nil {
		return &backendapi.SignInResult{}, nil
	}
	return fn(ctx, email, password)
}

func (f *FakeService) OAuthExchange(ctx context.Context, req backendapi.OAuthRequest, action string) (*backendapi.OAuthResult, error) {
	f.mu.Lock()
	f.OAuthExchangeCalls++
	fn := f.OAuthExchangeFunc
	f.mu.Unlock()
	if fn == nil {
		return &backendapi.OAuthResult{}, nil
	}
	return fn(ctx, req, action)
}

func (f *FakeService) Refresh(ctx context.Context, refreshToken string) (*backendapi.RefreshResult, error) {
	f.mu.Lock()
	f.RefreshCalls++
	fn := f.RefreshFunc
	f.mu.Unlock()
	if fn == nil {
		return &backendapi.RefreshResult{}, nil
	}
	return fn(ctx, refreshToken)
}

func (f *FakeService) Login(ctx context.Context, email, password string) (*backendapi.AuthResult, error) {
	f.mu.Lock()
	f.LoginCalls++
	fn := f.LoginFunc
	f.mu.Unlock()
	if fn == nil {
		return &backendapi.AuthResult{}, nil
	}
	return fn(ctx, email, password)
}

func (f *FakeService) Signup(ctx context.Context, fullName, email, password string) (*backendapi.AuthResult, error) {
	f.mu.Lock()
	f.SignupCalls++
	fn := f.SignupFunc
	f.mu.Unlock()
	if fn == nil {
		return &backendapi.AuthResult{}, nil
	}
	return fn(ctx, fullName, email, password)
}
