// Package auth implements the session orchestrator: for every
// authentication event (credential submit, OAuth callback, refresh check)
// it decides what the resulting token state contains and where the user is
// sent next. It keeps no state of its own; everything flows through the
// grading backend and the injected session repository.
package auth

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/gradeflow/session-gateway/backendapi"
	"github.com/gradeflow/session-gateway/internal/config"
	errs "github.com/gradeflow/session-gateway/internal/errors"
)

// Trigger names the authentication event driving a TokenHook call.
type Trigger string

const (
	TriggerSignIn  Trigger = "signIn"
	TriggerUpdate  Trigger = "update"
	TriggerSignOut Trigger = "signOut"
)

// Identity provider names as the backend expects them.
const (
	ProviderGoogle      = "google"
	ProviderMicrosoft   = "azure-ad"
	ProviderCredentials = "credentials"
)

// ActionSignup is the pending-action value that marks an OAuth flow as a
// signup rather than a login.
const ActionSignup = "signup"

// SubscriptionActiveMarker is the literal substring convention embedded in
// app tokens to signal an active paid plan.
const SubscriptionActiveMarker = "sub_active"

// Account describes the provider-side half of a fresh sign-in.
type Account struct {
	Provider          string
	ProviderAccountID string
	AccessToken       string
}

// User describes the identity half of a fresh sign-in, either from a
// verified provider ID token or from the credential exchange.
type User struct {
	ID     string
	Email  string
	Name   string
	Image  string
	Action string
}

// Orchestrator owns the token-lifecycle decisions.
type Orchestrator struct {
	backend        backendapi.Service
	baseURL        string
	retryAttempts  int
	retryBaseDelay time.Duration
	retryMaxDelay  time.Duration
	nowTime        func() time.Time
	sleep          func(time.Duration)
	refreshGroup   singleflight.Group
	log            zerolog.Logger
}

// Option modifies an Orchestrator instance.
type Option func(*Orchestrator)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(o *Orchestrator) {
		o.nowTime = nowFunc
	}
}

// WithSleep sets the delay function used between session-resolution retries
// (primarily for testing)
func WithSleep(sleepFunc func(time.Duration)) Option {
	return func(o *Orchestrator) {
		o.sleep = sleepFunc
	}
}

// NewOrchestrator initializes the session orchestrator with required dependencies.
func NewOrchestrator(backend backendapi.Service, cfg config.LifecycleConfig, baseURL string, log zerolog.Logger, options ...Option) (*Orchestrator, error) {
	if backend == nil {
		return nil, errs.Wrapf(errs.ErrInternal, "[NewOrchestrator] backend service is required")
	}
	if cfg == nil {
		return nil, errs.Wrapf(errs.ErrInternal, "[NewOrchestrator] lifecycle config is required")
	}
	if baseURL == "" {
		return nil, errs.Wrapf(errs.ErrInternal, "[NewOrchestrator] baseURL is required")
	}

	o := &Orchestrator{
		backend:        backend,
		baseURL:        baseURL,
		retryAttempts:  cfg.GetSessionRetryAttempts(),
		retryBaseDelay: cfg.GetSessionRetryBaseDelay(),
		retryMaxDelay:  cfg.GetSessionRetryMaxDelay(),
		nowTime:        time.Now,
		sleep:          time.Sleep,
		log:            log,
	}

	for _, opt := range options {
		opt(o)
	}

	return o, nil
}

// SignInHook attaches the consumed pending action to the in-flight user
// record. OAuth providers only; it never blocks a sign-in.
func (o *Orchestrator) SignInHook(user *User, account *Account, pendingAction string) {
	if account == nil || user == nil {
		return
	}
	if account.Provider != ProviderGoogle && account.Provider != ProviderMicrosoft {
		return
	}
	if pendingAction == ActionSignup {
		user.Action = ActionSignup
	} else {
		user.Action = ""
	}
}

// refreshShared performs one backend refresh call per refresh token even
// when several requests detect expiry at the same moment.
func (o *Orchestrator) refreshShared(ctx context.Context, refreshToken string) (*backendapi.RefreshResult, error) {
	v, err, _ := o.refreshGroup.Do("refresh:"+refreshToken, func() (any, error) {
		return o.backend.Refresh(ctx, refreshToken)
	})
	if err != nil {
		return nil, err
	}
	return v.(*backendapi.RefreshResult), nil
}
