package auth

import (
	"context"
	"net/url"
	"strings"

	"github.com/gradeflow/session-gateway/session"
)

// Post-authentication redirect targets, relative to the gateway base URL.
const (
	loginPath     = "/login"
	signupPath    = "/signup"
	dashboardPath = "/dashboard/assignments"
)

// NavigationEvent is an explicit, tagged description of the navigation being
// decided. Handlers construct the right variant instead of the decision
// procedure re-deriving intent from cookie presence or URL shape.
type NavigationEvent interface {
	isNavigationEvent()
}

// OAuthCallbackEvent is a navigation arriving from a provider callback.
type OAuthCallbackEvent struct {
	Code  string
	Error string
}

// PlainNavigationEvent is any navigation outside the OAuth callback flow.
type PlainNavigationEvent struct {
	URL string
}

func (OAuthCallbackEvent) isNavigationEvent() {}
func (PlainNavigationEvent) isNavigationEvent() {}

// SessionResolver fetches the current session. Resolution may lag the token
// exchange, so the redirect decision retries it.
type SessionResolver func(ctx context.Context) (*session.Session, error)

// Redirect decides the post-authentication navigation target for one event.
func (o *Orchestrator) Redirect(ctx context.Context, ev NavigationEvent, resolve SessionResolver) string {
	switch ev := ev.(type) {
	case PlainNavigationEvent:
		return o.plainNavigation(ev)
	case OAuthCallbackEvent:
		return o.oauthCallback(ctx, ev, resolve)
	default:
		return o.baseURL + loginPath
	}
}

// plainNavigation allows same-origin URLs unchanged and forces everything
// else to the login page.
func (o *Orchestrator) plainNavigation(ev PlainNavigationEvent) string {
	if ev.URL != "" && startsWithBase(ev.URL, o.baseURL) {
		return ev.URL
	}
	return o.baseURL + loginPath
}

func (o *Orchestrator) oauthCallback(ctx context.Context, ev OAuthCallbackEvent, resolve SessionResolver) string {
	if ev.Error != "" {
		o.log.Info().Str("error", ev.Error).Msg("provider returned an authorization error")
		return o.loginWithError(normalizeErrorParam(ev.Error))
	}

	sess := o.resolveSession(ctx, resolve)
	if sess == nil {
		return o.loginWithError("Authentication session not found")
	}

	if sess.Error != "" {
		return o.loginWithError(sess.Error)
	}

	subActive := containsMarker(sess.AppToken)

	if sess.Action == ActionSignup && sess.ClassroomID != "" && !subActive {
		return o.baseURL + signupPath +
			"?token=" + url.QueryEscape(sess.AppToken) +
			"&classroomId=" + url.QueryEscape(sess.ClassroomID)
	}

	if subActive {
		return o.baseURL + dashboardPath
	}

	return o.baseURL + signupPath + "?subscription_error=true"
}

// resolveSession retries resolution with bounded exponential backoff;
// session visibility is not guaranteed immediately after the token exchange.
func (o *Orchestrator) resolveSession(ctx context.Context, resolve SessionResolver) *session.Session {
	delay := o.retryBaseDelay
	for attempt := 1; attempt <= o.retryAttempts; attempt++ {
		sess, err := resolve(ctx)
		if err == nil && sess != nil {
			return sess
		}
		if attempt == o.retryAttempts {
			break
		}
		o.sleep(delay)
		delay *= 2
		if delay > o.retryMaxDelay {
			delay = o.retryMaxDelay
		}
	}
	o.log.Warn().Int("attempts", o.retryAttempts).Msg("session not found after retries")
	return nil
}

func (o *Orchestrator) loginWithError(message string) string {
	return o.baseURL + loginPath + "?error=" + url.QueryEscape(message)
}

// normalizeErrorParam decodes a possibly pre-encoded provider error so it is
// re-encoded exactly once in the redirect target.
func normalizeErrorParam(raw string) string {
	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

func containsMarker(appToken string) bool {
	return strings.Contains(appToken, SubscriptionActiveMarker)
}

func startsWithBase(u, base string) bool {
	return strings.HasPrefix(u, base)
}
