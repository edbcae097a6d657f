package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gradeflow/session-gateway/backendapi"
	"github.com/gradeflow/session-gateway/internal/utils"
	"github.com/gradeflow/session-gateway/session"
)

// TokenHook applies one token-lifecycle state transition and returns the
// resulting token state. Failures inside enrichment steps are captured into
// the token's Error field rather than returned: the redirect decision is the
// single place that turns a carried error into user-visible behavior.
func (o *Orchestrator) TokenHook(ctx context.Context, tok session.Token, account *Account, user *User, trigger Trigger) session.Token {
	if trigger == TriggerSignOut {
		return session.Token{}
	}

	if account != nil && user != nil {
		return o.firstLogin(ctx, tok, account, user)
	}

	return o.maybeRefresh(ctx, tok)
}

// firstLogin exchanges a fresh provider identity for application tokens.
func (o *Orchestrator) firstLogin(ctx context.Context, tok session.Token, account *Account, user *User) session.Token {
	tok.AccessToken = account.AccessToken
	tok.Provider = account.Provider
	tok.Action = user.Action

	providerID := providerIdentity(account, user)
	if providerID == "" || user.Email == "" {
		return tok
	}

	result, err := o.backend.OAuthExchange(ctx, backendapi.OAuthRequest{
		Provider:   account.Provider,
		ProviderID: providerID,
		Email:      user.Email,
		Name:       user.Name,
	}, tok.Action)
	if err != nil {
		o.log.Warn().Err(err).Str("provider", account.Provider).Msg("identity exchange failed")
		tok.Error = err.Error()
		return tok
	}

	adoptExchange(&tok, result)
	return tok
}

// providerIdentity picks the identity key the backend links accounts by:
// the OAuth subject id for provider sign-ins, the issued user id for
// credential sign-ins.
func providerIdentity(account *Account, user *User) string {
	switch account.Provider {
	case ProviderGoogle:
		return utils.FirstNonEmpty(account.ProviderAccountID, user.ID)
	case ProviderMicrosoft:
		return account.ProviderAccountID
	default:
		return utils.FirstNonEmpty(user.ID, account.ProviderAccountID)
	}
}

// adoptExchange merges exchange results into the token without clobbering
// fields the backend left unset.
func adoptExchange(tok *session.Token, result *backendapi.OAuthResult) {
	if result.Token != "" {
		tok.AppToken = result.Token
	}
	if result.RefreshToken != "" {
		tok.RefreshToken = result.RefreshToken
	}
	if result.TokenType != "" {
		tok.TokenType = result.TokenType
	}
	if result.ClassroomID != "" {
		tok.ClassroomID = result.ClassroomID
	}
	if result.User.ID != "" {
		tok.UserID = result.User.ID
	}
	if result.User.Email != "" {
		tok.Email = result.User.Email
	}
	if name := result.User.FullName(); name != "" {
		tok.Name = name
	}
}

// maybeRefresh checks the app token's expiration claim and mints a new pair
// through the backend when it has passed. At most one refresh attempt is
// made per call; a failure is captured, not thrown.
func (o *Orchestrator) maybeRefresh(ctx context.Context, tok session.Token) session.Token {
	if tok.AppToken == "" {
		return tok
	}
	if !o.tokenExpired(tok.AppToken) {
		return tok
	}

	result, err := o.refreshShared(ctx, tok.RefreshToken)
	if err != nil {
		o.log.Warn().Err(err).Msg("token refresh failed")
		tok.Error = err.Error()
		return tok
	}

	if result.Token != "" {
		tok.AppToken = result.Token
	}
	if result.RefreshToken != "" {
		tok.RefreshToken = result.RefreshToken
	}
	if result.ClassroomID != "" {
		tok.ClassroomID = result.ClassroomID
	}
	if result.UserID != "" {
		tok.UserID = result.UserID
	}
	if result.Email != "" {
		tok.Email = result.Email
	}
	if result.Name != "" {
		tok.Name = result.Name
	}
	tok.Error = ""
	return tok
}

// tokenExpired decodes the exp claim without verifying the signature; the
// backend is the verifier of record and answers 401 for anything forged.
// Tokens without a readable exp claim are left for the backend to reject.
func (o *Orchestrator) tokenExpired(rawToken string) bool {
	unverified, _, err := jwt.NewParser().ParseUnverified(rawToken, jwt.MapClaims{})
	if err != nil {
		return false
	}
	claims, ok := unverified.Claims.(jwt.MapClaims)
	if !ok {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Time.Before(o.nowTime())
}

// SessionHook projects token state onto the externally visible session.
// A field is only overwritten when the corresponding token field is present.
func (o *Orchestrator) SessionHook(sess session.Session, tok session.Token) session.Session {
	setIfPresent(&sess.AccessToken, tok.AccessToken)
	setIfPresent(&sess.RefreshToken, tok.RefreshToken)
	setIfPresent(&sess.AppToken, tok.AppToken)
	setIfPresent(&sess.TokenType, tok.TokenType)
	setIfPresent(&sess.Provider, tok.Provider)
	setIfPresent(&sess.ClassroomID, tok.ClassroomID)
	setIfPresent(&sess.Action, tok.Action)
	setIfPresent(&sess.Error, tok.Error)

	setIfPresent(&sess.User.ID, tok.UserID)
	setIfPresent(&sess.User.Name, tok.Name)
	setIfPresent(&sess.User.Email, tok.Email)
	setIfPresent(&sess.User.Image, tok.Image)

	return sess
}

func setIfPresent(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}
