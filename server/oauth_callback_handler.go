package server

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/gradeflow/session-gateway/auth"
	errs "github.com/gradeflow/session-gateway/internal/errors"
	"github.com/gradeflow/session-gateway/session"
)

// idTokenClaims is the subset of ID-token claims the gateway consumes.
type idTokenClaims struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	Nonce   string `json:"nonce"`
}

// OAuthCallbackHandler completes the code flow: it validates the state,
// exchanges the code, verifies the ID token, runs the sign-in and token
// hooks and redirects to wherever the redirect decision lands.
func (s *Server) OAuthCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if err := r.ParseForm(); err != nil {
			s.redirectTo(w, r, s.orchestrator.Redirect(ctx,
				auth.OAuthCallbackEvent{Error: "Malformed callback request"}, nil))
			return
		}

		// Providers report user-facing failures (consent denied, account
		// problems) as an error parameter instead of a code.
		if providerErr := r.Form.Get("error"); providerErr != "" {
			if desc := r.Form.Get("error_description"); desc != "" {
				providerErr = desc
			}
			s.redirectTo(w, r, s.orchestrator.Redirect(ctx,
				auth.OAuthCallbackEvent{Error: providerErr}, nil))
			return
		}

		state := r.Form.Get("state")
		code := r.Form.Get("code")

		flow, err := s.flowStates.Get(state)
		if err != nil {
			s.log.Warn().Str("state", state).Msg("callback with unknown state")
			s.redirectTo(w, r, s.orchestrator.Redirect(ctx,
				auth.OAuthCallbackEvent{Error: "Invalid authentication state"}, nil))
			return
		}
		s.flowStates.Delete(state) // single use

		providerName := r.PathValue("provider")
		provider, ok := s.providers[providerName]
		if !ok || flow.Provider != providerName {
			s.redirectTo(w, r, s.orchestrator.Redirect(ctx,
				auth.OAuthCallbackEvent{Error: "Unknown identity provider"}, nil))
			return
		}

		oauth2Token, err := provider.OAuth2Config.Exchange(ctx, code,
			oauth2.SetAuthURLParam("code_verifier", flow.CodeVerifier))
		if err != nil {
			s.log.Warn().Err(err).Str("provider", providerName).Msg("code exchange failed")
			s.redirectTo(w, r, s.orchestrator.Redirect(ctx,
				auth.OAuthCallbackEvent{Error: "Authentication failed"}, nil))
			return
		}

		claims, err := s.verifyIDToken(ctx, provider, oauth2Token, flow.Nonce)
		if err != nil {
			s.log.Warn().Err(err).Str("provider", providerName).Msg("id token rejected")
			s.redirectTo(w, r, s.orchestrator.Redirect(ctx,
				auth.OAuthCallbackEvent{Error: "Authentication failed"}, nil))
			return
		}

		pendingAction := s.consumeActionCookie(w, r)

		user := &auth.User{
			ID:    claims.Subject,
			Email: claims.Email,
			Name:  claims.Name,
			Image: claims.Picture,
		}
		account := &auth.Account{
			Provider:          providerName,
			ProviderAccountID: claims.Subject,
			AccessToken:       oauth2Token.AccessToken,
		}

		s.orchestrator.SignInHook(user, account, pendingAction)

		tok := s.orchestrator.TokenHook(ctx, session.Token{Image: user.Image}, account, user, auth.TriggerSignIn)

		sessionID := uuid.NewString()
		if err := s.sessions.Upsert(sessionID, tok); err != nil {
			s.log.Error().Err(err).Msg("failed to persist session")
			s.redirectTo(w, r, s.orchestrator.Redirect(ctx,
				auth.OAuthCallbackEvent{Error: "Authentication failed"}, nil))
			return
		}

		s.SetSessionCookie(w, r, sessionID, int(s.config.GetSessionTTL().Seconds()))
		if tok.RefreshToken != "" {
			s.SetRefreshTokenCookie(w, tok.RefreshToken, int(s.config.GetRefreshCookieMaxAge().Seconds()))
		}

		target := s.orchestrator.Redirect(ctx,
			auth.OAuthCallbackEvent{Code: code},
			s.sessionResolver(sessionID))
		s.redirectTo(w, r, target)
	}
}

func (s *Server) verifyIDToken(ctx context.Context, provider ProviderConfig, oauth2Token *oauth2.Token, nonce string) (*idTokenClaims, error) {
	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, errs.Wrapf(errs.ErrMalformedToken, "token response carried no id_token")
	}

	idToken, err := provider.Verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, err
	}

	var claims idTokenClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, err
	}
	if claims.Nonce != nonce {
		return nil, errs.Wrapf(errs.ErrInvalidNonce, "id token nonce does not match the flow")
	}
	return &claims, nil
}

// consumeActionCookie reads the pending signup-vs-login intent and clears
// the cookie so it cannot influence a later flow.
func (s *Server) consumeActionCookie(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(actionCookieName)
	if err != nil {
		return ""
	}
	s.ClearActionCookie(w, r)
	return cookie.Value
}

// sessionResolver projects the stored token into a session the redirect
// decision can inspect.
func (s *Server) sessionResolver(sessionID string) auth.SessionResolver {
	return func(ctx context.Context) (*session.Session, error) {
		tok, err := s.sessions.Get(sessionID)
		if err != nil {
			return nil, err
		}
		sess := s.orchestrator.SessionHook(session.Session{}, tok)
		return &sess, nil
	}
}

func (s *Server) redirectTo(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusFound)
}
