package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/gradeflow/session-gateway/auth"
	"github.com/gradeflow/session-gateway/session"
)

// LoginSubmissionHandler processes the login form: credentials are exchanged
// through the orchestrator and the resulting token state becomes a new
// session. Failures send the browser back to the login page carrying the
// backend's own message.
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if err := r.ParseForm(); err != nil {
			s.redirectTo(w, r, s.loginErrorURL("Malformed login request"))
			return
		}
		email := r.Form.Get("email")
		password := r.Form.Get("password")

		authorized, err := s.orchestrator.Authorize(ctx, email, password)
		if err != nil {
			s.redirectTo(w, r, s.loginErrorURL(err.Error()))
			return
		}

		user := &auth.User{
			ID:    authorized.ID,
			Email: authorized.Email,
			Name:  authorized.Name,
		}
		account := &auth.Account{Provider: auth.ProviderCredentials}

		tok := s.orchestrator.TokenHook(ctx, session.Token{
			AppToken:     authorized.AppToken,
			RefreshToken: authorized.RefreshToken,
			ClassroomID:  authorized.ClassroomID,
			UserID:       authorized.ID,
			Email:        authorized.Email,
			Name:         authorized.Name,
		}, account, user, auth.TriggerSignIn)

		sessionID := uuid.NewString()
		if err := s.sessions.Upsert(sessionID, tok); err != nil {
			s.log.Error().Err(err).Msg("failed to persist session")
			s.redirectTo(w, r, s.loginErrorURL("Login failed"))
			return
		}

		s.SetSessionCookie(w, r, sessionID, int(s.config.GetSessionTTL().Seconds()))
		if tok.RefreshToken != "" {
			s.SetRefreshTokenCookie(w, tok.RefreshToken, int(s.config.GetRefreshCookieMaxAge().Seconds()))
		}

		target := s.orchestrator.Redirect(ctx,
			auth.PlainNavigationEvent{URL: r.Form.Get("callbackUrl")},
			s.sessionResolver(sessionID))
		s.redirectTo(w, r, target)
	}
}

// LogoutHandler resets the token state, forgets the session and clears every
// auth cookie.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sessionID, ok := s.sessionIDFromRequest(r); ok {
			if tok, err := s.sessions.Get(sessionID); err == nil {
				// Reset the token state before discarding the session so a
				// concurrent reader never observes stale credentials.
				s.sessions.Upsert(sessionID, s.orchestrator.TokenHook(r.Context(), tok, nil, nil, auth.TriggerSignOut))
			}
			s.sessions.Delete(sessionID)
		}

		s.ClearSessionCookie(w, r)
		s.ClearRefreshTokenCookie(w)
		s.ClearActionCookie(w, r)

		s.redirectTo(w, r, s.config.GetBaseURL()+"/login")
	}
}

type credentialRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// APILoginHandler is the JSON credential proxy for non-browser clients.
func (s *Server) APILoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil {
			writeJSONError(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if err := auth.ValidateEmail(req.Email); err != nil {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := auth.ValidatePassword(req.Password); err != nil {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}

		result, err := s.backend.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			writeJSONError(w, err.Error(), http.StatusUnauthorized)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// APISignupHandler is the JSON signup proxy for non-browser clients.
func (s *Server) APISignupHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil {
			writeJSONError(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if err := auth.ValidateFullName(req.FullName); err != nil {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := auth.ValidateEmail(req.Email); err != nil {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := auth.ValidatePassword(req.Password); err != nil {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}

		result, err := s.backend.Signup(r.Context(), req.FullName, req.Email, req.Password)
		if err != nil {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusCreated, result)
	}
}

func (s *Server) loginErrorURL(message string) string {
	return s.config.GetBaseURL() + "/login?error=" + url.QueryEscape(message)
}
