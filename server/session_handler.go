package server

import (
	"net/http"

	"github.com/gradeflow/session-gateway/auth"
	"github.com/gradeflow/session-gateway/session"
)

// SessionHandler returns the projected session for the calling browser.
// Reading the session is also the refresh point: an expired app token is
// renewed before the projection is built, so clients polling this endpoint
// always observe a live token or a carried error.
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := s.sessionIDFromRequest(r)
		if !ok {
			writeJSONError(w, "No active session", http.StatusUnauthorized)
			return
		}

		tok, err := s.sessions.Get(sessionID)
		if err != nil {
			s.ClearSessionCookie(w, r)
			writeJSONError(w, "No active session", http.StatusUnauthorized)
			return
		}

		refreshed := s.orchestrator.TokenHook(r.Context(), tok, nil, nil, auth.TriggerUpdate)
		if refreshed != tok {
			if err := s.sessions.Upsert(sessionID, refreshed); err != nil {
				s.log.Error().Err(err).Msg("failed to persist refreshed token")
			}
			// A rotated refresh token must land back in its HTTP-only home.
			if refreshed.RefreshToken != "" && refreshed.RefreshToken != tok.RefreshToken {
				s.SetRefreshTokenCookie(w, refreshed.RefreshToken, int(s.config.GetRefreshCookieMaxAge().Seconds()))
			}
		}

		sess := s.orchestrator.SessionHook(session.Session{}, refreshed)
		writeJSON(w, http.StatusOK, sess)
	}
}
