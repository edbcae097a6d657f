package server

import (
	"encoding/json"
	"io"
	"net/http"
)

type refreshTokenBody struct {
	RefreshToken string `json:"refreshToken"`
}

// SetRefreshTokenHandler stores the refresh token in an HTTP-only cookie.
// The token travels only inside the request body and the Set-Cookie header,
// never in a response body where script could read it.
func (s *Server) SetRefreshTokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body refreshTokenBody
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&body); err != nil || body.RefreshToken == "" {
			writeJSONError(w, "Refresh token is required", http.StatusBadRequest)
			return
		}

		s.SetRefreshTokenCookie(w, body.RefreshToken, int(s.config.GetRefreshCookieMaxAge().Seconds()))
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}

// ClearRefreshTokenHandler removes the refresh token cookie. Clearing is
// idempotent: the handler succeeds whether or not a cookie was present.
func (s *Server) ClearRefreshTokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.ClearRefreshTokenCookie(w)
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}
