package server

import (
	"net/http"
)

// RefreshTokenHandler exchanges the cookie-held refresh token for a fresh
// token pair. The rotated refresh token is written straight back into its
// HTTP-only cookie and echoed in the body so non-cookie clients can push it
// through the cookie bridge themselves.
func (s *Server) RefreshTokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(refreshTokenCookieName)
		if err != nil || cookie.Value == "" {
			writeJSONError(w, "No refresh token", http.StatusUnauthorized)
			return
		}

		result, err := s.backend.Refresh(r.Context(), cookie.Value)
		if err != nil {
			s.log.Warn().Err(err).Msg("refresh token rejected")
			s.ClearRefreshTokenCookie(w)
			writeJSONError(w, "Failed to refresh token", http.StatusUnauthorized)
			return
		}

		if result.RefreshToken != "" {
			s.SetRefreshTokenCookie(w, result.RefreshToken, int(s.config.GetRefreshCookieMaxAge().Seconds()))
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data": map[string]string{
				"token":        result.Token,
				"refreshToken": result.RefreshToken,
				"classroomId":  result.ClassroomID,
			},
		})
	}
}
