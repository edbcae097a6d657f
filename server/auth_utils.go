package server

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
)

const (
	// sessionCookieName identifies the server-side session for one browser.
	sessionCookieName = "gateway_session"
	// actionCookieName carries the signup-vs-login intent across the OAuth
	// redirect; single use, cleared as soon as the callback reads it.
	actionCookieName = "auth_action"
	// refreshTokenCookieName is the HTTP-only home of the refresh token.
	// This cookie is the trust boundary: the token must never be readable
	// by non-HTTP client code.
	refreshTokenCookieName = "refreshToken"
)

// generateRandomString creates a random base64url string
func generateRandomString(length int) string {
	b := make([]byte, length)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// signSessionID appends an HMAC so a forged cookie is rejected before any
// session lookup.
func (s *Server) signSessionID(sessionID string) string {
	mac := hmac.New(sha256.New, []byte(s.config.GetSessionSecret()))
	mac.Write([]byte(sessionID))
	return sessionID + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// sessionIDFromRequest extracts and verifies the session id from the cookie.
func (s *Server) sessionIDFromRequest(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return "", false
	}
	sessionID, _, found := strings.Cut(cookie.Value, ".")
	if !found || sessionID == "" {
		return "", false
	}
	if !hmac.Equal([]byte(cookie.Value), []byte(s.signSessionID(sessionID))) {
		return "", false
	}
	return sessionID, true
}

func (s *Server) SetSessionCookie(w http.ResponseWriter, r *http.Request, sessionID string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    s.signSessionID(sessionID),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookie(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

func (s *Server) ClearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookie(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func (s *Server) SetActionCookie(w http.ResponseWriter, r *http.Request, action string) {
	http.SetCookie(w, &http.Cookie{
		Name:     actionCookieName,
		Value:    action,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookie(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600, // long enough for the provider round trip
	})
}

func (s *Server) ClearActionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     actionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookie(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func (s *Server) SetRefreshTokenCookie(w http.ResponseWriter, refreshToken string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshTokenCookieName,
		Value:    refreshToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.config.GetSecureCookies(),
		SameSite: http.SameSiteStrictMode,
		MaxAge:   maxAge,
	})
}

func (s *Server) ClearRefreshTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshTokenCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.config.GetSecureCookies(),
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})
}

func (s *Server) secureCookie(r *http.Request) bool {
	return s.config.GetSecureCookies() || getScheme(r) == "https"
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONError writes the gateway's standard error shape.
func writeJSONError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"message": message,
	})
}
