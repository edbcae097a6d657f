package server

import (
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/gradeflow/session-gateway/auth"
	"github.com/gradeflow/session-gateway/server/flowstate"
)

// SignInStartHandler begins the OAuth code flow for the provider named in
// the path: it mints the per-flow state, nonce and PKCE verifier, stows the
// signup-vs-login intent in a single-use cookie and redirects to the
// provider's authorization endpoint.
func (s *Server) SignInStartHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		providerName := r.PathValue("provider")
		provider, ok := s.providers[providerName]
		if !ok {
			writeJSONError(w, "Unknown identity provider", http.StatusNotFound)
			return
		}

		state := uuid.NewString()
		nonce := uuid.NewString()
		codeVerifier := generateRandomString(32)

		if err := s.flowStates.Upsert(state, &flowstate.State{
			Provider:     providerName,
			CodeVerifier: codeVerifier,
			Nonce:        nonce,
			ReturnURL:    r.URL.Query().Get("callbackUrl"),
			CreatedAt:    time.Now(),
		}); err != nil {
			s.log.Error().Err(err).Msg("failed to store flow state")
			writeJSONError(w, "Failed to start sign-in", http.StatusInternalServerError)
			return
		}

		// The intent survives the provider round trip in a cookie the
		// callback reads once and clears.
		if r.URL.Query().Get("action") == auth.ActionSignup {
			s.SetActionCookie(w, r, auth.ActionSignup)
		} else {
			s.ClearActionCookie(w, r)
		}

		authURL := provider.OAuth2Config.AuthCodeURL(state,
			oidc.Nonce(nonce),
			oauth2.SetAuthURLParam("code_challenge", pkceChallenge(codeVerifier)),
			oauth2.SetAuthURLParam("code_challenge_method", "S256"),
		)

		http.Redirect(w, r, authURL, http.StatusFound)
	}
}

func pkceChallenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
