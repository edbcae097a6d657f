package server

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/gradeflow/session-gateway/auth"
	"github.com/gradeflow/session-gateway/backendapi/backendfake"
)

func withGoogleProvider(s *Server) *Server {
	s.providers[auth.ProviderGoogle] = ProviderConfig{
		Name: auth.ProviderGoogle,
		OAuth2Config: &oauth2.Config{
			ClientID: "client-id",
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://accounts.google.com/o/oauth2/v2/auth",
				TokenURL: "https://oauth2.googleapis.com/token",
			},
			RedirectURL: testBaseURL + "/auth/callback/google",
			Scopes:      []string{"openid", "profile", "email"},
		},
	}
	return s
}

func TestSignInStartHandler(t *testing.T) {
	t.Run("rejects an unknown provider", func(t *testing.T) {
		s := newTestServer(t, &backendfake.FakeService{}, testConfig{})
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/auth/signin/github", nil)
		req.SetPathValue("provider", "github")
		s.SignInStartHandler()(rec, req)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("redirects to the provider with fresh flow state", func(t *testing.T) {
		s := withGoogleProvider(newTestServer(t, &backendfake.FakeService{}, testConfig{}))

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/auth/signin/google?action=signup", nil)
		req.SetPathValue("provider", "google")
		s.SignInStartHandler()(rec, req)

		require.Equal(t, http.StatusFound, rec.Code)
		target, err := url.Parse(rec.Header().Get("Location"))
		require.NoError(t, err)
		require.Equal(t, "accounts.google.com", target.Host)

		q := target.Query()
		require.NotEmpty(t, q.Get("state"))
		require.NotEmpty(t, q.Get("nonce"))
		require.NotEmpty(t, q.Get("code_challenge"))
		require.Equal(t, "S256", q.Get("code_challenge_method"))

		// The flow state is retrievable under the state parameter.
		flow, err := s.flowStates.Get(q.Get("state"))
		require.NoError(t, err)
		require.Equal(t, auth.ProviderGoogle, flow.Provider)
		require.Equal(t, q.Get("nonce"), flow.Nonce)
		require.NotEmpty(t, flow.CodeVerifier)

		// The signup intent travels in its single-use cookie.
		cookie := findCookie(t, rec, actionCookieName)
		require.NotNil(t, cookie)
		require.Equal(t, auth.ActionSignup, cookie.Value)
		require.True(t, cookie.HttpOnly)
	})

	t.Run("a plain login clears any stale intent cookie", func(t *testing.T) {
		s := withGoogleProvider(newTestServer(t, &backendfake.FakeService{}, testConfig{}))

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/auth/signin/google", nil)
		req.SetPathValue("provider", "google")
		s.SignInStartHandler()(rec, req)

		cookie := findCookie(t, rec, actionCookieName)
		require.NotNil(t, cookie)
		require.Empty(t, cookie.Value)
	})
}

func TestOAuthCallbackHandlerWithoutProvider(t *testing.T) {
	t.Run("a provider error goes to the login page", func(t *testing.T) {
		s := newTestServer(t, &backendfake.FakeService{}, testConfig{})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/auth/callback/google?error=access_denied", nil)
		req.SetPathValue("provider", "google")
		s.OAuthCallbackHandler()(rec, req)

		require.Equal(t, http.StatusFound, rec.Code)
		require.Equal(t, testBaseURL+"/login?error=access_denied", rec.Header().Get("Location"))
	})

	t.Run("an error description wins over the error code", func(t *testing.T) {
		s := newTestServer(t, &backendfake.FakeService{}, testConfig{})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet,
			"/auth/callback/google?error=access_denied&error_description=The+user+denied+access", nil)
		req.SetPathValue("provider", "google")
		s.OAuthCallbackHandler()(rec, req)

		require.Equal(t, testBaseURL+"/login?error=The+user+denied+access", rec.Header().Get("Location"))
	})

	t.Run("an unknown state parameter is rejected", func(t *testing.T) {
		s := newTestServer(t, &backendfake.FakeService{}, testConfig{})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/auth/callback/google?state=forged&code=abc", nil)
		req.SetPathValue("provider", "google")
		s.OAuthCallbackHandler()(rec, req)

		require.Equal(t, http.StatusFound, rec.Code)
		require.Equal(t, testBaseURL+"/login?error=Invalid+authentication+state", rec.Header().Get("Location"))
	})
}
