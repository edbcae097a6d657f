package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/gradeflow/session-gateway/auth"
	"github.com/gradeflow/session-gateway/backendapi"
	"github.com/gradeflow/session-gateway/backendapi/backendfake"
	"github.com/gradeflow/session-gateway/internal/config"
	errs "github.com/gradeflow/session-gateway/internal/errors"
	"github.com/gradeflow/session-gateway/server/flowstate"
	"github.com/gradeflow/session-gateway/session"
	"github.com/gradeflow/session-gateway/session/repofake"
)

const testBaseURL = "https://app.example.com"

// testConfig pins the values handlers read, independent of the process
// environment.
type testConfig struct {
	config.EnvVars
	config.Cors
	config.Lifecycle
	config.Security
	backendURL string
}

func (c testConfig) GetBaseURL() string     { return testBaseURL }
func (c testConfig) GetBackendURL() string  { return c.backendURL }
func (c testConfig) GetEnv() string         { return "DEV" }
func (c testConfig) GetSecureCookies() bool { return false }

func newTestServer(t *testing.T, backend backendapi.Service, cfg testConfig) *Server {
	t.Helper()

	orchestrator, err := auth.NewOrchestrator(backend, config.Lifecycle{}, testBaseURL, zerolog.Nop(),
		auth.WithSleep(func(time.Duration) {}))
	require.NoError(t, err)

	flowStates := flowstate.NewTTLRepo(time.Minute)
	t.Cleanup(flowStates.Stop)

	return &Server{
		env:          "DEV",
		mux:          http.NewServeMux(),
		config:       cfg,
		backend:      backend,
		orchestrator: orchestrator,
		sessions:     repofake.NewFakeSessionRepo(),
		flowStates:   flowStates,
		providers:    make(map[string]ProviderConfig),
		log:          zerolog.Nop(),
	}
}

func sessionCookie(s *Server, sessionID string) *http.Cookie {
	return &http.Cookie{Name: sessionCookieName, Value: s.signSessionID(sessionID)}
}

func findCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func expiredJWT(t *testing.T) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(-time.Minute).Unix(),
	})
	raw, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return raw
}

func TestSetRefreshTokenHandler(t *testing.T) {
	s := newTestServer(t, &backendfake.FakeService{}, testConfig{})

	t.Run("rejects a missing token", func(t *testing.T) {
		for _, body := range []string{`{}`, `{"refreshToken":""}`, `not json`} {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, RouteSetRefreshToken, strings.NewReader(body))
			s.SetRefreshTokenHandler()(rec, req)
			require.Equal(t, http.StatusBadRequest, rec.Code)
		}
	})

	t.Run("stores the token in a locked-down cookie", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, RouteSetRefreshToken, strings.NewReader(`{"refreshToken":"refresh-1"}`))
		s.SetRefreshTokenHandler()(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		cookie := findCookie(t, rec, refreshTokenCookieName)
		require.NotNil(t, cookie)
		require.Equal(t, "refresh-1", cookie.Value)
		require.True(t, cookie.HttpOnly)
		require.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
		require.Equal(t, "/", cookie.Path)
		require.Equal(t, int((7 * 24 * time.Hour).Seconds()), cookie.MaxAge)
		require.Contains(t, rec.Body.String(), `"success":true`)
	})
}

func TestClearRefreshTokenHandler(t *testing.T) {
	s := newTestServer(t, &backendfake.FakeService{}, testConfig{})

	// Clearing must behave identically whether or not a cookie exists.
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, RouteClearRefreshToken, nil)
		s.ClearRefreshTokenHandler()(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		cookie := findCookie(t, rec, refreshTokenCookieName)
		require.NotNil(t, cookie)
		require.Empty(t, cookie.Value)
		require.Contains(t, rec.Header().Get("Set-Cookie"), "Max-Age=0")
	}
}

func TestSessionHandler(t *testing.T) {
	t.Run("answers 401 without a session cookie", func(t *testing.T) {
		s := newTestServer(t, &backendfake.FakeService{}, testConfig{})
		rec := httptest.NewRecorder()
		s.SessionHandler()(rec, httptest.NewRequest(http.MethodGet, RouteSession, nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects a cookie with a forged signature", func(t *testing.T) {
		s := newTestServer(t, &backendfake.FakeService{}, testConfig{})
		s.sessions.Upsert("sess-1", session.Token{AppToken: "app-token"})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, RouteSession, nil)
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "sess-1.bm90LWEtcmVhbC1zaWduYXR1cmU"})
		s.SessionHandler()(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("answers 401 and clears the cookie for an unknown session", func(t *testing.T) {
		s := newTestServer(t, &backendfake.FakeService{}, testConfig{})
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, RouteSession, nil)
		req.AddCookie(sessionCookie(s, "gone"))
		s.SessionHandler()(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Header().Get("Set-Cookie"), "Max-Age=0")
	})

	t.Run("projects the stored token", func(t *testing.T) {
		s := newTestServer(t, &backendfake.FakeService{}, testConfig{})
		s.sessions.Upsert("sess-1", session.Token{
			AppToken:    "app-token",
			ClassroomID: "class-9",
			UserID:      "user-1",
			Name:        "Ada Lovelace",
			Email:       "ada@example.com",
		})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, RouteSession, nil)
		req.AddCookie(sessionCookie(s, "sess-1"))
		s.SessionHandler()(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var sess session.Session
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))
		require.Equal(t, "app-token", sess.AppToken)
		require.Equal(t, "class-9", sess.ClassroomID)
		require.Equal(t, "Ada Lovelace", sess.User.Name)
	})

	t.Run("refreshes an expired token and rewrites the cookie", func(t *testing.T) {
		backend := &backendfake.FakeService{
			RefreshFunc: func(ctx context.Context, refreshToken string) (*backendapi.RefreshResult, error) {
				require.Equal(t, "refresh-1", refreshToken)
				return &backendapi.RefreshResult{Token: "new-app", RefreshToken: "refresh-2"}, nil
			},
		}
		s := newTestServer(t, backend, testConfig{})
		s.sessions.Upsert("sess-1", session.Token{AppToken: expiredJWT(t), RefreshToken: "refresh-1"})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, RouteSession, nil)
		req.AddCookie(sessionCookie(s, "sess-1"))
		s.SessionHandler()(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, 1, backend.RefreshCalls)

		var sess session.Session
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))
		require.Equal(t, "new-app", sess.AppToken)

		cookie := findCookie(t, rec, refreshTokenCookieName)
		require.NotNil(t, cookie)
		require.Equal(t, "refresh-2", cookie.Value)

		// The refreshed pair is persisted for the next read.
		tok, err := s.sessions.Get("sess-1")
		require.NoError(t, err)
		require.Equal(t, "new-app", tok.AppToken)
	})

	t.Run("a failed refresh is carried in the error field", func(t *testing.T) {
		backend := &backendfake.FakeService{
			RefreshFunc: func(ctx context.Context, refreshToken string) (*backendapi.RefreshResult, error) {
				return nil, errs.Wrapf(errs.ErrRefreshFailed, "Failed to refresh token")
			},
		}
		s := newTestServer(t, backend, testConfig{})
		s.sessions.Upsert("sess-1", session.Token{AppToken: expiredJWT(t), RefreshToken: "refresh-1"})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, RouteSession, nil)
		req.AddCookie(sessionCookie(s, "sess-1"))
		s.SessionHandler()(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var sess session.Session
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))
		require.Contains(t, sess.Error, "Failed to refresh token")
	})
}

func TestRefreshTokenHandler(t *testing.T) {
	t.Run("answers 401 without the cookie", func(t *testing.T) {
		s := newTestServer(t, &backendfake.FakeService{}, testConfig{})
		rec := httptest.NewRecorder()
		s.RefreshTokenHandler()(rec, httptest.NewRequest(http.MethodPost, RouteRefreshToken, nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rotates the cookie on success", func(t *testing.T) {
		backend := &backendfake.FakeService{
			RefreshFunc: func(ctx context.Context, refreshToken string) (*backendapi.RefreshResult, error) {
				return &backendapi.RefreshResult{Token: "new-app", RefreshToken: "refresh-2", ClassroomID: "class-9"}, nil
			},
		}
		s := newTestServer(t, backend, testConfig{})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, RouteRefreshToken, nil)
		req.AddCookie(&http.Cookie{Name: refreshTokenCookieName, Value: "refresh-1"})
		s.RefreshTokenHandler()(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "new-app")
		cookie := findCookie(t, rec, refreshTokenCookieName)
		require.NotNil(t, cookie)
		require.Equal(t, "refresh-2", cookie.Value)
	})

	t.Run("clears the cookie when the backend rejects the token", func(t *testing.T) {
		backend := &backendfake.FakeService{
			RefreshFunc: func(ctx context.Context, refreshToken string) (*backendapi.RefreshResult, error) {
				return nil, errs.Wrapf(errs.ErrRefreshFailed, "Failed to refresh token")
			},
		}
		s := newTestServer(t, backend, testConfig{})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, RouteRefreshToken, nil)
		req.AddCookie(&http.Cookie{Name: refreshTokenCookieName, Value: "bad"})
		s.RefreshTokenHandler()(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Header().Get("Set-Cookie"), "Max-Age=0")
	})
}

func TestLoginSubmissionHandler(t *testing.T) {
	t.Run("a backend rejection lands on the login page with its message", func(t *testing.T) {
		backend := &backendfake.FakeService{
			SignInFunc: func(ctx context.Context, email, password string) (*backendapi.SignInResult, error) {
				return nil, &backendapi.Error{Message: "Invalid credentials", Err: errs.ErrInvalidCredentials}
			},
		}
		s := newTestServer(t, backend, testConfig{})

		form := "email=ada%40example.com&password=pass-word-123"
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, RouteAuthLogin, strings.NewReader(form))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		s.LoginSubmissionHandler()(rec, req)

		require.Equal(t, http.StatusFound, rec.Code)
		require.Equal(t, testBaseURL+"/login?error=Invalid+credentials", rec.Header().Get("Location"))
	})

	t.Run("a successful login creates the session and its cookies", func(t *testing.T) {
		backend := &backendfake.FakeService{
			SignInFunc: func(ctx context.Context, email, password string) (*backendapi.SignInResult, error) {
				return &backendapi.SignInResult{
					UserID:       "user-1",
					Email:        email,
					Name:         "Ada Lovelace",
					Token:        "app-token",
					RefreshToken: "refresh-1",
					ClassroomID:  "class-9",
				}, nil
			},
		}
		s := newTestServer(t, backend, testConfig{})

		form := "email=ada%40example.com&password=pass-word-123&callbackUrl=" + testBaseURL + "%2Fdashboard%2Fassignments"
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, RouteAuthLogin, strings.NewReader(form))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		s.LoginSubmissionHandler()(rec, req)

		require.Equal(t, http.StatusFound, rec.Code)
		require.Equal(t, testBaseURL+"/dashboard/assignments", rec.Header().Get("Location"))

		sessionCookie := findCookie(t, rec, sessionCookieName)
		require.NotNil(t, sessionCookie)
		sessionID, _, signed := strings.Cut(sessionCookie.Value, ".")
		require.True(t, signed)
		tok, err := s.sessions.Get(sessionID)
		require.NoError(t, err)
		require.Equal(t, "app-token", tok.AppToken)
		require.Equal(t, "class-9", tok.ClassroomID)

		refreshCookie := findCookie(t, rec, refreshTokenCookieName)
		require.NotNil(t, refreshCookie)
		require.Equal(t, "refresh-1", refreshCookie.Value)
	})
}

func TestLogoutHandler(t *testing.T) {
	s := newTestServer(t, &backendfake.FakeService{}, testConfig{})
	s.sessions.Upsert("sess-1", session.Token{AppToken: "app-token"})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, RouteAuthLogout, nil)
	req.AddCookie(sessionCookie(s, "sess-1"))
	s.LogoutHandler()(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, testBaseURL+"/login", rec.Header().Get("Location"))

	_, err := s.sessions.Get("sess-1")
	require.Error(t, err)

	for _, name := range []string{sessionCookieName, refreshTokenCookieName} {
		cookie := findCookie(t, rec, name)
		require.NotNil(t, cookie)
		require.Empty(t, cookie.Value)
	}
}

func TestAPICredentialHandlers(t *testing.T) {
	t.Run("login validates before calling the backend", func(t *testing.T) {
		backend := &backendfake.FakeService{}
		s := newTestServer(t, backend, testConfig{})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, RouteAPILogin, strings.NewReader(`{"email":"bad","password":"pass-word-123"}`))
		s.APILoginHandler()(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, 0, backend.LoginCalls)
	})

	t.Run("signup requires a first and last name", func(t *testing.T) {
		backend := &backendfake.FakeService{}
		s := newTestServer(t, backend, testConfig{})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, RouteAPISignup, strings.NewReader(`{"fullName":"Ada","email":"ada@example.com","password":"pass-word-123"}`))
		s.APISignupHandler()(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, 0, backend.SignupCalls)
	})

	t.Run("signup relays the backend result", func(t *testing.T) {
		backend := &backendfake.FakeService{
			SignupFunc: func(ctx context.Context, fullName, email, password string) (*backendapi.AuthResult, error) {
				return &backendapi.AuthResult{Token: "app-token", User: backendapi.AuthUser{Email: email}}, nil
			},
		}
		s := newTestServer(t, backend, testConfig{})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, RouteAPISignup, strings.NewReader(`{"fullName":"Ada Lovelace","email":"ada@example.com","password":"pass-word-123"}`))
		s.APISignupHandler()(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		require.Contains(t, rec.Body.String(), "app-token")
	})
}
