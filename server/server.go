// Package server is the HTTP surface of the session gateway: the OAuth
// sign-in flow, the credential flow, the session projection endpoint, the
// refresh-token cookie bridge and the resource proxies.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/gradeflow/session-gateway/auth"
	"github.com/gradeflow/session-gateway/backendapi"
	"github.com/gradeflow/session-gateway/internal/config"
	"github.com/gradeflow/session-gateway/server/flowstate"
	"github.com/gradeflow/session-gateway/session"
)

const (
	googleIssuer    = "https://accounts.google.com"
	microsoftIssuer = "https://login.microsoftonline.com/common/v2.0"
)

// ProviderConfig bundles the pieces needed to run one upstream provider's
// code flow.
type ProviderConfig struct {
	Name         string
	OidcProvider *oidc.Provider
	OAuth2Config *oauth2.Config
	Verifier     *oidc.IDTokenVerifier
}

type Server struct {
	env          string // Environment (e.g., "DEV", "production")
	mux          *http.ServeMux
	routes       []string
	config       config.Config
	backend      backendapi.Service
	orchestrator *auth.Orchestrator
	sessions     session.Repo
	flowStates   flowstate.Repo
	providers    map[string]ProviderConfig
	log          zerolog.Logger
}

func New(cfg config.Config, backend backendapi.Service, orchestrator *auth.Orchestrator, sessions session.Repo, flowStates flowstate.Repo, log zerolog.Logger) (*Server, error) {
	if backend == nil {
		return nil, fmt.Errorf("[Server New] backend service is required")
	}
	if orchestrator == nil {
		return nil, fmt.Errorf("[Server New] orchestrator is required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("[Server New] session repo is required")
	}
	if flowStates == nil {
		return nil, fmt.Errorf("[Server New] flow state repo is required")
	}

	s := &Server{
		mux:          http.NewServeMux(),
		config:       cfg,
		backend:      backend,
		orchestrator: orchestrator,
		sessions:     sessions,
		flowStates:   flowStates,
		providers:    make(map[string]ProviderConfig),
		log:          log,
	}
	s.env = cfg.GetEnv()

	if err := s.initProviders(context.Background()); err != nil {
		return nil, fmt.Errorf("[Server New] failed to initialise identity providers: %w", err)
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// initProviders performs OIDC discovery for every configured provider and
// builds the oauth2 configs used by the sign-in flow.
func (s *Server) initProviders(ctx context.Context) error {
	google, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return fmt.Errorf("google discovery: %w", err)
	}
	s.providers[auth.ProviderGoogle] = s.providerConfig(auth.ProviderGoogle, google,
		s.config.GetGoogleClientID(), s.config.GetGoogleClientSecret(), false)

	// The "common" tenant serves a templated issuer in its discovery
	// document, so issuer validation has to be relaxed for Microsoft.
	msCtx := oidc.InsecureIssuerURLContext(ctx, microsoftIssuer)
	microsoft, err := oidc.NewProvider(msCtx, microsoftIssuer)
	if err != nil {
		return fmt.Errorf("microsoft discovery: %w", err)
	}
	s.providers[auth.ProviderMicrosoft] = s.providerConfig(auth.ProviderMicrosoft, microsoft,
		s.config.GetMicrosoftClientID(), s.config.GetMicrosoftClientSecret(), true)

	return nil
}

func (s *Server) providerConfig(name string, provider *oidc.Provider, clientID, clientSecret string, skipIssuerCheck bool) ProviderConfig {
	callbackURL := strings.TrimRight(s.config.GetBaseURL(), "/") +
		strings.Replace(RouteOAuthCallback, "{provider}", name, 1)

	return ProviderConfig{
		Name:         name,
		OidcProvider: provider,
		OAuth2Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     provider.Endpoint(),
			RedirectURL:  callbackURL,
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		Verifier: provider.Verifier(&oidc.Config{
			ClientID:        clientID,
			SkipIssuerCheck: skipIssuerCheck,
		}),
	}
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			s.log.Info().Str("method", parts[0]).Str("path", parts[1]).Msg("route registered")
		} else {
			s.log.Info().Str("path", parts[0]).Msg("route registered")
		}
	}
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
