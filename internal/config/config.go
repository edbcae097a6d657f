package config

type Config interface {
	EnvConfig
	CorsConfig
	LifecycleConfig
	SecurityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetBaseURL() string
	GetBackendURL() string
	GetSessionSecret() string
	GetGoogleClientID() string
	GetGoogleClientSecret() string
	GetMicrosoftClientID() string
	GetMicrosoftClientSecret() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Lifecycle
	Security
}

// New builds the configuration and verifies that every required environment
// variable is present. A missing variable is fatal at process start.
func New() (Config, error) {
	c := mainConfig{}
	if err := c.EnvVars.validateRequired(); err != nil {
		return nil, err
	}
	return c, nil
}
