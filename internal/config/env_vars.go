package config

import (
	"fmt"
	"os"
)

const (
	portEnvVar    = "PORT"
	appNameVar    = "APP_NAME"
	baseURLVar    = "BASE_URL"
	backendURLVar = "BACKEND_URL"
)

// requiredEnvVars must all be set before the gateway starts. Absence is a
// configuration error, not something recoverable at runtime.
var requiredEnvVars = []string{
	"GOOGLE_CLIENT_ID",
	"GOOGLE_CLIENT_SECRET",
	"MICROSOFT_CLIENT_ID",
	"MICROSOFT_CLIENT_SECRET",
	"SESSION_SECRET",
	baseURLVar,
	backendURLVar,
}

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (e EnvVars) validateRequired() error {
	for _, envVar := range requiredEnvVars {
		if os.Getenv(envVar) == "" {
			return fmt.Errorf("missing environment variable: %s", envVar)
		}
	}
	return nil
}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Session Gateway")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

// GetBaseURL returns the public base URL of the gateway (e.g. "https://app.example.com").
// Redirect targets and OAuth callback URLs are built from it.
func (EnvVars) GetBaseURL() string {
	return GetEnv(baseURLVar, "http://localhost:8080")
}

// GetBackendURL returns the base URL of the remote grading backend.
func (EnvVars) GetBackendURL() string {
	return GetEnv(backendURLVar, "http://localhost:5050")
}

func (EnvVars) GetSessionSecret() string {
	return GetEnv("SESSION_SECRET", "")
}

func (EnvVars) GetGoogleClientID() string {
	return GetEnv("GOOGLE_CLIENT_ID", "")
}

func (EnvVars) GetGoogleClientSecret() string {
	return GetEnv("GOOGLE_CLIENT_SECRET", "")
}

func (EnvVars) GetMicrosoftClientID() string {
	return GetEnv("MICROSOFT_CLIENT_ID", "")
}

func (EnvVars) GetMicrosoftClientSecret() string {
	return GetEnv("MICROSOFT_CLIENT_SECRET", "")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
