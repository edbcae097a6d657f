package config

type SecurityConfig interface {
	GetSecureCookies() bool
}

type Security struct{}

var _ SecurityConfig = Security{}

// GetSecureCookies reports whether cookies carry the Secure flag. Only
// disabled for local development over plain HTTP.
func (Security) GetSecureCookies() bool {
	return EnvVars{}.GetEnv() != "DEV"
}
