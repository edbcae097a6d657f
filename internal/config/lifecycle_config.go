package config

import "time"

type LifecycleConfig interface {
	GetRefreshCookieMaxAge() time.Duration
	GetSessionTTL() time.Duration
	GetFlowStateTTL() time.Duration
	GetSessionRetryAttempts() int
	GetSessionRetryBaseDelay() time.Duration
	GetSessionRetryMaxDelay() time.Duration
	GetBackendTimeout() time.Duration
}

type Lifecycle struct{}

var _ LifecycleConfig = Lifecycle{}

func (Lifecycle) GetRefreshCookieMaxAge() time.Duration {
	return 7 * 24 * time.Hour // 7 days
}

func (Lifecycle) GetSessionTTL() time.Duration {
	return 24 * time.Hour
}

func (Lifecycle) GetFlowStateTTL() time.Duration {
	return 15 * time.Minute
}

func (Lifecycle) GetSessionRetryAttempts() int {
	return 3
}

func (Lifecycle) GetSessionRetryBaseDelay() time.Duration {
	return 100 * time.Millisecond
}

func (Lifecycle) GetSessionRetryMaxDelay() time.Duration {
	return time.Second
}

func (Lifecycle) GetBackendTimeout() time.Duration {
	return 10 * time.Second
}
