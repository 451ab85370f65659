package config

import (
	"time"

	"github.com/rs/zerolog/log"
)

type RateLimitConfig struct {
	Enabled bool
	MaxHits int
	Window  time.Duration
}

func GetRateLimitConfig(key string) RateLimitConfig {
	enabled := parseEnvBool("RATELIMIT_ENABLED", false)

	configs := map[string]RateLimitConfig{
		"chat": {
			Enabled: enabled,
			MaxHits: parseEnvInt("RATELIMIT_CHAT", 60), // 60 requests per minute
			Window:  time.Minute,
		},
		"login": {
			Enabled: enabled,
			MaxHits: parseEnvInt("RATELIMIT_LOGIN", 10), // 10 attempts per minute
			Window:  time.Minute,
		},
		"signup": {
			Enabled: enabled,
			MaxHits: parseEnvInt("RATELIMIT_SIGNUP", 5), // 5 registrations per minute
			Window:  time.Minute,
		},
	}

	if config, exists := configs[key]; exists {
		return config
	}

	log.Warn().Str("key", key).Msg("No rate limit config found")
	return RateLimitConfig{Enabled: false}
}

// GetTrustProxy reports whether X-Forwarded-For may be used to identify clients. Only enable it
// when the server sits behind a proxy that overwrites the header.
func GetTrustProxy() bool {
	return parseEnvBool("TRUST_PROXY", false)
}
