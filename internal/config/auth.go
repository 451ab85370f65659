package config

import (
	"sync"

	"github.com/rs/zerolog/log"
)

const defaultJWTSecret = "change-me-in-production"

var (
	jwtSecretMu sync.RWMutex
	// JWTSecret signs session cookies
	JWTSecret = []byte(GetEnvOrDefault("JWT_SECRET", defaultJWTSecret))
)

func init() {
	if string(JWTSecret) == defaultJWTSecret {
		log.Warn().Msg("JWT_SECRET not set - using the development default")
	}
}

// SetJWTSecret temporarily changes the JWT secret and returns a function to restore it
// This is primarily used for testing
func SetJWTSecret(secret []byte) func() {
	jwtSecretMu.Lock()
	previous := JWTSecret
	JWTSecret = secret
	jwtSecretMu.Unlock()

	return func() {
		jwtSecretMu.Lock()
		JWTSecret = previous
		jwtSecretMu.Unlock()
	}
}

// GetJWTSecret returns the current JWT secret in a thread-safe manner
func GetJWTSecret() []byte {
	jwtSecretMu.RLock()
	defer jwtSecretMu.RUnlock()
	return JWTSecret
}

// GetBcryptCost returns the work factor used for password hashes. Tests lower it with
// BCRYPT_COST=4 to keep sign-ups fast.
func GetBcryptCost() int {
	return parseEnvInt("BCRYPT_COST", 10)
}
