package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		want         string
	}{
		{
			name:         "returns default when env not set",
			key:          "CHATDESK_TEST_KEY_1",
			defaultValue: "default",
			envValue:     "",
			want:         "default",
		},
		{
			name:         "returns env value when set",
			key:          "CHATDESK_TEST_KEY_2",
			defaultValue: "default",
			envValue:     "custom",
			want:         "custom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.envValue)
			assert.Equal(t, tt.want, GetEnvOrDefault(tt.key, tt.defaultValue))
		})
	}
}

func TestParseEnvInt(t *testing.T) {
	t.Setenv("CHATDESK_TEST_INT", "42")
	assert.Equal(t, 42, parseEnvInt("CHATDESK_TEST_INT", 7))

	t.Setenv("CHATDESK_TEST_INT", "forty-two")
	assert.Equal(t, 7, parseEnvInt("CHATDESK_TEST_INT", 7))

	t.Setenv("CHATDESK_TEST_INT", "")
	assert.Equal(t, 7, parseEnvInt("CHATDESK_TEST_INT", 7))
}

func TestParseEnvBool(t *testing.T) {
	t.Setenv("CHATDESK_TEST_BOOL", "true")
	assert.True(t, parseEnvBool("CHATDESK_TEST_BOOL", false))

	t.Setenv("CHATDESK_TEST_BOOL", "nope")
	assert.False(t, parseEnvBool("CHATDESK_TEST_BOOL", false))
}

func TestGetListenAddr(t *testing.T) {
	t.Setenv("PORT", "")
	assert.Equal(t, ":8080", GetListenAddr())

	t.Setenv("PORT", "9000")
	assert.Equal(t, ":9000", GetListenAddr())
}

func TestSetJWTSecret(t *testing.T) {
	original := GetJWTSecret()

	restore := SetJWTSecret([]byte("test-secret"))
	assert.Equal(t, []byte("test-secret"), GetJWTSecret())

	restore()
	assert.Equal(t, original, GetJWTSecret())
}

func TestSetSessionCookieName(t *testing.T) {
	restore := SetSessionCookieName("test_session")
	assert.Equal(t, "test_session", GetSessionCookieName())
	assert.Equal(t, "test_session_flash", GetFlashCookieName())

	restore()
	assert.NotEqual(t, "test_session", GetSessionCookieName())
}

func TestGetRateLimitConfig(t *testing.T) {
	t.Setenv("RATELIMIT_ENABLED", "true")
	t.Setenv("RATELIMIT_CHAT", "3")

	cfg := GetRateLimitConfig("chat")
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 3, cfg.MaxHits)
	assert.Equal(t, time.Minute, cfg.Window)

	unknown := GetRateLimitConfig("does-not-exist")
	assert.False(t, unknown.Enabled)
}

func TestGetBcryptCost(t *testing.T) {
	t.Setenv("BCRYPT_COST", "")
	assert.Equal(t, 10, GetBcryptCost())

	t.Setenv("BCRYPT_COST", "4")
	assert.Equal(t, 4, GetBcryptCost())
}

func TestGetTrustProxy(t *testing.T) {
	t.Setenv("TRUST_PROXY", "")
	assert.False(t, GetTrustProxy())

	t.Setenv("TRUST_PROXY", "true")
	assert.True(t, GetTrustProxy())
}
