package config

var (
	// SessionCookieName is the name of the session cookie
	SessionCookieName = GetEnvOrDefault("SESSION_COOKIE_NAME", "chatdesk_session")

	// SessionCookieSecure marks session and flash cookies as HTTPS-only
	SessionCookieSecure = parseEnvBool("SESSION_COOKIE_SECURE", false)
)

// GetSessionCookieName returns the configured session cookie name
func GetSessionCookieName() string {
	return SessionCookieName
}

// GetFlashCookieName returns the name of the cookie carrying one-shot flash messages
func GetFlashCookieName() string {
	return SessionCookieName + "_flash"
}

// GetSessionCookieSecure reports whether cookies should carry the Secure attribute
func GetSessionCookieSecure() bool {
	return SessionCookieSecure
}

// SetSessionCookieName temporarily changes the session cookie name and returns a function to restore it
// This is primarily used for testing
func SetSessionCookieName(name string) func() {
	previous := SessionCookieName
	SessionCookieName = name

	return func() {
		SessionCookieName = previous
	}
}
