package middleware

import (
	"context"
	"net/http"

	"github.com/deepgram/chatdesk/internal/services/session"
	"github.com/deepgram/chatdesk/pkg/logger"
)

type contextKey string

const (
	sessionClaimsKey contextKey = "sessionClaims"
)

// LoginRequiredNotice is flashed when a page needs a session the request does not have.
const LoginRequiredNotice = "Please log in to access the chatbot."

// RequireSession redirects to the login page unless the request carries a live session.
func RequireSession(sessionService *session.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := sessionService.ValidateSession(r)
			if err != nil {
				l := logger.For(logger.MIDDLEWARE)
				l.Debug().Err(err).Str("path", r.URL.Path).Msg("Rejected session cookie")
			}

			if claims == nil {
				session.AddFlash(w, r, session.FlashWarning, LoginRequiredNotice)
				http.Redirect(w, r, "/", http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), sessionClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSessionClaims retrieves the session stored by RequireSession
func GetSessionClaims(r *http.Request) *session.SessionClaims {
	if claims, ok := r.Context().Value(sessionClaimsKey).(*session.SessionClaims); ok {
		return claims
	}
	return nil
}
