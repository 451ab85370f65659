package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/deepgram/chatdesk/internal/config"
	"github.com/deepgram/chatdesk/internal/infrastructure/redis"
	"github.com/deepgram/chatdesk/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	cookieLifetime = 1 * time.Hour
	keyPrefix      = "session:"
)

type SessionClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
	UserID    string `json:"uid,omitempty"`
}

type SessionStore interface {
	Set(ctx context.Context, sessionID string, claims *SessionClaims) error
	Get(ctx context.Context, sessionID string) (*SessionClaims, error)
	Delete(ctx context.Context, sessionID string) error
}

type RedisStore struct {
	redisService *redis.Service
}

// MemoryStore keeps sessions in process. Expired sessions are dropped on lookup and swept
// whenever a new session is stored.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*SessionClaims
	now      func() time.Time
}

type Service struct {
	store SessionStore
	now   func() time.Time
}

// NewService keeps sessions in Redis when it is available and in memory otherwise.
func NewService(redisService *redis.Service) *Service {
	l := logger.For(logger.SESSION)

	if redisService != nil {
		l.Info().Msg("Using Redis for session storage")
		return NewServiceWithStore(&RedisStore{redisService: redisService})
	}

	l.Info().Msg("Using in-memory session storage")
	return NewServiceWithStore(NewMemoryStore())
}

func NewServiceWithStore(store SessionStore) *Service {
	return &Service{store: store, now: time.Now}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*SessionClaims),
		now:      time.Now,
	}
}

// Redis Store implementation
func (rs *RedisStore) Set(ctx context.Context, sessionID string, claims *SessionClaims) error {
	data, err := json.Marshal(claims)
	if err != nil {
		return err
	}

	return rs.redisService.Set(ctx, keyPrefix+sessionID, string(data), cookieLifetime)
}

func (rs *RedisStore) Get(ctx context.Context, sessionID string) (*SessionClaims, error) {
	data, err := rs.redisService.Get(ctx, keyPrefix+sessionID)
	if errors.Is(err, redis.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var claims SessionClaims
	if err := json.Unmarshal([]byte(data), &claims); err != nil {
		return nil, err
	}

	return &claims, nil
}

func (rs *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return rs.redisService.Delete(ctx, keyPrefix+sessionID)
}

// Memory Store implementation
func (ms *MemoryStore) Set(ctx context.Context, sessionID string, claims *SessionClaims) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := ms.now()
	for id, stored := range ms.sessions {
		if expired(stored, now) {
			delete(ms.sessions, id)
		}
	}

	ms.sessions[sessionID] = claims
	return nil
}

func (ms *MemoryStore) Get(ctx context.Context, sessionID string) (*SessionClaims, error) {
	ms.mu.RLock()
	claims, exists := ms.sessions[sessionID]
	ms.mu.RUnlock()
	if !exists {
		return nil, nil
	}

	if expired(claims, ms.now()) {
		ms.mu.Lock()
		delete(ms.sessions, sessionID)
		ms.mu.Unlock()
		return nil, nil
	}
	return claims, nil
}

// Len is the number of sessions currently held.
func (ms *MemoryStore) Len() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return len(ms.sessions)
}

func expired(claims *SessionClaims, now time.Time) bool {
	return claims.ExpiresAt != nil && !now.Before(claims.ExpiresAt.Time)
}

func (ms *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.sessions, sessionID)
	return nil
}

// CreateSession stores a new session for userID and sets the signed session cookie
func (s *Service) CreateSession(ctx context.Context, w http.ResponseWriter, userID string) error {
	now := s.now()
	sessionID := uuid.New().String()
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(cookieLifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        sessionID,
		},
		SessionID: sessionID,
		UserID:    userID,
	}

	if err := s.store.Set(ctx, sessionID, claims); err != nil {
		return fmt.Errorf("store session: %w", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(config.GetJWTSecret())
	if err != nil {
		return fmt.Errorf("sign session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     config.GetSessionCookieName(),
		Value:    signedToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   config.GetSessionCookieSecure(),
		SameSite: http.SameSiteLaxMode,
		Expires:  now.Add(cookieLifetime),
	})
	return nil
}

// ValidateSession returns the claims of a live session, or nil when the request has none
func (s *Service) ValidateSession(r *http.Request) (*SessionClaims, error) {
	cookie, err := r.Cookie(config.GetSessionCookieName())
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return nil, nil
		}
		return nil, err
	}

	claims, err := parseClaims(cookie.Value)
	if err != nil {
		return nil, err
	}

	// a valid signature is not enough, the session must not have been cleared
	storedClaims, err := s.store.Get(r.Context(), claims.SessionID)
	if err != nil {
		return nil, err
	}
	if storedClaims == nil {
		return nil, nil
	}

	return claims, nil
}

// ClearSession removes the session from storage and expires the cookie
func (s *Service) ClearSession(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(config.GetSessionCookieName()); err == nil {
		if claims, err := parseClaims(cookie.Value); err == nil {
			if err := s.store.Delete(r.Context(), claims.SessionID); err != nil {
				l := logger.For(logger.SESSION)
				l.Warn().Err(err).Msg("Failed to delete session from store")
			}
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     config.GetSessionCookieName(),
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   config.GetSessionCookieSecure(),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func parseClaims(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return config.GetJWTSecret(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid session token")
	}
	return claims, nil
}
