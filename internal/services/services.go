package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/deepgram/chatdesk/internal/config"
	"github.com/deepgram/chatdesk/internal/connections"
	"github.com/deepgram/chatdesk/internal/infrastructure/openai"
	"github.com/deepgram/chatdesk/internal/infrastructure/redis"
	"github.com/deepgram/chatdesk/internal/services/chat"
	"github.com/deepgram/chatdesk/internal/services/session"
	"github.com/deepgram/chatdesk/internal/services/users"
	"github.com/rs/zerolog/log"
)

var (
	// Mutex for thread-safe initialization
	servicesMu sync.RWMutex
)

type Services struct {
	chatService    chat.Service
	connManager    *connections.Manager
	openAIService  *openai.Service
	redisService   *redis.Service
	sessionService *session.Service
	userStore      *users.Store
}

// InitializeServices initializes all required services
func InitializeServices(ctx context.Context) (*Services, error) {
	servicesMu.Lock()
	defer servicesMu.Unlock()

	log.Info().Msg("Initializing core services")

	// Initialize Redis service (optional)
	redisService := redis.NewService(ctx)
	log.Info().Msg("Initializing Redis service")

	// Initialize session service with optional Redis
	sessionService := session.NewService(redisService)
	log.Info().Msg("Initializing session service")

	// Initialize user store (required)
	userStore, err := users.Open(ctx, config.GetDatabasePath())
	if err != nil {
		log.Error().Err(err).Msg("Failed to open user database - required for login")
		if redisService != nil {
			_ = redisService.Close()
		}
		return nil, fmt.Errorf("failed to initialize user store: %w", err)
	}
	log.Info().Msg("Initializing user store")

	// Initialize OpenAI service (optional, chat answers 503 without it)
	openAIService := openai.NewService()

	var completer chat.Completer
	if openAIService != nil {
		completer = openAIService.GetClient()
	}
	chatService := chat.NewService(completer, config.GetOpenAIModel(), config.GetChatSystemPrompt())
	log.Info().Bool("backend_configured", completer != nil).Msg("Initializing chat service")

	log.Info().Msg("All services initialized successfully")

	return &Services{
		chatService:    chatService,
		connManager:    connections.NewManager(connections.DefaultTimeouts),
		openAIService:  openAIService,
		redisService:   redisService,
		sessionService: sessionService,
		userStore:      userStore,
	}, nil
}

// New assembles a Services from already built parts. Used by tests.
func New(chatService chat.Service, sessionService *session.Service, userStore *users.Store) *Services {
	return &Services{
		chatService:    chatService,
		connManager:    connections.NewManager(connections.DefaultTimeouts),
		sessionService: sessionService,
		userStore:      userStore,
	}
}

// GetChatService returns the chat service
func (s *Services) GetChatService() chat.Service {
	return s.chatService
}

// GetConnectionManager returns the registry of live chat WebSockets
func (s *Services) GetConnectionManager() *connections.Manager {
	return s.connManager
}

// GetSessionService returns the session service
func (s *Services) GetSessionService() *session.Service {
	return s.sessionService
}

// GetUserStore returns the user store
func (s *Services) GetUserStore() *users.Store {
	return s.userStore
}

// Close releases the database and Redis connections.
func (s *Services) Close() error {
	servicesMu.Lock()
	defer servicesMu.Unlock()

	var firstErr error
	if s.userStore != nil {
		if err := s.userStore.Close(); err != nil {
			firstErr = err
		}
	}
	if s.redisService != nil {
		if err := s.redisService.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
