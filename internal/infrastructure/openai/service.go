package openai

import (
	"sync"

	"github.com/deepgram/chatdesk/internal/config"
	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
)

type Service struct {
	mu     sync.RWMutex
	client *openai.Client
}

// NewService returns nil when OPENAI_KEY is missing.
func NewService() *Service {
	key := config.GetOpenAIKey()
	if key == "" {
		log.Warn().Msg("OpenAI service not configured - chat replies will fail over to the widget fallback")
		return nil
	}

	cfg := openai.DefaultConfig(key)
	if baseURL := config.GetEnvOrDefault("OPENAI_BASE_URL", ""); baseURL != "" {
		cfg.BaseURL = baseURL
	}

	log.Info().Str("model", config.GetOpenAIModel()).Msg("OpenAI service initialised")

	return &Service{
		client: openai.NewClientWithConfig(cfg),
	}
}

func (s *Service) GetClient() *openai.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client
}
