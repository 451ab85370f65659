package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/deepgram/chatdesk/internal/services/chat/models"
	"github.com/deepgram/chatdesk/pkg/logger"
	"github.com/sashabaranov/go-openai"
)

// Completer is the part of *openai.Client the chat service needs.
type Completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type Implementation struct {
	mu           sync.RWMutex
	client       Completer
	model        string
	systemPrompt *SystemPrompt
}

// NewService builds the chat service. A nil client yields a service whose Reply always
// returns ErrUnavailable, so the server can start without an OpenAI key.
func NewService(client Completer, model string, customPrompt string) *Implementation {
	prompt := NewSystemPrompt(CorePrompt)
	prompt.SetCustom(customPrompt)

	if model == "" {
		model = openai.GPT4oMini
	}

	return &Implementation{
		client:       client,
		model:        model,
		systemPrompt: prompt,
	}
}

func (s *Implementation) Reply(ctx context.Context, message string, history []models.ChatMessage) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l := logger.For(logger.CHAT)

	if s.client == nil {
		return "", ErrUnavailable
	}

	messages := BuildMessages(s.systemPrompt.String(), message, history)
	l.Debug().Int("message_count", len(messages)).Str("model", s.model).Msg("Requesting chat completion")

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    s.model,
		Messages: messages,
	})
	if err != nil {
		l.Error().Err(err).Msg("Failed to get chat completion")
		return "", fmt.Errorf("failed to get chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices returned")
	}

	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("empty response content")
	}

	l.Debug().
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Msg("Chat completion received")

	return content, nil
}

// BuildMessages lays out the system prompt followed by the history. The widget sends history
// with the new user turn already appended; message is only added when that is not the case.
func BuildMessages(systemPrompt, message string, history []models.ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	out = append(out, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})

	for _, msg := range history {
		role := openai.ChatMessageRoleUser
		if msg.Role == models.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		out = append(out, openai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		})
	}

	n := len(history)
	if n == 0 || history[n-1].Role != models.RoleUser || history[n-1].Content != message {
		out = append(out, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: message,
		})
	}

	return out
}
