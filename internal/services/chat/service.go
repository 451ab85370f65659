package chat

import (
	"context"
	"errors"

	"github.com/deepgram/chatdesk/internal/services/chat/models"
)

// ErrUnavailable is returned when no language model is configured.
var ErrUnavailable = errors.New("chat backend unavailable")

// Service defines the interface for chat operations
type Service interface {
	// Reply produces the assistant's answer to message given the conversation so far
	Reply(ctx context.Context, message string, history []models.ChatMessage) (string, error)
}
