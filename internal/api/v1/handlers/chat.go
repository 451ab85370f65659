package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/deepgram/chatdesk/internal/services/chat"
	"github.com/deepgram/chatdesk/internal/services/chat/models"
	"github.com/deepgram/chatdesk/internal/validation"
	"github.com/deepgram/chatdesk/pkg/httpext"
	"github.com/deepgram/chatdesk/pkg/logger"
	"github.com/google/uuid"
)

const maxChatBodyBytes = 1 << 20

// chatFailure is an exchange that could not produce a reply, with what to tell the client.
type chatFailure struct {
	code    int
	message string
}

// HandleChat answers POST /api/chat with {"response": "..."}.
func HandleChat(chatService chat.Service, w http.ResponseWriter, r *http.Request) {
	l := logger.For(logger.HANDLER)
	requestID := uuid.New().String()
	w.Header().Set("X-Request-ID", requestID)

	r.Body = http.MaxBytesReader(w, r.Body, maxChatBodyBytes)

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		l.Warn().Err(err).Str("request_id", requestID).Msg("Client sent malformed JSON request")
		writeChatError(w, requestID, chatFailure{http.StatusBadRequest, "Invalid request format"})
		return
	}

	l.Info().
		Str("request_id", requestID).
		Str("client_ip", r.RemoteAddr).
		Int("history_length", len(req.History)).
		Msg("Received chat request")

	reply, failure := answer(r.Context(), chatService, req)
	if failure != nil {
		writeChatError(w, requestID, *failure)
		return
	}

	httpext.WriteJSON(w, http.StatusOK, models.ChatResponse{Response: reply})

	l.Info().
		Str("request_id", requestID).
		Int("status", http.StatusOK).
		Msg("Chat request processed successfully")
}

// answer validates req and asks the chat service for a reply.
func answer(ctx context.Context, chatService chat.Service, req models.ChatRequest) (string, *chatFailure) {
	l := logger.For(logger.HANDLER)

	if err := validation.Validator().Struct(req); err != nil {
		l.Warn().Err(err).Msg("Chat request validation failed")
		return "", &chatFailure{http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err)}
	}

	reply, err := chatService.Reply(ctx, req.Message, req.History)
	if err != nil {
		if errors.Is(err, chat.ErrUnavailable) {
			l.Warn().Msg("Chat request received but no chat backend is configured")
			return "", &chatFailure{http.StatusServiceUnavailable, "Chat backend unavailable"}
		}
		l.Error().Err(err).Int("history_length", len(req.History)).Msg("Failed to process chat")
		return "", &chatFailure{http.StatusBadGateway, "Failed to process chat"}
	}

	return reply, nil
}

func writeChatError(w http.ResponseWriter, requestID string, failure chatFailure) {
	httpext.WriteJSON(w, failure.code, httpext.ErrorResponse{
		Error:     failure.message,
		RequestID: requestID,
	})
}
