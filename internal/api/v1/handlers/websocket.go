package handlers

import (
	"encoding/json"
	"net/http"

	v1mware "github.com/deepgram/chatdesk/internal/api/v1/middleware"
	"github.com/deepgram/chatdesk/internal/connections"
	"github.com/deepgram/chatdesk/internal/services/chat"
	"github.com/deepgram/chatdesk/internal/services/chat/models"
	"github.com/deepgram/chatdesk/pkg/httpext"
	"github.com/deepgram/chatdesk/pkg/logger"
	"github.com/gorilla/websocket"
)

// Origin checking is left to the upgrader default: requests without an Origin header (the
// terminal widget) and same-host browsers are accepted.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// HandleChatWebSocket serves GET /api/chat/ws. Each text frame is a chat request and is answered
// with one frame holding either {"response": ...} or {"error": ...}. Every frame counts against
// the chat rate limit.
func HandleChatWebSocket(chatService chat.Service, manager *connections.Manager, limiter *v1mware.Limiter, w http.ResponseWriter, r *http.Request) {
	l := logger.For(logger.HANDLER)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		l.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	if !manager.AddConnection(conn) {
		return
	}
	defer manager.RemoveConnection(conn)

	done := make(chan struct{})
	defer close(done)
	go manager.KeepAlive(conn, done)

	conn.SetReadLimit(maxChatBodyBytes)
	l.Info().Str("client_ip", r.RemoteAddr).Msg("Chat WebSocket connected")

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				l.Warn().Err(err).Msg("Unexpected WebSocket closure")
			} else {
				l.Info().Str("client_ip", r.RemoteAddr).Msg("Chat WebSocket closed")
			}
			return
		}

		var out interface{}
		var req models.ChatRequest
		if allowed, _ := limiter.Allow(r); !allowed {
			out = httpext.ErrorResponse{Error: v1mware.RateLimitExceeded}
		} else if err := json.Unmarshal(data, &req); err != nil {
			l.Warn().Err(err).Msg("Client sent malformed JSON frame")
			out = httpext.ErrorResponse{Error: "Invalid request format"}
		} else if reply, failure := answer(r.Context(), chatService, req); failure != nil {
			out = httpext.ErrorResponse{Error: failure.message}
		} else {
			out = models.ChatResponse{Response: reply}
		}

		if err := conn.WriteJSON(out); err != nil {
			l.Warn().Err(err).Msg("Failed to write WebSocket frame")
			return
		}
	}
}
