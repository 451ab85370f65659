package widget

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/deepgram/chatdesk/internal/services/chat/models"
	"github.com/gorilla/websocket"
)

// ChatWebSocketPath is the streaming variant of ChatPath.
const ChatWebSocketPath = "/api/chat/ws"

// WebSocketBackend keeps one connection open and runs exchanges over it one at a time.
// A broken or cancelled connection is dropped and redialled on the next Send.
type WebSocketBackend struct {
	endpoint string
	dialer   *websocket.Dialer

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewWebSocketBackend accepts an http(s) or ws(s) base URL.
func NewWebSocketBackend(baseURL string) (*WebSocketBackend, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}

	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return nil, fmt.Errorf("unsupported server url scheme %q", u.Scheme)
	}
	u.Path += ChatWebSocketPath

	return &WebSocketBackend{
		endpoint: u.String(),
		dialer:   &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
	}, nil
}

func (b *WebSocketBackend) Send(ctx context.Context, req models.ChatRequest) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	conn, err := b.connLocked(ctx)
	if err != nil {
		return "", err
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
		_ = conn.SetReadDeadline(deadline)
	} else {
		_ = conn.SetWriteDeadline(time.Time{})
		_ = conn.SetReadDeadline(time.Time{})
	}

	// cancellation expires the deadlines, which unblocks the pending write or read
	stop := context.AfterFunc(ctx, func() {
		now := time.Now()
		_ = conn.SetWriteDeadline(now)
		_ = conn.SetReadDeadline(now)
	})
	defer stop()

	if err := conn.WriteJSON(req); err != nil {
		b.dropLocked()
		return "", fmt.Errorf("write chat frame: %w", contextError(ctx, err))
	}

	_, data, err := conn.ReadMessage()
	if err != nil {
		b.dropLocked()
		return "", fmt.Errorf("read chat frame: %w", contextError(ctx, err))
	}

	var apiErr struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
		return "", errors.New(apiErr.Error)
	}

	return decodeReply(bytes.NewReader(data))
}

// Close closes the current connection, if any.
func (b *WebSocketBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.conn == nil {
		return nil
	}
	_ = b.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	err := b.conn.Close()
	b.conn = nil
	return err
}

func (b *WebSocketBackend) connLocked(ctx context.Context) (*websocket.Conn, error) {
	if b.conn != nil {
		return b.conn, nil
	}

	conn, resp, err := b.dialer.DialContext(ctx, b.endpoint, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", b.endpoint, err)
	}

	b.conn = conn
	return conn, nil
}

// contextError prefers the context's error when the context ended the exchange.
func contextError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

func (b *WebSocketBackend) dropLocked() {
	if b.conn != nil {
		_ = b.conn.Close()
		b.conn = nil
	}
}
