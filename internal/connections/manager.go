package connections

import (
	"sync"
	"time"

	"github.com/deepgram/chatdesk/pkg/logger"
	"github.com/gorilla/websocket"
)

// TimeoutConfig holds the keepalive settings for chat WebSocket connections
type TimeoutConfig struct {
	PingPeriod time.Duration
	WriteWait  time.Duration
}

// DefaultTimeouts provides sensible default timeout values
var DefaultTimeouts = TimeoutConfig{
	PingPeriod: 27 * time.Second,
	WriteWait:  10 * time.Second,
}

// Manager tracks the live chat WebSocket connections so they can be pinged while idle and
// closed when the server shuts down.
type Manager struct {
	mu          sync.Mutex
	connections map[*websocket.Conn]struct{}
	timeouts    TimeoutConfig
	closed      bool
}

// NewManager creates a new connection manager with the specified timeouts
func NewManager(timeouts TimeoutConfig) *Manager {
	return &Manager{
		connections: make(map[*websocket.Conn]struct{}),
		timeouts:    timeouts,
	}
}

// AddConnection registers a connection. It reports false once CloseAll has run; the caller
// should then drop the connection.
func (m *Manager) AddConnection(conn *websocket.Conn) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return false
	}
	m.connections[conn] = struct{}{}
	return true
}

// RemoveConnection removes a WebSocket connection
func (m *Manager) RemoveConnection(conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.connections, conn)
}

// GetConnectionCount returns the current number of active connections
func (m *Manager) GetConnectionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.connections)
}

// HasConnection checks if a specific connection exists
func (m *Manager) HasConnection(conn *websocket.Conn) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, exists := m.connections[conn]
	return exists
}

// GetTimeouts returns the current timeout configuration
func (m *Manager) GetTimeouts() TimeoutConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timeouts
}

// KeepAlive pings conn every PingPeriod until done is closed or a ping cannot be written.
// A failed ping closes the connection, which unblocks the reader.
func (m *Manager) KeepAlive(conn *websocket.Conn, done <-chan struct{}) {
	timeouts := m.GetTimeouts()
	ticker := time.NewTicker(timeouts.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(timeouts.WriteWait)); err != nil {
				l := logger.For(logger.HANDLER)
				l.Debug().Err(err).Msg("Ping failed, closing chat WebSocket")
				_ = conn.Close()
				return
			}
		}
	}
}

// CloseAll sends a going-away close frame to every connection, closes it and refuses
// new connections from then on.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	m.closed = true
	conns := make([]*websocket.Conn, 0, len(m.connections))
	for conn := range m.connections {
		conns = append(conns, conn)
	}
	m.connections = make(map[*websocket.Conn]struct{})
	writeWait := m.timeouts.WriteWait
	m.mu.Unlock()

	for _, conn := range conns {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		_ = conn.Close()
	}

	if len(conns) > 0 {
		l := logger.For(logger.HANDLER)
		l.Info().Int("connections", len(conns)).Msg("Closed chat WebSockets")
	}
}
