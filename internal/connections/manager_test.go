package connections

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dialPair returns the server side of a live connection plus the client side.
func dialPair(t *testing.T) (*websocket.Conn, *websocket.Conn) {
	t.Helper()

	serverConns := make(chan *websocket.Conn, 1)
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		serverConns <- conn
	}))
	t.Cleanup(server.Close)

	client, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { _ = client.Close() })

	select {
	case conn := <-serverConns:
		t.Cleanup(func() { _ = conn.Close() })
		return conn, client
	case <-time.After(5 * time.Second):
		t.Fatal("server side of the connection never arrived")
		return nil, nil
	}
}

func TestManager(t *testing.T) {
	t.Run("basic add and remove connection", func(t *testing.T) {
		manager := NewManager(DefaultTimeouts)
		conn := &websocket.Conn{}

		assert.True(t, manager.AddConnection(conn))
		assert.True(t, manager.HasConnection(conn))
		assert.Equal(t, 1, manager.GetConnectionCount())

		manager.RemoveConnection(conn)
		assert.False(t, manager.HasConnection(conn))
		assert.Equal(t, 0, manager.GetConnectionCount())
	})

	t.Run("concurrent connection operations", func(t *testing.T) {
		manager := NewManager(DefaultTimeouts)
		concurrentOps := 100

		connections := make([]*websocket.Conn, concurrentOps)
		for i := range connections {
			connections[i] = &websocket.Conn{}
		}

		var wg sync.WaitGroup
		wg.Add(concurrentOps)
		for _, conn := range connections {
			go func(conn *websocket.Conn) {
				defer wg.Done()
				manager.AddConnection(conn)
			}(conn)
		}
		wg.Wait()
		assert.Equal(t, concurrentOps, manager.GetConnectionCount())

		for _, conn := range connections {
			manager.RemoveConnection(conn)
		}
		assert.Equal(t, 0, manager.GetConnectionCount())
	})

	t.Run("timeout configuration", func(t *testing.T) {
		customTimeouts := TimeoutConfig{
			PingPeriod: 54 * time.Second,
			WriteWait:  20 * time.Second,
		}

		manager := NewManager(customTimeouts)
		assert.Equal(t, customTimeouts, manager.GetTimeouts())
	})
}

func TestCloseAll(t *testing.T) {
	manager := NewManager(DefaultTimeouts)
	serverConn, client := dialPair(t)
	require.True(t, manager.AddConnection(serverConn))

	manager.CloseAll()
	assert.Equal(t, 0, manager.GetConnectionCount())

	_ = client.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := client.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)

	// the manager refuses connections after shutdown
	assert.False(t, manager.AddConnection(&websocket.Conn{}))
}

func TestKeepAlivePings(t *testing.T) {
	manager := NewManager(TimeoutConfig{PingPeriod: 10 * time.Millisecond, WriteWait: time.Second})
	serverConn, client := dialPair(t)

	pinged := make(chan struct{}, 1)
	client.SetPingHandler(func(string) error {
		select {
		case pinged <- struct{}{}:
		default:
		}
		return nil
	})

	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		manager.KeepAlive(serverConn, done)
		close(stopped)
	}()

	// control frames are only handled while the client reads
	go func() {
		for {
			if _, _, err := client.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case <-pinged:
	case <-time.After(5 * time.Second):
		t.Fatal("no ping received")
	}

	close(done)
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("KeepAlive did not stop")
	}
}
