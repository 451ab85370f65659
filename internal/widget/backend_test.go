package widget

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/deepgram/chatdesk/internal/services/chat/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPBackendRequestShape(t *testing.T) {
	var got models.ChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":"Hi there"}`))
	}))
	defer server.Close()

	backend := NewHTTPBackend(server.URL+"/", server.Client())
	reply, err := backend.Send(context.Background(), models.ChatRequest{
		Message: "Hello",
		History: []models.ChatMessage{{Role: RoleUser, Content: "Hello"}},
	})

	require.NoError(t, err)
	assert.Equal(t, "Hi there", reply)
	assert.Equal(t, "Hello", got.Message)
	assert.Equal(t, []models.ChatMessage{{Role: RoleUser, Content: "Hello"}}, got.History)
}

func TestHTTPBackendFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		checkFn func(t *testing.T, err error)
	}{
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   `{"error":"Failed to process chat"}`,
			checkFn: func(t *testing.T, err error) {
				var statusErr *StatusError
				require.True(t, errors.As(err, &statusErr))
				assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
				assert.Equal(t, "Failed to process chat", statusErr.Message)
			},
		},
		{
			name:   "non-JSON body",
			status: http.StatusOK,
			body:   `<html>oops</html>`,
			checkFn: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrMalformedResponse)
			},
		},
		{
			name:   "missing response field",
			status: http.StatusOK,
			body:   `{"answer":"Hi"}`,
			checkFn: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrMalformedResponse)
			},
		},
		{
			name:   "response is not a string",
			status: http.StatusOK,
			body:   `{"response":42}`,
			checkFn: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrMalformedResponse)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewHTTPBackend(server.URL, server.Client()).Send(context.Background(), models.ChatRequest{Message: "Hello"})
			require.Error(t, err)
			tt.checkFn(t, err)
		})
	}
}

func TestHTTPBackendUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewHTTPBackend(url, nil).Send(context.Background(), models.ChatRequest{Message: "Hello"})
	assert.Error(t, err)
}

func TestControllerOverHTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req models.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(models.ChatResponse{Response: "echo: " + req.Message})
	}))
	defer server.Close()

	c, page := newTestController(NewHTTPBackend(server.URL, server.Client()))
	require.True(t, c.Submit(context.Background(), "Hello"))
	c.Wait()

	assert.Equal(t, []Turn{
		{Role: RoleUser, Content: "Hello"},
		{Role: RoleAssistant, Content: "echo: Hello"},
	}, c.Transcript())
	assert.Equal(t, 0, page.TypingIndicators())
}

func TestNewHTTPBackendDefaultClient(t *testing.T) {
	backend := NewHTTPBackend("http://localhost:8080/", nil)

	assert.Equal(t, "http://localhost:8080/api/chat", backend.endpoint)
	// no client-side timeout; only the caller's context bounds an exchange
	assert.Zero(t, backend.client.Timeout)
}
