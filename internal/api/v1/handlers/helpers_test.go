package handlers

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/deepgram/chatdesk/internal/services"
	"github.com/deepgram/chatdesk/internal/services/chat/models"
	"github.com/deepgram/chatdesk/internal/services/session"
	"github.com/deepgram/chatdesk/internal/services/users"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockChatService mocks the chat service
type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) Reply(ctx context.Context, message string, history []models.ChatMessage) (string, error) {
	args := m.Called(ctx, message, history)
	return args.String(0), args.Error(1)
}

func newTestServices(t *testing.T, chatService *MockChatService) *services.Services {
	t.Helper()
	t.Setenv("BCRYPT_COST", "4")

	userStore, err := users.Open(context.Background(), filepath.Join(t.TempDir(), "users.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = userStore.Close() })

	return services.New(chatService, session.NewServiceWithStore(session.NewMemoryStore()), userStore)
}

func newTestServer(t *testing.T, chatService *MockChatService) *httptest.Server {
	t.Helper()
	router := mux.NewRouter()
	RegisterRoutes(router, newTestServices(t, chatService))

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}
