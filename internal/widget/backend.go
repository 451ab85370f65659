package widget

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/deepgram/chatdesk/internal/services/chat/models"
)

// ChatPath is where the backend serves chat exchanges.
const ChatPath = "/api/chat"

// ErrMalformedResponse means the backend answered with something other than {"response": "..."}.
var ErrMalformedResponse = errors.New("malformed chat response")

// Backend performs one request/response exchange with the chat endpoint.
type Backend interface {
	Send(ctx context.Context, req models.ChatRequest) (string, error)
}

// StatusError is returned for non-2xx replies.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("chat backend returned %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("chat backend returned %d", e.Code)
}

// HTTPBackend posts exchanges to BaseURL + ChatPath.
type HTTPBackend struct {
	endpoint string
	client   *http.Client
}

// NewHTTPBackend uses client, or a client without a timeout when client is nil. Exchanges are
// then bounded only by the context passed to Send.
func NewHTTPBackend(baseURL string, client *http.Client) *HTTPBackend {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPBackend{
		endpoint: strings.TrimRight(baseURL, "/") + ChatPath,
		client:   client,
	}
}

func (b *HTTPBackend) Send(ctx context.Context, req models.ChatRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("send chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&apiErr)
		return "", &StatusError{Code: resp.StatusCode, Message: apiErr.Error}
	}

	return decodeReply(resp.Body)
}

func decodeReply(r io.Reader) (string, error) {
	var payload struct {
		Response *string `json:"response"`
	}
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if payload.Response == nil {
		return "", fmt.Errorf("%w: missing response field", ErrMalformedResponse)
	}
	return *payload.Response, nil
}
