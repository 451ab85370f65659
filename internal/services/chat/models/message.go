package models

// Chat roles carried on the wire.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single message in a chat conversation
type ChatMessage struct {
	Role    string `json:"role" validate:"oneof=user assistant"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /api/chat. History is the transcript at dispatch time and
// normally already ends with the user message being sent.
type ChatRequest struct {
	Message string        `json:"message" validate:"required,notblank"`
	History []ChatMessage `json:"history" validate:"dive"`
}

// ChatResponse is the body of a successful reply
type ChatResponse struct {
	Response string `json:"response"`
}
