package widget

import "github.com/deepgram/chatdesk/internal/services/chat/models"

// Turn is one entry of the conversation, in the same shape it travels on the wire.
type Turn = models.ChatMessage

const (
	RoleUser      = models.RoleUser
	RoleAssistant = models.RoleAssistant
)

// FallbackReply is shown as the assistant's answer whenever an exchange fails.
const FallbackReply = "Sorry, I encountered an error. Please try again."
