package config

import (
	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
)

// GetOpenAIKey returns the current OpenAI key. An empty key disables the chat backend.
func GetOpenAIKey() string {
	value := GetEnvOrDefault("OPENAI_KEY", "")
	if value == "" {
		log.Warn().Msg("OPENAI_KEY environment variable not set")
	}
	return value
}

// GetOpenAIModel returns the chat model used for replies
func GetOpenAIModel() string {
	return GetEnvOrDefault("OPENAI_MODEL", openai.GPT4oMini)
}

// GetChatSystemPrompt returns operator instructions appended to the built-in system prompt
func GetChatSystemPrompt() string {
	return GetEnvOrDefault("CHAT_SYSTEM_PROMPT", "")
}
