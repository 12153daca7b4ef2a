package domain

import (
	"context"
	"time"
)

// Chat roles follow the role/content pair required by the completions API.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// AssistantPlaceholder is sent as the third message of every prompt. The wire
// protocol treats it as a conversation stub; the shape is preserved verbatim
// for compatibility with the deployed panel.
const AssistantPlaceholder = "..."

// ChatMessage is one entry of the ordered message list sent to the remote API.
// Rebuilt on every chat turn, never mutated after construction.
type ChatMessage struct {
	Role    string
	Content string
}

// ChatRequest captures one user turn originating from the CLI or the panel.
type ChatRequest struct {
	Context   context.Context
	Prompt    string
	Selection string
}

// GenerationOptions bind model knobs resolved from settings at client-build time.
type GenerationOptions struct {
	Model       string
	MaxTokens   int
	Temperature float32
}

// StopSequences cut the completion off before it starts role-playing the
// conversation transcript.
func StopSequences() []string {
	return []string{"\nUSER: ", "\nUSER", "\nASSISTANT"}
}

// Sampling constants fixed by the wire contract.
const (
	TopP             float32 = 1.0
	FrequencyPenalty float32 = 1
	PresencePenalty  float32 = 1
)

// ChatExchange is one persisted prompt/response pair.
type ChatExchange struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Prompt    string    `json:"prompt"`
	Selection string    `json:"selection,omitempty"`
	Response  string    `json:"response"`
	Model     string    `json:"model"`
	Failed    bool      `json:"failed"`
}
