// Package models defines the core data types shared across termchat.
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrValidation indicates an invalid conversation name, platform, or
// configuration value. Check with errors.Is().
var ErrValidation = errors.New("validation failed")

// Message roles as sent to the chat API.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Platform identifies the backend/model family servicing a conversation.
type Platform string

// Built-in platforms. User-defined profiles may extend this set.
const (
	PlatformOpenAI    Platform = "openai"
	PlatformDeepseek  Platform = "deepseek"
	PlatformAnthropic Platform = "anthropic"
	PlatformOllama    Platform = "ollama"
	PlatformBedrock   Platform = "bedrock"
)

// Message represents a single chat message within a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Conversation represents a persistent chat session. Name is the identity:
// unique among persisted conversations, empty while the conversation is
// still temporary.
type Conversation struct {
	Name      string    `json:"-"`
	Platform  Platform  `json:"platform"`
	MaxTokens int       `json:"max_tokens"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Messages  []Message `json:"messages"`
}

// Summary is the listing view of a conversation.
type Summary struct {
	Name         string
	Platform     Platform
	MessageCount int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const maxNameLen = 128

// ValidateName checks that a conversation name is usable as a record
// identifier. Names become file names, so path characters are rejected.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("conversation name is empty: %w", ErrValidation)
	case len(name) > maxNameLen:
		return fmt.Errorf("conversation name %q exceeds %d bytes: %w", name, maxNameLen, ErrValidation)
	case strings.HasPrefix(name, "."):
		return fmt.Errorf("conversation name %q starts with a dot: %w", name, ErrValidation)
	case strings.ContainsAny(name, "/\\\x00"):
		return fmt.Errorf("conversation name %q contains path characters: %w", name, ErrValidation)
	}
	return nil
}

// ValidateMaxTokens checks the response length cap.
func ValidateMaxTokens(n int) error {
	if n <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d: %w", n, ErrValidation)
	}
	return nil
}

// CloneMessages returns a deep copy of a message slice so that mutations
// of the copy never reach the source.
func CloneMessages(messages []Message) []Message {
	if messages == nil {
		return nil
	}
	out := make([]Message, len(messages))
	copy(out, messages)
	return out
}
