// Package domain defines the core value types shared by the trip planner.
package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Role identifies the author of a chat turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// UnmarshalJSON accepts the legacy "model" role as an alias for assistant.
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user":
		*r = RoleUser
	case "assistant", "model":
		*r = RoleAssistant
	default:
		return fmt.Errorf("unknown chat role %q", s)
	}
	return nil
}

// ChatTurn is a single message in a conversation.
type ChatTurn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// UserTurn builds a turn authored by the user.
func UserTurn(text string) ChatTurn {
	return ChatTurn{Role: RoleUser, Text: text}
}

// AssistantTurn builds a turn authored by the assistant.
func AssistantTurn(text string) ChatTurn {
	return ChatTurn{Role: RoleAssistant, Text: text}
}

// ConversationContext returns the part of history that may be sent to a model.
// Leading assistant turns (the locally synthesized greeting) are dropped so the
// context always starts with a user turn. The input slice is not modified.
func ConversationContext(history []ChatTurn) []ChatTurn {
	start := 0
	for start < len(history) && history[start].Role != RoleUser {
		start++
	}
	out := make([]ChatTurn, len(history)-start)
	copy(out, history[start:])
	return out
}
