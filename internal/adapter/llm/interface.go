// Package llm provides clients for hosted chat-completion models.
package llm

import (
	"context"

	"github.com/xiaot623/tripmate/internal/domain"
)

// Gateway sends one chat-completion request to a single model.
// Implementations never retry; trying other models is the caller's job.
type Gateway interface {
	// Complete sends [system, ...history, user:userText] to model and returns
	// the reply text. An empty systemInstruction omits the system message.
	Complete(ctx context.Context, model, systemInstruction string, history []domain.ChatTurn, userText string) (string, error)
}

// Ensure implementations satisfy Gateway.
var (
	_ Gateway = (*Client)(nil)
	_ Gateway = (*GeminiClient)(nil)
	_ Gateway = (*Router)(nil)
	_ Gateway = (*MockClient)(nil)
)

// BuildMessages lays out a request in the order the gateway contract requires.
func BuildMessages(systemInstruction string, history []domain.ChatTurn, userText string) []ChatMessage {
	messages := make([]ChatMessage, 0, len(history)+2)
	if systemInstruction != "" {
		messages = append(messages, ChatMessage{Role: "system", Content: systemInstruction})
	}
	for _, turn := range history {
		role := "user"
		if turn.Role == domain.RoleAssistant {
			role = "assistant"
		}
		messages = append(messages, ChatMessage{Role: role, Content: turn.Text})
	}
	return append(messages, ChatMessage{Role: "user", Content: userText})
}
