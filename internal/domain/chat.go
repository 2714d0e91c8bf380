package domain

import "context"

// Chat message roles.
const (
	ChatRoleSystem    = "system"
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is a single turn in a conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompleter forwards a conversation to an LLM and returns the assistant reply.
type ChatCompleter interface {
	Complete(ctx context.Context, messages []ChatMessage) (string, error)
}

// Agent describes a chat agent exposed to the mobile client.
// swagger:model Agent
type Agent struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ChatService relays chat messages, keeping bounded per-session history.
type ChatService interface {
	// SendMessage appends the user message to the session history, obtains the
	// assistant reply, and returns it with the session id actually used.
	SendMessage(ctx context.Context, sessionID, userID, message string) (reply, resolvedSessionID string, err error)
	ListAgents() []Agent
}

// TokenVerifier verifies a bearer token and returns the authenticated user ID.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}
