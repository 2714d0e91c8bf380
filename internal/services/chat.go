package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"psyconnect/internal/domain"
)

const (
	defaultSessionID = "default"
	// maxSessions bounds memory; least-recently-used sessions are evicted.
	maxSessions = 256
	// maxHistoryMessages is the number of user/assistant turns kept after the
	// pinned system prompt.
	maxHistoryMessages = 20

	systemPrompt = "You are AIA (Artificial Intelligence Assistant), a helpful, friendly, and intelligent AI assistant. You provide clear, concise, and helpful responses to user questions and requests. Keep your responses conversational and engaging."
)

type chatSession struct {
	mu       sync.Mutex
	messages []domain.ChatMessage
}

type chatService struct {
	completer domain.ChatCompleter
	sessions  *lru.Cache[string, *chatSession]
}

// NewChatService returns a ChatService that relays messages to the given
// completer, holding per-session history in a bounded LRU cache.
func NewChatService(completer domain.ChatCompleter) (domain.ChatService, error) {
	cache, err := lru.New[string, *chatSession](maxSessions)
	if err != nil {
		return nil, fmt.Errorf("failed to create session cache: %w", err)
	}
	return &chatService{completer: completer, sessions: cache}, nil
}

func (s *chatService) SendMessage(ctx context.Context, sessionID, userID, message string) (string, string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", "", fmt.Errorf("message is required")
	}
	key := sessionID
	if key == "" {
		key = defaultSessionID
	}
	sess := s.session(key)

	sess.mu.Lock()
	sess.messages = append(sess.messages, domain.ChatMessage{Role: domain.ChatRoleUser, Content: message})
	history := make([]domain.ChatMessage, len(sess.messages))
	copy(history, sess.messages)
	sess.mu.Unlock()

	reply, err := s.completer.Complete(ctx, history)
	if err != nil {
		return "", "", fmt.Errorf("failed to complete chat: %w", err)
	}

	sess.mu.Lock()
	sess.messages = append(sess.messages, domain.ChatMessage{Role: domain.ChatRoleAssistant, Content: reply})
	sess.messages = trimHistory(sess.messages)
	sess.mu.Unlock()

	return reply, key, nil
}

func (s *chatService) ListAgents() []domain.Agent {
	return []domain.Agent{
		{
			ID:          "aia_assistant",
			Name:        "AIA Assistant",
			Description: "General purpose AI assistant",
		},
	}
}

// session returns the existing session for key or creates one seeded with the
// system prompt. PeekOrAdd keeps concurrent creators on the same session.
func (s *chatService) session(key string) *chatSession {
	if sess, ok := s.sessions.Get(key); ok {
		return sess
	}
	fresh := &chatSession{
		messages: []domain.ChatMessage{{Role: domain.ChatRoleSystem, Content: systemPrompt}},
	}
	if prev, existed, _ := s.sessions.PeekOrAdd(key, fresh); existed {
		return prev
	}
	return fresh
}

// trimHistory keeps the system prompt plus the most recent maxHistoryMessages
// messages.
func trimHistory(msgs []domain.ChatMessage) []domain.ChatMessage {
	if len(msgs) <= maxHistoryMessages+1 {
		return msgs
	}
	trimmed := make([]domain.ChatMessage, 0, maxHistoryMessages+1)
	trimmed = append(trimmed, msgs[0])
	trimmed = append(trimmed, msgs[len(msgs)-maxHistoryMessages:]...)
	return trimmed
}
