package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/assetchat/internal/core/domain"
	"github.com/custodia-labs/assetchat/internal/core/ports/driving"
)

// Ensure the session types implement the interfaces.
var (
	_ driving.SessionService = (*SessionManager)(nil)
	_ driving.Conversation   = (*Session)(nil)
)

// SessionManager tracks independent conversations that share one answer
// service and index.
type SessionManager struct {
	chat     driving.ChatService
	defaults domain.AnswerOptions

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionManager creates a session manager.
func NewSessionManager(chat driving.ChatService, defaults domain.AnswerOptions) *SessionManager {
	return &SessionManager{
		chat:     chat,
		defaults: defaults,
		sessions: make(map[string]*Session),
	}
}

// New starts a conversation with the default options.
func (m *SessionManager) New() driving.Conversation {
	return m.create(uuid.NewString())
}

// Get returns an existing conversation.
func (m *SessionManager) Get(id string) (driving.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	return s, nil
}

// GetOrCreate returns the conversation for id, creating it when needed.
func (m *SessionManager) GetOrCreate(id string) driving.Conversation {
	if id == "" {
		return m.New()
	}
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if ok {
		return s
	}
	return m.create(id)
}

// Close discards a conversation.
func (m *SessionManager) Close(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Len returns the number of open conversations.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *SessionManager) create(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return s
	}
	s := &Session{id: id, chat: m.chat, opts: m.defaults}
	m.sessions[id] = s
	return s
}

// Session is one conversation. Its history and options are never shared
// with other sessions.
type Session struct {
	id   string
	chat driving.ChatService

	mu    sync.Mutex
	turns []domain.Turn
	opts  domain.AnswerOptions
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Ask answers a question and records both turns. On failure the recorded
// assistant turn is the apology the user saw.
func (s *Session) Ask(ctx context.Context, question string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := make([]domain.Turn, len(s.turns))
	copy(history, s.turns)

	answer, err := s.chat.Answer(ctx, question, history, s.opts)
	if answer == "" && err != nil {
		return "", err
	}
	s.turns = append(s.turns,
		domain.Turn{Role: domain.RoleUser, Text: question},
		domain.Turn{Role: domain.RoleAssistant, Text: answer},
	)
	return answer, err
}

// History returns a copy of the recorded turns.
func (s *Session) History() []domain.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Reset clears the history.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = nil
}

// Options returns the session's answer options.
func (s *Session) Options() domain.AnswerOptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts
}

// SetOptions replaces the session's answer options.
func (s *Session) SetOptions(opts domain.AnswerOptions) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts = opts
}
