package driving

import (
	"context"

	"github.com/custodia-labs/assetchat/internal/core/domain"
)

// ChatService answers questions about the dataset.
//
// Answer always returns text for the user. When the question could not be
// answered the text is domain.ApologyMessage and the error says why; the
// error is for logs, not for display.
type ChatService interface {
	Answer(ctx context.Context, question string, history []domain.Turn, opts domain.AnswerOptions) (string, error)

	// Mode reports which answer strategy is active.
	Mode() domain.ChatMode
}

// Conversation is one user's isolated chat session.
// Questions within a conversation are answered one at a time.
type Conversation interface {
	// ID returns the session identifier.
	ID() string

	// Ask answers a question and records both turns in the history.
	Ask(ctx context.Context, question string) (string, error)

	// History returns a copy of the recorded turns.
	History() []domain.Turn

	// Reset clears the history.
	Reset()

	// Options returns the session's answer options.
	Options() domain.AnswerOptions

	// SetOptions replaces the session's answer options.
	SetOptions(opts domain.AnswerOptions)
}

// SessionService creates and tracks conversations.
type SessionService interface {
	// New starts a conversation with the default options.
	New() Conversation

	// Get returns an existing conversation.
	// Returns domain.ErrNotFound for unknown IDs.
	Get(id string) (Conversation, error)

	// GetOrCreate returns the conversation for id, creating one when id is
	// empty or unknown.
	GetOrCreate(id string) Conversation

	// Close discards a conversation.
	Close(id string)
}
