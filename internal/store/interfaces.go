package store

import (
	"context"
	"errors"

	"parley.app/server/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// MessageStore defines the contract for chat message data access.
// Every scoped method filters on the owner scope key; cross-owner reads and
// writes are impossible through this interface.
type MessageStore interface {
	Create(ctx context.Context, msg *model.Message) error

	// ListRecent returns the most recent messages for a conversation,
	// newest first, ordered by (timestamp, id) descending. Messages whose
	// IDs appear in excludeIDs are skipped.
	ListRecent(ctx context.Context, scope, conversationID string, limit int32, excludeIDs []int64) ([]model.Message, error)

	// ListAll returns every message of a conversation in chronological
	// (timestamp, id) ascending order.
	ListAll(ctx context.Context, scope, conversationID string) ([]model.Message, error)

	// UpdateContent edits a user-authored message. Assistant messages are
	// immutable: the update matches role = 'user' only and reports
	// ErrNotFound otherwise.
	UpdateContent(ctx context.Context, scope string, id int64, content string) (*model.Message, error)

	// UpdateFeedback sets feedback on any message of the owner, assistant
	// messages included.
	UpdateFeedback(ctx context.Context, scope string, id int64, feedback model.Feedback) (*model.Message, error)

	// DeleteByConversation removes every message of the conversation and
	// returns how many were deleted.
	DeleteByConversation(ctx context.Context, scope, conversationID string) (int64, error)

	// Count returns the total message count across all scopes.
	Count(ctx context.Context) (int64, error)

	// CountDistinctConversations counts distinct conversation external IDs
	// across all scopes.
	CountDistinctConversations(ctx context.Context) (int64, error)
}

// ConversationStore defines the contract for conversation aggregate access.
type ConversationStore interface {
	// Upsert ensures the conversation row exists, creating it with the
	// given ID on first use. Existing rows keep their ID and title.
	Upsert(ctx context.Context, conv *model.Conversation) error

	// Rename sets the display title. ErrNotFound if the conversation has
	// never had a message.
	Rename(ctx context.Context, scope, externalID, title string) error

	Delete(ctx context.Context, scope, externalID string) error

	// ListSummaries aggregates the scope's messages per conversation,
	// sorted by last activity descending.
	ListSummaries(ctx context.Context, scope string) ([]model.ConversationSummary, error)
}

// UserStore defines the contract for user data access
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
	UpsertByWorkOSID(ctx context.Context, user *model.User) error
	Count(ctx context.Context) (int64, error)
}

// SessionStore defines the contract for session data access
type SessionStore interface {
	GetValid(ctx context.Context, id int64) (*model.Session, error) // checks expiry
	Create(ctx context.Context, session *model.Session) error
	Delete(ctx context.Context, id int64) error
}
