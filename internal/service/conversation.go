package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"parley.app/server/common/logger"
	"parley.app/server/internal/model"
	"parley.app/server/internal/store"
)

// defaultHistoryLimit bounds history reads when the caller doesn't ask for a
// specific window.
const defaultHistoryLimit = 50

// ConversationService derives conversation-level views and lifecycle from
// the message store.
type ConversationService interface {
	History(ctx context.Context, scope model.Scope, conversationID string, limit int32) ([]model.Message, error)
	List(ctx context.Context, scope model.Scope) ([]model.ConversationSummary, error)
	UpdateMessage(ctx context.Context, scope model.Scope, messageID int64, content string) (*model.Message, error)
	SetFeedback(ctx context.Context, scope model.Scope, messageID int64, feedback model.Feedback) (*model.Message, error)
	Rename(ctx context.Context, scope model.Scope, conversationID, title string) error
	Delete(ctx context.Context, scope model.Scope, conversationID string) error
	Export(ctx context.Context, scope model.Scope, conversationID string) ([]model.Message, error)
}

type conversationService struct {
	messages      store.MessageStore
	conversations store.ConversationStore
	txRunner      TxRunner
}

func NewConversationService(
	messages store.MessageStore,
	conversations store.ConversationStore,
	txRunner TxRunner,
) ConversationService {
	return &conversationService{
		messages:      messages,
		conversations: conversations,
		txRunner:      txRunner,
	}
}

// History returns the last `limit` messages in chronological order: the
// window is selected newest-first, then re-sorted ascending.
func (s *conversationService) History(ctx context.Context, scope model.Scope, conversationID string, limit int32) ([]model.Message, error) {
	if conversationID == "" {
		conversationID = DefaultConversationID
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	recent, err := s.messages.ListRecent(ctx, scope.Key(), conversationID, limit, nil)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}

	chronological := make([]model.Message, len(recent))
	for i, msg := range recent {
		chronological[len(recent)-1-i] = msg
	}
	return chronological, nil
}

func (s *conversationService) List(ctx context.Context, scope model.Scope) ([]model.ConversationSummary, error) {
	summaries, err := s.conversations.ListSummaries(ctx, scope.Key())
	if err != nil {
		return nil, fmt.Errorf("listing conversations: %w", err)
	}
	return summaries, nil
}

func (s *conversationService) UpdateMessage(ctx context.Context, scope model.Scope, messageID int64, content string) (*model.Message, error) {
	msg, err := s.messages.UpdateContent(ctx, scope.Key(), messageID, strings.TrimSpace(content))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("updating message: %w", err)
	}
	return msg, nil
}

func (s *conversationService) SetFeedback(ctx context.Context, scope model.Scope, messageID int64, feedback model.Feedback) (*model.Message, error) {
	msg, err := s.messages.UpdateFeedback(ctx, scope.Key(), messageID, feedback)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("setting feedback: %w", err)
	}
	return msg, nil
}

func (s *conversationService) Rename(ctx context.Context, scope model.Scope, conversationID, title string) error {
	err := s.conversations.Rename(ctx, scope.Key(), conversationID, strings.TrimSpace(title))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("renaming conversation: %w", err)
	}
	return nil
}

// Delete removes the conversation's messages and its aggregate row in one
// transaction. A conversation with zero messages reports ErrNotFound and
// leaves every other conversation and scope untouched.
func (s *conversationService) Delete(ctx context.Context, scope model.Scope, conversationID string) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Scope:          logger.Ptr(scope.Key()),
		ConversationID: logger.Ptr(conversationID),
		Component:      "parley.service.conversation",
	})

	return s.txRunner.WithTx(ctx, func(stores StoreProvider) error {
		deleted, err := stores.Messages().DeleteByConversation(ctx, scope.Key(), conversationID)
		if err != nil {
			return fmt.Errorf("deleting messages: %w", err)
		}
		if deleted == 0 {
			return ErrNotFound
		}

		if err := stores.Conversations().Delete(ctx, scope.Key(), conversationID); err != nil {
			return fmt.Errorf("deleting conversation: %w", err)
		}

		slog.InfoContext(ctx, "conversation deleted", "message_count", deleted)
		return nil
	})
}

// Export returns every message of the conversation in chronological order,
// the same ordering History reports. ErrNotFound if the conversation is
// empty.
func (s *conversationService) Export(ctx context.Context, scope model.Scope, conversationID string) ([]model.Message, error) {
	messages, err := s.messages.ListAll(ctx, scope.Key(), conversationID)
	if err != nil {
		return nil, fmt.Errorf("loading conversation: %w", err)
	}
	if len(messages) == 0 {
		return nil, ErrNotFound
	}
	return messages, nil
}

// RenderExportText renders messages as the line-per-message plain-text
// export format: "<timestamp> - <ROLE>: <content>" separated by blank lines.
func RenderExportText(messages []model.Message) string {
	lines := make([]string, len(messages))
	for i, msg := range messages {
		lines[i] = fmt.Sprintf("%s - %s: %s",
			msg.Timestamp.UTC().Format(time.RFC3339),
			strings.ToUpper(string(msg.Role)),
			msg.Content,
		)
	}
	return strings.Join(lines, "\n\n")
}
