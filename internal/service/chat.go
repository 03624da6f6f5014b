package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"parley.app/server/common/id"
	"parley.app/server/common/llm"
	"parley.app/server/common/logger"
	"parley.app/server/internal/model"
	"parley.app/server/internal/store"
)

const (
	// DefaultConversationID groups messages submitted without an explicit
	// conversation id.
	DefaultConversationID = "default"

	// historyWindowSize bounds how many prior turns are replayed to the
	// provider: the most recent N by time, re-sorted chronologically.
	historyWindowSize = 10

	// batchWindowSize bounds how many of the submitted turns join the
	// provider context. Older entries of an oversized batch are still
	// persisted in full; only the provider-facing window is truncated.
	batchWindowSize = 5
)

// IncomingMessage is one caller-submitted turn. Timestamp is optional and
// supports historical import; it defaults to the time of persistence.
type IncomingMessage struct {
	Role      model.Role
	Content   string
	Timestamp *time.Time
}

// ChatService runs one chat turn as a strict sequential pipeline:
// persist the submitted batch, load the bounded history window, call the
// completion provider, persist the reply. A provider failure after the
// batch was persisted is reported as a full failure; the persisted turns
// are retained, not rolled back.
type ChatService interface {
	Send(ctx context.Context, scope model.Scope, conversationID string, batch []IncomingMessage) (*llm.Completion, error)
}

type chatService struct {
	messages      store.MessageStore
	conversations store.ConversationStore
	completions   llm.Client
}

func NewChatService(
	messages store.MessageStore,
	conversations store.ConversationStore,
	completions llm.Client,
) ChatService {
	return &chatService{
		messages:      messages,
		conversations: conversations,
		completions:   completions,
	}
}

func (s *chatService) Send(ctx context.Context, scope model.Scope, conversationID string, batch []IncomingMessage) (*llm.Completion, error) {
	if conversationID == "" {
		conversationID = DefaultConversationID
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Scope:          logger.Ptr(scope.Key()),
		ConversationID: logger.Ptr(conversationID),
		Component:      "parley.service.chat",
	})

	persisted, err := s.persistBatch(ctx, scope, conversationID, batch)
	if err != nil {
		return nil, err
	}

	window, err := s.loadWindow(ctx, scope, conversationID, persisted)
	if err != nil {
		return nil, err
	}

	completion, err := s.complete(ctx, window, batch)
	if err != nil {
		return nil, err
	}

	if err := s.persistReply(ctx, scope, conversationID, completion, len(persisted) == 0); err != nil {
		return nil, err
	}

	return completion, nil
}

// persistBatch stores every submitted turn individually, preserving the
// submitted order and submitted (or defaulted) timestamps. Persistence is
// never truncated, whatever the batch size. The conversation row is created
// alongside the first message, so a failed turn never leaves a message-less
// conversation behind.
func (s *chatService) persistBatch(ctx context.Context, scope model.Scope, conversationID string, batch []IncomingMessage) ([]model.Message, error) {
	if len(batch) == 0 {
		return nil, nil
	}

	if err := s.ensureConversation(ctx, scope, conversationID); err != nil {
		return nil, err
	}

	persisted := make([]model.Message, 0, len(batch))
	for _, in := range batch {
		timestamp := time.Now().UTC()
		if in.Timestamp != nil {
			timestamp = *in.Timestamp
		}

		msg := model.Message{
			ID:             id.New(),
			OwnerScope:     scope.Key(),
			ConversationID: conversationID,
			Role:           in.Role,
			Content:        in.Content,
			Timestamp:      timestamp,
		}
		if err := s.messages.Create(ctx, &msg); err != nil {
			return nil, fmt.Errorf("persisting submitted message: %w", err)
		}
		persisted = append(persisted, msg)
	}

	return persisted, nil
}

// loadWindow fetches the most recent prior turns by (timestamp, id)
// descending and re-sorts them chronologically. The just-persisted batch is
// excluded so it joins the context exactly once, through the batch slice.
func (s *chatService) loadWindow(ctx context.Context, scope model.Scope, conversationID string, persisted []model.Message) ([]llm.Message, error) {
	excludeIDs := make([]int64, len(persisted))
	for i, msg := range persisted {
		excludeIDs[i] = msg.ID
	}

	recent, err := s.messages.ListRecent(ctx, scope.Key(), conversationID, historyWindowSize, excludeIDs)
	if err != nil {
		return nil, fmt.Errorf("loading history window: %w", err)
	}

	// recent is newest-first; the provider wants chronological order.
	window := make([]llm.Message, len(recent))
	for i, msg := range recent {
		window[len(recent)-1-i] = llm.Message{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	}

	return window, nil
}

// complete concatenates the history window with the truncated batch and
// calls the provider. The concatenation is not deduplicated: a batch that
// overlaps previously persisted turns repeats them.
func (s *chatService) complete(ctx context.Context, window []llm.Message, batch []IncomingMessage) (*llm.Completion, error) {
	if len(batch) > batchWindowSize {
		batch = batch[len(batch)-batchWindowSize:]
	}

	sequence := make([]llm.Message, 0, len(window)+len(batch))
	sequence = append(sequence, window...)
	for _, in := range batch {
		sequence = append(sequence, llm.Message{
			Role:    string(in.Role),
			Content: in.Content,
		})
	}

	completion, err := s.completions.Complete(ctx, sequence)
	if err != nil {
		slog.ErrorContext(ctx, "completion provider call failed", "error", err)
		return nil, ErrUpstream
	}
	if len(completion.Choices) == 0 {
		slog.ErrorContext(ctx, "completion provider returned no choices", "model", completion.Model)
		return nil, ErrUpstream
	}

	return completion, nil
}

func (s *chatService) ensureConversation(ctx context.Context, scope model.Scope, conversationID string) error {
	conv := &model.Conversation{
		ID:         id.New(),
		OwnerScope: scope.Key(),
		ExternalID: conversationID,
	}
	if err := s.conversations.Upsert(ctx, conv); err != nil {
		return fmt.Errorf("upserting conversation: %w", err)
	}
	return nil
}

// persistReply stores the assistant turn. ensureConversation covers the
// empty-batch case, where persistBatch created no row.
func (s *chatService) persistReply(ctx context.Context, scope model.Scope, conversationID string, completion *llm.Completion, ensureConversation bool) error {
	if ensureConversation {
		if err := s.ensureConversation(ctx, scope, conversationID); err != nil {
			return err
		}
	}

	reply := completion.Choices[0].Message

	msg := model.Message{
		ID:             id.New(),
		OwnerScope:     scope.Key(),
		ConversationID: conversationID,
		Role:           model.RoleAssistant,
		Content:        reply.Content,
		Timestamp:      time.Now().UTC(),
	}
	if err := s.messages.Create(ctx, &msg); err != nil {
		return fmt.Errorf("persisting assistant reply: %w", err)
	}

	slog.InfoContext(ctx, "chat turn completed",
		"model", completion.Model,
		"reply_preview", logger.Truncate(reply.Content, 80),
	)

	return nil
}
