package store

import (
	"context"

	"github.com/jackc/pgx/v5"

	"parley.app/server/internal/model"
)

type conversationStore struct {
	q Querier
}

func newConversationStore(q Querier) ConversationStore {
	return &conversationStore{q: q}
}

const conversationColumns = "id, owner_scope, external_id, title, created_at, updated_at"

func (s *conversationStore) Upsert(ctx context.Context, conv *model.Conversation) error {
	row := s.q.QueryRow(ctx, `
		INSERT INTO conversations (id, owner_scope, external_id, title)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (owner_scope, external_id)
		DO UPDATE SET updated_at = now()
		RETURNING `+conversationColumns,
		conv.ID, conv.OwnerScope, conv.ExternalID, conv.Title,
	)

	upserted, err := scanConversation(row)
	if err != nil {
		return err
	}
	*conv = *upserted
	return nil
}

func (s *conversationStore) Rename(ctx context.Context, scope, externalID, title string) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE conversations
		SET title = $3, updated_at = now()
		WHERE owner_scope = $1 AND external_id = $2`,
		scope, externalID, title,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *conversationStore) Delete(ctx context.Context, scope, externalID string) error {
	_, err := s.q.Exec(ctx, `
		DELETE FROM conversations
		WHERE owner_scope = $1 AND external_id = $2`,
		scope, externalID,
	)
	return err
}

func (s *conversationStore) ListSummaries(ctx context.Context, scope string) ([]model.ConversationSummary, error) {
	rows, err := s.q.Query(ctx, `
		SELECT m.conversation_id,
		       c.title,
		       (ARRAY_AGG(m.content ORDER BY m.created_at DESC, m.id DESC))[1] AS last_message,
		       MAX(m.created_at) AS last_timestamp,
		       COUNT(*) AS message_count
		FROM messages m
		LEFT JOIN conversations c
		  ON c.owner_scope = m.owner_scope AND c.external_id = m.conversation_id
		WHERE m.owner_scope = $1
		GROUP BY m.conversation_id, c.title
		ORDER BY last_timestamp DESC`,
		scope,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.ConversationSummary
	for rows.Next() {
		var summary model.ConversationSummary
		if err := rows.Scan(
			&summary.ConversationID,
			&summary.Title,
			&summary.LastMessage,
			&summary.LastTimestamp,
			&summary.MessageCount,
		); err != nil {
			return nil, err
		}
		result = append(result, summary)
	}
	return result, rows.Err()
}

func scanConversation(row pgx.Row) (*model.Conversation, error) {
	var conv model.Conversation
	if err := row.Scan(
		&conv.ID,
		&conv.OwnerScope,
		&conv.ExternalID,
		&conv.Title,
		&conv.CreatedAt,
		&conv.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &conv, nil
}
