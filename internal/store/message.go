package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"parley.app/server/internal/model"
)

type messageStore struct {
	q Querier
}

func newMessageStore(q Querier) MessageStore {
	return &messageStore{q: q}
}

const messageColumns = "id, owner_scope, conversation_id, role, content, feedback, created_at"

func (s *messageStore) Create(ctx context.Context, msg *model.Message) error {
	row := s.q.QueryRow(ctx, `
		INSERT INTO messages (id, owner_scope, conversation_id, role, content, feedback, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+messageColumns,
		msg.ID, msg.OwnerScope, msg.ConversationID, msg.Role, msg.Content, msg.Feedback, msg.Timestamp,
	)

	created, err := scanMessage(row)
	if err != nil {
		return err
	}
	*msg = *created
	return nil
}

func (s *messageStore) ListRecent(ctx context.Context, scope, conversationID string, limit int32, excludeIDs []int64) ([]model.Message, error) {
	if excludeIDs == nil {
		excludeIDs = []int64{}
	}

	rows, err := s.q.Query(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE owner_scope = $1 AND conversation_id = $2 AND NOT (id = ANY($3))
		ORDER BY created_at DESC, id DESC
		LIMIT $4`,
		scope, conversationID, excludeIDs, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMessages(rows)
}

func (s *messageStore) ListAll(ctx context.Context, scope, conversationID string) ([]model.Message, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE owner_scope = $1 AND conversation_id = $2
		ORDER BY created_at ASC, id ASC`,
		scope, conversationID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMessages(rows)
}

func (s *messageStore) UpdateContent(ctx context.Context, scope string, id int64, content string) (*model.Message, error) {
	row := s.q.QueryRow(ctx, `
		UPDATE messages
		SET content = $3
		WHERE id = $1 AND owner_scope = $2 AND role = 'user'
		RETURNING `+messageColumns,
		id, scope, content,
	)

	msg, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return msg, nil
}

func (s *messageStore) UpdateFeedback(ctx context.Context, scope string, id int64, feedback model.Feedback) (*model.Message, error) {
	row := s.q.QueryRow(ctx, `
		UPDATE messages
		SET feedback = $3
		WHERE id = $1 AND owner_scope = $2
		RETURNING `+messageColumns,
		id, scope, feedback,
	)

	msg, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return msg, nil
}

func (s *messageStore) DeleteByConversation(ctx context.Context, scope, conversationID string) (int64, error) {
	tag, err := s.q.Exec(ctx, `
		DELETE FROM messages
		WHERE owner_scope = $1 AND conversation_id = $2`,
		scope, conversationID,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *messageStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.q.QueryRow(ctx, `SELECT COUNT(*) FROM messages`).Scan(&count)
	return count, err
}

func (s *messageStore) CountDistinctConversations(ctx context.Context) (int64, error) {
	var count int64
	err := s.q.QueryRow(ctx, `SELECT COUNT(DISTINCT conversation_id) FROM messages`).Scan(&count)
	return count, err
}

func scanMessage(row pgx.Row) (*model.Message, error) {
	var msg model.Message
	if err := row.Scan(
		&msg.ID,
		&msg.OwnerScope,
		&msg.ConversationID,
		&msg.Role,
		&msg.Content,
		&msg.Feedback,
		&msg.Timestamp,
	); err != nil {
		return nil, err
	}
	return &msg, nil
}

func scanMessages(rows pgx.Rows) ([]model.Message, error) {
	var result []model.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *msg)
	}
	return result, rows.Err()
}
