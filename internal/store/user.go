package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"parley.app/server/internal/model"
)

type userStore struct {
	q Querier
}

func newUserStore(q Querier) UserStore {
	return &userStore{q: q}
}

const userColumns = "id, name, email, avatar_url, workos_id, role, created_at, updated_at"

func (s *userStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	row := s.q.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1`,
		id,
	)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpsertByWorkOSID creates the user on first login and refreshes the profile
// on subsequent logins. The stored role is never overwritten by a login.
func (s *userStore) UpsertByWorkOSID(ctx context.Context, user *model.User) error {
	row := s.q.QueryRow(ctx, `
		INSERT INTO users (id, name, email, avatar_url, workos_id, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (workos_id)
		DO UPDATE SET name = EXCLUDED.name,
		              email = EXCLUDED.email,
		              avatar_url = EXCLUDED.avatar_url,
		              updated_at = now()
		RETURNING `+userColumns,
		user.ID, user.Name, user.Email, user.AvatarURL, user.WorkOSID, model.UserRoleMember,
	)

	upserted, err := scanUser(row)
	if err != nil {
		return err
	}
	*user = *upserted
	return nil
}

func (s *userStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.q.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.AvatarURL,
		&user.WorkOSID,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
