package service

import (
	"context"

	"github.com/jackc/pgx/v5"

	"parley.app/server/core/db"
	"parley.app/server/internal/store"
)

// StoreProvider exposes the stores a transactional function may touch.
// *store.Stores satisfies it.
type StoreProvider interface {
	Messages() store.MessageStore
	Conversations() store.ConversationStore
}

// TxRunner executes a function against transactional stores. Mutations that
// span the messages and conversations tables go through it.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(stores StoreProvider) error) error
}

type txRunner struct {
	db *db.DB
}

func NewTxRunner(database *db.DB) TxRunner {
	return &txRunner{db: database}
}

func (r *txRunner) WithTx(ctx context.Context, fn func(stores StoreProvider) error) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		return fn(store.NewStores(tx))
	})
}
