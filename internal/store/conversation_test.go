package store_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"parley.app/server/internal/model"
	"parley.app/server/internal/store"
)

var _ = Describe("ConversationStore", func() {
	var (
		q     *fakeQuerier
		convs store.ConversationStore
		ctx   context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		q = &fakeQuerier{}
		convs = store.NewStores(q).Conversations()
	})

	Describe("Upsert", func() {
		It("keeps the existing row on conflict, touching only updated_at", func() {
			var gotSQL string
			existing := model.Conversation{ID: 1, OwnerScope: "user:42", ExternalID: "c1"}
			q.queryRowFn = func(_ context.Context, sql string, _ ...any) pgx.Row {
				gotSQL = sql
				return &stubRow{scanFn: conversationRow(existing)}
			}

			conv := model.Conversation{ID: 2, OwnerScope: "user:42", ExternalID: "c1"}
			Expect(convs.Upsert(ctx, &conv)).To(Succeed())
			Expect(conv.ID).To(Equal(int64(1)))

			Expect(gotSQL).To(ContainSubstring("ON CONFLICT (owner_scope, external_id)"))
			Expect(gotSQL).To(ContainSubstring("DO UPDATE SET updated_at = now()"))
		})
	})

	Describe("Rename", func() {
		It("updates the title within the owner scope", func() {
			var gotSQL string
			var gotArgs []any
			q.execFn = func(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
				gotSQL = sql
				gotArgs = args
				return pgconn.NewCommandTag("UPDATE 1"), nil
			}

			Expect(convs.Rename(ctx, "user:42", "c1", "Trip planning")).To(Succeed())
			Expect(gotSQL).To(ContainSubstring("owner_scope = $1 AND external_id = $2"))
			Expect(gotArgs).To(Equal([]any{"user:42", "c1", "Trip planning"}))
		})

		It("reports not-found when no row matches", func() {
			q.execFn = func(_ context.Context, _ string, _ ...any) (pgconn.CommandTag, error) {
				return pgconn.NewCommandTag("UPDATE 0"), nil
			}

			Expect(convs.Rename(ctx, "user:42", "c1", "Trip")).To(MatchError(store.ErrNotFound))
		})
	})

	Describe("ListSummaries", func() {
		It("aggregates per conversation, newest activity first, with the latest message", func() {
			now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
			var gotSQL string
			var gotArgs []any
			q.queryFn = func(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
				gotSQL = sql
				gotArgs = args
				return &stubRows{rows: []func(dest ...any) error{
					summaryRow(model.ConversationSummary{ConversationID: "c2", LastMessage: "newest reply", LastTimestamp: now, MessageCount: 2}),
					summaryRow(model.ConversationSummary{ConversationID: "c1", LastMessage: "older reply", LastTimestamp: now.Add(-time.Hour), MessageCount: 5}),
				}}, nil
			}

			summaries, err := convs.ListSummaries(ctx, "user:42")
			Expect(err).NotTo(HaveOccurred())
			Expect(summaries).To(HaveLen(2))
			Expect(summaries[0].ConversationID).To(Equal("c2"))
			Expect(summaries[0].LastMessage).To(Equal("newest reply"))
			Expect(summaries[1].MessageCount).To(Equal(int64(5)))

			// last activity sorts the list; the array head is the newest message
			Expect(gotSQL).To(ContainSubstring("ORDER BY last_timestamp DESC"))
			Expect(gotSQL).To(ContainSubstring("(ARRAY_AGG(m.content ORDER BY m.created_at DESC, m.id DESC))[1]"))
			Expect(gotSQL).To(ContainSubstring("m.owner_scope = $1"))
			Expect(gotArgs).To(Equal([]any{"user:42"}))
		})
	})
})
