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

var _ = Describe("MessageStore", func() {
	var (
		q        *fakeQuerier
		messages store.MessageStore
		ctx      context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		q = &fakeQuerier{}
		messages = store.NewStores(q).Messages()
	})

	Describe("UpdateContent", func() {
		It("matches user-authored messages only, within the owner scope", func() {
			var gotSQL string
			var gotArgs []any
			edited := model.Message{ID: 7, OwnerScope: "user:42", ConversationID: "c1", Role: model.RoleUser, Content: "edited"}
			q.queryRowFn = func(_ context.Context, sql string, args ...any) pgx.Row {
				gotSQL = sql
				gotArgs = args
				return &stubRow{scanFn: messageRow(edited)}
			}

			msg, err := messages.UpdateContent(ctx, "user:42", 7, "edited")
			Expect(err).NotTo(HaveOccurred())
			Expect(msg.Content).To(Equal("edited"))

			Expect(gotSQL).To(ContainSubstring("role = 'user'"))
			Expect(gotSQL).To(ContainSubstring("owner_scope = $2"))
			Expect(gotArgs).To(Equal([]any{int64(7), "user:42", "edited"}))
		})

		It("reports not-found when the row is assistant-authored or absent", func() {
			// the role predicate makes an assistant target scan zero rows
			q.queryRowFn = func(_ context.Context, _ string, _ ...any) pgx.Row {
				return &stubRow{err: pgx.ErrNoRows}
			}

			_, err := messages.UpdateContent(ctx, "user:42", 7, "edited")
			Expect(err).To(MatchError(store.ErrNotFound))
		})
	})

	Describe("ListRecent", func() {
		It("selects newest first by (created_at, id) and excludes the given IDs", func() {
			base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
			var gotSQL string
			var gotArgs []any
			q.queryFn = func(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
				gotSQL = sql
				gotArgs = args
				return &stubRows{rows: []func(dest ...any) error{
					messageRow(model.Message{ID: 2, Role: model.RoleAssistant, Content: "newer", Timestamp: base.Add(time.Minute)}),
					messageRow(model.Message{ID: 1, Role: model.RoleUser, Content: "older", Timestamp: base}),
				}}, nil
			}

			recent, err := messages.ListRecent(ctx, "user:42", "c1", 10, []int64{5, 6})
			Expect(err).NotTo(HaveOccurred())
			Expect(recent).To(HaveLen(2))
			Expect(recent[0].Content).To(Equal("newer"))

			Expect(gotSQL).To(ContainSubstring("ORDER BY created_at DESC, id DESC"))
			Expect(gotSQL).To(ContainSubstring("NOT (id = ANY($3))"))
			Expect(gotArgs).To(Equal([]any{"user:42", "c1", []int64{5, 6}, int32(10)}))
		})

		It("passes an empty exclusion list when none is given", func() {
			var gotArgs []any
			q.queryFn = func(_ context.Context, _ string, args ...any) (pgx.Rows, error) {
				gotArgs = args
				return &stubRows{}, nil
			}

			_, err := messages.ListRecent(ctx, "user:42", "c1", 10, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(gotArgs[2]).To(Equal([]int64{}))
		})
	})

	Describe("ListAll", func() {
		It("reads the conversation in chronological order", func() {
			var gotSQL string
			q.queryFn = func(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
				gotSQL = sql
				return &stubRows{}, nil
			}

			_, err := messages.ListAll(ctx, "user:42", "c1")
			Expect(err).NotTo(HaveOccurred())
			Expect(gotSQL).To(ContainSubstring("ORDER BY created_at ASC, id ASC"))
		})
	})

	Describe("DeleteByConversation", func() {
		It("deletes within the owner scope only and reports the count", func() {
			var gotSQL string
			var gotArgs []any
			q.execFn = func(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
				gotSQL = sql
				gotArgs = args
				return pgconn.NewCommandTag("DELETE 3"), nil
			}

			deleted, err := messages.DeleteByConversation(ctx, "user:42", "c1")
			Expect(err).NotTo(HaveOccurred())
			Expect(deleted).To(Equal(int64(3)))

			Expect(gotSQL).To(ContainSubstring("owner_scope = $1 AND conversation_id = $2"))
			Expect(gotArgs).To(Equal([]any{"user:42", "c1"}))
		})
	})
})
