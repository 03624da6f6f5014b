package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"parley.app/server/internal/http/handler"
	"parley.app/server/internal/http/middleware"
	"parley.app/server/internal/model"
	"parley.app/server/internal/service"
)

var _ = Describe("ConversationHandler", func() {
	var (
		router *gin.Engine
		convs  *mockConversationService
		admin  *mockAdminService
		auth   *mockAuthService
		guests *mockGuestService
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		convs = &mockConversationService{}
		admin = &mockAdminService{}
		auth = &mockAuthService{}
		guests = &mockGuestService{}
		auth.validateSessionFn = func(_ context.Context, _ int64) (*model.User, error) {
			return &model.User{ID: 42}, nil
		}

		router = gin.New()
		router.Use(middleware.ResolveScope(auth, guests, false))

		h := handler.NewConversationHandler(convs)
		ah := handler.NewAdminHandler(admin)
		user := router.Group("")
		user.Use(middleware.RequireUser())
		{
			user.GET("/history", h.History)
			user.GET("/conversations", h.List)
			user.PUT("/update-message", h.UpdateMessage)
			user.POST("/feedback", h.Feedback)
			user.DELETE("/conversations/:id", h.Delete)
			user.PUT("/conversations/:id/rename", h.Rename)
			user.GET("/conversations/:id/export", h.Export)
			user.GET("/stats", ah.Stats)
		}
	})

	do := func(method, target, body string) *httptest.ResponseRecorder {
		var reader *bytes.Buffer
		if body == "" {
			reader = bytes.NewBuffer(nil)
		} else {
			reader = bytes.NewBufferString(body)
		}
		req := httptest.NewRequest(method, target, reader)
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(&http.Cookie{Name: "parley_session", Value: "1"})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	It("refuses guest callers on every conversation route", func() {
		req := httptest.NewRequest(http.MethodGet, "/history", nil)
		req.AddCookie(&http.Cookie{Name: "parley_guest", Value: "tok"})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})

	Describe("History", func() {
		It("passes conversation id and limit through", func() {
			convs.historyFn = func(_ context.Context, scope model.Scope, conversationID string, limit int32) ([]model.Message, error) {
				Expect(scope.Key()).To(Equal("user:42"))
				Expect(conversationID).To(Equal("c1"))
				Expect(limit).To(Equal(int32(20)))
				return []model.Message{{ID: 1, Role: model.RoleUser, Content: "hello"}}, nil
			}

			w := do(http.MethodGet, "/history?conversationId=c1&limit=20", "")

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp map[string][]model.Message
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["messages"]).To(HaveLen(1))
		})

		It("ignores an unparseable limit", func() {
			convs.historyFn = func(_ context.Context, _ model.Scope, _ string, limit int32) ([]model.Message, error) {
				Expect(limit).To(BeZero())
				return nil, nil
			}

			w := do(http.MethodGet, "/history?limit=abc", "")

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring(`"messages":[]`))
		})
	})

	Describe("List", func() {
		It("returns summaries sorted by the service", func() {
			now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
			convs.listFn = func(_ context.Context, _ model.Scope) ([]model.ConversationSummary, error) {
				return []model.ConversationSummary{
					{ConversationID: "c2", LastMessage: "newer", LastTimestamp: now, MessageCount: 2},
					{ConversationID: "c1", LastMessage: "older", LastTimestamp: now.Add(-time.Hour), MessageCount: 5},
				}, nil
			}

			w := do(http.MethodGet, "/conversations", "")

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp map[string][]model.ConversationSummary
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["conversations"]).To(HaveLen(2))
			Expect(resp["conversations"][0].ConversationID).To(Equal("c2"))
		})
	})

	Describe("UpdateMessage", func() {
		It("rejects blank content", func() {
			w := do(http.MethodPut, "/update-message", `{"messageId":7,"content":"   "}`)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("maps a missing message to 404", func() {
			convs.updateMessageFn = func(_ context.Context, _ model.Scope, _ int64, _ string) (*model.Message, error) {
				return nil, service.ErrNotFound
			}

			w := do(http.MethodPut, "/update-message", `{"messageId":7,"content":"edited"}`)
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})

		It("returns the updated message", func() {
			convs.updateMessageFn = func(_ context.Context, _ model.Scope, messageID int64, content string) (*model.Message, error) {
				return &model.Message{ID: messageID, Role: model.RoleUser, Content: content}, nil
			}

			w := do(http.MethodPut, "/update-message", `{"messageId":7,"content":"edited"}`)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring("edited"))
		})
	})

	Describe("Feedback", func() {
		It("rejects values other than positive or negative", func() {
			w := do(http.MethodPost, "/feedback", `{"messageId":7,"feedback":"meh"}`)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("records valid feedback", func() {
			convs.setFeedbackFn = func(_ context.Context, _ model.Scope, messageID int64, feedback model.Feedback) (*model.Message, error) {
				Expect(feedback).To(Equal(model.FeedbackNegative))
				fb := feedback
				return &model.Message{ID: messageID, Feedback: &fb}, nil
			}

			w := do(http.MethodPost, "/feedback", `{"messageId":7,"feedback":"negative"}`)
			Expect(w.Code).To(Equal(http.StatusOK))
		})
	})

	Describe("Rename", func() {
		It("rejects a blank title", func() {
			w := do(http.MethodPut, "/conversations/c1/rename", `{"title":"  "}`)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("maps an unknown conversation to 404", func() {
			convs.renameFn = func(_ context.Context, _ model.Scope, _, _ string) error {
				return service.ErrNotFound
			}

			w := do(http.MethodPut, "/conversations/c1/rename", `{"title":"Trip"}`)
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("Delete", func() {
		It("maps an unknown conversation to 404", func() {
			convs.deleteFn = func(_ context.Context, _ model.Scope, _ string) error {
				return service.ErrNotFound
			}

			w := do(http.MethodDelete, "/conversations/c1", "")
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})

		It("confirms a successful delete", func() {
			convs.deleteFn = func(_ context.Context, _ model.Scope, conversationID string) error {
				Expect(conversationID).To(Equal("c1"))
				return nil
			}

			w := do(http.MethodDelete, "/conversations/c1", "")
			Expect(w.Code).To(Equal(http.StatusOK))
		})
	})

	Describe("Export", func() {
		exportMessages := []model.Message{
			{ID: 1, Role: model.RoleUser, Content: "hello", Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
			{ID: 2, Role: model.RoleAssistant, Content: "hi", Timestamp: time.Date(2026, 3, 1, 12, 0, 5, 0, time.UTC)},
		}

		It("returns JSON with a download disposition by default", func() {
			convs.exportFn = func(_ context.Context, _ model.Scope, conversationID string) ([]model.Message, error) {
				return exportMessages, nil
			}

			w := do(http.MethodGet, "/conversations/c1/export", "")

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("Content-Disposition")).To(Equal(`attachment; filename="conversation_c1.json"`))
			Expect(w.Body.String()).To(ContainSubstring(`"conversationId":"c1"`))
		})

		It("renders plain text when asked for txt", func() {
			convs.exportFn = func(_ context.Context, _ model.Scope, _ string) ([]model.Message, error) {
				return exportMessages, nil
			}

			w := do(http.MethodGet, "/conversations/c1/export?format=txt", "")

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("Content-Type")).To(ContainSubstring("text/plain"))
			Expect(w.Header().Get("Content-Disposition")).To(Equal(`attachment; filename="conversation_c1.txt"`))
			Expect(w.Body.String()).To(ContainSubstring("2026-03-01T12:00:00Z - USER: hello"))
		})

		It("rejects unknown formats", func() {
			w := do(http.MethodGet, "/conversations/c1/export?format=xml", "")
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("maps an empty conversation to 404", func() {
			w := do(http.MethodGet, "/conversations/c1/export", "")
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("Stats", func() {
		It("refuses non-admin users", func() {
			admin.statsFn = func(_ context.Context, _ int64) (*service.UsageStats, error) {
				return nil, service.ErrForbidden
			}

			w := do(http.MethodGet, "/stats", "")
			Expect(w.Code).To(Equal(http.StatusForbidden))
		})

		It("returns totals for admins", func() {
			admin.statsFn = func(_ context.Context, userID int64) (*service.UsageStats, error) {
				Expect(userID).To(Equal(int64(42)))
				return &service.UsageStats{TotalUsers: 3, TotalMessages: 10, TotalConversations: 2}, nil
			}

			w := do(http.MethodGet, "/stats", "")
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring(`"totalMessages":10`))
		})
	})
})
