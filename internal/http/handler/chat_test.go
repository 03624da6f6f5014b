package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"parley.app/server/common/llm"
	"parley.app/server/internal/http/handler"
	"parley.app/server/internal/http/middleware"
	"parley.app/server/internal/model"
	"parley.app/server/internal/service"
)

var _ = Describe("ChatHandler", func() {
	var (
		router *gin.Engine
		chat   *mockChatService
		auth   *mockAuthService
		guests *mockGuestService
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		chat = &mockChatService{}
		auth = &mockAuthService{}
		guests = &mockGuestService{}

		router = gin.New()
		router.Use(middleware.ResolveScope(auth, guests, false))
		h := handler.NewChatHandler(chat)
		router.POST("/chat", h.Send)
	})

	postChat := func(body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		for _, cookie := range cookies {
			req.AddCookie(cookie)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	It("returns the provider payload on success", func() {
		chat.sendFn = func(_ context.Context, scope model.Scope, conversationID string, batch []service.IncomingMessage) (*llm.Completion, error) {
			Expect(scope.Kind).To(Equal(model.ScopeKindGuest))
			Expect(conversationID).To(Equal("c1"))
			Expect(batch).To(HaveLen(1))
			Expect(batch[0].Content).To(Equal("hello"))
			return &llm.Completion{
				ID:    "cmpl-1",
				Model: "test-model",
				Choices: []llm.Choice{
					{Message: llm.Message{Role: llm.RoleAssistant, Content: "hi there"}},
				},
			}, nil
		}

		w := postChat(`{"conversationId":"c1","messages":[{"role":"user","content":"hello"}]}`)

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp map[string]any
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp["id"]).To(Equal("cmpl-1"))
	})

	It("mints a guest cookie for anonymous callers", func() {
		w := postChat(`{"messages":[]}`)

		Expect(w.Code).To(Equal(http.StatusOK))
		cookies := w.Result().Cookies()
		var guestCookie *http.Cookie
		for _, cookie := range cookies {
			if cookie.Name == "parley_guest" {
				guestCookie = cookie
			}
		}
		Expect(guestCookie).NotTo(BeNil())
		Expect(guestCookie.Value).To(Equal("guest-token"))
	})

	It("resolves a user scope from a valid session cookie", func() {
		auth.validateSessionFn = func(_ context.Context, sessionID int64) (*model.User, error) {
			Expect(sessionID).To(Equal(int64(1)))
			return &model.User{ID: 42}, nil
		}
		chat.sendFn = func(_ context.Context, scope model.Scope, _ string, _ []service.IncomingMessage) (*llm.Completion, error) {
			Expect(scope.Key()).To(Equal("user:42"))
			return &llm.Completion{
				Model:   "test-model",
				Choices: []llm.Choice{{Message: llm.Message{Role: llm.RoleAssistant, Content: "ok"}}},
			}, nil
		}

		w := postChat(
			`{"messages":[{"role":"user","content":"hello"}]}`,
			&http.Cookie{Name: "parley_session", Value: "1"},
		)

		Expect(w.Code).To(Equal(http.StatusOK))
	})

	It("rejects a body without a messages array", func() {
		w := postChat(`{"conversationId":"c1"}`)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring("messages array is required"))
	})

	It("rejects a message with an unknown role", func() {
		w := postChat(`{"messages":[{"role":"system","content":"x"}]}`)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("rejects a message without content", func() {
		w := postChat(`{"messages":[{"role":"user"}]}`)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("hides upstream failures behind a generic message", func() {
		chat.sendFn = func(_ context.Context, _ model.Scope, _ string, _ []service.IncomingMessage) (*llm.Completion, error) {
			return nil, service.ErrUpstream
		}

		w := postChat(`{"messages":[{"role":"user","content":"hello"}]}`)

		Expect(w.Code).To(Equal(http.StatusInternalServerError))
		Expect(w.Body.String()).To(ContainSubstring("Something went wrong with the AI response"))
		Expect(w.Body.String()).NotTo(ContainSubstring("provider"))
	})
})
