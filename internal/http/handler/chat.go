package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"parley.app/server/internal/http/dto"
	"parley.app/server/internal/http/middleware"
	"parley.app/server/internal/model"
	"parley.app/server/internal/service"
)

type ChatHandler struct {
	chatService service.ChatService
}

func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Send accepts a batch of chat turns, runs one completion round-trip and
// returns the provider payload.
func (h *ChatHandler) Send(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid chat request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "each message needs a valid role and content"})
		return
	}
	if req.Messages == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "messages array is required"})
		return
	}

	batch := make([]service.IncomingMessage, len(req.Messages))
	for i, msg := range req.Messages {
		batch[i] = service.IncomingMessage{
			Role:      model.Role(msg.Role),
			Content:   msg.Content,
			Timestamp: msg.Timestamp,
		}
	}

	scope := middleware.GetScope(ctx)
	completion, err := h.chatService.Send(ctx, scope, req.ConversationID, batch)
	if err != nil {
		if errors.Is(err, service.ErrUpstream) {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{"message": "Something went wrong with the AI response"},
			})
			return
		}
		slog.ErrorContext(ctx, "chat turn failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}

	c.JSON(http.StatusOK, completion)
}
