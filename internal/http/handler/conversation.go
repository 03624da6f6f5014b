package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"parley.app/server/internal/http/dto"
	"parley.app/server/internal/http/middleware"
	"parley.app/server/internal/model"
	"parley.app/server/internal/service"
)

type ConversationHandler struct {
	conversationService service.ConversationService
}

func NewConversationHandler(conversationService service.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversationService: conversationService}
}

// History returns the most recent messages of a conversation in
// chronological order. `limit` falls back to the service default when absent
// or unparseable.
func (h *ConversationHandler) History(c *gin.Context) {
	ctx := c.Request.Context()
	scope := middleware.GetScope(ctx)

	conversationID := c.Query("conversationId")

	var limit int32
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			slog.WarnContext(ctx, "ignoring invalid history limit", "limit", raw)
		} else {
			limit = int32(parsed)
		}
	}

	messages, err := h.conversationService.History(ctx, scope, conversationID, limit)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load history", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	if messages == nil {
		messages = []model.Message{}
	}

	c.JSON(http.StatusOK, dto.HistoryResponse{Messages: messages})
}

func (h *ConversationHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	scope := middleware.GetScope(ctx)

	summaries, err := h.conversationService.List(ctx, scope)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list conversations", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	if summaries == nil {
		summaries = []model.ConversationSummary{}
	}

	c.JSON(http.StatusOK, dto.ConversationsResponse{Conversations: summaries})
}

func (h *ConversationHandler) UpdateMessage(c *gin.Context) {
	ctx := c.Request.Context()
	scope := middleware.GetScope(ctx)

	var req dto.UpdateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid update request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "messageId is required"})
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content must not be empty"})
		return
	}

	msg, err := h.conversationService.UpdateMessage(ctx, scope, req.MessageID, req.Content)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
			return
		}
		slog.ErrorContext(ctx, "failed to update message", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: msg})
}

func (h *ConversationHandler) Feedback(c *gin.Context) {
	ctx := c.Request.Context()
	scope := middleware.GetScope(ctx)

	var req dto.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid feedback request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "messageId is required"})
		return
	}

	feedback := model.Feedback(req.Feedback)
	if !feedback.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "feedback must be positive or negative"})
		return
	}

	msg, err := h.conversationService.SetFeedback(ctx, scope, req.MessageID, feedback)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
			return
		}
		slog.ErrorContext(ctx, "failed to record feedback", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: msg})
}

func (h *ConversationHandler) Rename(c *gin.Context) {
	ctx := c.Request.Context()
	scope := middleware.GetScope(ctx)
	conversationID := c.Param("id")

	var req dto.RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title must not be empty"})
		return
	}

	if err := h.conversationService.Rename(ctx, scope, conversationID, req.Title); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
			return
		}
		slog.ErrorContext(ctx, "failed to rename conversation", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *ConversationHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	scope := middleware.GetScope(ctx)
	conversationID := c.Param("id")

	if err := h.conversationService.Delete(ctx, scope, conversationID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
			return
		}
		slog.ErrorContext(ctx, "failed to delete conversation", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Export streams the full conversation as a download, either JSON or
// plain text depending on the `format` query parameter.
func (h *ConversationHandler) Export(c *gin.Context) {
	ctx := c.Request.Context()
	scope := middleware.GetScope(ctx)
	conversationID := c.Param("id")

	format := c.DefaultQuery("format", "json")
	if format != "json" && format != "txt" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be json or txt"})
		return
	}

	messages, err := h.conversationService.Export(ctx, scope, conversationID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
			return
		}
		slog.ErrorContext(ctx, "failed to export conversation", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}

	disposition := fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("conversation_%s.%s", conversationID, format))
	c.Header("Content-Disposition", disposition)

	if format == "txt" {
		c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(service.RenderExportText(messages)))
		return
	}

	c.JSON(http.StatusOK, dto.ExportResponse{
		ConversationID: conversationID,
		Messages:       messages,
	})
}
