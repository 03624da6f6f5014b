package dto

import (
	"time"

	"parley.app/server/internal/model"
)

type ChatRequest struct {
	// Messages must be present (an empty batch is allowed; a missing or
	// non-array field is rejected).
	Messages       []ChatMessage `json:"messages" binding:"dive"`
	ConversationID string        `json:"conversationId"`
}

type ChatMessage struct {
	Role      string     `json:"role" binding:"required,oneof=user assistant"`
	Content   string     `json:"content" binding:"required"`
	Timestamp *time.Time `json:"timestamp"`
}

type HistoryResponse struct {
	Messages []model.Message `json:"messages"`
}

type ConversationsResponse struct {
	Conversations []model.ConversationSummary `json:"conversations"`
}

type UpdateMessageRequest struct {
	MessageID int64  `json:"messageId" binding:"required"`
	Content   string `json:"content"`
}

type FeedbackRequest struct {
	MessageID int64  `json:"messageId" binding:"required"`
	Feedback  string `json:"feedback"`
}

type RenameRequest struct {
	Title string `json:"title"`
}

type MessageResponse struct {
	Message *model.Message `json:"message"`
}

type ExportResponse struct {
	ConversationID string          `json:"conversationId"`
	Messages       []model.Message `json:"messages"`
}
