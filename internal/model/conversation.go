package model

import "time"

// Conversation is the first-class aggregate record behind a conversation:
// its identity within an owner scope plus its mutable display title. The
// row is created when the first message of the (scope, external id) pair is
// persisted and removed when the conversation is deleted.
type Conversation struct {
	ID         int64     `json:"id"`
	OwnerScope string    `json:"-"`
	ExternalID string    `json:"conversationId"`
	Title      *string   `json:"title"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ConversationSummary is one row of the conversation list view, aggregated
// over the scope's messages and sorted by LastTimestamp descending.
type ConversationSummary struct {
	ConversationID string    `json:"conversationId"`
	Title          *string   `json:"title"`
	LastMessage    string    `json:"lastMessage"`
	LastTimestamp  time.Time `json:"lastTimestamp"`
	MessageCount   int64     `json:"messageCount"`
}
