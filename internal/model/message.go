package model

import "time"

// Role identifies who produced a message. Exactly two values; there is no
// system or tool role in persisted history.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Feedback is an optional caller rating on a message.
type Feedback string

const (
	FeedbackPositive Feedback = "positive"
	FeedbackNegative Feedback = "negative"
)

func (f Feedback) Valid() bool {
	return f == FeedbackPositive || f == FeedbackNegative
}

// Message is a single persisted chat turn. A conversation is the set of all
// messages sharing (OwnerScope, ConversationID); it has no existence beyond
// that aggregate plus its Conversation row.
//
// IDs are snowflakes: store-assigned, immutable and time-ordered, which makes
// (Timestamp, ID) a deterministic ordering even when timestamps collide.
type Message struct {
	ID             int64     `json:"id"`
	OwnerScope     string    `json:"-"`
	ConversationID string    `json:"conversationId"`
	Role           Role      `json:"role"`
	Content        string    `json:"content"`
	Feedback       *Feedback `json:"feedback,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}
