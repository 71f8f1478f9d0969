package chat

import "time"

// ConversationIndex is the denormalized sidebar projection: the most recent
// message preview per conversation, keyed uniquely by conversation. It is
// derived and non-authoritative; the read path repairs broken rows lazily.
type ConversationIndex struct {
	ID             string     `gorm:"primaryKey;type:uuid" json:"id"`
	ConversationID string     `gorm:"uniqueIndex;not null" json:"conversation_id"`
	LastMessage    *string    `json:"last_message"`
	LastMessageAt  *time.Time `json:"last_message_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (ConversationIndex) TableName() string {
	return "chat.conversation_index"
}

// Broken reports the inconsistency the self-healing pass repairs: a recorded
// message time without the preview text (write race or migration artifact).
func (ci *ConversationIndex) Broken() bool {
	return ci.LastMessageAt != nil && (ci.LastMessage == nil || *ci.LastMessage == "")
}
