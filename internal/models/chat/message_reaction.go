package chat

import "time"

// MessageReaction is one user's emoji reaction to one message. Reactions are
// relational rows rather than a JSON map on the message, so concurrent
// toggles reduce to idempotent row inserts and deletes.
type MessageReaction struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	MessageID string    `gorm:"index;not null;uniqueIndex:idx_message_user_emoji" json:"message_id"`
	UserID    string    `gorm:"not null;uniqueIndex:idx_message_user_emoji" json:"user_id"`
	Emoji     string    `gorm:"type:varchar(16);not null;uniqueIndex:idx_message_user_emoji" json:"emoji"`
	CreatedAt time.Time `json:"created_at"`
}

func (MessageReaction) TableName() string {
	return "chat.message_reactions"
}
