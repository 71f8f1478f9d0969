package chat

import "time"

type ConversationMember struct {
	ID             string    `gorm:"primaryKey;type:uuid" json:"id"`
	ConversationID string    `gorm:"index;not null;uniqueIndex:idx_conversation_user" json:"conversation_id"`
	UserID         string    `gorm:"index;not null;uniqueIndex:idx_conversation_user" json:"user_id"`
	JoinedAt       time.Time `json:"joined_at"`
}

func (ConversationMember) TableName() string {
	return "chat.conversation_members"
}
