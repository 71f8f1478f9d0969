package models

import "time"

// NotificationTypeMessage marks notifications emitted by the send fan-out.
const NotificationTypeMessage = "new_message"

// Notification is a fire-and-forget record; its absence never implies the
// originating send failed.
type Notification struct {
	ID             string    `gorm:"primaryKey;type:uuid" json:"id"`
	ReceiverID     string    `gorm:"index;not null" json:"receiver_id"`
	SenderID       string    `gorm:"index" json:"sender_id"`
	ConversationID string    `gorm:"index" json:"conversation_id"`
	Type           string    `gorm:"not null" json:"type"`
	Message        string    `json:"message"` // truncated preview, not full content
	IsRead         bool      `gorm:"default:false;index" json:"is_read"`
	CreatedAt      time.Time `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
