package chat

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// Sender types.
const (
	SenderHuman  = "human"
	SenderSystem = "system"
)

// Message types.
const (
	MessageChat = "chat"
	MessagePoll = "poll"
)

type Message struct {
	ID             string `gorm:"primaryKey;type:uuid" json:"id"`
	ConversationID string `gorm:"index;not null" json:"conversation_id"`
	SenderID       string `gorm:"index;not null" json:"sender_id"`
	SenderType     string `gorm:"default:'human'" json:"sender_type"`
	MessageType    string `gorm:"default:'chat'" json:"message_type"`
	Content        string `gorm:"type:text" json:"content"`

	ReplyToID *string `gorm:"index" json:"reply_to_id,omitempty"`
	// ReplySnapshot is a point-in-time copy of the replied-to message,
	// captured at send and never mutated afterwards, even if the original is
	// edited or deleted.
	ReplySnapshot datatypes.JSON `json:"reply_snapshot,omitempty"`

	// AllowMultiple applies to poll messages only.
	AllowMultiple bool `json:"allow_multiple"`

	// Global tombstone. Once DeletedAt is set the message is terminal:
	// Content holds the tombstone text and dependent rows are cleared.
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	DeletedBy *string    `json:"deleted_by,omitempty"`

	// DeletedFor is the grow-only per-viewer hide list.
	DeletedFor pq.StringArray `gorm:"type:text[]" json:"-"`

	CreatedAt time.Time `json:"created_at"`

	Reactions   []MessageReaction   `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE" json:"reactions,omitempty"`
	Attachments []MessageAttachment `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE" json:"attachments,omitempty"`
	Options     []PollOption        `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE" json:"options,omitempty"`
}

func (Message) TableName() string {
	return "chat.messages"
}

// ReplySnapshotData is the JSON shape stored in Message.ReplySnapshot. Empty
// fields mean the original was unavailable at send time and the UI renders an
// "original unavailable" placeholder.
type ReplySnapshotData struct {
	Content    string `json:"content"`
	SenderName string `json:"sender_name"`
	SenderRole string `json:"sender_role"`
}

// IsTombstoned reports whether the message was deleted for everyone.
func (m *Message) IsTombstoned() bool {
	return m.DeletedAt != nil
}

// HiddenFor reports whether the viewer deleted the message for themselves.
func (m *Message) HiddenFor(userID string) bool {
	for _, id := range m.DeletedFor {
		if id == userID {
			return true
		}
	}
	return false
}
