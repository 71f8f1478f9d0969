package chat

import "time"

type MessageAttachment struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	MessageID   string    `gorm:"index;not null" json:"message_id"`
	UploaderID  string    `gorm:"index" json:"uploader_id"`
	FileName    string    `json:"file_name"`
	MimeType    string    `json:"mime_type"`
	Size        int64     `json:"size"`
	URL         string    `json:"url"`
	StoragePath string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

func (MessageAttachment) TableName() string {
	return "chat.message_attachments"
}
