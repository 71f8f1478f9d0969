package chat

import (
	"context"

	"gorm.io/gorm"

	"orgchat/internal/models/chat"
)

type AttachmentRepository interface {
	CreateMany(ctx context.Context, attachments []chat.MessageAttachment) error
	GetByMessageID(ctx context.Context, messageID string) ([]chat.MessageAttachment, error)
	DeleteByMessageID(ctx context.Context, messageID string) error
}

type attachmentRepositoryImpl struct {
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepositoryImpl{db: db}
}

func (r *attachmentRepositoryImpl) CreateMany(ctx context.Context, attachments []chat.MessageAttachment) error {
	if len(attachments) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&attachments).Error
}

func (r *attachmentRepositoryImpl) GetByMessageID(ctx context.Context, messageID string) ([]chat.MessageAttachment, error) {
	var attachments []chat.MessageAttachment
	err := r.db.WithContext(ctx).
		Where("message_id = ?", messageID).
		Find(&attachments).Error
	return attachments, err
}

func (r *attachmentRepositoryImpl) DeleteByMessageID(ctx context.Context, messageID string) error {
	return r.db.WithContext(ctx).
		Where("message_id = ?", messageID).
		Delete(&chat.MessageAttachment{}).Error
}
