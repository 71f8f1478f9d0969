package chat

import (
	"context"
	"time"

	"gorm.io/gorm"

	"orgchat/internal/models/chat"
)

type MessageRepository interface {
	Create(ctx context.Context, msg *chat.Message) error
	FindByID(ctx context.Context, id string) (*chat.Message, error)
	// GetByConversation returns the conversation's messages oldest-first with
	// reactions, attachments and poll options preloaded.
	GetByConversation(ctx context.Context, conversationID string) ([]chat.Message, error)
	LatestInConversation(ctx context.Context, conversationID string) (*chat.Message, error)
	// AppendDeletedFor adds userID to the per-viewer hide list in a single
	// conflict-tolerant statement; a second call for the same user is a no-op.
	AppendDeletedFor(ctx context.Context, messageID, userID string) error
	// Tombstone replaces content and marks the message globally deleted.
	Tombstone(ctx context.Context, messageID, deletedBy, tombstoneText string, at time.Time) error
	DeleteByConversation(ctx context.Context, conversationID string) error
}

type messageRepositoryImpl struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepositoryImpl{db: db}
}

func (r *messageRepositoryImpl) Create(ctx context.Context, msg *chat.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *messageRepositoryImpl) FindByID(ctx context.Context, id string) (*chat.Message, error) {
	var msg chat.Message
	err := r.db.WithContext(ctx).
		Preload("Reactions").
		Preload("Attachments").
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Options.Votes").
		First(&msg, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepositoryImpl) GetByConversation(ctx context.Context, conversationID string) ([]chat.Message, error) {
	var msgs []chat.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Preload("Reactions").
		Preload("Attachments").
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Options.Votes").
		Order("created_at ASC").
		Find(&msgs).Error
	return msgs, err
}

func (r *messageRepositoryImpl) LatestInConversation(ctx context.Context, conversationID string) (*chat.Message, error) {
	var msg chat.Message
	err := r.db.WithContext(ctx).
		Preload("Attachments").
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		First(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepositoryImpl) AppendDeletedFor(ctx context.Context, messageID, userID string) error {
	return r.db.WithContext(ctx).Model(&chat.Message{}).
		Where("id = ? AND (deleted_for IS NULL OR NOT (? = ANY(deleted_for)))", messageID, userID).
		Update("deleted_for", gorm.Expr("array_append(COALESCE(deleted_for, '{}'), ?)", userID)).Error
}

func (r *messageRepositoryImpl) Tombstone(ctx context.Context, messageID, deletedBy, tombstoneText string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&chat.Message{}).
		Where("id = ?", messageID).
		Updates(map[string]interface{}{
			"content":    tombstoneText,
			"deleted_at": at,
			"deleted_by": deletedBy,
		}).Error
}

func (r *messageRepositoryImpl) DeleteByConversation(ctx context.Context, conversationID string) error {
	return r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Delete(&chat.Message{}).Error
}
