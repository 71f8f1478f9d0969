package chat

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"orgchat/internal/models/chat"
)

type IndexRepository interface {
	// Upsert writes the projection row for the conversation, inserting or
	// overwriting by conversation_id. Never produces a duplicate row, which
	// makes concurrent repair passes safe.
	Upsert(ctx context.Context, conversationID, lastMessage string, at time.Time) error
	FindByConversation(ctx context.Context, conversationID string) (*chat.ConversationIndex, error)
	FindByConversations(ctx context.Context, conversationIDs []string) ([]chat.ConversationIndex, error)
	DeleteByConversation(ctx context.Context, conversationID string) error
}

type indexRepositoryImpl struct {
	db *gorm.DB
}

func NewIndexRepository(db *gorm.DB) IndexRepository {
	return &indexRepositoryImpl{db: db}
}

func (r *indexRepositoryImpl) Upsert(ctx context.Context, conversationID, lastMessage string, at time.Time) error {
	row := chat.ConversationIndex{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		LastMessage:    &lastMessage,
		LastMessageAt:  &at,
		UpdatedAt:      time.Now(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "conversation_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"last_message", "last_message_at", "updated_at"}),
		}).
		Create(&row).Error
}

func (r *indexRepositoryImpl) FindByConversation(ctx context.Context, conversationID string) (*chat.ConversationIndex, error) {
	var row chat.ConversationIndex
	err := r.db.WithContext(ctx).First(&row, "conversation_id = ?", conversationID).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *indexRepositoryImpl) FindByConversations(ctx context.Context, conversationIDs []string) ([]chat.ConversationIndex, error) {
	if len(conversationIDs) == 0 {
		return nil, nil
	}
	var rows []chat.ConversationIndex
	err := r.db.WithContext(ctx).
		Where("conversation_id IN ?", conversationIDs).
		Find(&rows).Error
	return rows, err
}

func (r *indexRepositoryImpl) DeleteByConversation(ctx context.Context, conversationID string) error {
	return r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Delete(&chat.ConversationIndex{}).Error
}
