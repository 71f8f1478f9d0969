package chat

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"orgchat/internal/models/chat"
)

type ConversationRepository interface {
	Create(ctx context.Context, conv *chat.Conversation) error
	// CreateIfAbsent inserts the conversation unless its unique key
	// (direct_key or org_wide_key) already exists, and reports whether a row
	// was written. Losing the race is not an error.
	CreateIfAbsent(ctx context.Context, conv *chat.Conversation) (bool, error)
	FindByID(ctx context.Context, id string) (*chat.Conversation, error)
	FindByDirectKey(ctx context.Context, key string) (*chat.Conversation, error)
	FindByOrgWideKey(ctx context.Context, orgID string) (*chat.Conversation, error)
	FindAllByUser(ctx context.Context, userID string) ([]chat.Conversation, error)
	UpdateAdminIDs(ctx context.Context, conversationID string, adminIDs []string) error
	Delete(ctx context.Context, conversationID string) error
}

type conversationRepositoryImpl struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepositoryImpl{db: db}
}

func (r *conversationRepositoryImpl) Create(ctx context.Context, conv *chat.Conversation) error {
	return r.db.WithContext(ctx).Create(conv).Error
}

func (r *conversationRepositoryImpl) CreateIfAbsent(ctx context.Context, conv *chat.Conversation) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(conv)
	if res.Error != nil {
		if isDuplicateKey(res.Error) {
			return false, nil
		}
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *conversationRepositoryImpl) FindByID(ctx context.Context, id string) (*chat.Conversation, error) {
	var conv chat.Conversation
	err := r.db.WithContext(ctx).Preload("Members").First(&conv, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *conversationRepositoryImpl) FindByDirectKey(ctx context.Context, key string) (*chat.Conversation, error) {
	var conv chat.Conversation
	err := r.db.WithContext(ctx).Preload("Members").
		First(&conv, "direct_key = ?", key).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *conversationRepositoryImpl) FindByOrgWideKey(ctx context.Context, orgID string) (*chat.Conversation, error) {
	var conv chat.Conversation
	err := r.db.WithContext(ctx).Preload("Members").
		First(&conv, "org_wide_key = ?", orgID).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *conversationRepositoryImpl) FindAllByUser(ctx context.Context, userID string) ([]chat.Conversation, error) {
	var convs []chat.Conversation
	err := r.db.WithContext(ctx).
		Joins("JOIN chat.conversation_members cm ON cm.conversation_id = conversations.id").
		Where("cm.user_id = ?", userID).
		Preload("Members").
		Find(&convs).Error
	return convs, err
}

func (r *conversationRepositoryImpl) UpdateAdminIDs(ctx context.Context, conversationID string, adminIDs []string) error {
	return r.db.WithContext(ctx).Model(&chat.Conversation{}).
		Where("id = ?", conversationID).
		Update("admin_ids", toStringArray(adminIDs)).Error
}

func (r *conversationRepositoryImpl) Delete(ctx context.Context, conversationID string) error {
	return r.db.WithContext(ctx).Where("id = ?", conversationID).Delete(&chat.Conversation{}).Error
}
