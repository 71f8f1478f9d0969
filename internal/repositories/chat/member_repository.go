package chat

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"orgchat/internal/models/chat"
)

type MemberRepository interface {
	// Add inserts the membership if absent. Duplicate joins are not errors.
	Add(ctx context.Context, member *chat.ConversationMember) error
	CreateMany(ctx context.Context, members []chat.ConversationMember) error
	IsMember(ctx context.Context, userID, conversationID string) (bool, error)
	GetMembers(ctx context.Context, conversationID string) ([]chat.ConversationMember, error)
	DeleteByConversation(ctx context.Context, conversationID string) error
}

type memberRepositoryImpl struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepositoryImpl{db: db}
}

func (r *memberRepositoryImpl) Add(ctx context.Context, member *chat.ConversationMember) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(member).Error
	if err != nil && isDuplicateKey(err) {
		return nil
	}
	return err
}

func (r *memberRepositoryImpl) CreateMany(ctx context.Context, members []chat.ConversationMember) error {
	if len(members) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&members).Error
	if err != nil && isDuplicateKey(err) {
		return nil
	}
	return err
}

func (r *memberRepositoryImpl) IsMember(ctx context.Context, userID, conversationID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&chat.ConversationMember{}).
		Where("user_id = ? AND conversation_id = ?", userID, conversationID).
		Count(&count).Error
	return count > 0, err
}

func (r *memberRepositoryImpl) GetMembers(ctx context.Context, conversationID string) ([]chat.ConversationMember, error) {
	var members []chat.ConversationMember
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("joined_at ASC").
		Find(&members).Error
	return members, err
}

func (r *memberRepositoryImpl) DeleteByConversation(ctx context.Context, conversationID string) error {
	return r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Delete(&chat.ConversationMember{}).Error
}
