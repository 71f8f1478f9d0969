package chat

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"orgchat/internal/models/chat"
)

type ReactionRepository interface {
	// Add inserts the reaction row and reports whether it was new. A
	// duplicate insert racing with another session collapses to the
	// unique-constraint outcome and is returned as (false, nil), not an
	// error.
	Add(ctx context.Context, reaction *chat.MessageReaction) (bool, error)
	// Remove deletes the row and reports whether one existed.
	Remove(ctx context.Context, userID, messageID, emoji string) (bool, error)
	Exists(ctx context.Context, userID, messageID, emoji string) (bool, error)
	GetByMessageID(ctx context.Context, messageID string) ([]chat.MessageReaction, error)
	DeleteByMessageID(ctx context.Context, messageID string) error
}

type reactionRepositoryImpl struct {
	db *gorm.DB
}

func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepositoryImpl{db: db}
}

func (r *reactionRepositoryImpl) Add(ctx context.Context, reaction *chat.MessageReaction) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(reaction)
	if res.Error != nil {
		if isDuplicateKey(res.Error) {
			return false, nil
		}
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *reactionRepositoryImpl) Remove(ctx context.Context, userID, messageID, emoji string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND message_id = ? AND emoji = ?", userID, messageID, emoji).
		Delete(&chat.MessageReaction{})
	return res.RowsAffected > 0, res.Error
}

func (r *reactionRepositoryImpl) Exists(ctx context.Context, userID, messageID, emoji string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&chat.MessageReaction{}).
		Where("user_id = ? AND message_id = ? AND emoji = ?", userID, messageID, emoji).
		Count(&count).Error
	return count > 0, err
}

func (r *reactionRepositoryImpl) GetByMessageID(ctx context.Context, messageID string) ([]chat.MessageReaction, error) {
	var reactions []chat.MessageReaction
	err := r.db.WithContext(ctx).
		Where("message_id = ?", messageID).
		Order("created_at ASC").
		Find(&reactions).Error
	return reactions, err
}

func (r *reactionRepositoryImpl) DeleteByMessageID(ctx context.Context, messageID string) error {
	return r.db.WithContext(ctx).
		Where("message_id = ?", messageID).
		Delete(&chat.MessageReaction{}).Error
}
