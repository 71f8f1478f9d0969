package chat

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"orgchat/internal/models/chat"
)

type PollRepository interface {
	CreateOptions(ctx context.Context, options []chat.PollOption) error
	FindOption(ctx context.Context, optionID string) (*chat.PollOption, error)
	GetOptionsByMessage(ctx context.Context, messageID string) ([]chat.PollOption, error)
	// AddVote inserts the vote row; a duplicate (option, user) insert is
	// absorbed as not-added.
	AddVote(ctx context.Context, vote *chat.PollVote) (bool, error)
	// RemoveVote deletes the user's vote on one option and reports whether
	// one existed.
	RemoveVote(ctx context.Context, optionID, userID string) (bool, error)
	// RemoveVotesByMessage clears every vote the user holds across all
	// options of the poll. Single-choice exclusivity is enforced here, at
	// write time.
	RemoveVotesByMessage(ctx context.Context, messageID, userID string) error
	GetVotesByMessage(ctx context.Context, messageID string) ([]chat.PollVote, error)
	DeleteByMessage(ctx context.Context, messageID string) error
}

type pollRepositoryImpl struct {
	db *gorm.DB
}

func NewPollRepository(db *gorm.DB) PollRepository {
	return &pollRepositoryImpl{db: db}
}

func (r *pollRepositoryImpl) CreateOptions(ctx context.Context, options []chat.PollOption) error {
	if len(options) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&options).Error
}

func (r *pollRepositoryImpl) FindOption(ctx context.Context, optionID string) (*chat.PollOption, error) {
	var opt chat.PollOption
	err := r.db.WithContext(ctx).First(&opt, "id = ?", optionID).Error
	if err != nil {
		return nil, err
	}
	return &opt, nil
}

func (r *pollRepositoryImpl) GetOptionsByMessage(ctx context.Context, messageID string) ([]chat.PollOption, error) {
	var opts []chat.PollOption
	err := r.db.WithContext(ctx).
		Where("message_id = ?", messageID).
		Preload("Votes").
		Order("position ASC").
		Find(&opts).Error
	return opts, err
}

func (r *pollRepositoryImpl) AddVote(ctx context.Context, vote *chat.PollVote) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(vote)
	if res.Error != nil {
		if isDuplicateKey(res.Error) {
			return false, nil
		}
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *pollRepositoryImpl) RemoveVote(ctx context.Context, optionID, userID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("option_id = ? AND user_id = ?", optionID, userID).
		Delete(&chat.PollVote{})
	return res.RowsAffected > 0, res.Error
}

func (r *pollRepositoryImpl) RemoveVotesByMessage(ctx context.Context, messageID, userID string) error {
	return r.db.WithContext(ctx).
		Where("message_id = ? AND user_id = ?", messageID, userID).
		Delete(&chat.PollVote{}).Error
}

func (r *pollRepositoryImpl) GetVotesByMessage(ctx context.Context, messageID string) ([]chat.PollVote, error) {
	var votes []chat.PollVote
	err := r.db.WithContext(ctx).
		Where("message_id = ?", messageID).
		Find(&votes).Error
	return votes, err
}

func (r *pollRepositoryImpl) DeleteByMessage(ctx context.Context, messageID string) error {
	if err := r.db.WithContext(ctx).
		Where("message_id = ?", messageID).
		Delete(&chat.PollVote{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Where("message_id = ?", messageID).
		Delete(&chat.PollOption{}).Error
}
