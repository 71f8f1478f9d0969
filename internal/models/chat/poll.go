package chat

import "time"

// PollOption is one answer of a poll message. Display order is insertion
// order, carried by Position.
type PollOption struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	MessageID string    `gorm:"index;not null" json:"message_id"`
	Text      string    `gorm:"not null" json:"text"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`

	Votes []PollVote `gorm:"foreignKey:OptionID;constraint:OnDelete:CASCADE" json:"votes,omitempty"`
}

func (PollOption) TableName() string {
	return "chat.poll_options"
}

// PollVote is one user's vote on one option. MessageID is denormalized so a
// single-choice poll can clear a user's sibling votes in one statement.
type PollVote struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	OptionID  string    `gorm:"index;not null;uniqueIndex:idx_option_user" json:"option_id"`
	MessageID string    `gorm:"index;not null" json:"message_id"`
	UserID    string    `gorm:"not null;uniqueIndex:idx_option_user" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (PollVote) TableName() string {
	return "chat.poll_votes"
}
