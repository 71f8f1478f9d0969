package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"orgchat/internal/models"
	chatmodels "orgchat/internal/models/chat"
)

// Connect opens the gorm connection. TranslateError is required: the
// conflict-tolerant write paths rely on gorm.ErrDuplicatedKey.
func Connect(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	return db, nil
}

// AutoMigrate creates the chat schema and all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.Exec("CREATE SCHEMA IF NOT EXISTS chat").Error; err != nil {
		return fmt.Errorf("failed to create chat schema: %w", err)
	}

	return db.AutoMigrate(
		&models.User{},
		&models.Notification{},
		&chatmodels.Conversation{},
		&chatmodels.ConversationMember{},
		&chatmodels.Message{},
		&chatmodels.MessageReaction{},
		&chatmodels.MessageAttachment{},
		&chatmodels.PollOption{},
		&chatmodels.PollVote{},
		&chatmodels.ConversationIndex{},
	)
}
