package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"orgchat/internal/logger"
	"orgchat/internal/models"
	modelChat "orgchat/internal/models/chat"
	"orgchat/internal/repositories"
)

type NotificationService interface {
	// FanOutMessage emits one notification per conversation member except the
	// sender. Best effort: failures are logged and swallowed, never
	// propagated to the originating send.
	FanOutMessage(ctx context.Context, msg *modelChat.Message, memberIDs []string)

	ListForUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) error
	UnreadCount(ctx context.Context, userID string) (int64, error)
}

type notificationService struct {
	repo          repositories.NotificationRepository
	previewLength int
}

func NewNotificationService(repo repositories.NotificationRepository, previewLength int) NotificationService {
	if previewLength <= 0 {
		previewLength = 30
	}
	return &notificationService{repo: repo, previewLength: previewLength}
}

func (s *notificationService) FanOutMessage(ctx context.Context, msg *modelChat.Message, memberIDs []string) {
	preview := buildPreview(msg, s.previewLength)

	notifications := make([]*models.Notification, 0, len(memberIDs))
	for _, receiverID := range memberIDs {
		if receiverID == msg.SenderID {
			continue
		}
		notifications = append(notifications, &models.Notification{
			ID:             uuid.New().String(),
			ReceiverID:     receiverID,
			SenderID:       msg.SenderID,
			ConversationID: msg.ConversationID,
			Type:           models.NotificationTypeMessage,
			Message:        preview,
			IsRead:         false,
			CreatedAt:      time.Now(),
		})
	}

	if err := s.repo.CreateBulk(ctx, notifications); err != nil {
		logger.WithError(err).Warn("notification fan-out failed",
			"conversation_id", msg.ConversationID,
			"receivers", len(notifications))
	}
}

// buildPreview truncates content to limit runes with an ellipsis, or falls
// back to an attachment marker when there is no text.
func buildPreview(msg *modelChat.Message, limit int) string {
	if msg.Content == "" {
		if len(msg.Attachments) > 0 {
			return "[attachment]"
		}
		return ""
	}
	runes := []rune(msg.Content)
	if len(runes) <= limit {
		return msg.Content
	}
	return string(runes[:limit]) + "…"
}

func (s *notificationService) ListForUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]models.Notification, error) {
	return s.repo.FindByReceiver(ctx, userID, unreadOnly, limit)
}

func (s *notificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	return s.repo.MarkAsRead(ctx, userID, notificationID)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.repo.UnreadCount(ctx, userID)
}
