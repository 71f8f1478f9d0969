package repositories

import (
	"context"

	"gorm.io/gorm"

	"orgchat/internal/models"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	CreateBulk(ctx context.Context, notifications []*models.Notification) error
	FindByID(ctx context.Context, id string) (*models.Notification, error)
	FindByReceiver(ctx context.Context, receiverID string, unreadOnly bool, limit int) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, receiverID, notificationID string) error
	MarkAllAsRead(ctx context.Context, receiverID string) error
	UnreadCount(ctx context.Context, receiverID string) (int64, error)
}

type notificationRepositoryImpl struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepositoryImpl{db: db}
}

func (r *notificationRepositoryImpl) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *notificationRepositoryImpl) CreateBulk(ctx context.Context, notifications []*models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&notifications).Error
}

func (r *notificationRepositoryImpl) FindByID(ctx context.Context, id string) (*models.Notification, error) {
	var n models.Notification
	err := r.db.WithContext(ctx).First(&n, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *notificationRepositoryImpl) FindByReceiver(ctx context.Context, receiverID string, unreadOnly bool, limit int) ([]models.Notification, error) {
	q := r.db.WithContext(ctx).Where("receiver_id = ?", receiverID)
	if unreadOnly {
		q = q.Where("is_read = false")
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var notifications []models.Notification
	err := q.Order("created_at DESC").Find(&notifications).Error
	return notifications, err
}

func (r *notificationRepositoryImpl) MarkAsRead(ctx context.Context, receiverID, notificationID string) error {
	return r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND receiver_id = ?", notificationID, receiverID).
		Update("is_read", true).Error
}

func (r *notificationRepositoryImpl) MarkAllAsRead(ctx context.Context, receiverID string) error {
	return r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("receiver_id = ? AND is_read = false", receiverID).
		Update("is_read", true).Error
}

func (r *notificationRepositoryImpl) UnreadCount(ctx context.Context, receiverID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("receiver_id = ? AND is_read = false", receiverID).
		Count(&count).Error
	return count, err
}
