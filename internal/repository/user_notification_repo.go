package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/engagekit/engage-go-api/internal/models"
)

// UserNotificationRepository handles persistence for in-app notifications.
type UserNotificationRepository interface {
	Create(ctx context.Context, notification *models.UserNotification) error
	CreateBatch(ctx context.Context, notifications []models.UserNotification) error
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.UserNotification, error)
	CountUnread(ctx context.Context, userID uint) (int64, error)
	MarkRead(ctx context.Context, id, userID uint) (models.UserNotification, error)
}

type userNotificationRepository struct {
	db *gorm.DB
}

// NewUserNotificationRepository constructs a repository backed by GORM.
func NewUserNotificationRepository(db *gorm.DB) UserNotificationRepository {
	return &userNotificationRepository{db: db}
}

func (r *userNotificationRepository) Create(ctx context.Context, notification *models.UserNotification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *userNotificationRepository) CreateBatch(ctx context.Context, notifications []models.UserNotification) error {
	if len(notifications) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&notifications).Error
}

func (r *userNotificationRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.UserNotification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var notifications []models.UserNotification
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&notifications).Error; err != nil {
		return nil, err
	}

	return notifications, nil
}

func (r *userNotificationRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.UserNotification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *userNotificationRepository) MarkRead(ctx context.Context, id, userID uint) (models.UserNotification, error) {
	var notification models.UserNotification
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&notification).Error; err != nil {
		return models.UserNotification{}, err
	}

	if notification.Read {
		return notification, nil
	}

	notification.Read = true
	if err := r.db.WithContext(ctx).Save(&notification).Error; err != nil {
		return models.UserNotification{}, err
	}

	return notification, nil
}
