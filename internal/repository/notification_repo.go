package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/engagekit/engage-go-api/internal/models"
)

// NotificationRepository persists send-attempt audit rows and batch reports.
// Audit rows are append-only.
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	CreateReport(ctx context.Context, report *models.NotificationReport) error
	ListByActivity(ctx context.Context, activityID uint, limit, offset int) ([]models.Notification, error)
	ListReports(ctx context.Context, activityID uint) ([]models.NotificationReport, error)
	CountByActivity(ctx context.Context, activityID uint) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository constructs a repository backed by GORM.
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *notificationRepository) CreateReport(ctx context.Context, report *models.NotificationReport) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *notificationRepository) ListByActivity(ctx context.Context, activityID uint, limit, offset int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var notifications []models.Notification
	if err := r.db.WithContext(ctx).
		Where("activity_id = ?", activityID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&notifications).Error; err != nil {
		return nil, err
	}

	return notifications, nil
}

func (r *notificationRepository) ListReports(ctx context.Context, activityID uint) ([]models.NotificationReport, error) {
	var reports []models.NotificationReport
	if err := r.db.WithContext(ctx).
		Where("activity_id = ?", activityID).
		Order("created_at DESC").
		Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *notificationRepository) CountByActivity(ctx context.Context, activityID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("activity_id = ?", activityID).
		Count(&count).Error
	return count, err
}
