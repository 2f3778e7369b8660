package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/engagekit/engage-go-api/internal/models"
)

// TemplateRepository persists per-activity notification templates.
type TemplateRepository interface {
	Create(ctx context.Context, template *models.NotificationTemplate) error
	Update(ctx context.Context, template *models.NotificationTemplate) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (models.NotificationTemplate, error)
	// FindActive returns the active template for an (activity, event) pair, or
	// nil when none exists. Absence is not an error.
	FindActive(ctx context.Context, activityID uint, eventType string) (*models.NotificationTemplate, error)
	ListByActivity(ctx context.Context, activityID uint) ([]models.NotificationTemplate, error)
	// DeactivateOthers clears the active flag on every other template for the
	// same (activity, event) pair.
	DeactivateOthers(ctx context.Context, activityID uint, eventType string, keepID uint) error
}

type templateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository constructs a repository backed by GORM.
func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) Create(ctx context.Context, template *models.NotificationTemplate) error {
	return r.db.WithContext(ctx).Create(template).Error
}

func (r *templateRepository) Update(ctx context.Context, template *models.NotificationTemplate) error {
	return r.db.WithContext(ctx).Save(template).Error
}

func (r *templateRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.NotificationTemplate{}, id).Error
}

func (r *templateRepository) FindByID(ctx context.Context, id uint) (models.NotificationTemplate, error) {
	var template models.NotificationTemplate
	if err := r.db.WithContext(ctx).First(&template, id).Error; err != nil {
		return models.NotificationTemplate{}, err
	}
	return template, nil
}

func (r *templateRepository) FindActive(ctx context.Context, activityID uint, eventType string) (*models.NotificationTemplate, error) {
	var template models.NotificationTemplate
	err := r.db.WithContext(ctx).
		Where("activity_id = ? AND event_type = ? AND active = ?", activityID, eventType, true).
		Order("updated_at DESC").
		First(&template).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &template, nil
}

func (r *templateRepository) ListByActivity(ctx context.Context, activityID uint) ([]models.NotificationTemplate, error) {
	var templates []models.NotificationTemplate
	if err := r.db.WithContext(ctx).
		Where("activity_id = ?", activityID).
		Order("event_type ASC").
		Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *templateRepository) DeactivateOthers(ctx context.Context, activityID uint, eventType string, keepID uint) error {
	return r.db.WithContext(ctx).
		Model(&models.NotificationTemplate{}).
		Where("activity_id = ? AND event_type = ? AND id <> ?", activityID, eventType, keepID).
		Update("active", false).
		Error
}
