package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/engagekit/engage-go-api/internal/models"
)

// ResponseRepository reads response data for exports, reminders and statistics.
type ResponseRepository interface {
	// ListByActivity returns all responses for an activity with participant and
	// answer data preloaded, ordered by creation.
	ListByActivity(ctx context.Context, activityID uint) ([]models.Response, error)
	CountByActivity(ctx context.Context, activityID uint) (int64, error)
	CountSubmitted(ctx context.Context, activityID uint) (int64, error)
	// HasSubmitted reports whether the participant already has a submitted
	// response for the activity. Point-in-time check only.
	HasSubmitted(ctx context.Context, activityID, participantID uint) (bool, error)
	// LatestSubmitted returns the participant's most recent submitted response
	// for the activity, or gorm.ErrRecordNotFound when none exists.
	LatestSubmitted(ctx context.Context, activityID, participantID uint) (models.Response, error)
}

type responseRepository struct {
	db *gorm.DB
}

// NewResponseRepository constructs a repository backed by GORM.
func NewResponseRepository(db *gorm.DB) ResponseRepository {
	return &responseRepository{db: db}
}

func (r *responseRepository) ListByActivity(ctx context.Context, activityID uint) ([]models.Response, error) {
	var responses []models.Response
	if err := r.db.WithContext(ctx).
		Preload("Participant").
		Preload("Answers").
		Where("activity_id = ?", activityID).
		Order("id ASC").
		Find(&responses).Error; err != nil {
		return nil, err
	}
	return responses, nil
}

func (r *responseRepository) CountByActivity(ctx context.Context, activityID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Response{}).
		Where("activity_id = ?", activityID).
		Count(&count).Error
	return count, err
}

func (r *responseRepository) CountSubmitted(ctx context.Context, activityID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Response{}).
		Where("activity_id = ? AND status = ?", activityID, models.ResponseStatusSubmitted).
		Count(&count).Error
	return count, err
}

func (r *responseRepository) HasSubmitted(ctx context.Context, activityID, participantID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Response{}).
		Where("activity_id = ? AND participant_id = ? AND status = ?", activityID, participantID, models.ResponseStatusSubmitted).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *responseRepository) LatestSubmitted(ctx context.Context, activityID, participantID uint) (models.Response, error) {
	var response models.Response
	if err := r.db.WithContext(ctx).
		Where("activity_id = ? AND participant_id = ? AND status = ?", activityID, participantID, models.ResponseStatusSubmitted).
		Order("id DESC").
		First(&response).Error; err != nil {
		return models.Response{}, err
	}
	return response, nil
}
