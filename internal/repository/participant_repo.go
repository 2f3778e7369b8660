package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/engagekit/engage-go-api/internal/models"
)

// ParticipantRepository handles persistence for participants.
type ParticipantRepository interface {
	Create(ctx context.Context, participant *models.Participant) error
	Update(ctx context.Context, participant *models.Participant) error
	FindByID(ctx context.Context, id uint) (models.Participant, error)
	FindByIDs(ctx context.Context, ids []uint) ([]models.Participant, error)
	// ListActiveByProgram returns every active participant of a program in
	// stable id order.
	ListActiveByProgram(ctx context.Context, programID uint) ([]models.Participant, error)
	List(ctx context.Context, limit, offset int) ([]models.Participant, int64, error)
	UpdateOptIns(ctx context.Context, id uint, email, sms bool) error
}

type participantRepository struct {
	db *gorm.DB
}

// NewParticipantRepository constructs a repository backed by GORM.
func NewParticipantRepository(db *gorm.DB) ParticipantRepository {
	return &participantRepository{db: db}
}

func (r *participantRepository) Create(ctx context.Context, participant *models.Participant) error {
	return r.db.WithContext(ctx).Create(participant).Error
}

func (r *participantRepository) Update(ctx context.Context, participant *models.Participant) error {
	return r.db.WithContext(ctx).Save(participant).Error
}

func (r *participantRepository) FindByID(ctx context.Context, id uint) (models.Participant, error) {
	var participant models.Participant
	if err := r.db.WithContext(ctx).First(&participant, id).Error; err != nil {
		return models.Participant{}, err
	}
	return participant, nil
}

func (r *participantRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.Participant, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var participants []models.Participant
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&participants).Error; err != nil {
		return nil, err
	}
	return participants, nil
}

func (r *participantRepository) ListActiveByProgram(ctx context.Context, programID uint) ([]models.Participant, error) {
	var participants []models.Participant
	if err := r.db.WithContext(ctx).
		Joins("JOIN program_participants pp ON pp.participant_id = participants.id").
		Where("pp.program_id = ? AND participants.status = ?", programID, models.ParticipantStatusActive).
		Order("participants.id ASC").
		Find(&participants).Error; err != nil {
		return nil, err
	}
	return participants, nil
}

func (r *participantRepository) List(ctx context.Context, limit, offset int) ([]models.Participant, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Participant{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var participants []models.Participant
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&participants).Error; err != nil {
		return nil, 0, err
	}

	return participants, total, nil
}

func (r *participantRepository) UpdateOptIns(ctx context.Context, id uint, email, sms bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Participant{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"email_notifications": email,
			"sms_notifications":   sms,
		}).
		Error
}
