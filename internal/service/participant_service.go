package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/engagekit/engage-go-api/internal/dto"
	"github.com/engagekit/engage-go-api/internal/models"
	"github.com/engagekit/engage-go-api/internal/repository"
)

// ParticipantService manages participant records and channel opt-ins.
type ParticipantService interface {
	Create(ctx context.Context, req dto.ParticipantCreateRequest) (dto.ParticipantResponse, error)
	Get(ctx context.Context, id uint) (dto.ParticipantResponse, error)
	List(ctx context.Context, limit, offset int) ([]dto.ParticipantResponse, int64, error)
	ListByProgram(ctx context.Context, programID uint) ([]dto.ParticipantResponse, error)
	UpdateOptIns(ctx context.Context, id uint, req dto.ParticipantOptInRequest) (dto.ParticipantResponse, error)
}

type participantService struct {
	repo      repository.ParticipantRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewParticipantService constructs the participant service.
func NewParticipantService(repo repository.ParticipantRepository, validate *validator.Validate, logger zerolog.Logger) ParticipantService {
	return &participantService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "participant_service").Logger(),
	}
}

func (s *participantService) Create(ctx context.Context, req dto.ParticipantCreateRequest) (dto.ParticipantResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ParticipantResponse{}, err
	}

	participant := models.Participant{
		Name:               strings.TrimSpace(req.Name),
		Email:              strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:              strings.TrimSpace(req.Phone),
		Status:             models.ParticipantStatusActive,
		IsGuest:            req.IsGuest,
		EmailNotifications: true,
	}
	if req.EmailNotifications != nil {
		participant.EmailNotifications = *req.EmailNotifications
	}
	if req.SMSNotifications != nil {
		participant.SMSNotifications = *req.SMSNotifications
	}

	if err := s.repo.Create(ctx, &participant); err != nil {
		return dto.ParticipantResponse{}, err
	}

	s.logger.Info().Uint("participant_id", participant.ID).Msg("participant created")

	return dto.NewParticipantResponse(participant), nil
}

func (s *participantService) Get(ctx context.Context, id uint) (dto.ParticipantResponse, error) {
	participant, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return dto.ParticipantResponse{}, err
	}
	return dto.NewParticipantResponse(participant), nil
}

func (s *participantService) List(ctx context.Context, limit, offset int) ([]dto.ParticipantResponse, int64, error) {
	participants, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return dto.NewParticipantResponseSlice(participants), total, nil
}

func (s *participantService) ListByProgram(ctx context.Context, programID uint) ([]dto.ParticipantResponse, error) {
	participants, err := s.repo.ListActiveByProgram(ctx, programID)
	if err != nil {
		return nil, err
	}
	return dto.NewParticipantResponseSlice(participants), nil
}

func (s *participantService) UpdateOptIns(ctx context.Context, id uint, req dto.ParticipantOptInRequest) (dto.ParticipantResponse, error) {
	participant, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return dto.ParticipantResponse{}, err
	}

	email := participant.EmailNotifications
	sms := participant.SMSNotifications
	if req.EmailNotifications != nil {
		email = *req.EmailNotifications
	}
	if req.SMSNotifications != nil {
		sms = *req.SMSNotifications
	}

	if err := s.repo.UpdateOptIns(ctx, id, email, sms); err != nil {
		return dto.ParticipantResponse{}, err
	}

	participant.EmailNotifications = email
	participant.SMSNotifications = sms

	return dto.NewParticipantResponse(participant), nil
}
