package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gorm.io/datatypes"

	"github.com/engagekit/engage-go-api/internal/dto"
	"github.com/engagekit/engage-go-api/internal/models"
	"github.com/engagekit/engage-go-api/internal/repository"
)

// Sentinel errors surfaced to handlers.
var (
	ErrInvalidSettings   = errors.New("invalid activity settings")
	ErrInvalidTransition = errors.New("invalid activity status transition")
	ErrUnknownAssignee   = errors.New("assignee is not a known user")
)

const activitySettingsSchema = `{
	"type": "object",
	"properties": {
		"allow_guests": {"type": "boolean"},
		"multilingual": {"type": "boolean"},
		"display_mode": {"type": "string", "enum": ["list", "card", "single"]}
	},
	"additionalProperties": false
}`

// statusTransitions maps each lifecycle status to the statuses it may move to.
var statusTransitions = map[string][]string{
	models.ActivityStatusDraft:   {models.ActivityStatusLive},
	models.ActivityStatusLive:    {models.ActivityStatusClosed, models.ActivityStatusExpired},
	models.ActivityStatusClosed:  {},
	models.ActivityStatusExpired: {},
}

// ActivityService manages the activity lifecycle. New activities start as
// drafts awaiting approval; super admins are notified in-app when a draft is
// created, and the creator is notified when their draft goes live or gets
// discarded.
type ActivityService interface {
	Create(ctx context.Context, createdBy uint, req dto.ActivityCreateRequest) (dto.ActivityResponse, error)
	Update(ctx context.Context, id uint, req dto.ActivityUpdateRequest) (dto.ActivityResponse, error)
	UpdateStatus(ctx context.Context, id uint, status string) (dto.ActivityResponse, error)
	Assign(ctx context.Context, id, userID uint) (dto.ActivityResponse, error)
	Get(ctx context.Context, id uint) (dto.ActivityResponse, error)
	List(ctx context.Context, filter repository.ActivityFilter) (dto.ActivityListResponse, error)
	Delete(ctx context.Context, id uint) error
}

type activityService struct {
	repo           repository.ActivityRepository
	users          repository.UserRepository
	notifier       NotificationService
	validator      *validator.Validate
	settingsSchema *jsonschema.Schema
	logger         zerolog.Logger
}

// NewActivityService constructs the activity service. users and notifier may
// be nil, in which case workflow notifications are skipped.
func NewActivityService(repo repository.ActivityRepository, users repository.UserRepository, notifier NotificationService, validate *validator.Validate, logger zerolog.Logger) (ActivityService, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("settings.json", strings.NewReader(activitySettingsSchema)); err != nil {
		return nil, fmt.Errorf("failed to register settings schema: %w", err)
	}
	schema, err := compiler.Compile("settings.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile settings schema: %w", err)
	}

	return &activityService{
		repo:           repo,
		users:          users,
		notifier:       notifier,
		validator:      validate,
		settingsSchema: schema,
		logger:         logger.With().Str("component", "activity_service").Logger(),
	}, nil
}

func (s *activityService) Create(ctx context.Context, createdBy uint, req dto.ActivityCreateRequest) (dto.ActivityResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ActivityResponse{}, err
	}

	if err := s.validateSettings(req.Settings); err != nil {
		return dto.ActivityResponse{}, err
	}

	activity := models.Activity{
		ProgramID:   req.ProgramID,
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Type:        req.Type,
		Status:      models.ActivityStatusDraft,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		CreatedBy:   createdBy,
	}
	if req.Settings != nil {
		activity.Settings = datatypes.JSONMap(req.Settings)
	}

	if err := s.repo.Create(ctx, &activity); err != nil {
		return dto.ActivityResponse{}, err
	}

	s.logger.Info().Uint("activity_id", activity.ID).Str("type", activity.Type).Msg("activity created")
	s.requestApproval(ctx, activity)

	return dto.NewActivityResponse(activity), nil
}

func (s *activityService) Update(ctx context.Context, id uint, req dto.ActivityUpdateRequest) (dto.ActivityResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ActivityResponse{}, err
	}

	if err := s.validateSettings(req.Settings); err != nil {
		return dto.ActivityResponse{}, err
	}

	activity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return dto.ActivityResponse{}, err
	}

	if req.Name != nil {
		activity.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		activity.Description = strings.TrimSpace(*req.Description)
	}
	if req.StartsAt != nil {
		activity.StartsAt = req.StartsAt
	}
	if req.EndsAt != nil {
		activity.EndsAt = req.EndsAt
	}
	if req.Settings != nil {
		activity.Settings = datatypes.JSONMap(req.Settings)
	}

	if err := s.repo.Update(ctx, &activity); err != nil {
		return dto.ActivityResponse{}, err
	}

	return dto.NewActivityResponse(activity), nil
}

func (s *activityService) UpdateStatus(ctx context.Context, id uint, status string) (dto.ActivityResponse, error) {
	activity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return dto.ActivityResponse{}, err
	}

	if !transitionAllowed(activity.Status, status) {
		return dto.ActivityResponse{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, activity.Status, status)
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return dto.ActivityResponse{}, err
	}

	from := activity.Status
	activity.Status = status
	s.logger.Info().Uint("activity_id", id).Str("status", status).Msg("activity status updated")

	// Going live is the approval decision for a pending draft.
	if from == models.ActivityStatusDraft && status == models.ActivityStatusLive {
		s.notifyDecision(ctx, activity, true)
	}

	return dto.NewActivityResponse(activity), nil
}

func (s *activityService) Get(ctx context.Context, id uint) (dto.ActivityResponse, error) {
	activity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return dto.ActivityResponse{}, err
	}

	// Activities past their end date read as expired even before the status
	// sweep catches up.
	if activity.Status == models.ActivityStatusLive && activity.EndsAt != nil && activity.EndsAt.Before(time.Now()) {
		activity.Status = models.ActivityStatusExpired
	}

	return dto.NewActivityResponse(activity), nil
}

func (s *activityService) List(ctx context.Context, filter repository.ActivityFilter) (dto.ActivityListResponse, error) {
	activities, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.ActivityListResponse{}, err
	}
	return dto.ActivityListResponse{
		Items: dto.NewActivityResponseSlice(activities),
		Total: total,
	}, nil
}

// Assign hands an activity to a dashboard user to manage and notifies them
// in-app.
func (s *activityService) Assign(ctx context.Context, id, userID uint) (dto.ActivityResponse, error) {
	activity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return dto.ActivityResponse{}, err
	}

	if s.users != nil {
		if _, err := s.users.FindByID(ctx, userID); err != nil {
			return dto.ActivityResponse{}, fmt.Errorf("%w: %d", ErrUnknownAssignee, userID)
		}
	}

	activity.AssignedTo = &userID
	if err := s.repo.Update(ctx, &activity); err != nil {
		return dto.ActivityResponse{}, err
	}

	s.logger.Info().Uint("activity_id", id).Uint("assignee_id", userID).Msg("activity assigned")

	if s.notifier != nil {
		if err := s.notifier.NotifyActivityAssigned(ctx, userID, activity); err != nil {
			s.logger.Warn().Err(err).Uint("activity_id", id).Msg("assignment notification failed")
		}
	}

	return dto.NewActivityResponse(activity), nil
}

func (s *activityService) Delete(ctx context.Context, id uint) error {
	activity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	// Discarding a draft rejects its pending approval request.
	if activity.Status == models.ActivityStatusDraft {
		s.notifyDecision(ctx, activity, false)
	}
	return nil
}

// requestApproval fans an approval request out to every super admin other
// than the creator. Lookup or publish failures are logged, never surfaced.
func (s *activityService) requestApproval(ctx context.Context, activity models.Activity) {
	if s.users == nil || s.notifier == nil {
		return
	}

	admins, err := s.users.ListSuperAdmins(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Uint("activity_id", activity.ID).Msg("approver lookup failed")
		return
	}

	approverIDs := make([]uint, 0, len(admins))
	for _, admin := range admins {
		if admin.ID == activity.CreatedBy {
			continue
		}
		approverIDs = append(approverIDs, admin.ID)
	}
	if len(approverIDs) == 0 {
		return
	}

	if err := s.notifier.NotifyApprovalRequested(ctx, approverIDs, activity); err != nil {
		s.logger.Warn().Err(err).Uint("activity_id", activity.ID).Msg("approval request notification failed")
	}
}

func (s *activityService) notifyDecision(ctx context.Context, activity models.Activity, approved bool) {
	if s.notifier == nil || activity.CreatedBy == 0 {
		return
	}
	if err := s.notifier.NotifyApprovalDecision(ctx, activity.CreatedBy, activity, approved); err != nil {
		s.logger.Warn().Err(err).Uint("activity_id", activity.ID).Msg("approval decision notification failed")
	}
}

func (s *activityService) validateSettings(settings map[string]interface{}) error {
	if settings == nil {
		return nil
	}
	if err := s.settingsSchema.Validate(map[string]interface{}(settings)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	return nil
}

func transitionAllowed(from, to string) bool {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
