package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/engagekit/engage-go-api/internal/dto"
	"github.com/engagekit/engage-go-api/internal/models"
	"github.com/engagekit/engage-go-api/internal/repository"
)

// TemplateSource marks whether a resolved template is a per-activity override
// or the hard-coded default.
type TemplateSource string

// Template sources.
const (
	TemplateSourceCustom  TemplateSource = "custom"
	TemplateSourceDefault TemplateSource = "default"
)

// ErrUnknownEvent indicates an event type with no template slot.
var ErrUnknownEvent = errors.New("unknown notification event type")

// ResolvedTemplate is the explicit result of template resolution. Callers
// always receive usable content; Source records which branch was taken.
type ResolvedTemplate struct {
	Source   TemplateSource
	Subject  string
	BodyHTML string
	BodyText string
}

// Rendered holds template content after placeholder substitution.
type Rendered struct {
	Subject  string
	BodyHTML string
	BodyText string
}

// RenderTemplate substitutes every `{{key}}` occurrence for each key present
// in the bag. Keys absent from the bag are left verbatim; input without
// placeholder tokens is returned unchanged.
func RenderTemplate(tpl ResolvedTemplate, bag map[string]string) Rendered {
	return Rendered{
		Subject:  substitutePlaceholders(tpl.Subject, bag),
		BodyHTML: substitutePlaceholders(tpl.BodyHTML, bag),
		BodyText: substitutePlaceholders(tpl.BodyText, bag),
	}
}

func substitutePlaceholders(content string, bag map[string]string) string {
	if content == "" || !strings.Contains(content, "{{") {
		return content
	}
	for key, value := range bag {
		content = strings.ReplaceAll(content, "{{"+key+"}}", value)
	}
	return content
}

// TemplateService resolves and manages per-activity notification templates.
type TemplateService interface {
	// Resolve returns the active custom template for the (activity, event)
	// pair, falling back to the hard-coded default. Absence of a custom
	// template is not an error.
	Resolve(ctx context.Context, activityID uint, eventType string) (ResolvedTemplate, error)
	Upsert(ctx context.Context, activityID uint, req dto.TemplateUpsertRequest) (dto.TemplateResponse, error)
	List(ctx context.Context, activityID uint) ([]dto.TemplateResponse, error)
	Delete(ctx context.Context, templateID uint) error
}

type templateService struct {
	repo       repository.TemplateRepository
	activities repository.ActivityRepository
	validator  *validator.Validate
	sanitizer  *bluemonday.Policy
	logger     zerolog.Logger
}

// NewTemplateService constructs the template service.
func NewTemplateService(repo repository.TemplateRepository, activities repository.ActivityRepository, validate *validator.Validate, logger zerolog.Logger) TemplateService {
	return &templateService{
		repo:       repo,
		activities: activities,
		validator:  validate,
		sanitizer:  bluemonday.UGCPolicy(),
		logger:     logger.With().Str("component", "template_service").Logger(),
	}
}

func (s *templateService) Resolve(ctx context.Context, activityID uint, eventType string) (ResolvedTemplate, error) {
	defaultTpl, ok := defaultTemplates[eventType]
	if !ok {
		return ResolvedTemplate{}, fmt.Errorf("%w: %s", ErrUnknownEvent, eventType)
	}

	custom, err := s.repo.FindActive(ctx, activityID, eventType)
	if err != nil {
		return ResolvedTemplate{}, err
	}
	if custom == nil {
		return ResolvedTemplate{
			Source:   TemplateSourceDefault,
			Subject:  defaultTpl.subject,
			BodyHTML: defaultTpl.bodyHTML,
			BodyText: defaultTpl.bodyText,
		}, nil
	}

	return ResolvedTemplate{
		Source:   TemplateSourceCustom,
		Subject:  custom.Subject,
		BodyHTML: custom.BodyHTML,
		BodyText: custom.BodyText,
	}, nil
}

func (s *templateService) Upsert(ctx context.Context, activityID uint, req dto.TemplateUpsertRequest) (dto.TemplateResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.TemplateResponse{}, err
	}

	if _, err := s.activities.FindByID(ctx, activityID); err != nil {
		return dto.TemplateResponse{}, err
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	template := models.NotificationTemplate{
		ActivityID: activityID,
		EventType:  req.EventType,
		Subject:    strings.TrimSpace(req.Subject),
		BodyHTML:   s.sanitizer.Sanitize(req.BodyHTML),
		BodyText:   strings.TrimSpace(req.BodyText),
		Active:     active,
	}

	existing, err := s.repo.FindActive(ctx, activityID, req.EventType)
	if err != nil {
		return dto.TemplateResponse{}, err
	}
	if existing != nil {
		template.ID = existing.ID
		template.CreatedAt = existing.CreatedAt
		if err := s.repo.Update(ctx, &template); err != nil {
			return dto.TemplateResponse{}, err
		}
	} else if err := s.repo.Create(ctx, &template); err != nil {
		return dto.TemplateResponse{}, err
	}

	if template.Active {
		if err := s.repo.DeactivateOthers(ctx, activityID, req.EventType, template.ID); err != nil {
			return dto.TemplateResponse{}, err
		}
	}

	s.logger.Info().
		Uint("activity_id", activityID).
		Str("event_type", req.EventType).
		Msg("notification template saved")

	return dto.NewTemplateResponse(template), nil
}

func (s *templateService) List(ctx context.Context, activityID uint) ([]dto.TemplateResponse, error) {
	templates, err := s.repo.ListByActivity(ctx, activityID)
	if err != nil {
		return nil, err
	}
	return dto.NewTemplateResponseSlice(templates), nil
}

func (s *templateService) Delete(ctx context.Context, templateID uint) error {
	if _, err := s.repo.FindByID(ctx, templateID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, templateID)
}
