package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/engagekit/engage-go-api/internal/config"
	"github.com/engagekit/engage-go-api/internal/dto"
	"github.com/engagekit/engage-go-api/internal/models"
	"github.com/engagekit/engage-go-api/internal/observability"
	"github.com/engagekit/engage-go-api/internal/repository"
	"github.com/engagekit/engage-go-api/pkg/mailer"
)

var (
	// ErrContactSpam indicates the honeypot field was filled.
	ErrContactSpam = errors.New("contact submission flagged as spam")
	// ErrContactDuplicate indicates a submission with the same checksum exists recently.
	ErrContactDuplicate = errors.New("duplicate contact submission")
)

// ContactService exposes the demo/contact-sales intake workflow.
type ContactService interface {
	Submit(ctx context.Context, req dto.ContactSalesRequest) (dto.ContactSalesResponse, error)
}

type contactService struct {
	repo          repository.ContactRepository
	users         repository.UserRepository
	notifications UserNotificationService
	mail          mailer.Client
	cache         *redis.Client
	validator     *validator.Validate
	cfg           config.Config
	logger        zerolog.Logger
	dedupeTTL     time.Duration
	tracer        trace.Tracer
}

// NewContactService constructs a contact enquiry service.
func NewContactService(
	repo repository.ContactRepository,
	users repository.UserRepository,
	notifications UserNotificationService,
	mail mailer.Client,
	cache *redis.Client,
	validate *validator.Validate,
	cfg config.Config,
	logger zerolog.Logger,
) ContactService {
	return &contactService{
		repo:          repo,
		users:         users,
		notifications: notifications,
		mail:          mail,
		cache:         cache,
		validator:     validate,
		cfg:           cfg,
		logger:        logger.With().Str("component", "contact_service").Logger(),
		dedupeTTL:     5 * time.Minute,
		tracer:        otel.Tracer("github.com/engagekit/engage-go-api/internal/service/contact"),
	}
}

func (s *contactService) Submit(ctx context.Context, req dto.ContactSalesRequest) (dto.ContactSalesResponse, error) {
	ctx, span := s.tracer.Start(ctx, "contact.submit")
	defer span.End()

	if req.Honeypot != "" {
		span.SetStatus(codes.Error, "honeypot tripped")
		observability.ContactSubmissions().WithLabelValues("spam").Inc()
		return dto.ContactSalesResponse{}, ErrContactSpam
	}

	if err := s.validator.Struct(req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		return dto.ContactSalesResponse{}, err
	}

	checksum := contactChecksum(req.Name, req.Email, req.Message)
	span.SetAttributes(attribute.String("contact.checksum", checksum))

	if s.cache != nil {
		key := fmt.Sprintf("contact:dedupe:%s", checksum)
		ok, err := s.cache.SetNX(ctx, key, 1, s.dedupeTTL).Result()
		if err != nil {
			span.RecordError(err)
			return dto.ContactSalesResponse{}, err
		}
		if !ok {
			span.SetStatus(codes.Error, "duplicate submission")
			observability.ContactSubmissions().WithLabelValues("duplicate").Inc()
			return dto.ContactSalesResponse{}, ErrContactDuplicate
		}
	}

	referenceID := uuid.New().String()
	request := models.ContactRequest{
		ReferenceID: referenceID,
		Name:        strings.TrimSpace(req.Name),
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		Company:     strings.TrimSpace(req.Company),
		Message:     strings.TrimSpace(req.Message),
		Checksum:    checksum,
	}

	if err := s.repo.Create(ctx, &request); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		observability.ContactSubmissions().WithLabelValues("error").Inc()
		return dto.ContactSalesResponse{}, err
	}

	// The enquiry is accepted once the row exists. Fan-out failures are
	// logged but never surfaced to the submitter.
	s.fanOut(ctx, request)

	observability.ContactSubmissions().WithLabelValues("accepted").Inc()
	s.logger.Info().
		Str("reference_id", referenceID).
		Str("email", maskEmailAddress(request.Email)).
		Msg("contact enquiry accepted")
	span.SetStatus(codes.Ok, "accepted")

	return dto.ContactSalesResponse{ReferenceID: referenceID, Status: "accepted"}, nil
}

func (s *contactService) fanOut(ctx context.Context, request models.ContactRequest) {
	admins, err := s.users.ListSuperAdmins(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Str("reference_id", request.ReferenceID).Msg("failed to list enquiry recipients")
	}

	title := "New sales enquiry"
	message := fmt.Sprintf("%s (%s) asked for a demo.", request.Name, request.Email)
	if request.Company != "" {
		message = fmt.Sprintf("%s from %s (%s) asked for a demo.", request.Name, request.Company, request.Email)
	}

	for _, admin := range admins {
		entityID := request.ID
		_, err := s.notifications.Publish(ctx, dto.UserNotificationCreateRequest{
			UserID:     admin.ID,
			Type:       "contact_request",
			Title:      title,
			Message:    message,
			EntityType: "contact_request",
			EntityID:   &entityID,
		})
		if err != nil {
			s.logger.Warn().Err(err).Uint("user_id", admin.ID).Msg("failed to publish enquiry notification")
		}
	}

	if s.mail == nil || s.cfg.SupportEmail == "" {
		return
	}

	subject := fmt.Sprintf("Sales enquiry %s", request.ReferenceID)
	html := fmt.Sprintf(
		"<p><strong>%s</strong> (%s)</p><p>Company: %s</p><p>%s</p><p>Reference: %s</p>",
		request.Name, request.Email, request.Company, request.Message, request.ReferenceID,
	)
	text := fmt.Sprintf(
		"%s (%s)\nCompany: %s\n\n%s\n\nReference: %s",
		request.Name, request.Email, request.Company, request.Message, request.ReferenceID,
	)
	if _, err := s.mail.Send(ctx, s.cfg.SupportEmail, subject, html, text); err != nil {
		s.logger.Warn().Err(err).Str("reference_id", request.ReferenceID).Msg("failed to forward enquiry email")
	}
}

func contactChecksum(parts ...string) string {
	hasher := sha256.New()
	for _, part := range parts {
		hasher.Write([]byte(strings.TrimSpace(strings.ToLower(part))))
		hasher.Write([]byte("|"))
	}
	return hex.EncodeToString(hasher.Sum(nil))
}
