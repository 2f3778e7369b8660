package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/engagekit/engage-go-api/internal/config"
	"github.com/engagekit/engage-go-api/internal/dto"
	"github.com/engagekit/engage-go-api/internal/models"
	"github.com/engagekit/engage-go-api/internal/repository"
)

// NotificationService fans rendered notifications out to participant lists and
// records batch reports. Participants are processed sequentially; a failure
// for one recipient is counted and never aborts the batch.
type NotificationService interface {
	Dispatch(ctx context.Context, activityID uint, req dto.DispatchRequest) (dto.DispatchSummary, error)
	ListAudit(ctx context.Context, activityID uint, limit, offset int) ([]dto.NotificationResponse, error)
	ListReports(ctx context.Context, activityID uint) ([]dto.ReportResponse, error)
	NotifyApprovalRequested(ctx context.Context, approverIDs []uint, activity models.Activity) error
	NotifyApprovalDecision(ctx context.Context, requesterID uint, activity models.Activity, approved bool) error
	NotifyActivityAssigned(ctx context.Context, userID uint, activity models.Activity) error
}

type notificationService struct {
	activities   repository.ActivityRepository
	participants repository.ParticipantRepository
	responses    repository.ResponseRepository
	audits       repository.NotificationRepository
	templates    TemplateService
	email        ChannelSender
	sms          ChannelSender
	inApp        UserNotificationService
	cfg          config.Config
	validator    *validator.Validate
	logger       zerolog.Logger
	tracer       trace.Tracer
	now          func() time.Time
}

// NewNotificationService constructs the notification orchestrator.
func NewNotificationService(
	activities repository.ActivityRepository,
	participants repository.ParticipantRepository,
	responses repository.ResponseRepository,
	audits repository.NotificationRepository,
	templates TemplateService,
	email ChannelSender,
	sms ChannelSender,
	inApp UserNotificationService,
	cfg config.Config,
	validate *validator.Validate,
	logger zerolog.Logger,
) NotificationService {
	return &notificationService{
		activities:   activities,
		participants: participants,
		responses:    responses,
		audits:       audits,
		templates:    templates,
		email:        email,
		sms:          sms,
		inApp:        inApp,
		cfg:          cfg,
		validator:    validate,
		logger:       logger.With().Str("component", "notification_service").Logger(),
		tracer:       otel.Tracer("github.com/engagekit/engage-go-api/internal/service/notification"),
		now:          time.Now,
	}
}

func (s *notificationService) Dispatch(ctx context.Context, activityID uint, req dto.DispatchRequest) (dto.DispatchSummary, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.DispatchSummary{}, err
	}

	ctx, span := s.tracer.Start(ctx, "notifications.dispatch", trace.WithAttributes(
		attribute.Int64("notification.activity_id", int64(activityID)),
		attribute.String("notification.event", req.Event),
	))
	defer span.End()

	activity, err := s.activities.FindByID(ctx, activityID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "activity lookup failed")
		return dto.DispatchSummary{}, err
	}

	var recipients []models.Participant
	if len(req.ParticipantIDs) > 0 {
		recipients, err = s.participants.FindByIDs(ctx, req.ParticipantIDs)
	} else {
		recipients, err = s.participants.ListActiveByProgram(ctx, activity.ProgramID)
	}
	if err != nil {
		span.RecordError(err)
		return dto.DispatchSummary{}, err
	}

	tpl, err := s.templates.Resolve(ctx, activityID, req.Event)
	if err != nil {
		span.RecordError(err)
		return dto.DispatchSummary{}, err
	}
	span.SetAttributes(attribute.String("notification.template_source", string(tpl.Source)))

	responseCount, err := s.responses.CountByActivity(ctx, activityID)
	if err != nil {
		span.RecordError(err)
		return dto.DispatchSummary{}, err
	}
	submitted, err := s.responses.CountSubmitted(ctx, activityID)
	if err != nil {
		span.RecordError(err)
		return dto.DispatchSummary{}, err
	}

	completionRate := 0.0
	if responseCount > 0 {
		completionRate = float64(submitted) / float64(responseCount) * 100
	}

	summary := dto.DispatchSummary{Event: req.Event}
	var failedEmails []string

	for i := range recipients {
		participant := recipients[i]

		if req.Event == models.EventReminder {
			done, err := s.responses.HasSubmitted(ctx, activityID, participant.ID)
			if err != nil {
				s.logger.Warn().Err(err).Uint("participant_id", participant.ID).Msg("reminder submission check failed")
			} else if done {
				continue
			}
		}

		bag := TemplateBag{
			Activity:       activity,
			Participant:    participant,
			ActivityURL:    s.cfg.ActivityURL(activity.ID),
			ResponseCount:  responseCount,
			CompletionRate: completionRate,
			Now:            s.now(),
			Results:        s.assessmentResults(ctx, activity, participant.ID, req.Event),
		}.Build()
		rendered := RenderTemplate(tpl, bag)

		participantID := participant.ID
		delivery := Delivery{
			Event:         req.Event,
			ActivityID:    &activity.ID,
			ParticipantID: &participantID,
			Subject:       rendered.Subject,
			BodyHTML:      rendered.BodyHTML,
			BodyText:      rendered.BodyText,
		}

		if participant.EmailNotifications && participant.Email != "" {
			delivery.Recipient = participant.Email
			result := s.email.Send(ctx, delivery)
			if result.Success {
				summary.Email.Sent++
			} else {
				summary.Email.Failed++
				failedEmails = append(failedEmails, participant.Email)
			}
		}

		if participant.SMSNotifications && participant.Phone != "" {
			delivery.Recipient = participant.Phone
			result := s.sms.Send(ctx, delivery)
			if result.Success {
				summary.SMS.Sent++
			} else {
				summary.SMS.Failed++
			}
		}
	}

	report := models.NotificationReport{
		ActivityID:  activityID,
		Event:       req.Event,
		EmailSent:   summary.Email.Sent,
		EmailFailed: summary.Email.Failed,
		SMSSent:     summary.SMS.Sent,
		SMSFailed:   summary.SMS.Failed,
	}
	if len(failedEmails) > 0 {
		if payload, err := json.Marshal(failedEmails); err == nil {
			report.FailedEmails = payload
		}
	}
	if err := s.audits.CreateReport(ctx, &report); err != nil {
		span.RecordError(err)
		s.logger.Error().Err(err).Msg("failed to persist notification report")
	}

	span.SetAttributes(
		attribute.Int("notification.email_sent", summary.Email.Sent),
		attribute.Int("notification.email_failed", summary.Email.Failed),
	)
	s.logger.Info().
		Uint("activity_id", activityID).
		Str("event", req.Event).
		Int("email_sent", summary.Email.Sent).
		Int("email_failed", summary.Email.Failed).
		Int("sms_sent", summary.SMS.Sent).
		Int("sms_failed", summary.SMS.Failed).
		Msg("notification batch dispatched")

	return summary, nil
}

func (s *notificationService) ListAudit(ctx context.Context, activityID uint, limit, offset int) ([]dto.NotificationResponse, error) {
	notifications, err := s.audits.ListByActivity(ctx, activityID, limit, offset)
	if err != nil {
		return nil, err
	}
	return dto.NewNotificationResponseSlice(notifications), nil
}

func (s *notificationService) ListReports(ctx context.Context, activityID uint) ([]dto.ReportResponse, error) {
	reports, err := s.audits.ListReports(ctx, activityID)
	if err != nil {
		return nil, err
	}
	return dto.NewReportResponseSlice(reports), nil
}

// assessmentResults loads the grading data for the thank-you-with-results
// template variant. Only assessment thank-you sends carry results; a missing
// submission leaves the result placeholders unexpanded.
func (s *notificationService) assessmentResults(ctx context.Context, activity models.Activity, participantID uint, event string) *ResultData {
	if event != models.EventThankYou || activity.Type != models.ActivityTypeAssessment {
		return nil
	}

	response, err := s.responses.LatestSubmitted(ctx, activity.ID, participantID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn().Err(err).Uint("participant_id", participantID).Msg("assessment result lookup failed")
		}
		return nil
	}

	return &ResultData{
		Score:          response.Score,
		Result:         response.Result,
		CorrectAnswers: response.CorrectAnswers,
		TotalQuestions: response.TotalQuestions,
		AttemptNumber:  response.Attempt,
	}
}

func (s *notificationService) NotifyApprovalRequested(ctx context.Context, approverIDs []uint, activity models.Activity) error {
	payloads := make([]dto.UserNotificationCreateRequest, 0, len(approverIDs))
	for _, approverID := range approverIDs {
		payloads = append(payloads, dto.UserNotificationCreateRequest{
			UserID:     approverID,
			Type:       "approval_requested",
			Title:      "Approval requested",
			Message:    "Activity \"" + activity.Name + "\" is awaiting your approval.",
			EntityType: "activity",
			EntityID:   &activity.ID,
			ActionURL:  s.cfg.ActivityURL(activity.ID),
		})
	}
	_, err := s.inApp.PublishBatch(ctx, payloads)
	return err
}

func (s *notificationService) NotifyApprovalDecision(ctx context.Context, requesterID uint, activity models.Activity, approved bool) error {
	notificationType := "approval_approved"
	title := "Activity approved"
	message := "Activity \"" + activity.Name + "\" has been approved."
	if !approved {
		notificationType = "approval_rejected"
		title = "Activity rejected"
		message = "Activity \"" + activity.Name + "\" has been rejected."
	}

	payload := dto.UserNotificationCreateRequest{
		UserID:     requesterID,
		Type:       notificationType,
		Title:      title,
		Message:    message,
		EntityType: "activity",
		EntityID:   &activity.ID,
		ActionURL:  s.cfg.ActivityURL(activity.ID),
	}
	_, err := s.inApp.Publish(ctx, payload)
	return err
}

func (s *notificationService) NotifyActivityAssigned(ctx context.Context, userID uint, activity models.Activity) error {
	payload := dto.UserNotificationCreateRequest{
		UserID:     userID,
		Type:       "activity_assigned",
		Title:      "Activity assigned",
		Message:    "You have been assigned to manage \"" + activity.Name + "\".",
		EntityType: "activity",
		EntityID:   &activity.ID,
		ActionURL:  s.cfg.ActivityURL(activity.ID),
	}
	_, err := s.inApp.Publish(ctx, payload)
	return err
}
