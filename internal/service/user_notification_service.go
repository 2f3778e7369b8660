package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/engagekit/engage-go-api/internal/dto"
	"github.com/engagekit/engage-go-api/internal/models"
	"github.com/engagekit/engage-go-api/internal/observability"
	"github.com/engagekit/engage-go-api/internal/repository"
)

const userNotificationBufferSize = 16

// UserNotificationService publishes and streams in-app notifications to
// dashboard users via SSE.
type UserNotificationService interface {
	Publish(ctx context.Context, payload dto.UserNotificationCreateRequest) (dto.UserNotificationResponse, error)
	PublishBatch(ctx context.Context, payloads []dto.UserNotificationCreateRequest) ([]dto.UserNotificationResponse, error)
	List(ctx context.Context, userID uint, limit, offset int) ([]dto.UserNotificationResponse, error)
	UnreadCount(ctx context.Context, userID uint) (int64, error)
	MarkRead(ctx context.Context, id, userID uint) (dto.UserNotificationResponse, error)
	Subscribe(userID uint) (<-chan dto.UserNotificationResponse, func())
	Start(ctx context.Context)
}

type userNotificationService struct {
	repo        repository.UserNotificationRepository
	redis       *redis.Client
	redisStream string
	nats        *nats.Conn
	natsSubject string
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
	sanitizer   *bluemonday.Policy
	broker      *userNotificationBroker
	nodeID      string
}

type userNotificationEvent struct {
	Source       string                       `json:"source"`
	Notification dto.UserNotificationResponse `json:"notification"`
	SentAt       time.Time                    `json:"sent_at"`
}

type userNotificationBroker struct {
	mu          sync.RWMutex
	subscribers map[uint]map[chan dto.UserNotificationResponse]struct{}
}

// NewUserNotificationService constructs the in-app notification service.
func NewUserNotificationService(repo repository.UserNotificationRepository, redisClient *redis.Client, channelBase string, natsConn *nats.Conn, validate *validator.Validate, logger zerolog.Logger) UserNotificationService {
	stream := ""
	subject := ""
	if channelBase != "" {
		stream = channelBase + ":user-notifications"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".user-notifications"
	}

	return &userNotificationService{
		repo:        repo,
		redis:       redisClient,
		redisStream: stream,
		nats:        natsConn,
		natsSubject: subject,
		validator:   validate,
		logger:      logger.With().Str("component", "user_notification_service").Logger(),
		tracer:      otel.Tracer("github.com/engagekit/engage-go-api/internal/service/user_notification"),
		sanitizer:   bluemonday.StrictPolicy(),
		broker: &userNotificationBroker{
			subscribers: make(map[uint]map[chan dto.UserNotificationResponse]struct{}),
		},
		nodeID: uuid.NewString(),
	}
}

func (s *userNotificationService) Start(ctx context.Context) {
	if s.redis != nil && s.redisStream != "" {
		go s.consumeRedis(ctx)
	}
	if s.nats != nil && s.natsSubject != "" {
		go s.consumeNATS(ctx)
	}
}

// buildNotification validates and sanitizes one payload into a persistable
// row.
func (s *userNotificationService) buildNotification(payload dto.UserNotificationCreateRequest) (models.UserNotification, error) {
	if err := s.validator.Struct(payload); err != nil {
		return models.UserNotification{}, err
	}

	cleanMessage := strings.TrimSpace(s.sanitizer.Sanitize(payload.Message))
	if cleanMessage == "" {
		return models.UserNotification{}, errors.New("notification message empty after sanitization")
	}

	return models.UserNotification{
		UserID:     payload.UserID,
		Type:       payload.Type,
		Title:      strings.TrimSpace(payload.Title),
		Message:    cleanMessage,
		EntityType: payload.EntityType,
		EntityID:   payload.EntityID,
		ActionURL:  payload.ActionURL,
	}, nil
}

// fanOut pushes a persisted notification to local subscribers and to the
// cross-node channels.
func (s *userNotificationService) fanOut(ctx context.Context, response dto.UserNotificationResponse) {
	s.broker.broadcast(response.UserID, response)
	if err := s.publish(ctx, response); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish notification to broker")
	}
	observability.UserNotificationsPublished().WithLabelValues(response.Type).Inc()
}

func (s *userNotificationService) Publish(ctx context.Context, payload dto.UserNotificationCreateRequest) (dto.UserNotificationResponse, error) {
	model, err := s.buildNotification(payload)
	if err != nil {
		return dto.UserNotificationResponse{}, err
	}

	spanCtx, span := s.tracer.Start(ctx, "user_notifications.publish", trace.WithAttributes(
		attribute.String("notification.user_id", strconv.FormatUint(uint64(payload.UserID), 10)),
		attribute.String("notification.type", payload.Type),
	))
	defer span.End()

	if err := s.repo.Create(spanCtx, &model); err != nil {
		span.RecordError(err)
		return dto.UserNotificationResponse{}, err
	}

	response := dto.NewUserNotificationResponse(model)
	s.fanOut(spanCtx, response)

	return response, nil
}

// PublishBatch persists a set of notifications in one insert and fans each
// one out. The whole batch is rejected when any payload is invalid.
func (s *userNotificationService) PublishBatch(ctx context.Context, payloads []dto.UserNotificationCreateRequest) ([]dto.UserNotificationResponse, error) {
	if len(payloads) == 0 {
		return nil, nil
	}

	rows := make([]models.UserNotification, 0, len(payloads))
	for _, payload := range payloads {
		model, err := s.buildNotification(payload)
		if err != nil {
			return nil, err
		}
		rows = append(rows, model)
	}

	spanCtx, span := s.tracer.Start(ctx, "user_notifications.publish_batch", trace.WithAttributes(
		attribute.Int("notification.count", len(rows)),
	))
	defer span.End()

	if err := s.repo.CreateBatch(spanCtx, rows); err != nil {
		span.RecordError(err)
		return nil, err
	}

	responses := make([]dto.UserNotificationResponse, 0, len(rows))
	for _, row := range rows {
		response := dto.NewUserNotificationResponse(row)
		s.fanOut(spanCtx, response)
		responses = append(responses, response)
	}

	return responses, nil
}

func (s *userNotificationService) List(ctx context.Context, userID uint, limit, offset int) ([]dto.UserNotificationResponse, error) {
	if userID == 0 {
		return nil, errors.New("user id is required")
	}

	notifications, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	return dto.NewUserNotificationResponseSlice(notifications), nil
}

func (s *userNotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	if userID == 0 {
		return 0, errors.New("user id is required")
	}
	return s.repo.CountUnread(ctx, userID)
}

func (s *userNotificationService) MarkRead(ctx context.Context, id, userID uint) (dto.UserNotificationResponse, error) {
	spanCtx, span := s.tracer.Start(ctx, "user_notifications.mark_read")
	defer span.End()

	notification, err := s.repo.MarkRead(spanCtx, id, userID)
	if err != nil {
		span.RecordError(err)
		return dto.UserNotificationResponse{}, err
	}

	return dto.NewUserNotificationResponse(notification), nil
}

func (s *userNotificationService) Subscribe(userID uint) (<-chan dto.UserNotificationResponse, func()) {
	channel := make(chan dto.UserNotificationResponse, userNotificationBufferSize)

	s.broker.subscribe(userID, channel)
	observability.SSEClientsActive().Inc()

	cleanup := func() {
		s.broker.unsubscribe(userID, channel)
		observability.SSEClientsActive().Dec()
	}

	return channel, cleanup
}

func (s *userNotificationService) publish(ctx context.Context, notification dto.UserNotificationResponse) error {
	event := userNotificationEvent{
		Source:       s.nodeID,
		Notification: notification,
		SentAt:       time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if s.redis != nil && s.redisStream != "" {
		if err := s.redis.Publish(ctx, s.redisStream, payload).Err(); err != nil {
			return err
		}
	}

	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject, payload); err != nil {
			return err
		}
	}

	return nil
}

func (s *userNotificationService) consumeRedis(ctx context.Context) {
	pubsub := s.redis.Subscribe(ctx, s.redisStream)
	defer func() { _ = pubsub.Close() }()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			s.logger.Error().Err(err).Msg("notification redis subscription closed")
			return
		}
		s.handleEvent([]byte(msg.Payload))
	}
}

func (s *userNotificationService) consumeNATS(ctx context.Context) {
	sub, err := s.nats.QueueSubscribe(s.natsSubject, "engage-user-notifications", func(msg *nats.Msg) {
		s.handleEvent(msg.Data)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to subscribe to nats notifications subject")
		return
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to drain notification nats subscription")
		}
	}()
}

func (s *userNotificationService) handleEvent(payload []byte) {
	var event userNotificationEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		s.logger.Warn().Err(err).Msg("invalid notification event payload")
		return
	}

	if event.Source == s.nodeID {
		return
	}

	notification := event.Notification
	if notification.Type == "" {
		notification.Type = "generic"
	}

	observability.UserNotificationsPublished().WithLabelValues(notification.Type).Inc()
	s.broker.broadcast(notification.UserID, notification)
}

func (b *userNotificationBroker) subscribe(userID uint, ch chan dto.UserNotificationResponse) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.subscribers[userID]; !exists {
		b.subscribers[userID] = make(map[chan dto.UserNotificationResponse]struct{})
	}
	b.subscribers[userID][ch] = struct{}{}
}

func (b *userNotificationBroker) unsubscribe(userID uint, ch chan dto.UserNotificationResponse) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if subscribers, ok := b.subscribers[userID]; ok {
		delete(subscribers, ch)
		close(ch)
		if len(subscribers) == 0 {
			delete(b.subscribers, userID)
		}
	}
}

func (b *userNotificationBroker) broadcast(userID uint, notification dto.UserNotificationResponse) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	subscribers := b.subscribers[userID]
	for ch := range subscribers {
		select {
		case ch <- notification:
		default:
		}
	}
}
