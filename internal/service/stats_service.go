package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/engagekit/engage-go-api/internal/dto"
	"github.com/engagekit/engage-go-api/internal/models"
	"github.com/engagekit/engage-go-api/internal/repository"
)

// completionBands are the fixed histogram bands, in display order. Every
// response falls into exactly one band.
var completionBands = []string{"0%", "1-25%", "26-50%", "51-75%", "76-99%", "100%"}

// StatsService aggregates per-activity statistics for the dashboard and the
// PDF report.
type StatsService interface {
	ActivityStats(ctx context.Context, activityID uint) (dto.ActivityStatsResponse, error)
}

type statsService struct {
	activities   repository.ActivityRepository
	responses    repository.ResponseRepository
	participants repository.ParticipantRepository
	cache        *redis.Client
	cacheTTL     time.Duration
	logger       zerolog.Logger
}

// NewStatsService constructs the statistics service.
func NewStatsService(activities repository.ActivityRepository, responses repository.ResponseRepository, participants repository.ParticipantRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) StatsService {
	return &statsService{
		activities:   activities,
		responses:    responses,
		participants: participants,
		cache:        cache,
		cacheTTL:     ttl,
		logger:       logger.With().Str("component", "stats_service").Logger(),
	}
}

func (s *statsService) ActivityStats(ctx context.Context, activityID uint) (dto.ActivityStatsResponse, error) {
	cacheKey := fmt.Sprintf("stats:activity:%d", activityID)
	tracer := otel.Tracer("github.com/engagekit/engage-go-api/internal/service/stats")
	ctx, span := tracer.Start(ctx, "stats.aggregate")
	span.SetAttributes(attribute.String("stats.cache_key", cacheKey))
	defer span.End()

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey).Result()
		if err == nil {
			var response dto.ActivityStatsResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				response.CacheHit = true
				span.SetAttributes(attribute.Bool("stats.cache_hit", true))
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read stats cache")
			span.RecordError(err)
		}
	}

	activity, err := s.activities.FindByID(ctx, activityID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "activity_lookup_failed")
		return dto.ActivityStatsResponse{}, err
	}

	responses, err := s.responses.ListByActivity(ctx, activityID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list_responses_failed")
		return dto.ActivityStatsResponse{}, err
	}

	questions, err := s.activities.ListQuestions(ctx, activityID)
	if err != nil {
		span.RecordError(err)
		return dto.ActivityStatsResponse{}, err
	}

	members, err := s.participants.ListActiveByProgram(ctx, activity.ProgramID)
	if err != nil {
		span.RecordError(err)
		return dto.ActivityStatsResponse{}, err
	}

	summary := buildActivityStats(activity, responses, questions, int64(len(members)))
	span.SetAttributes(attribute.Int("stats.response_count", len(responses)))

	if s.cache != nil {
		if payload, err := json.Marshal(summary); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store stats cache")
				span.RecordError(err)
			}
		}
	}

	return summary, nil
}

func buildActivityStats(activity models.Activity, responses []models.Response, questions []models.Question, participantCount int64) dto.ActivityStatsResponse {
	buckets := make(map[string]int64, len(completionBands))
	for _, band := range completionBands {
		buckets[band] = 0
	}

	var submitted, inProgress int64
	answerCounts := make(map[uint]int64, len(questions))

	for _, response := range responses {
		switch response.Status {
		case models.ResponseStatusSubmitted:
			submitted++
		default:
			inProgress++
		}

		buckets[completionBand(response.Completion)]++

		for _, answer := range response.Answers {
			if answer.Value != "" || len(answer.ValueArray) > 0 {
				answerCounts[answer.QuestionID]++
			}
		}
	}

	total := int64(len(responses))
	participationRate := 0.0
	if participantCount > 0 {
		participationRate = float64(submitted) / float64(participantCount) * 100
	}

	distribution := make([]dto.CompletionBucket, 0, len(completionBands))
	for _, band := range completionBands {
		distribution = append(distribution, dto.CompletionBucket{Label: band, Count: buckets[band]})
	}

	questionStats := make([]dto.QuestionStats, 0, len(questions))
	for _, question := range questions {
		count := answerCounts[question.ID]
		rate := 0.0
		if total > 0 {
			rate = float64(count) / float64(total) * 100
		}
		questionStats = append(questionStats, dto.QuestionStats{
			QuestionID:     question.ID,
			Text:           question.Text,
			AnswerCount:    count,
			CompletionRate: rate,
		})
	}

	return dto.ActivityStatsResponse{
		ActivityID:             activity.ID,
		ActivityName:           activity.Name,
		TotalResponses:         total,
		SubmittedResponses:     submitted,
		InProgressResponses:    inProgress,
		ParticipantCount:       participantCount,
		ParticipationRate:      participationRate,
		CompletionDistribution: distribution,
		Questions:              questionStats,
	}
}

// completionBand assigns a completion percentage to exactly one band.
func completionBand(completion float64) string {
	switch {
	case completion <= 0:
		return "0%"
	case completion >= 100:
		return "100%"
	case completion <= 25:
		return "1-25%"
	case completion <= 50:
		return "26-50%"
	case completion <= 75:
		return "51-75%"
	default:
		return "76-99%"
	}
}
