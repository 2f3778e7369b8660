package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/engagekit/engage-go-api/internal/models"
)

func TestCompletionBandPartition(t *testing.T) {
	cases := map[float64]string{
		-5:   "0%",
		0:    "0%",
		0.5:  "1-25%",
		25:   "1-25%",
		26:   "26-50%",
		50:   "26-50%",
		63:   "51-75%",
		75:   "51-75%",
		76:   "76-99%",
		99.9: "76-99%",
		100:  "100%",
		140:  "100%",
	}
	for completion, want := range cases {
		require.Equal(t, want, completionBand(completion), "completion %.1f", completion)
	}
}

func statsFixture() (*activityRepoStub, *responseRepoStub, *participantRepoStub) {
	activities := newActivityRepoStub()
	activities.activities[1] = models.Activity{ID: 1, ProgramID: 2, Name: "Pulse"}
	activities.questions[1] = []models.Question{
		{ID: 10, Text: "Q1", Position: 1},
		{ID: 11, Text: "Q2", Position: 2},
	}

	one, two := uint(1), uint(2)
	responses := &responseRepoStub{responses: []models.Response{
		{ID: 1, ActivityID: 1, ParticipantID: &one, Status: models.ResponseStatusSubmitted, Completion: 100, Answers: []models.Answer{
			{QuestionID: 10, Value: "yes"},
			{QuestionID: 11, ValueArray: datatypes.JSON(`["a"]`)},
		}},
		{ID: 2, ActivityID: 1, ParticipantID: &two, Status: models.ResponseStatusInProgress, Completion: 40, Answers: []models.Answer{
			{QuestionID: 10, Value: "no"},
			{QuestionID: 11},
		}},
		{ID: 3, ActivityID: 1, Status: models.ResponseStatusInProgress, Completion: 0},
	}}

	participants := &participantRepoStub{participants: []models.Participant{
		{ID: 1, Status: models.ParticipantStatusActive},
		{ID: 2, Status: models.ParticipantStatusActive},
		{ID: 3, Status: models.ParticipantStatusActive},
		{ID: 4, Status: models.ParticipantStatusActive},
	}}
	return activities, responses, participants
}

func TestActivityStatsAggregation(t *testing.T) {
	activities, responses, participants := statsFixture()
	svc := NewStatsService(activities, responses, participants, nil, time.Minute, testLogger())

	stats, err := svc.ActivityStats(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, int64(3), stats.TotalResponses)
	require.Equal(t, int64(1), stats.SubmittedResponses)
	require.Equal(t, int64(2), stats.InProgressResponses)
	require.Equal(t, int64(4), stats.ParticipantCount)
	require.InDelta(t, 25.0, stats.ParticipationRate, 0.001)

	// bands always sum to the response count
	var total int64
	byLabel := map[string]int64{}
	for _, bucket := range stats.CompletionDistribution {
		total += bucket.Count
		byLabel[bucket.Label] = bucket.Count
	}
	require.Equal(t, stats.TotalResponses, total)
	require.Equal(t, int64(1), byLabel["0%"])
	require.Equal(t, int64(1), byLabel["26-50%"])
	require.Equal(t, int64(1), byLabel["100%"])

	require.Len(t, stats.Questions, 2)
	require.Equal(t, int64(2), stats.Questions[0].AnswerCount)
	require.InDelta(t, 66.666, stats.Questions[0].CompletionRate, 0.01)
	// empty answer rows do not count
	require.Equal(t, int64(1), stats.Questions[1].AnswerCount)
}

func TestActivityStatsCaching(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	cache := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer cache.Close()

	activities, responses, participants := statsFixture()
	svc := NewStatsService(activities, responses, participants, cache, time.Minute, testLogger())

	first, err := svc.ActivityStats(context.Background(), 1)
	require.NoError(t, err)
	require.False(t, first.CacheHit)

	// later writes are invisible until the cache expires
	responses.responses = responses.responses[:1]

	second, err := svc.ActivityStats(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, second.CacheHit)
	require.Equal(t, first.TotalResponses, second.TotalResponses)

	server.FastForward(2 * time.Minute)

	third, err := svc.ActivityStats(context.Background(), 1)
	require.NoError(t, err)
	require.False(t, third.CacheHit)
	require.Equal(t, int64(1), third.TotalResponses)
}
