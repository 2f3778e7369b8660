package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/engagekit/engage-go-api/internal/dto"
	"github.com/engagekit/engage-go-api/internal/models"
	"github.com/engagekit/engage-go-api/internal/repository"
)

func newActivityServiceForTest(t *testing.T, repo *activityRepoStub) ActivityService {
	t.Helper()
	svc, err := NewActivityService(repo, nil, nil, validator.New(), testLogger())
	require.NoError(t, err)
	return svc
}

func TestActivityCreateStartsAsDraft(t *testing.T) {
	repo := newActivityRepoStub()
	svc := newActivityServiceForTest(t, repo)

	created, err := svc.Create(context.Background(), 9, dto.ActivityCreateRequest{
		ProgramID: 1,
		Name:      "Quarterly Pulse",
		Type:      models.ActivityTypeSurvey,
	})
	require.NoError(t, err)
	require.Equal(t, models.ActivityStatusDraft, created.Status)
	require.Equal(t, uint(1), created.ProgramID)
}

func TestActivityCreateRejectsUnknownType(t *testing.T) {
	svc := newActivityServiceForTest(t, newActivityRepoStub())

	_, err := svc.Create(context.Background(), 9, dto.ActivityCreateRequest{
		ProgramID: 1,
		Name:      "Quarterly Pulse",
		Type:      "quiz",
	})
	require.Error(t, err)
}

func TestActivityCreateValidatesSettingsSchema(t *testing.T) {
	svc := newActivityServiceForTest(t, newActivityRepoStub())

	_, err := svc.Create(context.Background(), 9, dto.ActivityCreateRequest{
		ProgramID: 1,
		Name:      "Quarterly Pulse",
		Type:      models.ActivityTypeSurvey,
		Settings:  map[string]interface{}{"display_mode": "grid"},
	})
	require.ErrorIs(t, err, ErrInvalidSettings)

	_, err = svc.Create(context.Background(), 9, dto.ActivityCreateRequest{
		ProgramID: 1,
		Name:      "Quarterly Pulse",
		Type:      models.ActivityTypeSurvey,
		Settings:  map[string]interface{}{"display_mode": "card", "allow_guests": true},
	})
	require.NoError(t, err)
}

func TestActivityStatusTransitions(t *testing.T) {
	repo := newActivityRepoStub()
	repo.activities[1] = models.Activity{ID: 1, Name: "Pulse", Status: models.ActivityStatusDraft}
	svc := newActivityServiceForTest(t, repo)

	// draft -> live is allowed
	updated, err := svc.UpdateStatus(context.Background(), 1, models.ActivityStatusLive)
	require.NoError(t, err)
	require.Equal(t, models.ActivityStatusLive, updated.Status)

	// live -> closed is allowed
	_, err = svc.UpdateStatus(context.Background(), 1, models.ActivityStatusClosed)
	require.NoError(t, err)

	// closed is terminal
	_, err = svc.UpdateStatus(context.Background(), 1, models.ActivityStatusLive)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestActivityStatusSkippingDraftIsRejected(t *testing.T) {
	repo := newActivityRepoStub()
	repo.activities[1] = models.Activity{ID: 1, Name: "Pulse", Status: models.ActivityStatusDraft}
	svc := newActivityServiceForTest(t, repo)

	_, err := svc.UpdateStatus(context.Background(), 1, models.ActivityStatusClosed)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestActivityListFiltersByStatus(t *testing.T) {
	repo := newActivityRepoStub()
	repo.activities[1] = models.Activity{ID: 1, ProgramID: 1, Name: "A", Status: models.ActivityStatusLive}
	repo.activities[2] = models.Activity{ID: 2, ProgramID: 1, Name: "B", Status: models.ActivityStatusDraft}
	svc := newActivityServiceForTest(t, repo)

	result, err := svc.List(context.Background(), repository.ActivityFilter{Status: models.ActivityStatusLive})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	require.Equal(t, "A", result.Items[0].Name)
}
