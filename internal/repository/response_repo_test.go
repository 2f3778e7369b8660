package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/engagekit/engage-go-api/internal/models"
)

func TestResponseRepositoryLatestSubmitted(t *testing.T) {
	db := setupTestDB(t, &models.Response{})
	repo := NewResponseRepository(db)

	ada := uint(1)
	ben := uint(2)
	seed := []models.Response{
		{ActivityID: 7, ParticipantID: &ada, Status: models.ResponseStatusSubmitted, Score: 60, Result: "failed", Attempt: 1},
		{ActivityID: 7, ParticipantID: &ada, Status: models.ResponseStatusInProgress, Attempt: 2},
		{ActivityID: 7, ParticipantID: &ada, Status: models.ResponseStatusSubmitted, Score: 87.5, Result: "passed", CorrectAnswers: 7, TotalQuestions: 8, Attempt: 2},
		{ActivityID: 7, ParticipantID: &ben, Status: models.ResponseStatusInProgress},
	}
	require.NoError(t, db.Create(&seed).Error)

	latest, err := repo.LatestSubmitted(context.Background(), 7, ada)
	require.NoError(t, err)
	require.Equal(t, "passed", latest.Result)
	require.Equal(t, 87.5, latest.Score)
	require.Equal(t, 2, latest.Attempt)

	// in-progress rows never count as a submission
	_, err = repo.LatestSubmitted(context.Background(), 7, ben)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
