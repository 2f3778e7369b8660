package service

import (
	"context"
	"encoding/csv"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"

	"github.com/engagekit/engage-go-api/internal/models"
)

func exportFixture(t *testing.T) (*activityRepoStub, *responseRepoStub, ExportService) {
	t.Helper()

	activities := newActivityRepoStub()
	activities.activities[1] = models.Activity{ID: 1, ProgramID: 2, Name: "Pulse", Status: models.ActivityStatusLive}
	activities.questions[1] = []models.Question{
		{ID: 10, ActivityID: 1, Text: "How satisfied are you?", Position: 1},
		{ID: 11, ActivityID: 1, Text: "Which tools do you use?", Position: 2},
	}

	submitted := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	pid := uint(1)
	responses := &responseRepoStub{responses: []models.Response{
		{
			ID:            100,
			ActivityID:    1,
			ParticipantID: &pid,
			Status:        models.ResponseStatusSubmitted,
			Completion:    100,
			SubmittedAt:   &submitted,
			Participant:   &models.Participant{ID: 1, Name: "Ada", Email: "ada@example.com"},
			Answers: []models.Answer{
				{QuestionID: 10, Value: "Very satisfied"},
				{QuestionID: 11, ValueArray: datatypes.JSON(`["Slack","Jira"]`)},
			},
		},
		{
			ID:         101,
			ActivityID: 1,
			Status:     models.ResponseStatusInProgress,
			Completion: 40,
			Answers:    []models.Answer{{QuestionID: 10, Value: "Neutral"}},
		},
	}}

	participants := &participantRepoStub{participants: []models.Participant{
		{ID: 1, Name: "Ada", Status: models.ParticipantStatusActive},
		{ID: 2, Name: "Ben", Status: models.ParticipantStatusActive},
	}}
	stats := NewStatsService(activities, responses, participants, nil, time.Minute, testLogger())
	svc := NewExportService(activities, responses, stats, t.TempDir(), testLogger())
	return activities, responses, svc
}

func TestBuildExportRowsShape(t *testing.T) {
	_, responses, _ := exportFixture(t)
	questions := []models.Question{
		{ID: 10, Text: "How satisfied are you?"},
		{ID: 11, Text: "Which tools do you use?"},
	}

	rows := buildExportRows(questions, responses.responses)
	require.Len(t, rows, 3) // header + 2 responses
	for _, row := range rows {
		require.Len(t, row, len(exportHeaderColumns)+len(questions))
	}

	require.Equal(t, "Response ID", rows[0][0])
	require.Equal(t, "How satisfied are you?", rows[0][7])

	// array answers are comma-joined, scalars pass through, missing stays empty
	require.Equal(t, "Slack, Jira", rows[1][8])
	require.Equal(t, "Very satisfied", rows[1][7])
	require.Equal(t, "", rows[2][8])
	require.Equal(t, "Neutral", rows[2][7])

	require.Equal(t, "100", rows[1][4])
	require.Equal(t, "40", rows[2][4])
	require.Equal(t, "ada@example.com", rows[1][1])
	require.Equal(t, "", rows[2][1])
}

func TestExportCSVWritesFile(t *testing.T) {
	_, _, svc := exportFixture(t)

	result, err := svc.ExportCSV(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "csv", result.Format)
	require.Regexp(t, `^activity_1_responses_\d{4}-\d{2}-\d{2}_\d{6}\.csv$`, result.FileName)

	file, err := os.Open(result.Path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Len(t, rows[0], 9)
}

func TestExportXLSXWritesWorkbook(t *testing.T) {
	_, _, svc := exportFixture(t)

	result, err := svc.ExportXLSX(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "xlsx", result.Format)

	workbook, err := excelize.OpenFile(result.Path)
	require.NoError(t, err)
	defer workbook.Close()

	rows, err := workbook.GetRows("Responses")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, "Response ID", rows[0][0])
	require.Equal(t, "Slack, Jira", rows[1][8])
}

func TestExportPDFWritesReport(t *testing.T) {
	_, _, svc := exportFixture(t)

	result, err := svc.ExportPDF(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "pdf", result.Format)

	info, err := os.Stat(result.Path)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}

func TestExportUnknownActivityLeavesNoFile(t *testing.T) {
	activities := newActivityRepoStub()
	dir := t.TempDir()
	svc := NewExportService(activities, &responseRepoStub{}, nil, dir, testLogger())

	_, err := svc.ExportCSV(context.Background(), 42)
	require.Error(t, err)

	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	require.Empty(t, entries)
}
