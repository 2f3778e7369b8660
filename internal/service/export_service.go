package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/engagekit/engage-go-api/internal/dto"
	"github.com/engagekit/engage-go-api/internal/models"
	"github.com/engagekit/engage-go-api/internal/observability"
	"github.com/engagekit/engage-go-api/internal/repository"
)

// exportHeaderColumns are the fixed leading columns of every tabular export.
var exportHeaderColumns = []string{
	"Response ID",
	"Participant Email",
	"Participant Name",
	"Status",
	"Completion %",
	"Submitted At",
	"Created At",
}

// ExportService builds CSV/XLSX response exports and PDF statistic reports.
// A missing activity aborts before any file I/O; no partial files are left.
type ExportService interface {
	ExportCSV(ctx context.Context, activityID uint) (dto.ExportResponse, error)
	ExportXLSX(ctx context.Context, activityID uint) (dto.ExportResponse, error)
	ExportPDF(ctx context.Context, activityID uint) (dto.ExportResponse, error)
}

type exportService struct {
	activities repository.ActivityRepository
	responses  repository.ResponseRepository
	stats      StatsService
	exportDir  string
	logger     zerolog.Logger
	now        func() time.Time
}

// NewExportService constructs the export service.
func NewExportService(activities repository.ActivityRepository, responses repository.ResponseRepository, stats StatsService, exportDir string, logger zerolog.Logger) ExportService {
	return &exportService{
		activities: activities,
		responses:  responses,
		stats:      stats,
		exportDir:  exportDir,
		logger:     logger.With().Str("component", "export_service").Logger(),
		now:        time.Now,
	}
}

func (s *exportService) ExportCSV(ctx context.Context, activityID uint) (dto.ExportResponse, error) {
	rows, err := s.collectRows(ctx, activityID)
	if err != nil {
		return dto.ExportResponse{}, err
	}

	path, name, err := s.exportPath(activityID, "csv")
	if err != nil {
		return dto.ExportResponse{}, err
	}

	file, err := os.Create(path)
	if err != nil {
		return dto.ExportResponse{}, fmt.Errorf("failed to create export file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.WriteAll(rows); err != nil {
		return dto.ExportResponse{}, fmt.Errorf("failed to write csv: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return dto.ExportResponse{}, fmt.Errorf("failed to flush csv: %w", err)
	}

	observability.ExportsGenerated().WithLabelValues("csv").Inc()
	s.logger.Info().Uint("activity_id", activityID).Str("path", path).Msg("csv export generated")

	return dto.ExportResponse{ActivityID: activityID, Format: "csv", Path: path, FileName: name}, nil
}

func (s *exportService) ExportXLSX(ctx context.Context, activityID uint) (dto.ExportResponse, error) {
	rows, err := s.collectRows(ctx, activityID)
	if err != nil {
		return dto.ExportResponse{}, err
	}

	path, name, err := s.exportPath(activityID, "xlsx")
	if err != nil {
		return dto.ExportResponse{}, err
	}

	workbook := excelize.NewFile()
	defer func() { _ = workbook.Close() }()

	const sheet = "Responses"
	index, err := workbook.NewSheet(sheet)
	if err != nil {
		return dto.ExportResponse{}, fmt.Errorf("failed to create sheet: %w", err)
	}
	workbook.SetActiveSheet(index)
	_ = workbook.DeleteSheet("Sheet1")

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return dto.ExportResponse{}, fmt.Errorf("failed to address row %d: %w", i+1, err)
		}
		values := make([]interface{}, len(row))
		for j, value := range row {
			values[j] = value
		}
		if err := workbook.SetSheetRow(sheet, cell, &values); err != nil {
			return dto.ExportResponse{}, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := workbook.SaveAs(path); err != nil {
		return dto.ExportResponse{}, fmt.Errorf("failed to save workbook: %w", err)
	}

	observability.ExportsGenerated().WithLabelValues("xlsx").Inc()
	s.logger.Info().Uint("activity_id", activityID).Str("path", path).Msg("xlsx export generated")

	return dto.ExportResponse{ActivityID: activityID, Format: "xlsx", Path: path, FileName: name}, nil
}

func (s *exportService) ExportPDF(ctx context.Context, activityID uint) (dto.ExportResponse, error) {
	tracer := otel.Tracer("github.com/engagekit/engage-go-api/internal/service/export")
	ctx, span := tracer.Start(ctx, "export.pdf", trace.WithAttributes(
		attribute.Int64("export.activity_id", int64(activityID)),
	))
	defer span.End()

	stats, err := s.stats.ActivityStats(ctx, activityID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "stats_failed")
		return dto.ExportResponse{}, err
	}

	path, name, err := s.exportPath(activityID, "pdf")
	if err != nil {
		return dto.ExportResponse{}, err
	}

	doc := fpdf.New("P", "mm", "A4", "")
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 18)
	doc.Cell(0, 12, fmt.Sprintf("Activity Report: %s", stats.ActivityName))
	doc.Ln(16)

	doc.SetFont("Helvetica", "", 11)
	doc.Cell(0, 8, fmt.Sprintf("Generated: %s", s.now().Format("2006-01-02 15:04")))
	doc.Ln(12)

	doc.SetFont("Helvetica", "B", 13)
	doc.Cell(0, 10, "Participation")
	doc.Ln(10)
	doc.SetFont("Helvetica", "", 11)
	doc.Cell(0, 7, fmt.Sprintf("Total responses: %d", stats.TotalResponses))
	doc.Ln(7)
	doc.Cell(0, 7, fmt.Sprintf("Submitted: %d  In progress: %d", stats.SubmittedResponses, stats.InProgressResponses))
	doc.Ln(7)
	doc.Cell(0, 7, fmt.Sprintf("Participants: %d  Participation rate: %.1f%%", stats.ParticipantCount, stats.ParticipationRate))
	doc.Ln(12)

	doc.SetFont("Helvetica", "B", 13)
	doc.Cell(0, 10, "Completion Distribution")
	doc.Ln(10)
	doc.SetFont("Helvetica", "", 11)
	for _, bucket := range stats.CompletionDistribution {
		doc.Cell(40, 7, bucket.Label)
		doc.Cell(0, 7, fmt.Sprintf("%d", bucket.Count))
		doc.Ln(7)
	}
	doc.Ln(5)

	doc.SetFont("Helvetica", "B", 13)
	doc.Cell(0, 10, "Questions")
	doc.Ln(10)
	doc.SetFont("Helvetica", "", 10)
	for i, question := range stats.Questions {
		text := question.Text
		if len(text) > 80 {
			text = text[:77] + "..."
		}
		doc.MultiCell(0, 6, fmt.Sprintf("%d. %s", i+1, text), "", "L", false)
		doc.Cell(0, 6, fmt.Sprintf("    answers: %d   completion: %.1f%%", question.AnswerCount, question.CompletionRate))
		doc.Ln(8)
	}

	if err := doc.OutputFileAndClose(path); err != nil {
		return dto.ExportResponse{}, fmt.Errorf("failed to write pdf: %w", err)
	}

	observability.ExportsGenerated().WithLabelValues("pdf").Inc()
	s.logger.Info().Uint("activity_id", activityID).Str("path", path).Msg("pdf report generated")

	return dto.ExportResponse{ActivityID: activityID, Format: "pdf", Path: path, FileName: name}, nil
}

// collectRows loads the activity, its ordered questions and all responses, and
// flattens them into header + one row per response. All lookups happen before
// any file is touched.
func (s *exportService) collectRows(ctx context.Context, activityID uint) ([][]string, error) {
	activity, err := s.activities.FindByID(ctx, activityID)
	if err != nil {
		return nil, err
	}

	questions, err := s.activities.ListQuestions(ctx, activity.ID)
	if err != nil {
		return nil, err
	}

	responses, err := s.responses.ListByActivity(ctx, activity.ID)
	if err != nil {
		return nil, err
	}

	return buildExportRows(questions, responses), nil
}

// buildExportRows produces the header plus one row per response: 7 fixed
// columns followed by one column per question.
func buildExportRows(questions []models.Question, responses []models.Response) [][]string {
	header := make([]string, 0, len(exportHeaderColumns)+len(questions))
	header = append(header, exportHeaderColumns...)
	for _, question := range questions {
		header = append(header, question.Text)
	}

	rows := make([][]string, 0, len(responses)+1)
	rows = append(rows, header)

	for _, response := range responses {
		row := make([]string, 0, len(header))

		email := ""
		name := ""
		if response.Participant != nil {
			email = response.Participant.Email
			name = response.Participant.Name
		}

		submittedAt := ""
		if response.SubmittedAt != nil {
			submittedAt = response.SubmittedAt.Format(time.RFC3339)
		}

		row = append(row,
			fmt.Sprintf("%d", response.ID),
			email,
			name,
			response.Status,
			fmt.Sprintf("%.0f", response.Completion),
			submittedAt,
			response.CreatedAt.Format(time.RFC3339),
		)

		answers := make(map[uint]models.Answer, len(response.Answers))
		for _, answer := range response.Answers {
			answers[answer.QuestionID] = answer
		}

		for _, question := range questions {
			row = append(row, answerCell(answers[question.ID]))
		}

		rows = append(rows, row)
	}

	return rows
}

// answerCell renders one answer: array values comma-joined, then the scalar
// value, else empty.
func answerCell(answer models.Answer) string {
	if len(answer.ValueArray) > 0 {
		var values []interface{}
		if err := json.Unmarshal(answer.ValueArray, &values); err == nil && len(values) > 0 {
			parts := make([]string, 0, len(values))
			for _, value := range values {
				parts = append(parts, fmt.Sprintf("%v", value))
			}
			return strings.Join(parts, ", ")
		}
	}
	return answer.Value
}

func (s *exportService) exportPath(activityID uint, extension string) (string, string, error) {
	if err := os.MkdirAll(s.exportDir, 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create export directory: %w", err)
	}

	name := fmt.Sprintf("activity_%d_responses_%s.%s", activityID, s.now().Format("2006-01-02_150405"), extension)
	return filepath.Join(s.exportDir, name), name, nil
}
