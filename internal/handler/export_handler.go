package handler

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/engagekit/engage-go-api/internal/dto"
	"github.com/engagekit/engage-go-api/internal/service"
	"github.com/engagekit/engage-go-api/internal/utils"
)

// ExportHandler manages response export generation and download.
type ExportHandler struct {
	service   service.ExportService
	exportDir string
	logger    zerolog.Logger
}

// NewExportHandler constructs the handler.
func NewExportHandler(service service.ExportService, exportDir string, logger zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		service:   service,
		exportDir: exportDir,
		logger:    logger.With().Str("component", "export_handler").Logger(),
	}
}

// Register wires export routes.
func (h *ExportHandler) Register(router fiber.Router) {
	router.Post("/:id/exports", h.create)
	router.Get("/exports/:filename", h.download)
}

func (h *ExportHandler) create(c *fiber.Ctx) error {
	activityID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid activity id")
	}

	format := strings.ToLower(strings.TrimSpace(c.Query("format", "csv")))

	var result dto.ExportResponse
	ctx := requestContext(c)
	switch format {
	case "csv":
		result, err = h.service.ExportCSV(ctx, activityID)
	case "xlsx":
		result, err = h.service.ExportXLSX(ctx, activityID)
	case "pdf":
		result, err = h.service.ExportPDF(ctx, activityID)
	default:
		return utils.SendError(c, fiber.StatusBadRequest, "unsupported export format")
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "activity not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Str("format", format).Msg("failed to generate export")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to generate export")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "export generated", result)
}

func (h *ExportHandler) download(c *fiber.Ctx) error {
	filename := filepath.Base(strings.TrimSpace(c.Params("filename")))
	if filename == "" || filename == "." {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid file name")
	}

	path := filepath.Join(h.exportDir, filename)
	if _, err := os.Stat(path); err != nil {
		return utils.SendError(c, fiber.StatusNotFound, "export not found")
	}

	if detected, err := mimetype.DetectFile(path); err == nil {
		c.Set(fiber.HeaderContentType, detected.String())
	}
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)

	return c.SendFile(path)
}
