package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/engagekit/engage-go-api/internal/dto"
	"github.com/engagekit/engage-go-api/internal/service"
	"github.com/engagekit/engage-go-api/internal/utils"
)

// TemplateHandler manages notification template endpoints.
type TemplateHandler struct {
	service service.TemplateService
	logger  zerolog.Logger
}

// NewTemplateHandler constructs the handler.
func NewTemplateHandler(service service.TemplateService, logger zerolog.Logger) *TemplateHandler {
	return &TemplateHandler{
		service: service,
		logger:  logger.With().Str("component", "template_handler").Logger(),
	}
}

// Register wires template routes under an activity scope.
func (h *TemplateHandler) Register(router fiber.Router) {
	router.Get("/:id/templates", h.list)
	router.Put("/:id/templates", h.upsert)
	router.Delete("/:id/templates/:templateId", h.delete)
}

func (h *TemplateHandler) list(c *fiber.Ctx) error {
	activityID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid activity id")
	}

	result, err := h.service.List(requestContext(c), activityID)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list templates")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list templates")
	}

	return utils.SendSuccess(c, "templates retrieved", result)
}

func (h *TemplateHandler) upsert(c *fiber.Ctx) error {
	activityID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid activity id")
	}

	var req dto.TemplateUpsertRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Upsert(requestContext(c), activityID, req)
	if err != nil {
		if isValidationError(err) || errors.Is(err, service.ErrUnknownEvent) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to save template")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to save template")
	}

	return utils.SendSuccess(c, "template saved", result)
}

func (h *TemplateHandler) delete(c *fiber.Ctx) error {
	templateID, err := parseIDParam(c, "templateId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid template id")
	}

	if err := h.service.Delete(requestContext(c), templateID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "template not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete template")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete template")
	}

	return utils.SendSuccess(c, "template deleted", nil)
}
