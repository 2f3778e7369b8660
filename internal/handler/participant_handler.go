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

// ParticipantHandler manages participant endpoints.
type ParticipantHandler struct {
	service service.ParticipantService
	logger  zerolog.Logger
}

// NewParticipantHandler constructs the handler.
func NewParticipantHandler(service service.ParticipantService, logger zerolog.Logger) *ParticipantHandler {
	return &ParticipantHandler{
		service: service,
		logger:  logger.With().Str("component", "participant_handler").Logger(),
	}
}

// Register wires participant routes.
func (h *ParticipantHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Patch("/:id/opt-ins", h.updateOptIns)
}

func (h *ParticipantHandler) create(c *fiber.Ctx) error {
	var req dto.ParticipantCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Create(requestContext(c), req)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to create participant")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create participant")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "participant created", result)
}

func (h *ParticipantHandler) list(c *fiber.Ctx) error {
	programID, err := parseQueryInt(c, "program_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid program_id")
	}
	if programID > 0 {
		items, err := h.service.ListByProgram(requestContext(c), uint(programID))
		if err != nil {
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to list program participants")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to list participants")
		}
		return utils.SendSuccess(c, "participants retrieved", dto.ParticipantListResponse{
			Items: items,
			Total: int64(len(items)),
		})
	}

	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	offset, err := parseQueryInt(c, "offset")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid offset")
	}

	items, total, err := h.service.List(requestContext(c), limit, offset)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list participants")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list participants")
	}

	return utils.SendSuccess(c, "participants retrieved", dto.ParticipantListResponse{
		Items: items,
		Total: total,
	})
}

func (h *ParticipantHandler) get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid participant id")
	}

	result, err := h.service.Get(requestContext(c), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "participant not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load participant")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load participant")
	}

	return utils.SendSuccess(c, "participant retrieved", result)
}

func (h *ParticipantHandler) updateOptIns(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid participant id")
	}

	var req dto.ParticipantOptInRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.UpdateOptIns(requestContext(c), id, req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "participant not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to update opt-ins")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to update opt-ins")
	}

	return utils.SendSuccess(c, "participant updated", result)
}
