package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/engagekit/engage-go-api/internal/dto"
	"github.com/engagekit/engage-go-api/internal/repository"
	"github.com/engagekit/engage-go-api/internal/service"
	"github.com/engagekit/engage-go-api/internal/utils"
)

// ActivityHandler manages activity CRUD and lifecycle endpoints.
type ActivityHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewActivityHandler constructs the handler.
func NewActivityHandler(service service.ActivityService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		service: service,
		logger:  logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register wires activity routes.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Patch("/:id/status", h.updateStatus)
	router.Patch("/:id/assign", h.assign)
	router.Delete("/:id", h.delete)
}

func (h *ActivityHandler) create(c *fiber.Ctx) error {
	var req dto.ActivityCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Create(requestContext(c), userIDFromContext(c), req)
	if err != nil {
		if isValidationError(err) || errors.Is(err, service.ErrInvalidSettings) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to create activity")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create activity")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "activity created", result)
}

func (h *ActivityHandler) list(c *fiber.Ctx) error {
	programID, err := parseQueryInt(c, "program_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid program_id")
	}
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	offset, err := parseQueryInt(c, "offset")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid offset")
	}

	filter := repository.ActivityFilter{
		Status: c.Query("status"),
		Limit:  limit,
		Offset: offset,
	}
	if programID > 0 {
		filter.ProgramID = uint(programID)
	}

	result, err := h.service.List(requestContext(c), filter)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list activities")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list activities")
	}

	return utils.SendSuccess(c, "activities retrieved", result)
}

func (h *ActivityHandler) get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid activity id")
	}

	result, err := h.service.Get(requestContext(c), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "activity not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load activity")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load activity")
	}

	return utils.SendSuccess(c, "activity retrieved", result)
}

func (h *ActivityHandler) update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid activity id")
	}

	var req dto.ActivityUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Update(requestContext(c), id, req)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "activity not found")
		case isValidationError(err) || errors.Is(err, service.ErrInvalidSettings):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to update activity")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to update activity")
	}

	return utils.SendSuccess(c, "activity updated", result)
}

func (h *ActivityHandler) updateStatus(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid activity id")
	}

	var req dto.ActivityStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.UpdateStatus(requestContext(c), id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "activity not found")
		case errors.Is(err, service.ErrInvalidTransition):
			return utils.SendError(c, fiber.StatusConflict, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to update activity status")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to update activity status")
	}

	return utils.SendSuccess(c, "activity status updated", result)
}

func (h *ActivityHandler) assign(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid activity id")
	}

	var req dto.ActivityAssignRequest
	if err := c.BodyParser(&req); err != nil || req.UserID == 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Assign(requestContext(c), id, req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "activity not found")
		case errors.Is(err, service.ErrUnknownAssignee):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to assign activity")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to assign activity")
	}

	return utils.SendSuccess(c, "activity assigned", result)
}

func (h *ActivityHandler) delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid activity id")
	}

	if err := h.service.Delete(requestContext(c), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "activity not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete activity")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete activity")
	}

	return utils.SendSuccess(c, "activity deleted", nil)
}
