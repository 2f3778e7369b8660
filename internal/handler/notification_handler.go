package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/engagekit/engage-go-api/internal/dto"
	"github.com/engagekit/engage-go-api/internal/middleware"
	"github.com/engagekit/engage-go-api/internal/service"
	"github.com/engagekit/engage-go-api/internal/utils"
)

// NotificationHandler triggers dispatches and exposes the audit trail.
type NotificationHandler struct {
	service service.NotificationService
	logger  zerolog.Logger
}

// NewNotificationHandler constructs the handler.
func NewNotificationHandler(service service.NotificationService, logger zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		logger:  logger.With().Str("component", "notification_handler").Logger(),
	}
}

// Register wires notification routes under an activity scope.
func (h *NotificationHandler) Register(router fiber.Router) {
	router.Post("/:id/notifications/dispatch", middleware.RateLimit("dispatch", 10, time.Minute), h.dispatch)
	router.Get("/:id/notifications", h.listAudit)
	router.Get("/:id/notifications/reports", h.listReports)
}

func (h *NotificationHandler) dispatch(c *fiber.Ctx) error {
	activityID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid activity id")
	}

	var req dto.DispatchRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	summary, err := h.service.Dispatch(requestContext(c), activityID, req)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "activity not found")
		case isValidationError(err) || errors.Is(err, service.ErrUnknownEvent):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to dispatch notifications")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to dispatch notifications")
	}

	return utils.SendSuccess(c, "notifications dispatched", summary)
}

func (h *NotificationHandler) listAudit(c *fiber.Ctx) error {
	activityID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid activity id")
	}
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	offset, err := parseQueryInt(c, "offset")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid offset")
	}

	result, err := h.service.ListAudit(requestContext(c), activityID, limit, offset)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list notifications")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list notifications")
	}

	return utils.SendSuccess(c, "notifications retrieved", result)
}

func (h *NotificationHandler) listReports(c *fiber.Ctx) error {
	activityID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid activity id")
	}

	result, err := h.service.ListReports(requestContext(c), activityID)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list dispatch reports")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list dispatch reports")
	}

	return utils.SendSuccess(c, "dispatch reports retrieved", result)
}
