package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/engagekit/engage-go-api/internal/dto"
	"github.com/engagekit/engage-go-api/internal/service"
	"github.com/engagekit/engage-go-api/internal/utils"
)

// ContactHandler accepts public demo/contact-sales enquiries.
type ContactHandler struct {
	service service.ContactService
	logger  zerolog.Logger
}

// NewContactHandler constructs the handler.
func NewContactHandler(service service.ContactService, logger zerolog.Logger) *ContactHandler {
	return &ContactHandler{
		service: service,
		logger:  logger.With().Str("component", "contact_handler").Logger(),
	}
}

// Register wires the contact route.
func (h *ContactHandler) Register(router fiber.Router) {
	router.Post("", h.submit)
}

func (h *ContactHandler) submit(c *fiber.Ctx) error {
	var req dto.ContactSalesRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Submit(requestContext(c), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrContactSpam):
			// Honeypot hits get a generic acknowledgement so bots learn nothing.
			return utils.SendSuccess(c, "enquiry received", nil)
		case errors.Is(err, service.ErrContactDuplicate):
			return utils.SendError(c, fiber.StatusTooManyRequests, "enquiry already received")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to accept enquiry")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to accept enquiry")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusAccepted, "enquiry received", result)
}
