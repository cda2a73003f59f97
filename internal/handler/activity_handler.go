package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/easyaudit-api/internal/dto"
	"github.com/noah-isme/easyaudit-api/internal/i18n"
	"github.com/noah-isme/easyaudit-api/internal/middleware"
	"github.com/noah-isme/easyaudit-api/internal/models"
	"github.com/noah-isme/easyaudit-api/internal/repository"
	"github.com/noah-isme/easyaudit-api/internal/service"
	"github.com/noah-isme/easyaudit-api/internal/utils"
)

// ActivityHandler exposes the activity log endpoints.
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

// Register attaches activity routes. read and write guard the query and insert routes respectively.
func (h *ActivityHandler) Register(router fiber.Router, read, write []fiber.Handler) {
	router.Get("", chain(read, h.list)...)
	router.Get("/:id", chain(read, h.get)...)
	router.Post("", chain(write, h.create)...)
}

func chain(guards []fiber.Handler, final fiber.Handler) []fiber.Handler {
	handlers := make([]fiber.Handler, 0, len(guards)+1)
	handlers = append(handlers, guards...)
	return append(handlers, final)
}

func (h *ActivityHandler) create(c *fiber.Ctx) error {
	var payload models.ActivityInput
	if err := decodeJSONBody(c, &payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	ctx := i18n.WithLocale(c.UserContext(), middleware.GetLocale(c))
	entry, err := h.service.Record(ctx, payload)
	if err != nil {
		var validationErr *service.ValidationError
		if errors.As(err, &validationErr) {
			return utils.SendValidationError(c, fiber.StatusUnprocessableEntity, "invalid activity", validationErr.Fields)
		}
		h.requestLogger(c).Error().Err(err).Msg("failed to record activity")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to record activity")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "activity recorded", entry)
}

func (h *ActivityHandler) get(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid activity id")
	}

	entry, found, err := h.service.Get(c.UserContext(), uint(id), middleware.GetLocale(c))
	if err != nil {
		h.requestLogger(c).Error().Err(err).Uint64("activity_id", id).Msg("failed to load activity")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load activity")
	}
	if !found {
		return utils.SendError(c, fiber.StatusNotFound, "activity not found")
	}

	return utils.SendSuccess(c, "activity", entry)
}

func (h *ActivityHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}

	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}

	subject, ok := queryReference(c, "subject")
	if !ok {
		return utils.SendError(c, fiber.StatusBadRequest, "subject_type and subject_id must be given together")
	}
	source, ok := queryReference(c, "source")
	if !ok {
		return utils.SendError(c, fiber.StatusBadRequest, "source_type and source_id must be given together")
	}

	since, err := parseQueryTime(c, "since")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid since timestamp")
	}
	until, err := parseQueryTime(c, "until")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid until timestamp")
	}

	order := strings.ToLower(strings.TrimSpace(c.Query("order")))
	switch order {
	case repository.OrderNone, repository.OrderAsc, repository.OrderDesc:
	default:
		return utils.SendError(c, fiber.StatusBadRequest, "order must be asc or desc")
	}

	req := dto.ActivityListRequest{
		Page:     page,
		PageSize: pageSize,
		Events:   queryList(c, "event"),
		Subject:  subject,
		Source:   source,
		Since:    since,
		Until:    until,
		Order:    order,
		Locale:   middleware.GetLocale(c),
	}

	response, err := h.service.List(c.UserContext(), req)
	if err != nil {
		h.requestLogger(c).Error().Err(err).Msg("failed to list activities")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list activities")
	}

	return utils.SendSuccess(c, "activities", response)
}

func (h *ActivityHandler) requestLogger(c *fiber.Ctx) *zerolog.Logger {
	logger := h.logger
	if correlation := middleware.GetCorrelationID(c); correlation != "" {
		logger = h.logger.With().Str("correlation_id", correlation).Logger()
	}
	return &logger
}
