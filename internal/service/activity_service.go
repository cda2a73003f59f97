package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/easyaudit-api/internal/dto"
	"github.com/noah-isme/easyaudit-api/internal/events"
	"github.com/noah-isme/easyaudit-api/internal/i18n"
	"github.com/noah-isme/easyaudit-api/internal/models"
	"github.com/noah-isme/easyaudit-api/internal/observability"
	"github.com/noah-isme/easyaudit-api/internal/repository"
)

const (
	defaultPageSize = 25
	maxPageSize     = 200
)

// ActivityRecorder defines behaviour for recording activities.
type ActivityRecorder interface {
	Record(ctx context.Context, input models.ActivityInput) (dto.ActivityResponse, error)
}

// ActivityService exposes methods to persist and query activities.
type ActivityService interface {
	ActivityRecorder
	Get(ctx context.Context, id uint, locale string) (dto.ActivityResponse, bool, error)
	List(ctx context.Context, req dto.ActivityListRequest) (dto.ActivityListResponse, error)
}

// ActivityServiceConfig carries the tunables of the activity service.
type ActivityServiceConfig struct {
	MaxPropertiesBytes int
}

type activityService struct {
	repo       repository.ActivityRepository
	validator  *validator.Validate
	translator *i18n.Translator
	resolver   *SourceNameResolver
	publisher  events.Publisher
	cfg        ActivityServiceConfig
	logger     zerolog.Logger
	tracer     trace.Tracer
}

// NewActivityService constructs the activity service.
func NewActivityService(
	repo repository.ActivityRepository,
	validate *validator.Validate,
	translator *i18n.Translator,
	resolver *SourceNameResolver,
	publisher events.Publisher,
	cfg ActivityServiceConfig,
	logger zerolog.Logger,
) ActivityService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if cfg.MaxPropertiesBytes <= 0 {
		cfg.MaxPropertiesBytes = DefaultMaxPropertiesBytes
	}
	return &activityService{
		repo:       repo,
		validator:  validate,
		translator: translator,
		resolver:   resolver,
		publisher:  publisher,
		cfg:        cfg,
		logger:     logger.With().Str("component", "activity_service").Logger(),
		tracer:     otel.Tracer("github.com/noah-isme/easyaudit-api/internal/service/activity"),
	}
}

func (s *activityService) Record(ctx context.Context, input models.ActivityInput) (dto.ActivityResponse, error) {
	ctx, span := s.tracer.Start(ctx, "activity.record")
	defer span.End()

	locale := i18n.LocaleFromContext(ctx)
	if locale == "" {
		locale = s.defaultLocale()
	}
	if err := ValidateActivityInput(s.validator, s.translator, locale, &input, s.cfg.MaxPropertiesBytes); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		observability.ActivitiesRejected().WithLabelValues("validation").Inc()
		return dto.ActivityResponse{}, err
	}

	model := models.NewActivity(input)
	span.SetAttributes(attribute.String("activity.event", model.Event))

	if err := s.repo.Create(ctx, &model); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		observability.ActivitiesRejected().WithLabelValues("storage").Inc()
		s.logger.Error().Err(err).Str("event", model.Event).Msg("failed to persist activity")
		return dto.ActivityResponse{}, err
	}
	span.SetAttributes(attribute.Int64("activity.id", int64(model.ID)))
	observability.ActivitiesRecorded().Inc()

	response := s.toResponse(ctx, model, locale)
	if err := s.publisher.Publish(ctx, response); err != nil {
		s.logger.Warn().Err(err).Uint("activity_id", model.ID).Msg("failed to publish recorded activity")
	}

	return response, nil
}

func (s *activityService) Get(ctx context.Context, id uint, locale string) (dto.ActivityResponse, bool, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return dto.ActivityResponse{}, false, err
	}
	if entry == nil {
		return dto.ActivityResponse{}, false, nil
	}
	return s.toResponse(ctx, *entry, locale), true, nil
}

func (s *activityService) List(ctx context.Context, req dto.ActivityListRequest) (dto.ActivityListResponse, error) {
	ctx, span := s.tracer.Start(ctx, "activity.list", trace.WithAttributes(
		attribute.StringSlice("activity.events", req.Events),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		observability.ActivityListLatency().Observe(time.Since(start).Seconds())
	}()

	page := maxInt(req.Page, 1)
	pageSize := clampPageSize(req.PageSize)

	scopes := make([]repository.Scope, 0, 4)
	if len(req.Events) > 0 {
		scopes = append(scopes, repository.WithEvent(req.Events...))
	}
	if req.Subject != nil {
		scopes = append(scopes, repository.ForSubject(*req.Subject))
	}
	if req.Source != nil {
		scopes = append(scopes, repository.FromSource(*req.Source))
	}
	if req.Since != nil || req.Until != nil {
		scopes = append(scopes, repository.CreatedBetween(req.Since, req.Until))
	}

	filter := repository.ActivityFilter{
		Page:     page,
		PageSize: pageSize,
		Order:    req.Order,
	}

	entries, total, err := s.repo.List(ctx, filter, scopes...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list failed")
		return dto.ActivityListResponse{}, err
	}

	items := make([]dto.ActivityResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, s.toResponse(ctx, entry, req.Locale))
	}

	pagination := dto.PaginationMeta{
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	}

	return dto.ActivityListResponse{Items: items, Pagination: pagination}, nil
}

func (s *activityService) toResponse(ctx context.Context, entry models.Activity, locale string) dto.ActivityResponse {
	name := ""
	if s.resolver != nil {
		name = s.resolver.Resolve(ctx, entry, locale)
	} else if entry.SourceName != nil {
		name = *entry.SourceName
	}
	return dto.NewActivityResponse(entry, name)
}

func (s *activityService) defaultLocale() string {
	if s.translator == nil {
		return ""
	}
	return s.translator.DefaultLocale()
}

// IsValidationError reports whether err came from the validation gate.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

func clampPageSize(size int) int {
	switch {
	case size <= 0:
		return defaultPageSize
	case size > maxPageSize:
		return maxPageSize
	default:
		return size
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
