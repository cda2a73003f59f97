package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/easyaudit-api/internal/dto"
	"github.com/noah-isme/easyaudit-api/internal/i18n"
	"github.com/noah-isme/easyaudit-api/internal/models"
	"github.com/noah-isme/easyaudit-api/internal/registry"
	"github.com/noah-isme/easyaudit-api/internal/repository"
)

type memoryActivityRepo struct {
	mu        sync.Mutex
	entries   []models.Activity
	lastScope int
	err       error
}

func (m *memoryActivityRepo) Create(ctx context.Context, entry *models.Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	entry.ID = uint(len(m.entries) + 1)
	entry.CreatedAt = time.Now().UTC()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memoryActivityRepo) FindByID(ctx context.Context, id uint) (*models.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, entry := range m.entries {
		if entry.ID == id {
			found := entry
			return &found, nil
		}
	}
	return nil, nil
}

func (m *memoryActivityRepo) List(ctx context.Context, filter repository.ActivityFilter, scopes ...repository.Scope) ([]models.Activity, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastScope = len(scopes)
	return append([]models.Activity(nil), m.entries...), int64(len(m.entries)), nil
}

type recordingPublisher struct {
	published []dto.ActivityResponse
	err       error
}

func (p *recordingPublisher) Publish(ctx context.Context, activity dto.ActivityResponse) error {
	p.published = append(p.published, activity)
	return p.err
}

func newTestActivityService(t *testing.T, repo repository.ActivityRepository, lookup registry.EntityLookup, publisher *recordingPublisher) ActivityService {
	t.Helper()
	translator, err := i18n.New("en")
	require.NoError(t, err)
	validate, err := NewValidator(translator)
	require.NoError(t, err)
	resolver := NewSourceNameResolver(lookup, translator, testLogger())
	return NewActivityService(repo, validate, translator, resolver, publisher, ActivityServiceConfig{MaxPropertiesBytes: 256}, testLogger())
}

func TestActivityServiceRecordAcceptsEventBounds(t *testing.T) {
	for _, event := range []string{"x", "user.login", " login", strings.Repeat("e", 255), strings.Repeat("é", 255)} {
		repo := &memoryActivityRepo{}
		svc := newTestActivityService(t, repo, nil, &recordingPublisher{})

		entry, err := svc.Record(context.Background(), models.ActivityInput{Event: event})
		require.NoError(t, err)
		require.Equal(t, event, entry.Event)
		require.NotZero(t, entry.ID)
		require.Len(t, repo.entries, 1)
		require.Equal(t, event, repo.entries[0].Event)
	}
}

func TestActivityServiceRecordRejectsInvalidEvents(t *testing.T) {
	for _, event := range []string{"", "   ", strings.Repeat("e", 256), strings.Repeat("e", 255) + " "} {
		repo := &memoryActivityRepo{}
		publisher := &recordingPublisher{}
		svc := newTestActivityService(t, repo, nil, publisher)

		_, err := svc.Record(context.Background(), models.ActivityInput{Event: event})
		require.Error(t, err)
		require.True(t, IsValidationError(err))

		var validationErr *ValidationError
		require.True(t, errors.As(err, &validationErr))
		require.Contains(t, validationErr.Fields, "event")
		require.Empty(t, repo.entries, "nothing persisted on validation failure")
		require.Empty(t, publisher.published)
	}
}

func TestActivityServiceRecordRejectsPartialReferenceAndLargeProperties(t *testing.T) {
	repo := &memoryActivityRepo{}
	svc := newTestActivityService(t, repo, nil, &recordingPublisher{})

	_, err := svc.Record(context.Background(), models.ActivityInput{
		Event:   "post.updated",
		Subject: &models.Reference{Type: "post"},
	})
	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	require.Contains(t, validationErr.Fields, "subject.id")

	_, err = svc.Record(context.Background(), models.ActivityInput{
		Event:  "post.updated",
		Source: &models.Reference{Type: "  ", ID: "1"},
	})
	require.True(t, errors.As(err, &validationErr))
	require.Contains(t, validationErr.Fields, "source.type")

	entry, err := svc.Record(context.Background(), models.ActivityInput{
		Event:   "post.updated",
		Subject: &models.Reference{Type: " post ", ID: " 5 "},
	})
	require.NoError(t, err)
	require.Equal(t, &models.Reference{Type: "post", ID: "5"}, entry.Subject)
	require.Equal(t, "5", *repo.entries[0].SubjectID)
	repo.entries = nil

	_, err = svc.Record(context.Background(), models.ActivityInput{
		Event:      "post.updated",
		Properties: map[string]interface{}{"body": strings.Repeat("a", 300)},
	})
	require.True(t, errors.As(err, &validationErr))
	require.Contains(t, validationErr.Fields, "properties")
	require.Empty(t, repo.entries)
}

func TestActivityServiceRecordPublishesVerbatim(t *testing.T) {
	repo := &memoryActivityRepo{}
	publisher := &recordingPublisher{err: errors.New("nats down")}
	svc := newTestActivityService(t, repo, nil, publisher)

	entry, err := svc.Record(context.Background(), models.ActivityInput{
		Event:      "  user.login  ",
		Source:     &models.Reference{Type: "user", ID: "1"},
		SourceName: "<b>Tom & Jerry</b>",
		Properties: map[string]interface{}{"ip": "127.0.0.1"},
	})
	require.NoError(t, err, "publish failures do not fail the insert")
	require.Equal(t, "  user.login  ", entry.Event)
	require.Equal(t, "<b>Tom & Jerry</b>", entry.SourceName)
	require.Equal(t, "127.0.0.1", entry.Properties["ip"])
	require.Len(t, publisher.published, 1)
	require.Equal(t, entry.ID, publisher.published[0].ID)
}

func TestActivityServiceRecordPropagatesStorageErrors(t *testing.T) {
	storageErr := errors.New("database unreachable")
	repo := &memoryActivityRepo{err: storageErr}
	svc := newTestActivityService(t, repo, nil, &recordingPublisher{})

	_, err := svc.Record(context.Background(), models.ActivityInput{Event: "user.login"})
	require.ErrorIs(t, err, storageErr)
	require.False(t, IsValidationError(err))
}

func TestActivityServiceGet(t *testing.T) {
	repo := &memoryActivityRepo{}
	svc := newTestActivityService(t, repo, nil, &recordingPublisher{})

	created, err := svc.Record(context.Background(), models.ActivityInput{Event: "user.logout"})
	require.NoError(t, err)

	found, ok, err := svc.Get(context.Background(), created.ID, "en")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "user.logout", found.Event)
	require.Equal(t, "Unknown source", found.SourceName)

	_, ok, err = svc.Get(context.Background(), 999, "en")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestActivityServiceListBuildsScopesAndPagination(t *testing.T) {
	repo := &memoryActivityRepo{}
	svc := newTestActivityService(t, repo, nil, &recordingPublisher{})

	for _, event := range []string{"a", "b", "c"} {
		_, err := svc.Record(context.Background(), models.ActivityInput{Event: event})
		require.NoError(t, err)
	}

	since := time.Now().Add(-time.Hour)
	response, err := svc.List(context.Background(), dto.ActivityListRequest{
		Events:   []string{"a", "b"},
		Subject:  &models.Reference{Type: "post", ID: "1"},
		Source:   &models.Reference{Type: "user", ID: "1"},
		Since:    &since,
		PageSize: 2,
		Locale:   "id",
	})
	require.NoError(t, err)
	require.Equal(t, 4, repo.lastScope)
	require.Equal(t, 1, response.Pagination.Page)
	require.Equal(t, 2, response.Pagination.PageSize)
	require.Equal(t, int64(3), response.Pagination.TotalItems)
	require.Equal(t, 2, response.Pagination.TotalPages)
	require.Equal(t, "Sumber tidak diketahui", response.Items[0].SourceName)

	response, err = svc.List(context.Background(), dto.ActivityListRequest{PageSize: 1000})
	require.NoError(t, err)
	require.Equal(t, 0, repo.lastScope)
	require.Equal(t, maxPageSize, response.Pagination.PageSize)
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func TestActivityServiceRecordLocalizesValidationFromContext(t *testing.T) {
	svc := newTestActivityService(t, &memoryActivityRepo{}, nil, &recordingPublisher{})

	_, err := svc.Record(i18n.WithLocale(context.Background(), "id"), models.ActivityInput{})
	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	require.Contains(t, validationErr.Fields["event"], "wajib")
}
