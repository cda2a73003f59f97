package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/easyaudit-api/internal/models"
)

// Sort orders accepted by ActivityFilter.
const (
	OrderNone = ""
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// ActivityFilter controls ordering and pagination of activity queries.
type ActivityFilter struct {
	Page     int
	PageSize int
	Order    string
}

// ActivityRepository persists and queries audit activities. It exposes no update path.
type ActivityRepository interface {
	Create(ctx context.Context, entry *models.Activity) error
	FindByID(ctx context.Context, id uint) (*models.Activity, error)
	List(ctx context.Context, filter ActivityFilter, scopes ...Scope) ([]models.Activity, int64, error)
}

type activityRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewActivityRepository constructs the activity repository.
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db, now: time.Now}
}

func (r *activityRepository) Create(ctx context.Context, entry *models.Activity) error {
	entry.ID = 0
	entry.CreatedAt = r.now().UTC()
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

func (r *activityRepository) FindByID(ctx context.Context, id uint) (*models.Activity, error) {
	var entry models.Activity
	err := r.db.WithContext(ctx).First(&entry, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find activity %d: %w", id, err)
	}
	return &entry, nil
}

func (r *activityRepository) List(ctx context.Context, filter ActivityFilter, scopes ...Scope) ([]models.Activity, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Activity{})
	for _, scope := range scopes {
		if scope != nil {
			query = scope(query)
		}
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count activities: %w", err)
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		offset := (page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	switch strings.ToLower(strings.TrimSpace(filter.Order)) {
	case OrderAsc:
		query = query.Order("created_at ASC").Order("id ASC")
	case OrderDesc:
		query = query.Order("created_at DESC").Order("id DESC")
	}

	var entries []models.Activity
	if err := query.Find(&entries).Error; err != nil {
		return nil, 0, fmt.Errorf("list activities: %w", err)
	}

	return entries, total, nil
}
