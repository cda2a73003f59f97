package dto

import (
	"time"

	"github.com/noah-isme/easyaudit-api/internal/models"
)

// PaginationMeta captures pagination metadata for list responses.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// ActivityListRequest defines filters for retrieving activities.
type ActivityListRequest struct {
	Page     int
	PageSize int
	Events   []string
	Subject  *models.Reference
	Source   *models.Reference
	Since    *time.Time
	Until    *time.Time
	Order    string
	Locale   string
}

// ActivityResponse serializes an activity together with its resolved source name.
type ActivityResponse struct {
	ID         uint                   `json:"id"`
	Event      string                 `json:"event"`
	Properties map[string]interface{} `json:"properties"`
	Subject    *models.Reference      `json:"subject"`
	Source     *models.Reference      `json:"source"`
	SourceName string                 `json:"source_name"`
	CreatedAt  time.Time              `json:"created_at"`
}

// ActivityListResponse wraps paginated activities.
type ActivityListResponse struct {
	Items      []ActivityResponse `json:"items"`
	Pagination PaginationMeta     `json:"pagination"`
}

// NewActivityResponse converts a model into an activity DTO using the given display name.
func NewActivityResponse(entry models.Activity, sourceName string) ActivityResponse {
	properties := map[string]interface{}(entry.Properties)
	if properties == nil {
		properties = map[string]interface{}{}
	}
	return ActivityResponse{
		ID:         entry.ID,
		Event:      entry.Event,
		Properties: properties,
		Subject:    entry.Subject(),
		Source:     entry.Source(),
		SourceName: sourceName,
		CreatedAt:  entry.CreatedAt,
	}
}
