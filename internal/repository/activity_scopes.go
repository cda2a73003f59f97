package repository

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/easyaudit-api/internal/models"
)

// Scope narrows an activity query. Scopes combine conjunctively.
type Scope func(*gorm.DB) *gorm.DB

// WithEvent matches activities whose event is one of names. A slice can be
// spread into it, so WithEvent("a", "b") and WithEvent(list...) are the same.
func WithEvent(names ...string) Scope {
	events := normalizeEventNames(names)
	return func(db *gorm.DB) *gorm.DB {
		if len(events) == 0 {
			return db.Where("1 = 0")
		}
		return db.Where("event IN ?", events)
	}
}

// ForSubject matches activities performed on exactly the referenced entity.
func ForSubject(ref models.Reference) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("subject_type = ? AND subject_id = ?", ref.Type, ref.ID)
	}
}

// FromSource matches activities performed by exactly the referenced actor.
func FromSource(ref models.Reference) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("source_type = ? AND source_id = ?", ref.Type, ref.ID)
	}
}

// CreatedBetween limits activities to a creation window. Nil bounds are open.
func CreatedBetween(since, until *time.Time) Scope {
	return func(db *gorm.DB) *gorm.DB {
		if since != nil {
			db = db.Where("created_at >= ?", since.UTC())
		}
		if until != nil {
			db = db.Where("created_at <= ?", until.UTC())
		}
		return db
	}
}

func normalizeEventNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	events := make([]string, 0, len(names))
	for _, name := range names {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		events = append(events, trimmed)
	}
	return events
}
