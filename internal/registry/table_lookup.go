package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/easyaudit-api/internal/models"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// TableBinding maps a type tag to a host table and the column holding its display name.
type TableBinding struct {
	Type       string
	Table      string
	NameColumn string
	KeyColumn  string
}

// ParseTableBindings reads "type:table:name_column[:key_column]" entries separated by commas.
func ParseTableBindings(raw string) ([]TableBinding, error) {
	var bindings []TableBinding
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) < 3 || len(parts) > 4 {
			return nil, fmt.Errorf("invalid registry table binding %q", entry)
		}
		binding := TableBinding{
			Type:       strings.TrimSpace(parts[0]),
			Table:      strings.TrimSpace(parts[1]),
			NameColumn: strings.TrimSpace(parts[2]),
			KeyColumn:  "id",
		}
		if len(parts) == 4 {
			binding.KeyColumn = strings.TrimSpace(parts[3])
		}
		if binding.Type == "" {
			return nil, fmt.Errorf("invalid registry table binding %q: empty type", entry)
		}
		for _, ident := range []string{binding.Table, binding.NameColumn, binding.KeyColumn} {
			if !identifierPattern.MatchString(ident) {
				return nil, fmt.Errorf("invalid registry table binding %q: bad identifier %q", entry, ident)
			}
		}
		bindings = append(bindings, binding)
	}
	return bindings, nil
}

type tableLookup struct {
	db      *gorm.DB
	binding TableBinding
}

// NewTableLookup reads display names from a host table in the same database.
func NewTableLookup(db *gorm.DB, binding TableBinding) EntityLookup {
	if binding.KeyColumn == "" {
		binding.KeyColumn = "id"
	}
	return &tableLookup{db: db, binding: binding}
}

func (l *tableLookup) Lookup(ctx context.Context, ref models.Reference) (Entity, bool, error) {
	var names []sql.NullString
	err := l.db.WithContext(ctx).
		Table(l.binding.Table).
		Where(fmt.Sprintf("%s = ?", l.binding.KeyColumn), ref.ID).
		Limit(1).
		Pluck(l.binding.NameColumn, &names).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("lookup %s in %s: %w", ref, l.binding.Table, err)
	}
	if len(names) == 0 {
		return nil, false, nil
	}
	return NamedEntity{Name: names[0].String}, true, nil
}

// RegisterTables binds every table binding into the registry.
func RegisterTables(r *Registry, db *gorm.DB, bindings []TableBinding) error {
	for _, binding := range bindings {
		if err := r.Register(binding.Type, NewTableLookup(db, binding)); err != nil {
			return err
		}
	}
	return nil
}
