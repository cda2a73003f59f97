package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/easyaudit-api/internal/i18n"
	"github.com/noah-isme/easyaudit-api/internal/models"
	"github.com/noah-isme/easyaudit-api/internal/observability"
	"github.com/noah-isme/easyaudit-api/internal/registry"
)

// SourceNameResolver derives the display name of an activity's source at read time.
type SourceNameResolver struct {
	lookup     registry.EntityLookup
	translator *i18n.Translator
	logger     zerolog.Logger
}

// NewSourceNameResolver builds a resolver. lookup may be nil when the host registers no entities.
func NewSourceNameResolver(lookup registry.EntityLookup, translator *i18n.Translator, logger zerolog.Logger) *SourceNameResolver {
	return &SourceNameResolver{
		lookup:     lookup,
		translator: translator,
		logger:     logger.With().Str("component", "source_name_resolver").Logger(),
	}
}

// Resolve returns the stored override, else the source entity's display
// name, else the localized unknown-source message. It never modifies entry.
func (r *SourceNameResolver) Resolve(ctx context.Context, entry models.Activity, locale string) string {
	if entry.SourceName != nil && *entry.SourceName != "" {
		observability.SourceNameResolutions().WithLabelValues("override").Inc()
		return *entry.SourceName
	}

	if ref := entry.Source(); ref != nil && r.lookup != nil {
		entity, found, err := r.lookup.Lookup(ctx, *ref)
		switch {
		case err != nil:
			observability.SourceNameResolutions().WithLabelValues("error").Inc()
			r.logger.Warn().Err(err).Str("source", ref.String()).Msg("failed to resolve activity source")
		case found && entity != nil:
			if name := strings.TrimSpace(entity.DisplayName()); name != "" {
				observability.SourceNameResolutions().WithLabelValues("entity").Inc()
				return name
			}
		}
	}

	observability.SourceNameResolutions().WithLabelValues("fallback").Inc()
	return r.unknownSource(locale)
}

func (r *SourceNameResolver) unknownSource(locale string) string {
	if r.translator == nil {
		return "Unknown source"
	}
	return r.translator.Translate(locale, i18n.KeyUnknownSource)
}
