package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/easyaudit-api/internal/i18n"
	"github.com/noah-isme/easyaudit-api/internal/models"
	"github.com/noah-isme/easyaudit-api/internal/registry"
)

func TestSourceNameResolver(t *testing.T) {
	translator, err := i18n.New("en")
	require.NoError(t, err)

	reg := registry.New()
	require.NoError(t, reg.Register("user", registry.LookupFunc(func(ctx context.Context, ref models.Reference) (registry.Entity, bool, error) {
		switch ref.ID {
		case "1":
			return registry.NamedEntity{Name: "Alice"}, true, nil
		case "blank":
			return registry.NamedEntity{Name: " "}, true, nil
		case "boom":
			return nil, false, errors.New("lookup failed")
		}
		return nil, false, nil
	})))

	resolver := NewSourceNameResolver(reg, translator, testLogger())
	override := "Admin"
	empty := ""
	spaces := "  "

	cases := []struct {
		name     string
		activity models.Activity
		locale   string
		want     string
	}{
		{name: "override wins over reference", activity: activityFrom(&override, &models.Reference{Type: "user", ID: "1"}), want: "Admin"},
		{name: "override without reference", activity: activityFrom(&override, nil), want: "Admin"},
		{name: "resolved entity", activity: activityFrom(nil, &models.Reference{Type: "user", ID: "1"}), want: "Alice"},
		{name: "whitespace override kept verbatim", activity: activityFrom(&spaces, &models.Reference{Type: "user", ID: "1"}), want: "  "},
		{name: "empty override falls through", activity: activityFrom(&empty, &models.Reference{Type: "user", ID: "1"}), want: "Alice"},
		{name: "unknown entity", activity: activityFrom(nil, &models.Reference{Type: "user", ID: "404"}), want: "Unknown source"},
		{name: "unregistered type", activity: activityFrom(nil, &models.Reference{Type: "robot", ID: "1"}), want: "Unknown source"},
		{name: "blank display name", activity: activityFrom(nil, &models.Reference{Type: "user", ID: "blank"}), want: "Unknown source"},
		{name: "lookup error", activity: activityFrom(nil, &models.Reference{Type: "user", ID: "boom"}), want: "Unknown source"},
		{name: "no source", activity: activityFrom(nil, nil), locale: "id", want: "Sumber tidak diketahui"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before := tc.activity
			require.Equal(t, tc.want, resolver.Resolve(context.Background(), tc.activity, tc.locale))
			require.Equal(t, before, tc.activity)
		})
	}
}

func TestSourceNameResolverWithoutCollaborators(t *testing.T) {
	resolver := NewSourceNameResolver(nil, nil, testLogger())
	require.Equal(t, "Unknown source", resolver.Resolve(context.Background(), activityFrom(nil, &models.Reference{Type: "user", ID: "1"}), "en"))
}

func activityFrom(sourceName *string, source *models.Reference) models.Activity {
	activity := models.Activity{ID: 1, Event: "user.login", SourceName: sourceName}
	activity.SetSource(source)
	return activity
}
