package config_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/intellitip/internal/adapters/config"
	"go.trai.ch/intellitip/internal/core/domain"
)

func TestMerge(t *testing.T) {
	host := domain.ObjectFromPairs(
		"debug", false,
		"schemas", domain.ObjectFromPairs("a", "one", "b", "two"),
		"customTypes", domain.ObjectFromPairs("x", domain.NewObject()),
	)
	project := domain.ObjectFromPairs(
		"schemas", domain.ObjectFromPairs("b", "override", "c", "three"),
		"customTypes", domain.ObjectFromPairs("y", domain.NewObject()),
		"debug", true,
	)

	merged := config.Merge(host, project)

	assert.Equal(t, []string{"debug", "schemas", "customTypes"}, merged.Keys())

	schemas, _ := merged.Get("schemas")
	s := schemas.(*domain.Object)
	assert.Equal(t, []string{"a", "b", "c"}, s.Keys())
	b, _ := s.String("b")
	assert.Equal(t, "override", b)

	custom, _ := merged.Get("customTypes")
	assert.Equal(t, []string{"y"}, custom.(*domain.Object).Keys())

	debug, _ := merged.Get("debug")
	assert.Equal(t, true, debug)

	// host is left untouched
	orig, _ := host.Get("schemas")
	assert.Equal(t, []string{"a", "b"}, orig.(*domain.Object).Keys())
}

func TestBasePathFrom(t *testing.T) {
	bp, err := config.BasePathFrom("api/schemas")
	require.NoError(t, err)
	assert.Equal(t, []string{"api/schemas"}, bp.Fixed())

	bp, err = config.BasePathFrom([]any{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, bp.Fixed())

	_, err = config.BasePathFrom([]any{"a", 1})
	assert.ErrorContains(t, err, domain.ErrInvalidBasePath.Error())

	_, err = config.BasePathFrom([]any{})
	assert.ErrorContains(t, err, domain.ErrInvalidBasePath.Error())

	_, err = config.BasePathFrom(nil)
	assert.ErrorContains(t, err, domain.ErrInvalidBasePath.Error())
}

func TestToSettings_Defaults(t *testing.T) {
	settings, problems := config.ToSettings(domain.NewObject())
	assert.Empty(t, problems)
	assert.Equal(t, domain.DefaultProjectConfigPath(), settings.ConfigFile)
	assert.False(t, settings.Debug)
}

func TestToSettings_SkipsInvalidEntries(t *testing.T) {
	raw := domain.ObjectFromPairs(
		"schemas", domain.ObjectFromPairs("schemas", "api/schemas", "broken", int64(42)),
		"components", domain.ObjectFromPairs("@ui", int64(42)),
		"uiComponents", "not a map",
		"customTypes", domain.ObjectFromPairs(
			"recipe", domain.ObjectFromPairs("triggers", domain.ObjectFromPairs("@recipe", "recipes", "@bad", "")),
			"odd", "not a map",
		),
	)

	settings, problems := config.ToSettings(raw)
	require.NotNil(t, settings)

	require.Len(t, settings.Schemas, 1)
	assert.Equal(t, "schemas", settings.Schemas[0].Key)
	assert.Empty(t, settings.Components)
	assert.Empty(t, settings.UIComponents)
	require.Len(t, settings.CustomTypes, 1)
	assert.Equal(t, "recipe", settings.CustomTypes[0].Name)
	require.Len(t, settings.CustomTypes[0].Triggers, 1)
	assert.Equal(t, "@recipe", settings.CustomTypes[0].Triggers[0].Key)

	require.Len(t, problems, 5)
	assert.ErrorContains(t, problems[0], domain.ErrInvalidBasePath.Error())
	assert.ErrorContains(t, problems[1], domain.ErrInvalidBasePath.Error())
	assert.ErrorContains(t, problems[2], domain.ErrInvalidTriggerMap.Error())
}

type ctxKey struct{}

// locationsFunc is a configured base path function that reports the context it ran under.
type locationsFunc struct {
	seen context.Context
}

func (f *locationsFunc) Call(ctx context.Context, _ *domain.Object) (any, error) {
	f.seen = ctx
	return "from/func", nil
}

func (f *locationsFunc) Source() string { return "() => 'from/func'" }

func TestBasePathFrom_FunctionReceivesRequestContext(t *testing.T) {
	fn := &locationsFunc{}
	bp, err := config.BasePathFrom(fn)
	require.NoError(t, err)

	ctx := context.WithValue(context.Background(), ctxKey{}, "request")
	locations, err := bp.Locations(ctx, domain.BaseContext{WorkspaceRoot: "/ws"})
	require.NoError(t, err)
	assert.Equal(t, []string{"from/func"}, locations)
	require.NotNil(t, fn.seen)
	assert.Equal(t, "request", fn.seen.Value(ctxKey{}))
}
