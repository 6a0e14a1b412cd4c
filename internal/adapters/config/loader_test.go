package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/intellitip/internal/adapters/config"
	"go.trai.ch/intellitip/internal/adapters/definition"
	"go.trai.ch/intellitip/internal/adapters/fs"
	"go.trai.ch/intellitip/internal/core/domain"
	"go.trai.ch/intellitip/internal/core/ports"
	"go.trai.ch/intellitip/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

const hostSettings = `
debug: true
schemas:
  mySchema: api/schemas
  "@sys": [core/schemas, "sites/${site}/schemas"]
components:
  "@component": ui/components
uiComponents:
  "@ui": ui/widgets
customTypes:
  recipe:
    triggers:
      "@recipe": recipes
    contentFunction: renderers/recipe.js
    useInfoFile: true
`

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newLoader(t *testing.T, w ports.Watcher) *config.Loader {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()

	fsys := fs.NewFileSystem()
	return config.New(fsys, definition.NewDefaultChain(fsys), w, log)
}

func keys(bindings []domain.TriggerBinding) []string {
	out := make([]string, 0, len(bindings))
	for _, b := range bindings {
		out = append(out, b.Key)
	}
	return out
}

func TestLoad_NoSettingsFile(t *testing.T) {
	ctrl := gomock.NewController(t)
	loader := newLoader(t, mocks.NewMockWatcher(ctrl))

	settings, err := loader.Load(t.TempDir(), "")
	require.NoError(t, err)

	assert.False(t, settings.Debug)
	assert.Equal(t, domain.DefaultProjectConfigPath(), settings.ConfigFile)
	assert.Empty(t, settings.Schemas)
	assert.Empty(t, settings.CustomTypes)
}

func TestLoad_HostSettings(t *testing.T) {
	ctrl := gomock.NewController(t)
	root := t.TempDir()
	writeFile(t, root, domain.SettingsFileName, hostSettings)

	settings, err := newLoader(t, mocks.NewMockWatcher(ctrl)).Load(root, "")
	require.NoError(t, err)

	assert.True(t, settings.Debug)
	assert.Equal(t, []string{"mySchema", "@sys"}, keys(settings.Schemas))
	assert.Equal(t, []string{"api/schemas"}, settings.Schemas[0].BasePath.Fixed())
	assert.Equal(t, []string{"core/schemas", "sites/${site}/schemas"}, settings.Schemas[1].BasePath.Fixed())
	assert.Equal(t, []string{"@component"}, keys(settings.Components))
	assert.Equal(t, []string{"@ui"}, keys(settings.UIComponents))

	require.Len(t, settings.CustomTypes, 1)
	recipe := settings.CustomTypes[0]
	assert.Equal(t, "recipe", recipe.Name)
	assert.Equal(t, "renderers/recipe.js", recipe.ContentFunction)
	assert.True(t, recipe.UseInfoFile)
	assert.Equal(t, []string{"@recipe"}, keys(recipe.Triggers))
}

func TestLoad_ProjectOverride(t *testing.T) {
	ctrl := gomock.NewController(t)
	root := t.TempDir()
	writeFile(t, root, domain.SettingsFileName, hostSettings)
	writeFile(t, root, ".intellitip/config.js", `
module.exports = {
  schemas: {
    mySchema: "override/schemas",
    "@site": ({ site, workspaceRoot }) => [workspaceRoot + "/sites/" + site + "/schemas"],
  },
  uiComponents: { "@widget": "widgets" },
};
`)

	mockWatcher := mocks.NewMockWatcher(ctrl)
	mockWatcher.EXPECT().
		Watch(filepath.Join(root, ".intellitip", "config.js"), gomock.Any()).
		Return(mocks.NewMockSubscription(ctrl), nil)

	settings, err := newLoader(t, mockWatcher).Load(root, "")
	require.NoError(t, err)

	// schemas merge key by key; uiComponents is replaced.
	assert.Equal(t, []string{"mySchema", "@sys", "@site"}, keys(settings.Schemas))
	assert.Equal(t, []string{"override/schemas"}, settings.Schemas[0].BasePath.Fixed())
	assert.Equal(t, []string{"@widget"}, keys(settings.UIComponents))
	assert.Equal(t, []string{"@component"}, keys(settings.Components))

	computed := settings.Schemas[2].BasePath
	require.True(t, computed.IsComputed())
	locations, err := computed.Locations(context.Background(), domain.BaseContext{Site: "shop", WorkspaceRoot: "/ws"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/ws/sites/shop/schemas"}, locations)
}

func TestLoad_ProjectConfigCachedUntilChange(t *testing.T) {
	ctrl := gomock.NewController(t)
	root := t.TempDir()
	configPath := writeFile(t, root, ".intellitip/config.js", `module.exports = { schemas: { first: "a" } };`)

	var onChange func(ports.WatchEvent)
	mockWatcher := mocks.NewMockWatcher(ctrl)
	mockSub := mocks.NewMockSubscription(ctrl)
	mockWatcher.EXPECT().
		Watch(configPath, gomock.Any()).
		DoAndReturn(func(_ string, handler func(ports.WatchEvent)) (ports.Subscription, error) {
			onChange = handler
			return mockSub, nil
		}).
		Times(2)

	loader := newLoader(t, mockWatcher)

	settings, err := loader.Load(root, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"first"}, keys(settings.Schemas))

	writeFile(t, root, ".intellitip/config.js", `module.exports = { schemas: { second: "b" } };`)

	settings, err = loader.Load(root, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"first"}, keys(settings.Schemas), "served from cache")

	require.NotNil(t, onChange)
	onChange(ports.WatchEvent{Path: configPath, Operation: ports.OpWrite})

	settings, err = loader.Load(root, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"second"}, keys(settings.Schemas))

	mockSub.EXPECT().Close().Return(nil)
	require.NoError(t, loader.Close())
}

func TestLoad_CustomConfigFile(t *testing.T) {
	ctrl := gomock.NewController(t)
	root := t.TempDir()
	writeFile(t, root, domain.SettingsFileName, "configFile: tooling/tips.yaml\n")
	configPath := writeFile(t, root, "tooling/tips.yaml", "components:\n  \"@c\": comps\n")

	mockWatcher := mocks.NewMockWatcher(ctrl)
	mockWatcher.EXPECT().Watch(configPath, gomock.Any()).Return(mocks.NewMockSubscription(ctrl), nil)

	settings, err := newLoader(t, mockWatcher).Load(root, "")
	require.NoError(t, err)

	assert.Equal(t, "tooling/tips.yaml", settings.ConfigFile)
	assert.Equal(t, []string{"@c"}, keys(settings.Components))
}

func TestLoad_BrokenProjectConfigIgnored(t *testing.T) {
	ctrl := gomock.NewController(t)
	root := t.TempDir()
	writeFile(t, root, domain.SettingsFileName, hostSettings)
	writeFile(t, root, ".intellitip/config.js", `module.exports = {`)

	settings, err := newLoader(t, mocks.NewMockWatcher(ctrl)).Load(root, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"mySchema", "@sys"}, keys(settings.Schemas))
}

func TestLoad_ExplicitSettingsPath(t *testing.T) {
	ctrl := gomock.NewController(t)
	root := t.TempDir()
	writeFile(t, root, "conf/tips.yaml", "schemas:\n  s: schemas\n")

	loader := newLoader(t, mocks.NewMockWatcher(ctrl))

	settings, err := loader.Load(root, "conf/tips.yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{"s"}, keys(settings.Schemas))

	settings, err = loader.Load(root, filepath.Join(root, "conf", "tips.yaml"))
	require.NoError(t, err)
	assert.Equal(t, []string{"s"}, keys(settings.Schemas))

	_, err = loader.Load(root, "conf/missing.yaml")
	assert.ErrorContains(t, err, domain.ErrConfigReadFailed.Error())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name:    "malformed yaml",
			content: "schemas: [unclosed",
			wantErr: domain.ErrConfigParseFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			root := t.TempDir()
			writeFile(t, root, domain.SettingsFileName, tt.content)

			_, err := newLoader(t, mocks.NewMockWatcher(ctrl)).Load(root, "")
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.wantErr.Error())
		})
	}
}

func TestLoad_InvalidEntriesSkipped(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		schemas    []string
		components []string
	}{
		{
			name:       "section is not a mapping",
			content:    "schemas: api/schemas\ncomponents:\n  \"@c\": comps\n",
			components: []string{"@c"},
		},
		{
			name:       "base path of wrong type",
			content:    "schemas:\n  s: 42\n  ok: api/schemas\ncomponents:\n  \"@c\": comps\n",
			schemas:    []string{"ok"},
			components: []string{"@c"},
		},
		{
			name:    "empty base path",
			content: "schemas:\n  ok: api/schemas\ncomponents:\n  \"@c\": \"\"\n",
			schemas: []string{"ok"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			root := t.TempDir()
			writeFile(t, root, domain.SettingsFileName, tt.content)

			log := mocks.NewMockLogger(ctrl)
			log.EXPECT().Debug(gomock.Any()).AnyTimes()
			log.EXPECT().Warn(gomock.Any()).MinTimes(1)

			fsys := fs.NewFileSystem()
			loader := config.New(fsys, definition.NewDefaultChain(fsys), mocks.NewMockWatcher(ctrl), log)

			settings, err := loader.Load(root, "")
			require.NoError(t, err)
			assert.Equal(t, len(tt.schemas), len(settings.Schemas))
			if len(tt.schemas) > 0 {
				assert.Equal(t, tt.schemas, keys(settings.Schemas))
			}
			assert.Equal(t, len(tt.components), len(settings.Components))
			if len(tt.components) > 0 {
				assert.Equal(t, tt.components, keys(settings.Components))
			}
		})
	}
}
