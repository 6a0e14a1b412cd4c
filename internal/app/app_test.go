package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/intellitip/internal/adapters/cache"
	"go.trai.ch/intellitip/internal/adapters/definition"
	"go.trai.ch/intellitip/internal/adapters/fs"
	"go.trai.ch/intellitip/internal/adapters/telemetry"
	"go.trai.ch/intellitip/internal/app"
	"go.trai.ch/intellitip/internal/core/domain"
	"go.trai.ch/intellitip/internal/core/ports"
	"go.trai.ch/intellitip/internal/core/ports/mocks"
	"go.trai.ch/intellitip/internal/engine/hover"
	"go.trai.ch/intellitip/internal/engine/modcache"
	"go.trai.ch/intellitip/internal/engine/render"
	"go.trai.ch/intellitip/internal/engine/resolve"
	"go.trai.ch/intellitip/internal/engine/trigger"
	"go.uber.org/mock/gomock"
)

const userSchema = `module.exports = { description: "A user", properties: { id: { type: "uuid" } } };`

type testEnv struct {
	root     string
	app      *app.App
	settings *mocks.MockSettingsLoader
	logger   *mocks.MockLogger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctrl := gomock.NewController(t)

	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()

	w := mocks.NewMockWatcher(ctrl)
	w.EXPECT().Watch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(string, func(ports.WatchEvent)) (ports.Subscription, error) {
			sub := mocks.NewMockSubscription(ctrl)
			sub.EXPECT().Close().Return(nil).AnyTimes()
			return sub, nil
		}).
		AnyTimes()

	fsys := fs.NewFileSystem()
	defs := definition.NewDefaultChain(fsys)
	svc := hover.NewService(
		trigger.NewMatcher(),
		resolve.NewResolver(),
		modcache.New(cache.NewStore(w, log), fsys, defs, log),
		render.NewRenderer(fsys, defs, log),
		render.NewLinker(fsys, log),
		telemetry.NewNoOpTracer(),
		log,
	)

	env := &testEnv{
		root:     t.TempDir(),
		settings: mocks.NewMockSettingsLoader(ctrl),
		logger:   log,
	}
	env.app = app.New(env.settings, fsys, svc, fs.NewHasher(), log)
	env.app.Configure(app.Options{Root: env.root})
	return env
}

func (e *testEnv) write(t *testing.T, rel, content string) string {
	t.Helper()
	path := filepath.Join(e.root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func schemaSettings() *domain.Settings {
	return &domain.Settings{
		Schemas: []domain.TriggerBinding{{Key: "schemas", BasePath: domain.FixedBasePath("api/schemas")}},
	}
}

func TestApp_Hover_Found(t *testing.T) {
	env := newTestEnv(t)
	env.write(t, "api/schemas/user.js", userSchema)
	env.write(t, "src/app.js", "const a = 1;\nload(schemas.user);\n")

	env.settings.EXPECT().Load(env.root, "").Return(schemaSettings(), nil)
	env.logger.EXPECT().SetDebug(false)

	resp, err := env.app.Hover(context.Background(), app.HoverRequest{
		ID:     7,
		File:   "src/app.js",
		Line:   1,
		Column: 8,
	})
	require.NoError(t, err)

	assert.True(t, resp.Found)
	assert.Equal(t, 7, resp.ID)
	assert.Contains(t, resp.Markdown, "A user")
	assert.Equal(t, fs.NewHasher().Digest(resp.Markdown), resp.Digest)
}

func TestApp_Hover_TextOverridesFile(t *testing.T) {
	env := newTestEnv(t)
	env.write(t, "api/schemas/user.js", userSchema)

	env.settings.EXPECT().Load(env.root, "custom.yaml").Return(schemaSettings(), nil)
	env.logger.EXPECT().SetDebug(true)

	text := "schemas.user"
	env.app.Configure(app.Options{Root: env.root, SettingsFile: "custom.yaml", Debug: true})
	resp, err := env.app.Hover(context.Background(), app.HoverRequest{
		File: "unsaved.js",
		Text: &text,
	})
	require.NoError(t, err)
	assert.True(t, resp.Found)
}

func TestApp_Hover_NotFound(t *testing.T) {
	env := newTestEnv(t)
	env.write(t, "src/app.js", "nothing here\n")

	env.settings.EXPECT().Load(env.root, "").Return(schemaSettings(), nil)
	env.logger.EXPECT().SetDebug(false)

	resp, err := env.app.Hover(context.Background(), app.HoverRequest{File: "src/app.js"})
	require.NoError(t, err)
	assert.False(t, resp.Found)
	assert.Empty(t, resp.Markdown)
	assert.Empty(t, resp.Digest)
}

func TestApp_Hover_Errors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(*testing.T, *testEnv)
		req     app.HoverRequest
		wantErr string
	}{
		{
			name:    "missing file",
			req:     app.HoverRequest{},
			wantErr: domain.ErrInvalidRequest.Error(),
		},
		{
			name:    "negative column",
			req:     app.HoverRequest{File: "a.js", Column: -1},
			wantErr: domain.ErrInvalidRequest.Error(),
		},
		{
			name: "settings failure",
			setup: func(t *testing.T, e *testEnv) {
				e.settings.EXPECT().Load(e.root, "").Return(nil, errors.New("boom"))
			},
			req:     app.HoverRequest{File: "a.js"},
			wantErr: "failed to load settings",
		},
		{
			name: "unreadable file",
			setup: func(t *testing.T, e *testEnv) {
				e.settings.EXPECT().Load(e.root, "").Return(schemaSettings(), nil)
				e.logger.EXPECT().SetDebug(false)
			},
			req:     app.HoverRequest{File: "missing.js"},
			wantErr: domain.ErrInvalidRequest.Error(),
		},
		{
			name: "line out of range",
			setup: func(t *testing.T, e *testEnv) {
				e.write(t, "a.js", "one line")
				e.settings.EXPECT().Load(e.root, "").Return(schemaSettings(), nil)
				e.logger.EXPECT().SetDebug(false)
			},
			req:     app.HoverRequest{File: "a.js", Line: 5},
			wantErr: domain.ErrInvalidRequest.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			if tt.setup != nil {
				tt.setup(t, env)
			}
			_, err := env.app.Hover(context.Background(), tt.req)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestApp_Hover_DebugGateSetOnce(t *testing.T) {
	env := newTestEnv(t)
	otherRoot := t.TempDir()

	debugSettings := schemaSettings()
	debugSettings.Debug = true
	env.settings.EXPECT().Load(env.root, "").Return(schemaSettings(), nil)
	env.settings.EXPECT().Load(otherRoot, "").Return(debugSettings, nil)
	env.logger.EXPECT().SetDebug(false).Times(1)

	text := "schemas.user"
	_, err := env.app.Hover(context.Background(), app.HoverRequest{File: "a.js", Text: &text})
	require.NoError(t, err)
	_, err = env.app.Hover(context.Background(), app.HoverRequest{Root: otherRoot, File: "a.js", Text: &text})
	require.NoError(t, err)
}

func TestApp_Serve(t *testing.T) {
	env := newTestEnv(t)
	env.write(t, "api/schemas/user.js", userSchema)

	env.settings.EXPECT().Load(env.root, "").Return(schemaSettings(), nil).AnyTimes()
	env.logger.EXPECT().SetDebug(false)

	in := strings.Join([]string{
		`{"id":1,"file":"a.js","text":"schemas.user"}`,
		`not json`,
		``,
		`{"id":2,"file":"a.js","text":"plain"}`,
		`{"id":3,"file":""}`,
		`{"id":4,"file":"a.js","text":"schemas.user"}`,
	}, "\n")

	var out bytes.Buffer
	err := env.app.Serve(context.Background(), strings.NewReader(in), &out, app.ServeOptions{Concurrency: 4})
	require.NoError(t, err)

	var responses []app.HoverResponse
	dec := json.NewDecoder(&out)
	for dec.More() {
		var resp app.HoverResponse
		require.NoError(t, dec.Decode(&resp))
		responses = append(responses, resp)
	}
	require.Len(t, responses, 5)

	byID := map[float64]app.HoverResponse{}
	var malformed int
	for _, resp := range responses {
		id, ok := resp.ID.(float64)
		if !ok {
			malformed++
			assert.Equal(t, domain.ErrInvalidRequest.Error(), resp.Error)
			continue
		}
		byID[id] = resp
	}
	assert.Equal(t, 1, malformed)

	ids := make([]float64, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Float64s(ids)
	assert.Equal(t, []float64{1, 2, 3, 4}, ids)

	assert.True(t, byID[1].Found)
	assert.Equal(t, byID[1].Digest, byID[4].Digest)
	assert.False(t, byID[2].Found)
	assert.Empty(t, byID[2].Error)
	assert.Equal(t, domain.ErrInvalidRequest.Error(), byID[3].Error)
}

func TestApp_Serve_Cancelled(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := env.app.Serve(ctx, strings.NewReader(`{"id":1,"file":"a.js"}`+"\n"), &out, app.ServeOptions{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out.String())
}
