package render_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/intellitip/internal/adapters/definition"
	"go.trai.ch/intellitip/internal/adapters/fs"
	"go.trai.ch/intellitip/internal/core/domain"
	"go.trai.ch/intellitip/internal/core/ports/mocks"
	"go.trai.ch/intellitip/internal/engine/render"
	"go.uber.org/mock/gomock"
)

type fakeFunc struct {
	result any
	err    error
	got    *domain.Object
}

func (f *fakeFunc) Call(_ context.Context, arg *domain.Object) (any, error) {
	f.got = arg
	return f.result, f.err
}

func (f *fakeFunc) Source() string { return "function fake() {}" }

func newRenderer(t *testing.T) (*render.Renderer, *mocks.MockFileSystem, *mocks.MockDefinitionLoader) {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	mockFS := mocks.NewMockFileSystem(ctrl)
	mockDefs := mocks.NewMockDefinitionLoader(ctrl)
	return render.NewRenderer(mockFS, mockDefs, log), mockFS, mockDefs
}

func schemaTrigger(target string, postfix domain.PostfixCommand) domain.Trigger {
	return domain.Trigger{Section: domain.SectionSchemas, Key: "schemas", Target: []string{target}, Postfix: postfix}
}

func componentTrigger(target string) domain.Trigger {
	return domain.Trigger{Section: domain.SectionComponents, Key: "@component", Target: []string{target}}
}

func userEntity() *domain.Entity {
	props := domain.ObjectFromPairs(
		"id", domain.ObjectFromPairs("type", "uuid", "required", true),
		"email", domain.ObjectFromPairs("type", "string", "format", "email"),
		"tags", domain.ObjectFromPairs("type", "array", "items", domain.ObjectFromPairs("type", "string")),
	)
	data := domain.ObjectFromPairs(
		"name", "user",
		"description", "A user",
		"properties", props,
		"edges", []any{[]any{"user", "owns", "order"}},
		"relatedKVs", domain.ObjectFromPairs(
			"user:{id}", domain.ObjectFromPairs("id", "uuid", "display-name", "string"),
		),
		"version", int64(2),
	)
	return domain.NewEntity(data, "/ws/api/schemas/user.js", "api/schemas")
}

func TestRender_Goldens(t *testing.T) {
	tests := []struct {
		name    string
		trigger domain.Trigger
		entity  *domain.Entity
	}{
		{
			name:    "schema",
			trigger: schemaTrigger("user", domain.PostfixNone),
			entity:  userEntity(),
		},
		{
			name:    "generic",
			trigger: componentTrigger("button"),
			entity: domain.NewEntity(domain.ObjectFromPairs(
				"description", "A button",
				"variants", []any{"primary", "ghost"},
			), "/ws/ui/button/_info.js", "ui"),
		},
		{
			name:    "edges_empty",
			trigger: domain.Trigger{Section: domain.SectionSchemas, Key: "doc", Target: []string{"mySchema"}, Postfix: domain.PostfixEdges},
			entity:  domain.NewEntity(domain.ObjectFromPairs("edges", []any{}), "/ws/api/schemas/mySchema.js", "api/schemas"),
		},
		{
			name:    "kv",
			trigger: schemaTrigger("order", domain.PostfixKV),
			entity: domain.NewEntity(domain.ObjectFromPairs(
				"relatedKVs", domain.ObjectFromPairs("order:{id}", domain.ObjectFromPairs("total", "number")),
			), "/ws/api/schemas/order.js", "api/schemas"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, _ := newRenderer(t)

			md, ok := r.Render(context.Background(), render.Input{Trigger: tt.trigger, Entity: tt.entity})
			require.True(t, ok)

			g := goldie.New(t)
			g.Assert(t, tt.name, []byte(md))
		})
	}
}

func TestRender_SchemaScenario(t *testing.T) {
	r, _, _ := newRenderer(t)
	entity := domain.NewEntity(domain.ObjectFromPairs(
		"description", "A user",
		"properties", domain.ObjectFromPairs("id", domain.ObjectFromPairs("type", "uuid")),
	), "/ws/api/schemas/user.js", "api/schemas")

	md, ok := r.Render(context.Background(), render.Input{Trigger: schemaTrigger("user", domain.PostfixNone), Entity: entity})
	require.True(t, ok)

	assert.Contains(t, md, "### [user](file:///ws/api/schemas/user.js)")
	assert.Contains(t, md, "A user")
	assert.Contains(t, md, "id: uuid")
	assert.NotContains(t, md, "**basePath**")
}

func TestRender_EdgesPresent(t *testing.T) {
	r, _, _ := newRenderer(t)
	entity := domain.NewEntity(domain.ObjectFromPairs(
		"edges", []any{[]any{"a", "links", "b"}, []any{"b", "links", "c"}},
	), "/ws/s/a.js", "s")

	md, _ := r.Render(context.Background(), render.Input{Trigger: schemaTrigger("a", domain.PostfixEdges), Entity: entity})
	assert.Equal(t, "### [a](file:///ws/s/a.js)\na --- `links` --> b\n\nb --- `links` --> c\n\n", md)
}

func TestRender_KVMissing(t *testing.T) {
	r, _, _ := newRenderer(t)
	entity := domain.NewEntity(domain.NewObject(), "/ws/s/a.js", "s")

	md, _ := r.Render(context.Background(), render.Input{Trigger: schemaTrigger("a", domain.PostfixKV), Entity: entity})
	assert.Contains(t, md, "### No Related KVs Found")
}

func TestRender_MarkdownBody(t *testing.T) {
	r, _, _ := newRenderer(t)
	entity := domain.NewEntity(domain.ObjectFromPairs("name", "button", "md", "# Button\n\nClick me.\n"), "/ws/ui/button.md", "ui")

	md, ok := r.Render(context.Background(), render.Input{Trigger: componentTrigger("button"), Entity: entity})
	require.True(t, ok)
	assert.Equal(t, "### [button](file:///ws/ui/button.md)\n# Button\n\nClick me.\n", md)
}

func TestRender_HoverTip(t *testing.T) {
	t.Run("inline function", func(t *testing.T) {
		r, _, _ := newRenderer(t)
		fn := &fakeFunc{result: "Order tip"}
		entity := domain.NewEntity(domain.ObjectFromPairs("hoverTip", fn), "/ws/s/order.js", "s")

		md, ok := r.Render(context.Background(), render.Input{Trigger: schemaTrigger("order", domain.PostfixKV), Entity: entity})
		require.True(t, ok)
		assert.Equal(t, "### [order](file:///ws/s/order.js)\nOrder tip", md)

		require.NotNil(t, fn.got)
		assert.Equal(t, []string{"targetName", "data", "basePath", "triggerType", "postfixCommand"}, fn.got.Keys())
		postfix, _ := fn.got.Get("postfixCommand")
		assert.Equal(t, "kv", postfix)
		triggerType, _ := fn.got.String("triggerType")
		assert.Equal(t, "schemas", triggerType)
	})

	t.Run("markdown file", func(t *testing.T) {
		r, mockFS, _ := newRenderer(t)
		mockFS.EXPECT().Exists("/ws/s/tips/order.md").Return(true)
		mockFS.EXPECT().ReadFile("/ws/s/tips/order.md").Return([]byte("![x](./x.png) tip"), nil)
		entity := domain.NewEntity(domain.ObjectFromPairs("hoverTip", "tips/order.md"), "/ws/s/order.js", "s")

		md, _ := r.Render(context.Background(), render.Input{Trigger: schemaTrigger("order", domain.PostfixNone), Entity: entity})
		assert.Equal(t, "### [order](file:///ws/s/order.js)\n![x](file:///ws/s/tips/x.png) tip", md)
	})

	t.Run("script file", func(t *testing.T) {
		r, mockFS, mockDefs := newRenderer(t)
		mockFS.EXPECT().Exists("/ws/s/tip.js").Return(true)
		mockDefs.EXPECT().Load(gomock.Any(), "/ws/s/tip.js").Return(&fakeFunc{result: "from file"}, nil)
		entity := domain.NewEntity(domain.ObjectFromPairs("hoverTip", "./tip.js"), "/ws/s/order.js", "s")

		md, _ := r.Render(context.Background(), render.Input{Trigger: schemaTrigger("order", domain.PostfixNone), Entity: entity})
		assert.Equal(t, "### [order](file:///ws/s/order.js)\nfrom file", md)
	})

	t.Run("inline text", func(t *testing.T) {
		r, _, _ := newRenderer(t)
		entity := domain.NewEntity(domain.ObjectFromPairs("hoverTip", "Just **text**"), "/ws/s/order.js", "s")

		md, _ := r.Render(context.Background(), render.Input{Trigger: schemaTrigger("order", domain.PostfixNone), Entity: entity})
		assert.Equal(t, "### [order](file:///ws/s/order.js)\nJust **text**", md)
	})
}

func TestRender_DelegatedFailuresFallThrough(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*mocks.MockFileSystem, *mocks.MockDefinitionLoader)
		tip   any
	}{
		{
			name:  "missing file",
			setup: func(fsys *mocks.MockFileSystem, _ *mocks.MockDefinitionLoader) { fsys.EXPECT().Exists("/ws/s/tip.js").Return(false) },
			tip:   "tip.js",
		},
		{
			name: "export is not a function",
			setup: func(fsys *mocks.MockFileSystem, defs *mocks.MockDefinitionLoader) {
				fsys.EXPECT().Exists("/ws/s/tip.js").Return(true)
				defs.EXPECT().Load(gomock.Any(), "/ws/s/tip.js").Return(domain.NewObject(), nil)
			},
			tip: "tip.js",
		},
		{
			name: "load fails",
			setup: func(fsys *mocks.MockFileSystem, defs *mocks.MockDefinitionLoader) {
				fsys.EXPECT().Exists("/ws/s/tip.js").Return(true)
				defs.EXPECT().Load(gomock.Any(), "/ws/s/tip.js").Return(nil, errors.New("syntax"))
			},
			tip: "tip.js",
		},
		{
			name:  "function throws",
			setup: func(*mocks.MockFileSystem, *mocks.MockDefinitionLoader) {},
			tip:   &fakeFunc{err: errors.New("boom")},
		},
		{
			name:  "non-string result",
			setup: func(*mocks.MockFileSystem, *mocks.MockDefinitionLoader) {},
			tip:   &fakeFunc{result: int64(42)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, mockFS, mockDefs := newRenderer(t)
			tt.setup(mockFS, mockDefs)
			entity := domain.NewEntity(domain.ObjectFromPairs("hoverTip", tt.tip, "md", "fallback body"), "/ws/s/order.js", "s")

			md, ok := r.Render(context.Background(), render.Input{Trigger: schemaTrigger("order", domain.PostfixNone), Entity: entity})
			require.True(t, ok)
			assert.Equal(t, "### [order](file:///ws/s/order.js)\nfallback body", md)
		})
	}
}

func TestRender_CustomTypeContentFunction(t *testing.T) {
	fsys := fs.NewFileSystem()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	r := render.NewRenderer(fsys, definition.NewDefaultChain(fsys), log)

	root, err := filepath.Abs("testdata")
	require.NoError(t, err)

	trig := domain.Trigger{Section: domain.SectionCustomTypes, CustomType: "recipe", Key: "@recipe", Target: []string{"pancakes"}, Postfix: domain.PostfixKV}
	entity := domain.NewEntity(domain.ObjectFromPairs("serves", int64(4)), "/ws/recipes/pancakes/_info.js", "recipes")

	md, ok := r.Render(context.Background(), render.Input{
		Trigger:         trig,
		Entity:          entity,
		ContentFunction: "renderers/recipe.js",
		WorkspaceRoot:   root,
	})
	require.True(t, ok)
	assert.Equal(t, "### [pancakes](file:///ws/recipes/pancakes/_info.js)\nRecipe pancakes serves 4 (kv)", md)

	md, ok = r.Render(context.Background(), render.Input{
		Trigger:         trig,
		Entity:          entity,
		ContentFunction: "renderers/missing.js",
		WorkspaceRoot:   root,
	})
	require.True(t, ok)
	assert.Contains(t, md, "### No Related KVs Found", "falls through to the structural renderer")
}

func TestRender_EntityContentFunction(t *testing.T) {
	r, _, _ := newRenderer(t)
	fn := &fakeFunc{result: "custom"}
	entity := domain.NewEntity(domain.ObjectFromPairs("contentFunction", fn, "hoverTip", "ignored"), "/ws/c/x/_info.js", "c")

	md, _ := r.Render(context.Background(), render.Input{Trigger: componentTrigger("x"), Entity: entity})
	assert.Equal(t, "### [x](file:///ws/c/x/_info.js)\ncustom", md)
}

func TestRender_NilEntity(t *testing.T) {
	r, _, _ := newRenderer(t)
	_, ok := r.Render(context.Background(), render.Input{Trigger: componentTrigger("x")})
	assert.False(t, ok)
}
