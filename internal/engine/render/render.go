// Package render turns loaded entities into hover Markdown.
package render

import (
	"context"
	"path/filepath"
	"strings"

	"go.trai.ch/intellitip/internal/core/domain"
	"go.trai.ch/intellitip/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	spacer    = "&nbsp;\n\n"
	separator = "--- \n&nbsp;\n\n"
)

// schemaStructuralKeys are rendered by the schema layout and skipped in its key dump.
var schemaStructuralKeys = map[string]bool{
	domain.KeyProperties:  true,
	domain.KeyEdges:       true,
	domain.KeyName:        true,
	domain.KeyDescription: true,
	domain.KeyRelatedKVs:  true,
	domain.KeyFileURI:     true,
	domain.KeyFilePath:    true,
	domain.KeyFileURL:     true,
	domain.KeyBasePath:    true,
}

// Input is everything a render needs.
type Input struct {
	Trigger domain.Trigger
	Entity  *domain.Entity
	// ContentFunction is the renderer location configured on the trigger's custom type.
	ContentFunction string
	// WorkspaceRoot anchors ContentFunction.
	WorkspaceRoot string
}

// Renderer dispatches an entity to the first variant that renders it.
type Renderer struct {
	fs          ports.FileSystem
	defs        ports.DefinitionLoader
	logger      ports.Logger
	stringifier Stringifier
}

// NewRenderer creates a Renderer.
func NewRenderer(fsys ports.FileSystem, defs ports.DefinitionLoader, logger ports.Logger) *Renderer {
	return &Renderer{
		fs:          fsys,
		defs:        defs,
		logger:      logger,
		stringifier: DefaultStringifier,
	}
}

// Render produces the Markdown for in. It reports false only for a nil entity.
// Delegated renderers that fail are logged and skipped.
func (r *Renderer) Render(ctx context.Context, in Input) (string, bool) {
	if in.Entity == nil {
		return "", false
	}

	for _, shape := range in.Entity.Shapes(in.Trigger.Section, in.ContentFunction != "") {
		switch shape {
		case domain.ShapeCustomFunction:
			md, err := r.customFunction(ctx, in)
			if err == nil {
				return md, true
			}
			r.logger.Debug("render: " + err.Error())
		case domain.ShapeHoverTip:
			md, err := r.hoverTip(ctx, in)
			if err == nil {
				return md, true
			}
			r.logger.Debug("render: " + err.Error())
		case domain.ShapeMarkdownBody:
			body, _ := in.Entity.Markdown()
			return Title(in.Trigger, in.Entity) + body, true
		case domain.ShapeSchema, domain.ShapeGeneric:
			return r.structural(in, shape), true
		}
	}
	return r.structural(in, domain.ShapeGeneric), true
}

func (r *Renderer) structural(in Input, shape domain.Shape) string {
	switch in.Trigger.Postfix {
	case domain.PostfixEdges:
		return Edges(in.Trigger, in.Entity)
	case domain.PostfixKV:
		return r.relatedKVs(in.Trigger, in.Entity)
	}
	if shape == domain.ShapeSchema {
		return r.schema(in.Trigger, in.Entity)
	}
	return r.generic(in.Trigger, in.Entity)
}

// Title is the heading every rendering starts with, linking to the entity's file.
func Title(t domain.Trigger, e *domain.Entity) string {
	return "### [" + t.TargetName() + "](" + e.FileURL + ")\n"
}

// Edges renders the edge triples of e, or a notice when there are none.
func Edges(t domain.Trigger, e *domain.Entity) string {
	var b strings.Builder
	b.WriteString(Title(t, e))

	edges := e.Edges()
	if len(edges) == 0 {
		b.WriteString(spacer)
		b.WriteString("### No Edges Found\n\n\n")
		b.WriteString(spacer)
		return b.String()
	}
	for _, edge := range edges {
		writeEdge(&b, edge)
	}
	return b.String()
}

func writeEdge(b *strings.Builder, edge domain.Edge) {
	b.WriteString(edge.From + " --- `" + edge.Relation + "` --> " + edge.To + "\n\n")
}

func (r *Renderer) relatedKVs(t domain.Trigger, e *domain.Entity) string {
	var b strings.Builder
	b.WriteString(Title(t, e))
	b.WriteString(spacer)

	kvs, _ := e.RelatedKVs()
	if kvs.Len() == 0 {
		b.WriteString(spacer)
		b.WriteString("### No Related KVs Found\n\n")
		b.WriteString(spacer)
		return b.String()
	}
	for key, value := range kvs.All() {
		b.WriteString("```js\n" + key + "\n```\n\n")
		b.WriteString("```js\n" + r.stringifier.Format(value) + "\n```\n\n")
		b.WriteString(spacer)
		b.WriteString(separator)
	}
	return b.String()
}

func (r *Renderer) schema(t domain.Trigger, e *domain.Entity) string {
	var b strings.Builder
	name := t.TargetName()
	b.WriteString(Title(t, e))

	if d := e.Description(); d != "" {
		b.WriteString("\n" + d + "\n\n")
	}

	if props, ok := e.Properties(); ok {
		lines := make([]string, 0, props.Len())
		for k, v := range props.All() {
			lines = append(lines, k+": "+propertyType(v))
		}
		b.WriteString("```js\n" + name + " {\n\t" + strings.Join(lines, "\n\t") + "\n}\n```\n")
		b.WriteString(spacer)
		b.WriteString(separator)
		b.WriteString("### ✍️ Details\n\n")
		b.WriteString("\n```js\n" + r.stringifier.Format(props) + "\n```\n\n")
		b.WriteString(spacer)
	}

	b.WriteString(separator)

	if edges := e.Edges(); len(edges) > 0 {
		b.WriteString("### 🕸️ Edges\n\n\n")
		for _, edge := range edges {
			writeEdge(&b, edge)
		}
		b.WriteString(spacer)
	}

	b.WriteString(separator)

	if kvs, ok := e.RelatedKVs(); ok {
		b.WriteString("### 🗝️ Related KVs\n\n")
		if kvs.Len() == 0 {
			b.WriteString(spacer + "No Related KVs Found\n\n" + spacer)
		}
		for key, value := range kvs.All() {
			b.WriteString("```js\n" + key + "\n```\n")
			b.WriteString("\n```js\n" + r.stringifier.Format(value) + "\n```\n\n")
		}
	}

	b.WriteString(separator)

	for key, value := range e.Data.All() {
		if schemaStructuralKeys[key] {
			continue
		}
		r.writeField(&b, key, value)
	}
	return b.String()
}

func (r *Renderer) generic(t domain.Trigger, e *domain.Entity) string {
	var b strings.Builder
	b.WriteString(Title(t, e))

	if d := e.Description(); d != "" {
		b.WriteString("\n" + d + "\n\n")
	}
	b.WriteString(separator)

	for key, value := range e.Data.All() {
		r.writeField(&b, key, value)
	}
	return b.String()
}

func (r *Renderer) writeField(b *strings.Builder, key string, value any) {
	b.WriteString("\n**" + key + "**\n\n```js\n" + r.stringifier.FormatField(key, value) + "\n```\n\n")
}

// propertyType returns the declared type of a property, "any" when it has none.
func propertyType(v any) string {
	prop, ok := v.(*domain.Object)
	if !ok {
		return "any"
	}
	typ, ok := prop.Get(domain.KeyType)
	if !ok || typ == nil {
		return "any"
	}
	if s, ok := typ.(string); ok {
		return s
	}
	return DefaultStringifier.Format(typ)
}

// customFunction runs the configured or declared content function.
func (r *Renderer) customFunction(ctx context.Context, in Input) (string, error) {
	if in.ContentFunction != "" {
		path := filepath.Join(in.WorkspaceRoot, in.ContentFunction)
		return r.callFile(ctx, in, path)
	}

	declared, _ := in.Entity.ContentFunction()
	switch v := declared.(type) {
	case domain.Function:
		return r.call(ctx, in, v)
	case string:
		return r.callFile(ctx, in, r.relative(in.Entity, v))
	default:
		return "", zerr.With(domain.ErrNotAFunction, "path", in.Entity.FilePath)
	}
}

// hoverTip renders the entity's hoverTip: a function, a .js renderer, a .md file, or inline text.
func (r *Renderer) hoverTip(ctx context.Context, in Input) (string, error) {
	tip, _ := in.Entity.HoverTip()
	switch v := tip.(type) {
	case domain.Function:
		return r.call(ctx, in, v)
	case string:
		switch strings.ToLower(filepath.Ext(v)) {
		case domain.ExtScript:
			return r.callFile(ctx, in, r.relative(in.Entity, v))
		case domain.ExtMarkdown:
			path := r.relative(in.Entity, v)
			if !r.fs.Exists(path) {
				return "", zerr.With(domain.ErrRendererNotFound, "path", path)
			}
			data, err := r.fs.ReadFile(path)
			if err != nil {
				return "", zerr.With(zerr.Wrap(err, domain.ErrRenderFailed.Error()), "path", path)
			}
			body := domain.RewriteRelativeImages(string(data), filepath.Dir(path))
			return Title(in.Trigger, in.Entity) + body, nil
		default:
			return Title(in.Trigger, in.Entity) + v, nil
		}
	default:
		return "", zerr.With(domain.ErrNotAFunction, "path", in.Entity.FilePath)
	}
}

func (r *Renderer) callFile(ctx context.Context, in Input, path string) (string, error) {
	if !r.fs.Exists(path) {
		return "", zerr.With(domain.ErrRendererNotFound, "path", path)
	}

	exported, err := r.defs.Load(ctx, path)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrRenderFailed.Error()), "path", path)
	}
	fn, ok := exported.(domain.Function)
	if !ok {
		return "", zerr.With(domain.ErrNotAFunction, "path", path)
	}
	return r.call(ctx, in, fn)
}

func (r *Renderer) call(ctx context.Context, in Input, fn domain.Function) (string, error) {
	var postfix any
	if in.Trigger.Postfix != domain.PostfixNone {
		postfix = string(in.Trigger.Postfix)
	}

	result, err := fn.Call(ctx, domain.ObjectFromPairs(
		"targetName", in.Trigger.TargetName(),
		"data", in.Entity.Data,
		"basePath", in.Entity.BasePath,
		"triggerType", string(in.Trigger.Section),
		"postfixCommand", postfix,
	))
	if err != nil {
		return "", zerr.Wrap(err, domain.ErrRenderFailed.Error())
	}

	s, ok := result.(string)
	if !ok {
		return "", zerr.With(domain.ErrRenderFailed, "result", DefaultStringifier.Format(result))
	}
	return Title(in.Trigger, in.Entity) + s, nil
}

// relative anchors a path declared inside a definition at the definition's directory.
func (r *Renderer) relative(e *domain.Entity, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(filepath.Dir(e.FilePath), path)
}
