package definition

import (
	"context"

	"github.com/dop251/goja"
	"github.com/evanw/esbuild/pkg/api"
	"go.trai.ch/intellitip/internal/core/domain"
	"go.trai.ch/intellitip/internal/core/ports"
	"go.trai.ch/zerr"
)

// esModuleMarker is the property set on the exports of a transformed ES module.
const esModuleMarker = "__esModule"

// ESMLoader loads ES module scripts by transforming them to CommonJS before evaluation.
// Files that turn out to be plain CommonJS are rejected with domain.ErrFormatMismatch.
type ESMLoader struct {
	fs ports.FileSystem
}

// NewESMLoader creates a new ESMLoader.
func NewESMLoader(fsys ports.FileSystem) *ESMLoader {
	return &ESMLoader{fs: fsys}
}

// Name identifies the loader in diagnostics.
func (l *ESMLoader) Name() string { return "esm" }

// Supports reports whether path is a script file.
func (l *ESMLoader) Supports(path string) bool {
	return hasExt(path, domain.ExtScript, ".mjs")
}

// Load evaluates the module and returns its default export, or the whole namespace
// when there is no default export.
func (l *ESMLoader) Load(ctx context.Context, path string) (any, error) {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		return nil, err
	}

	code, err := TransformESM(path, string(data))
	if err != nil {
		return nil, err
	}

	rt := newScriptRuntime(l.fs)
	exports, err := rt.evaluate(ctx, path, code)
	if err != nil {
		return nil, err
	}

	obj, ok := exports.(*goja.Object)
	if !ok {
		return nil, zerr.With(domain.ErrFormatMismatch, "path", path)
	}
	if marker := obj.Get(esModuleMarker); marker == nil || !marker.ToBoolean() {
		return nil, zerr.With(domain.ErrFormatMismatch, "path", path)
	}

	if def := obj.Get("default"); def != nil && !goja.IsUndefined(def) {
		return rt.export(def, 0), nil
	}
	return rt.export(obj, 0), nil
}

// TransformESM rewrites an ES module into CommonJS that the script runtime can evaluate.
func TransformESM(path, src string) (string, error) {
	result := api.Transform(src, api.TransformOptions{
		Loader:     api.LoaderJS,
		Format:     api.FormatCommonJS,
		Target:     api.ES2017,
		Sourcefile: path,
	})
	if len(result.Errors) > 0 {
		msg := result.Errors[0]
		err := zerr.With(domain.ErrScriptTransformFailed, "path", path)
		err = zerr.With(err, "message", msg.Text)
		if msg.Location != nil {
			err = zerr.With(err, "line", msg.Location.Line)
		}
		return "", err
	}
	return string(result.Code), nil
}
