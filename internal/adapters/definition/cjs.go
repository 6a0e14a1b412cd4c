package definition

import (
	"context"

	"go.trai.ch/intellitip/internal/core/domain"
	"go.trai.ch/intellitip/internal/core/ports"
)

// CommonJSLoader loads scripts that assign module.exports.
type CommonJSLoader struct {
	fs ports.FileSystem
}

// NewCommonJSLoader creates a new CommonJSLoader.
func NewCommonJSLoader(fsys ports.FileSystem) *CommonJSLoader {
	return &CommonJSLoader{fs: fsys}
}

// Name identifies the loader in diagnostics.
func (l *CommonJSLoader) Name() string { return "commonjs" }

// Supports reports whether path is a script file.
func (l *CommonJSLoader) Supports(path string) bool {
	return hasExt(path, domain.ExtScript, ".cjs")
}

// Load evaluates the file and returns the whole module.exports value.
func (l *CommonJSLoader) Load(ctx context.Context, path string) (any, error) {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		return nil, err
	}

	rt := newScriptRuntime(l.fs)
	exports, err := rt.evaluate(ctx, path, string(data))
	if err != nil {
		return nil, err
	}
	return rt.export(exports, 0), nil
}
