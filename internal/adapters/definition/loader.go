// Package definition decodes definition files of every supported format into domain values.
package definition

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"go.trai.ch/intellitip/internal/core/domain"
	"go.trai.ch/intellitip/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.DefinitionLoader = (*Chain)(nil)

// Chain tries its loaders in order and returns the first successful decode.
// Several loaders may support the same extension; a failing loader falls
// through to the next one that supports the path.
type Chain struct {
	loaders []ports.DefinitionLoader
}

// NewChain creates a loader chain.
func NewChain(loaders ...ports.DefinitionLoader) *Chain {
	return &Chain{loaders: loaders}
}

// NewDefaultChain creates the chain for every supported definition format.
// Script definitions are tried as ES modules first, then as CommonJS.
func NewDefaultChain(fsys ports.FileSystem) *Chain {
	return NewChain(
		NewMarkdownLoader(fsys),
		NewESMLoader(fsys),
		NewCommonJSLoader(fsys),
		NewJSONLoader(fsys),
		NewYAMLLoader(fsys),
		NewTOMLLoader(fsys),
		NewCUELoader(fsys),
	)
}

// Name identifies the loader in diagnostics.
func (c *Chain) Name() string {
	names := make([]string, len(c.loaders))
	for i, l := range c.loaders {
		names[i] = l.Name()
	}
	return "chain(" + strings.Join(names, ",") + ")"
}

// Supports reports whether any loader handles the file at path.
func (c *Chain) Supports(path string) bool {
	for _, l := range c.loaders {
		if l.Supports(path) {
			return true
		}
	}
	return false
}

// Load decodes the file at path with the first loader that succeeds.
func (c *Chain) Load(ctx context.Context, path string) (any, error) {
	var errs []error
	for _, l := range c.loaders {
		if !l.Supports(path) {
			continue
		}
		v, err := l.Load(ctx, path)
		if err == nil {
			return v, nil
		}
		errs = append(errs, zerr.With(err, "loader", l.Name()))
	}

	if len(errs) == 0 {
		return nil, zerr.With(domain.ErrUnsupportedFormat, "path", path)
	}
	return nil, zerr.With(zerr.Wrap(errors.Join(errs...), domain.ErrDefinitionLoadFailed.Error()), "path", path)
}

// hasExt reports whether path has one of exts, compared case-insensitively.
func hasExt(path string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
