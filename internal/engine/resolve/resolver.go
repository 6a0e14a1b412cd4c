// Package resolve turns a trigger into the candidate paths of its definition file.
package resolve

import (
	"context"
	"path/filepath"
	"strings"

	"go.trai.ch/intellitip/internal/core/domain"
	"go.trai.ch/zerr"
)

// Option customizes a single resolution.
type Option func(*options)

type options struct {
	infoFileOnly bool
}

// InfoFileOnly restricts component-like resolution to the _info file convention.
func InfoFileOnly(enabled bool) Option {
	return func(o *options) { o.infoFileOnly = enabled }
}

// Resolver builds candidate paths. It never touches the filesystem.
type Resolver struct{}

// NewResolver creates a Resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve returns every candidate for t across the locations of bp.
// Base path order is the outer loop and file convention order the inner one.
// A zero base path fails with domain.ErrInvalidBasePath; a computed base path that
// fails is reported as domain.ErrBasePathUnresolvable.
func (r *Resolver) Resolve(
	ctx context.Context,
	t domain.Trigger, 
	bp domain.BasePath,
	bc domain.BaseContext,
	opts ...Option,
) ([]domain.Candidate, error) {
	if len(t.Target) == 0 {
		return nil, domain.ErrInvalidRequest
	}
	if bp.IsZero() {
		return nil, zerr.With(domain.ErrInvalidBasePath, "trigger", t.Key)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	locations, err := bp.Locations(ctx, bc)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrBasePathUnresolvable.Error()), "trigger", t.Key)
	}

	var candidates []domain.Candidate
	for _, location := range locations {
		if location == "" {
			continue
		}
		base := bc.Abs(location)
		for _, path := range conventions(t, base, o) {
			if !contained(base, path) {
				continue
			}
			candidates = append(candidates, domain.Candidate{Path: path, BasePath: location})
		}
	}
	return candidates, nil
}

func conventions(t domain.Trigger, base string, o options) []string {
	if !t.IsComponentLike() {
		stem := filepath.Join(base, t.TargetName())
		paths := []string{stem + domain.ExtScript}
		for _, ext := range domain.DataExtensions {
			paths = append(paths, stem+ext)
		}
		return paths
	}

	last := t.Target[len(t.Target)-1]
	dir := filepath.Join(append([]string{base}, t.Target[:len(t.Target)-1]...)...)
	entityDir := filepath.Join(dir, last)

	var paths []string
	if !o.infoFileOnly {
		paths = append(paths,
			filepath.Join(dir, last+domain.ExtMarkdown),
			filepath.Join(entityDir, domain.ReadmeLower),
			filepath.Join(entityDir, domain.ReadmeUpper),
		)
	}
	paths = append(paths, filepath.Join(entityDir, domain.InfoFileBase+domain.ExtScript))
	for _, ext := range domain.DataExtensions {
		paths = append(paths, filepath.Join(entityDir, domain.InfoFileBase+ext))
	}
	return paths
}

// contained reports whether path stays under base.
func contained(base, path string) bool {
	rel, err := filepath.Rel(base, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
