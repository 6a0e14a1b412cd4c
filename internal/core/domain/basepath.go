package domain

import (
	"context"
	"net/url"
	"path/filepath"
	"strings"
)

// SitePlaceholder is substituted with the detected site in fixed base paths.
const SitePlaceholder = "${site}"

// BaseContext is the request-derived context handed to computed base paths.
type BaseContext struct {
	// Site is the site inferred from the open file's location; empty when none was found.
	Site string
	// WorkspaceRoot is the absolute workspace root.
	WorkspaceRoot string
}

// Abs normalizes a base path location to an absolute filesystem path.
// Locations may be absolute, file: URLs, or relative to the workspace root.
func (c BaseContext) Abs(location string) string {
	if strings.HasPrefix(location, "file:") {
		if u, err := url.Parse(location); err == nil && u.Path != "" {
			return filepath.Clean(filepath.FromSlash(u.Path))
		}
	}
	if filepath.IsAbs(location) {
		return filepath.Clean(location)
	}
	return filepath.Join(c.WorkspaceRoot, location)
}

// BaseFunc computes base path locations for a request.
type BaseFunc func(ctx context.Context, bc BaseContext) ([]string, error)

// BasePath is either a fixed, ordered list of locations or a function of the request context.
type BasePath struct {
	fixed   []string
	compute BaseFunc
}

// FixedBasePath creates a BasePath from one or more locations.
func FixedBasePath(paths ...string) BasePath {
	fixed := make([]string, 0, len(paths))
	for _, p := range paths {
		if p != "" {
			fixed = append(fixed, p)
		}
	}
	return BasePath{fixed: fixed}
}

// ComputedBasePath creates a BasePath evaluated lazily per request.
func ComputedBasePath(fn BaseFunc) BasePath {
	return BasePath{compute: fn}
}

// IsComputed reports whether the base path is a function of the request context.
func (b BasePath) IsComputed() bool {
	return b.compute != nil
}

// IsZero reports whether no location is configured.
func (b BasePath) IsZero() bool {
	return b.compute == nil && len(b.fixed) == 0
}

// Fixed returns the configured locations of a fixed base path.
func (b BasePath) Fixed() []string {
	out := make([]string, len(b.fixed))
	copy(out, b.fixed)
	return out
}

// Locations evaluates the base path for the given context.
// Fixed locations containing SitePlaceholder are dropped when no site is known.
func (b BasePath) Locations(ctx context.Context, bc BaseContext) ([]string, error) {
	if b.compute != nil {
		locations, err := b.compute(ctx, bc)
		if err != nil {
			return nil, err
		}
		return locations, nil
	}

	locations := make([]string, 0, len(b.fixed))
	for _, p := range b.fixed {
		if strings.Contains(p, SitePlaceholder) {
			if bc.Site == "" {
				continue
			}
			p = strings.ReplaceAll(p, SitePlaceholder, bc.Site)
		}
		locations = append(locations, p)
	}
	return locations, nil
}
