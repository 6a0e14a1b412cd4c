package domain

import "strings"

// CacheKey is the semantic identity of a resolution.
// Two requests with equal keys are served the same cached Entity.
type CacheKey struct {
	WorkspaceRoot string
	Section       string
	TriggerKey    string
	Site          string
	Target        string
}

// NewCacheKey derives the cache key of a trigger resolved in bc.
func NewCacheKey(t Trigger, bc BaseContext) CacheKey {
	return CacheKey{
		WorkspaceRoot: bc.WorkspaceRoot,
		Section:       t.SectionKey(),
		TriggerKey:    t.Key,
		Site:          bc.Site,
		Target:        t.TargetName(),
	}
}

// String returns the composed key.
func (k CacheKey) String() string {
	return strings.Join([]string{k.WorkspaceRoot, k.Section, k.TriggerKey, k.Site, k.Target}, "::")
}

// Candidate is one path the resolver proposes, with the base path location it came from.
type Candidate struct {
	Path     string
	BasePath string
}
