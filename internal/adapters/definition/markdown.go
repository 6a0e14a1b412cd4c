package definition

import (
	"context"
	"path/filepath"

	"go.trai.ch/intellitip/internal/core/domain"
	"go.trai.ch/intellitip/internal/core/ports"
)

// MarkdownLoader reads Markdown definitions.
type MarkdownLoader struct {
	fs ports.FileSystem
}

// NewMarkdownLoader creates a new MarkdownLoader.
func NewMarkdownLoader(fsys ports.FileSystem) *MarkdownLoader {
	return &MarkdownLoader{fs: fsys}
}

// Name identifies the loader in diagnostics.
func (l *MarkdownLoader) Name() string { return "markdown" }

// Supports reports whether path is a Markdown file.
func (l *MarkdownLoader) Supports(path string) bool {
	return hasExt(path, domain.ExtMarkdown)
}

// Load reads the file and returns an object holding the body under "md".
// Relative images are rewritten to file URLs anchored at the file's directory.
func (l *MarkdownLoader) Load(_ context.Context, path string) (any, error) {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		return nil, err
	}

	body := domain.RewriteRelativeImages(string(data), filepath.Dir(path))
	return domain.ObjectFromPairs(domain.KeyMarkdown, body), nil
}
