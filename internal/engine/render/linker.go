package render

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"

	"go.trai.ch/intellitip/internal/core/domain"
	"go.trai.ch/intellitip/internal/core/ports"
)

var crossReference = regexp.MustCompile(`\{\{([\w.-]+)\}\}`)

// Linker rewrites {{name}} references into links to schema files.
type Linker struct {
	fs     ports.FileSystem
	logger ports.Logger
}

// NewLinker creates a Linker.
func NewLinker(fsys ports.FileSystem, logger ports.Logger) *Linker {
	return &Linker{fs: fsys, logger: logger}
}

// Link replaces each {{name}} in md with a link to the first <name>.js found under
// the schema base paths, in order. Unresolved references are left as written.
func (l *Linker) Link(ctx context.Context, md string, schemaPaths []domain.BasePath, bc domain.BaseContext) string {
	if !strings.Contains(md, "{{") {
		return md
	}

	var roots []string
	for _, bp := range schemaPaths {
		locations, err := bp.Locations(ctx, bc)
		if err != nil {
			l.logger.Debug("link: " + err.Error())
			continue
		}
		for _, location := range locations {
			roots = append(roots, bc.Abs(location))
		}
	}

	return crossReference.ReplaceAllStringFunc(md, func(token string) string {
		name := crossReference.FindStringSubmatch(token)[1]
		for _, root := range roots {
			path := filepath.Join(root, name+domain.ExtScript)
			if l.fs.Exists(path) {
				return " [**" + name + "**](" + domain.FileURL(path) + ")"
			}
		}
		l.logger.Debug("link: schema " + token + " not found in any schema base path")
		return token
	})
}
