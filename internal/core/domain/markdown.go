package domain

import (
	"path/filepath"
	"regexp"
)

// relativeImage matches Markdown images whose target starts with "./".
var relativeImage = regexp.MustCompile(`!\[([^\]]*)\]\((\./[^)]+)\)`)

// RewriteRelativeImages replaces every ![alt](./rel) in body with an absolute file URL under dir.
func RewriteRelativeImages(body, dir string) string {
	return relativeImage.ReplaceAllStringFunc(body, func(m string) string {
		parts := relativeImage.FindStringSubmatch(m)
		abs := filepath.Join(dir, filepath.FromSlash(parts[2]))
		return "![" + parts[1] + "](" + FileURL(abs) + ")"
	})
}
