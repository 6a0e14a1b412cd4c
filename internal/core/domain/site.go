package domain

import (
	"path/filepath"
	"slices"
	"strings"
)

// SiteFromPath infers the site of a file from the first "sites/<site>" segment
// of its path relative to the workspace root. It returns "" when there is none.
func SiteFromPath(root, file string) string {
	if file == "" {
		return ""
	}
	rel := file
	if root != "" {
		r, err := filepath.Rel(root, file)
		if err != nil {
			return ""
		}
		rel = r
	}

	parts := slices.DeleteFunc(strings.Split(filepath.ToSlash(rel), "/"), func(s string) bool {
		return s == "" || s == "."
	})
	idx := slices.Index(parts, SitesDirName)
	if idx < 0 || idx+1 >= len(parts) {
		return ""
	}
	return parts[idx+1]
}
