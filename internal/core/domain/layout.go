package domain

import "path/filepath"

const (
	// DirName is the name of the project-level configuration directory.
	DirName = ".intellitip"

	// ProjectConfigFileName is the conventional project config override file.
	ProjectConfigFileName = "config.js"

	// SettingsFileName is the host settings file at the workspace root.
	SettingsFileName = "intellitip.yaml"

	// InfoFileBase is the base name of component info definition files.
	InfoFileBase = "_info"

	// ReadmeLower and ReadmeUpper are the component readme conventions.
	ReadmeLower = "readme.md"
	ReadmeUpper = "README.md"

	// SitesDirName is the directory segment that precedes a site name.
	SitesDirName = "sites"

	// ExtMarkdown and ExtScript are the primary definition extensions.
	ExtMarkdown = ".md"
	ExtScript   = ".js"
)

// DataExtensions lists the data definition formats tried after the script convention, in order.
var DataExtensions = []string{".json", ".yaml", ".yml", ".toml", ".cue"}

// DefaultProjectConfigPath returns the workspace-relative default project config path.
// It joins .intellitip and config.js.
func DefaultProjectConfigPath() string {
	return filepath.Join(DirName, ProjectConfigFileName)
}
