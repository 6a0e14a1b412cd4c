package domain

import "go.trai.ch/zerr"

var (
	// ErrNoTrigger is returned when no configured trigger matches the cursor position.
	ErrNoTrigger = zerr.New("no trigger under cursor")

	// ErrInvalidBasePath is returned when a base path configuration is missing or malformed.
	ErrInvalidBasePath = zerr.New("invalid base path configuration")

	// ErrBasePathUnresolvable is returned when a computed base path cannot be evaluated.
	ErrBasePathUnresolvable = zerr.New("base path could not be resolved")

	// ErrDefinitionNotFound is returned when no candidate path exists on disk.
	ErrDefinitionNotFound = zerr.New("definition not found")

	// ErrDefinitionLoadFailed is returned when a candidate exists but cannot be decoded.
	ErrDefinitionLoadFailed = zerr.New("failed to load definition")

	// ErrUnsupportedFormat is returned when no loader supports a file extension.
	ErrUnsupportedFormat = zerr.New("unsupported definition format")

	// ErrFormatMismatch is returned by a loader strategy when the file uses another module format.
	ErrFormatMismatch = zerr.New("file uses a different module format")

	// ErrNotAnObject is returned when a definition does not export an object.
	ErrNotAnObject = zerr.New("definition does not export an object")

	// ErrNotAFunction is returned when a renderer location does not export a function.
	ErrNotAFunction = zerr.New("renderer does not export a function")

	// ErrRenderFailed is returned when a delegated renderer throws or returns a non-string.
	ErrRenderFailed = zerr.New("custom renderer failed")

	// ErrRendererNotFound is returned when a declared renderer file does not exist.
	ErrRendererNotFound = zerr.New("custom renderer not found")

	// ErrScriptEvaluationFailed is returned when a script definition throws during evaluation.
	ErrScriptEvaluationFailed = zerr.New("failed to evaluate script")

	// ErrScriptTransformFailed is returned when an ES module cannot be transformed.
	ErrScriptTransformFailed = zerr.New("failed to transform ES module")

	// ErrConfigReadFailed is returned when the settings file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read settings file")

	// ErrConfigParseFailed is returned when the settings file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse settings file")

	// ErrInvalidTriggerMap is returned when a trigger section is not a mapping.
	ErrInvalidTriggerMap = zerr.New("trigger section must be a mapping of trigger keys to base paths")

	// ErrProjectConfigFailed is returned when the project config override cannot be loaded.
	ErrProjectConfigFailed = zerr.New("failed to load project config")

	// ErrWatchFailed is returned when a file watch subscription cannot be created.
	ErrWatchFailed = zerr.New("failed to watch file")

	// ErrFileReadFailed is returned when a file cannot be read.
	ErrFileReadFailed = zerr.New("failed to read file")

	// ErrInvalidRequest is returned when a hover request is malformed.
	ErrInvalidRequest = zerr.New("invalid hover request")
)
