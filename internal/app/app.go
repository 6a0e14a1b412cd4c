// Package app implements the application layer for intellitip.
package app

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"go.trai.ch/intellitip/internal/core/domain"
	"go.trai.ch/intellitip/internal/core/ports"
	"go.trai.ch/intellitip/internal/engine/hover"
	"go.trai.ch/zerr"
)

// Digester computes a stable digest of rendered content.
type Digester interface {
	Digest(s string) string
}

// App represents the main application logic.
type App struct {
	settings ports.SettingsLoader
	fs       ports.FileSystem
	hover    *hover.Service
	digester Digester
	logger   ports.Logger

	root         string
	settingsFile string
	forceDebug   bool
	debugOnce    sync.Once
}

// New creates a new App instance.
func New(
	settings ports.SettingsLoader,
	fsys ports.FileSystem,
	svc *hover.Service,
	digester Digester,
	log ports.Logger,
) *App {
	return &App{
		settings: settings,
		fs:       fsys,
		hover:    svc,
		digester: digester,
		logger:   log,
	}
}

// Options holds the process-wide defaults applied to every request.
type Options struct {
	// Root is the workspace root used by requests that do not name one.
	Root string
	// SettingsFile overrides the host settings file, relative to the root.
	SettingsFile string
	// Debug forces diagnostic logging regardless of the workspace settings.
	Debug bool
}

// Configure applies opts to subsequent requests.
func (a *App) Configure(opts Options) {
	a.root = opts.Root
	a.settingsFile = opts.SettingsFile
	a.forceDebug = opts.Debug
}

// HoverRequest identifies one cursor position.
type HoverRequest struct {
	// ID is echoed in the response.
	ID any `json:"id,omitempty"`
	// Root is the workspace root. Empty selects the default root of the caller.
	Root string `json:"root,omitempty"`
	// File is the path of the open file, absolute or relative to Root.
	File string `json:"file"`
	// Line is the zero-based line number in File.
	Line int `json:"line"`
	// Column is the zero-based character offset in the line.
	Column int `json:"column"`
	// Text replaces the line read from File when set.
	Text *string `json:"text,omitempty"`
}

// HoverResponse is the outcome of a HoverRequest.
type HoverResponse struct {
	ID       any    `json:"id,omitempty"`
	Markdown string `json:"markdown"`
	Digest   string `json:"digest,omitempty"`
	Found    bool   `json:"found"`
	Error    string `json:"error,omitempty"`
}

// Hover renders the hover content at req. A position without documentation is
// a successful response with Found unset; only invalid requests and unreadable
// settings are errors.
func (a *App) Hover(ctx context.Context, req HoverRequest) (HoverResponse, error) {
	resp := HoverResponse{ID: req.ID}
	if req.File == "" || req.Line < 0 || req.Column < 0 {
		return resp, zerr.With(domain.ErrInvalidRequest, "file", req.File)
	}

	root := req.Root
	if root == "" {
		root = a.root
	}
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	file := absolute(root, req.File)

	settings, err := a.settings.Load(root, a.settingsFile)
	if err != nil {
		return resp, zerr.Wrap(err, "failed to load settings")
	}
	// The logger is shared by concurrent requests, so the first settings loaded
	// decide the debug gate for the rest of the process.
	a.debugOnce.Do(func() { a.logger.SetDebug(a.forceDebug || settings.Debug) })

	line, err := a.lineAt(file, req)
	if err != nil {
		return resp, err
	}

	result, ok := a.hover.Hover(ctx, hover.Request{
		Line:          line,
		Column:        req.Column,
		FilePath:      file,
		WorkspaceRoot: root,
	}, settings)
	if !ok {
		return resp, nil
	}

	resp.Markdown = result.Markdown
	resp.Digest = a.digester.Digest(result.Markdown)
	resp.Found = true
	return resp, nil
}

func (a *App) lineAt(file string, req HoverRequest) (string, error) {
	if req.Text != nil {
		return *req.Text, nil
	}

	data, err := a.fs.ReadFile(file)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrInvalidRequest.Error()), "file", file)
	}
	lines := strings.Split(string(data), "\n")
	if req.Line >= len(lines) {
		return "", zerr.With(zerr.With(domain.ErrInvalidRequest, "file", file), "line", req.Line)
	}
	return strings.TrimSuffix(lines[req.Line], "\r"), nil
}

func absolute(root, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(root, path)
}
