// Package output provides utilities for writing styled terminal output with a
// consistent color profile across the CLI.
package output

import (
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"
	"go.trai.ch/intellitip/internal/ui/style"
)

// ColorProfile returns the color profile to use for terminal output.
// It checks if NO_COLOR is set, returning Ascii if so.
// Otherwise, it detects the terminal's capabilities automatically.
func ColorProfile() termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}

// New creates a new termenv.Output with the shared profile logic.
func New(w io.Writer, opts ...termenv.OutputOption) *termenv.Output {
	if w == nil {
		w = os.Stderr
	}

	opts = append(opts,
		termenv.WithProfile(ColorProfile()),
		termenv.WithTTY(true),
	)

	return termenv.NewOutput(w, opts...)
}

// MarkdownStyle picks the glamour style matching the color profile and background of out.
func MarkdownStyle(out *termenv.Output) string {
	if out.Profile == termenv.Ascii {
		return style.MarkdownNoColor
	}
	if out.HasDarkBackground() {
		return style.MarkdownDark
	}
	return style.MarkdownLight
}

// RenderMarkdown renders md for display in a terminal of the given width.
func RenderMarkdown(w io.Writer, md string, width int) error {
	out := New(w)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(MarkdownStyle(out)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return err
	}

	rendered, err := renderer.Render(md)
	if err != nil {
		return err
	}

	_, err = out.WriteString(rendered)
	return err
}

// Width returns the column count of the terminal behind w, or fallback when w
// is not a terminal.
func Width(w io.Writer, fallback int) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return fallback
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return fallback
	}
	return width
}
