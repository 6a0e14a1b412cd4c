package logger_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/intellitip/internal/adapters/logger"
	"go.trai.ch/zerr"
)

// newTestLogger creates a logger with an injected bytes.Buffer for isolated testing.
// It also sets NO_COLOR=1 to ensure deterministic output without ANSI escape codes.
func newTestLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := logger.New()
	lg.SetOutput(buf)
	return lg, buf
}

func TestLogger_Info(t *testing.T) {
	tests := []struct {
		name       string
		msg        string
		goldenName string
	}{
		{name: "simple message", msg: "loaded settings", goldenName: "info_basic"},
		{name: "multiline message", msg: "line1\nline2", goldenName: "info_multiline"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lg, buf := newTestLogger(t)
			lg.Info(tt.msg)

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestLogger_Warn(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Warn("project config ignored")

	g := goldie.New(t)
	g.Assert(t, "warn_basic", buf.Bytes())
}

func TestLogger_Debug_Gated(t *testing.T) {
	lg, buf := newTestLogger(t)

	lg.Debug("resolving schemas.user")
	assert.Empty(t, buf.String())
	assert.False(t, lg.DebugEnabled())

	lg.SetDebug(true)
	assert.True(t, lg.DebugEnabled())
	lg.Debug("resolving schemas.user")

	g := goldie.New(t)
	g.Assert(t, "debug_enabled", buf.Bytes())

	buf.Reset()
	lg.SetDebug(false)
	lg.Debug("resolving schemas.user")
	assert.Empty(t, buf.String())
}

func TestLogger_Debug_SurvivesOutputChange(t *testing.T) {
	lg, _ := newTestLogger(t)
	lg.SetDebug(true)

	buf := &bytes.Buffer{}
	lg.SetOutput(buf)
	lg.Debug("still enabled")

	assert.Contains(t, buf.String(), "still enabled")
}

func TestLogger_Error(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		goldenName string
	}{
		{
			name:       "standard error",
			err:        errors.New("plain failure"),
			goldenName: "error_standard",
		},
		{
			name:       "wrapped zerr chain",
			err:        zerr.Wrap(zerr.New("unexpected token"), "failed to load definition"),
			goldenName: "error_chain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lg, buf := newTestLogger(t)
			lg.Error(tt.err)

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestLogger_Error_Nil(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Error(nil)
	assert.Empty(t, buf.String())
}

func TestLogger_JSON(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.SetJSON(true)
	lg.SetDebug(true)

	lg.Debug("cache hit")
	lg.Error(errors.New("boom"))

	out := buf.String()
	require.NotEmpty(t, out)
	assert.Contains(t, out, `"level":"DEBUG"`)
	assert.Contains(t, out, `"msg":"cache hit"`)
	assert.Contains(t, out, `"error":"boom"`)
}
