package app

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"
	"sync"

	"go.trai.ch/intellitip/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// maxRequestSize bounds a single NDJSON request line.
const maxRequestSize = 1 << 20

// ServeOptions configures Serve.
type ServeOptions struct {
	// Concurrency bounds the number of requests handled at once. Zero means one.
	Concurrency int
	// JSONLogs switches diagnostic logging to JSON lines.
	JSONLogs bool
}

// Serve answers newline-delimited JSON hover requests from r on w until r is
// exhausted or ctx is cancelled. Responses may be written out of request order;
// callers correlate them by id. Malformed requests are answered with an error
// response and do not stop the loop.
func (a *App) Serve(ctx context.Context, r io.Reader, w io.Writer, opts ServeOptions) error {
	if j, ok := a.logger.(interface{ SetJSON(enable bool) }); ok && opts.JSONLogs {
		j.SetJSON(true)
	}

	limit := opts.Concurrency
	if limit < 1 {
		limit = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	var mu sync.Mutex
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	write := func(resp HoverResponse) error {
		mu.Lock()
		defer mu.Unlock()
		return enc.Encode(resp)
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRequestSize)

	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var req HoverRequest
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			a.logger.Debug("serve: " + err.Error())
			if werr := write(HoverResponse{Error: domain.ErrInvalidRequest.Error()}); werr != nil {
				return zerr.Wrap(werr, "failed to write response")
			}
			continue
		}

		g.Go(func() error {
			resp, err := a.Hover(ctx, req)
			if err != nil {
				a.logger.Debug("serve: " + err.Error())
				resp.Error = errorMessage(err)
			}
			if werr := write(resp); werr != nil {
				return zerr.Wrap(werr, "failed to write response")
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if err := scanner.Err(); err != nil {
		return zerr.Wrap(err, "failed to read requests")
	}
	return ctx.Err()
}

// errorMessage returns the top-level message of err without its causes.
func errorMessage(err error) string {
	if m, ok := err.(interface{ Message() string }); ok {
		return m.Message()
	}
	return err.Error()
}
