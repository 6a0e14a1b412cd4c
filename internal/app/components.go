package app

import (
	"context"
	"errors"

	"go.trai.ch/intellitip/internal/core/ports"
)

// Components contains all the initialized application components.
// This struct provides controlled access to components needed by the CLI layer.
type Components struct {
	App    *App
	Logger ports.Logger

	closers []func(context.Context) error
}

// NewComponents creates a new Components struct from dependencies.
// Resources are released by Close in reverse order of closers.
func NewComponents(app *App, logger ports.Logger, closers ...func(context.Context) error) *Components {
	return &Components{
		App:     app,
		Logger:  logger,
		closers: closers,
	}
}

// Close releases every watch subscription and flushes telemetry.
func (c *Components) Close(ctx context.Context) error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
