package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/intellitip/internal/app"
)

func TestComponents_Close(t *testing.T) {
	var order []string
	closer := func(name string, err error) func(context.Context) error {
		return func(context.Context) error {
			order = append(order, name)
			return err
		}
	}

	c := app.NewComponents(nil, nil,
		closer("tracer", nil),
		closer("watcher", errors.New("watcher failed")),
		closer("cache", nil),
	)

	err := c.Close(context.Background())
	assert.ErrorContains(t, err, "watcher failed")
	assert.Equal(t, []string{"cache", "watcher", "tracer"}, order)

	assert.NoError(t, c.Close(context.Background()), "second close is a no-op")
	assert.Len(t, order, 3)
}
