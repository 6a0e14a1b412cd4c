package domain

import "context"

// Function is an invocable value found inside a definition, such as an inline
// hover renderer, or exported by a delegated renderer file.
type Function interface {
	// Call invokes the function with a single argument object and returns its result.
	Call(ctx context.Context, arg *Object) (any, error)
	// Source returns a printable representation of the function.
	Source() string
}
