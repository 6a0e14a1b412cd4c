package ports

import "context"

// DefinitionLoader decodes a definition file into its exported value.
// The exported value is a *domain.Object for data-shaped definitions, a domain.Function
// for renderer modules, or any other decoded value.
//
//go:generate mockgen -source=loader.go -destination=mocks/mock_loader.go -package=mocks
type DefinitionLoader interface {
	// Name identifies the loader in diagnostics.
	Name() string
	// Supports reports whether the loader handles the file at path.
	Supports(path string) bool
	// Load decodes the file at path.
	Load(ctx context.Context, path string) (any, error)
}
