package ports

// FileSystem abstracts the filesystem reads performed while resolving definitions.
// Existence checks are kept separate from reads so they can be cached and mocked independently.
//
//go:generate mockgen -source=fs.go -destination=mocks/mock_fs.go -package=mocks
type FileSystem interface {
	// Exists reports whether path exists and is a regular file.
	Exists(path string) bool
	// ReadFile returns the content of the file at path.
	ReadFile(path string) ([]byte, error)
}
