package ports

// WatchOp represents the type of file system operation.
type WatchOp uint8

const (
	// OpCreate indicates a file or directory was created.
	OpCreate WatchOp = iota
	// OpWrite indicates a file was modified.
	OpWrite
	// OpRemove indicates a file or directory was removed.
	OpRemove
	// OpRename indicates a file or directory was renamed.
	OpRename
)

// String returns the operation name.
func (op WatchOp) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpWrite:
		return "write"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// WatchEvent represents a file system event from the watcher.
type WatchEvent struct {
	// Path is the absolute path of the file that changed.
	Path string
	// Operation is the type of change that occurred.
	Operation WatchOp
}

// Subscription is a live watch on one file.
type Subscription interface {
	// Close cancels the subscription. Closing twice is a no-op.
	Close() error
}

// Watcher defines the interface for watching individual files.
//
//go:generate mockgen -source=watcher.go -destination=mocks/mock_watcher.go -package=mocks
type Watcher interface {
	// Watch subscribes to changes of the file at path.
	// The handler runs on the watcher's event goroutine, at most once: after the
	// first event the subscription disposes itself. Each call returns a distinct
	// subscription; every live subscription of a path fires on its next change.
	Watch(path string, handler func(WatchEvent)) (Subscription, error)
	// Close stops the watcher and releases every outstanding subscription.
	Close() error
}
