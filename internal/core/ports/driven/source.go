package driven

import "context"

// ManualSource enumerates manual files under a corpus root.
// Backed by the local filesystem.
type ManualSource interface {
	// List returns the absolute paths of all manuals under root, sorted
	// lexicographically so repeated runs visit files in the same order.
	List(ctx context.Context, root string) ([]string, error)

	// Watch emits the path of each manual created or modified under root.
	// The channel is closed when ctx is cancelled.
	Watch(ctx context.Context, root string) (<-chan string, error)
}
