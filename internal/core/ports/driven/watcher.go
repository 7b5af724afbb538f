package driven

import "context"

// ChangeNotifier signals that stored cards changed.
type ChangeNotifier interface {
	// Watch calls onChange after each settled burst of changes until ctx is done.
	Watch(ctx context.Context, onChange func()) error
}
