package file

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/idledger/internal/core/domain"
	"github.com/custodia-labs/idledger/internal/core/ports/driven"
	"github.com/custodia-labs/idledger/internal/fsutil"
	"github.com/custodia-labs/idledger/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driven.ChangeNotifier = (*Watcher)(nil)

// DefaultDebounce is how long the cards directory must stay quiet before
// a change is reported.
const DefaultDebounce = 250 * time.Millisecond

// Watcher reports changes to card files.
type Watcher struct {
	dir      string
	debounce time.Duration
}

// NewWatcher watches dir. A non-positive debounce uses DefaultDebounce.
func NewWatcher(dir string, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{dir: dir, debounce: debounce}
}

// Watch blocks until ctx is done, calling onChange once per burst of
// card file changes. Temporary files from atomic writes are ignored.
func (w *Watcher) Watch(ctx context.Context, onChange func()) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return domain.NewIOError("create cards dir", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return domain.NewIOError("start watcher", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return domain.NewIOError("watch "+w.dir, err)
	}
	logger.Debug("watching %s (debounce %s)", w.dir, w.debounce)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !isCardEvent(event) {
				continue
			}
			logger.Debug("card change: %s %s", event.Op, filepath.Base(event.Name))
			timer.Reset(w.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error: %v", err)

		case <-timer.C:
			onChange()
		}
	}
}

func isCardEvent(event fsnotify.Event) bool {
	if filepath.Ext(event.Name) != cardExt || fsutil.IsTemp(event.Name) {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}
