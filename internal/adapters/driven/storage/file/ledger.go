package file

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"

	"github.com/custodia-labs/idledger/internal/core/domain"
	"github.com/custodia-labs/idledger/internal/core/ports/driven"
	"github.com/custodia-labs/idledger/internal/logger"
)

// Ensure Ledger implements the interface.
var _ driven.Ledger = (*Ledger)(nil)

// Ledger is a JSON Lines event log.
type Ledger struct {
	path string
	sync func(*os.File) error
}

// NewLedger returns a ledger writing to path. The file and its directory
// are created on first append.
func NewLedger(path string) *Ledger {
	return &Ledger{path: path, sync: (*os.File).Sync}
}

// Path returns the ledger file path.
func (l *Ledger) Path() string {
	return l.path
}

// Append writes event as one line at the end of the file. The file is
// opened, locked, written and closed within the call.
//
// A line left without a newline by an interrupted append is terminated
// first, so the fragment stays a line of its own. Once the line has been
// written the event counts as appended: a failing fsync or close is
// logged and not returned, since a retry would log the event twice.
func (l *Ledger) Append(ctx context.Context, event domain.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	line = append(line, '\n')

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return domain.NewIOError("create ledger dir", err)
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return domain.NewIOError("open ledger", err)
	}

	written, err := l.appendLocked(f, line)
	if !written {
		_ = f.Close()
		return err
	}
	if err != nil {
		logger.Warn("ledger: %s %s appended but not synced: %v", event.Type, event.ID, err)
	}
	if err := f.Close(); err != nil {
		logger.Warn("ledger: close after append: %v", err)
	}
	return nil
}

// appendLocked writes line under an exclusive lock. written reports
// whether the line reached the file; err may then still carry a sync failure.
func (l *Ledger) appendLocked(f *os.File, line []byte) (written bool, err error) {
	if err := lockFile(f); err != nil {
		return false, domain.NewIOError("lock ledger", err)
	}
	defer func() { _ = unlockFile(f) }()

	torn, err := endsMidLine(f)
	if err != nil {
		return false, domain.NewIOError("inspect ledger", err)
	}
	if torn {
		logger.Warn("ledger: terminating incomplete last line of %s", l.path)
		line = append([]byte{'\n'}, line...)
	}

	if _, err := f.Write(line); err != nil {
		return false, domain.NewIOError("append ledger", err)
	}
	return true, domain.NewIOError("sync ledger", l.sync(f))
}

// endsMidLine reports whether a non-empty file lacks a final newline.
func endsMidLine(f *os.File) (bool, error) {
	info, err := f.Stat()
	if err != nil {
		return false, err
	}
	if info.Size() == 0 {
		return false, nil
	}
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil {
		return false, err
	}
	return last[0] != '\n', nil
}

// Events yields every event front to back. A missing file yields nothing.
// A final line without a newline is an append in progress and is skipped,
// as is a truncated line left behind by an interrupted append.
func (l *Ledger) Events(ctx context.Context) iter.Seq2[domain.Event, error] {
	return func(yield func(domain.Event, error) bool) {
		f, err := os.Open(l.path)
		if errors.Is(err, os.ErrNotExist) {
			return
		}
		if err != nil {
			yield(domain.Event{}, domain.NewIOError("open ledger", err))
			return
		}
		defer f.Close()

		r := bufio.NewReader(f)
		for lineNo := 1; ; lineNo++ {
			if err := ctx.Err(); err != nil {
				yield(domain.Event{}, err)
				return
			}
			line, err := r.ReadBytes('\n')
			if errors.Is(err, io.EOF) {
				if len(line) > 0 {
					logger.Debug("ledger: ignoring incomplete line %d", lineNo)
				}
				return
			}
			if err != nil {
				yield(domain.Event{}, domain.NewIOError("read ledger", err))
				return
			}
			if len(line) <= 1 {
				continue
			}

			event, err := DecodeEvent(line)
			if errors.Is(err, errTruncated) {
				logger.Debug("ledger: skipping truncated line %d", lineNo)
				continue
			}
			if err != nil {
				err = fmt.Errorf("ledger line %d: %w", lineNo, err)
			}
			if !yield(event, err) {
				return
			}
		}
	}
}

// errTruncated marks a line that ends before its JSON value does.
var errTruncated = errors.New("truncated line")

// DecodeEvent parses one ledger line.
func DecodeEvent(line []byte) (domain.Event, error) {
	line = bytes.TrimRight(line, "\r\n")
	var event domain.Event
	if err := json.Unmarshal(line, &event); err != nil {
		var syntax *json.SyntaxError
		if errors.As(err, &syntax) && syntax.Error() == "unexpected end of JSON input" {
			return domain.Event{}, fmt.Errorf("%w: decode event: %w", domain.ErrInvalidInput, errTruncated)
		}
		return domain.Event{}, fmt.Errorf("%w: decode event: %v", domain.ErrInvalidInput, err)
	}
	if event.Data == nil {
		event.Data = map[string]any{}
	}
	return event, nil
}
