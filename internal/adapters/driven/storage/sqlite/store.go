package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/idledger/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/idledger/internal/core/domain"
	"github.com/custodia-labs/idledger/internal/core/ports/driven"
)

// Store is a SQLite database holding cards and ledger events.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (or creates) the database at dbPath and applies migrations.
func NewStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("%w: database path is required", domain.ErrInvalidInput)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, domain.NewIOError("create database dir", err)
	}

	// WAL mode lets readers run alongside the single writer.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, domain.NewIOError("open database", err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// CardStore returns a CardStore backed by this store.
func (s *Store) CardStore() driven.CardStore {
	return &cardStore{store: s}
}

// Ledger returns a Ledger backed by this store.
func (s *Store) Ledger() driven.Ledger {
	return &ledger{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}
	return nil
}

// ==================== Card Store ====================

// cardStore implements driven.CardStore.
type cardStore struct {
	store *Store
}

var _ driven.CardStore = (*cardStore)(nil)

// Load retrieves the current version of a card.
func (s *cardStore) Load(ctx context.Context, id string) (*domain.Card, error) {
	var body string
	err := s.store.db.QueryRowContext(ctx, `SELECT body FROM cards WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("card %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, domain.NewIOError("load card", err)
	}
	return decodeCard(body)
}

// Save upserts a card version in one statement.
func (s *cardStore) Save(ctx context.Context, card domain.Card) error {
	card = card.Normalized()
	body, err := json.Marshal(card)
	if err != nil {
		return fmt.Errorf("encode card %s: %w", card.ID, err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO cards (id, doc_key, version, merged_into, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			doc_key = excluded.doc_key,
			version = excluded.version,
			merged_into = excluded.merged_into,
			body = excluded.body,
			updated_at = excluded.updated_at
	`, card.ID, card.DocKey, card.Version, nullString(card.MergedIntoID()), string(body), time.Now().UTC())
	return domain.NewIOError("save card "+card.ID, err)
}

// All yields every card ordered by identifier. The rows are read before
// the first yield so callers may write while iterating.
func (s *cardStore) All(ctx context.Context) iter.Seq2[domain.Card, error] {
	return func(yield func(domain.Card, error) bool) {
		bodies, err := s.bodies(ctx)
		if err != nil {
			yield(domain.Card{}, err)
			return
		}
		for _, body := range bodies {
			card, err := decodeCard(body)
			if err != nil {
				if !yield(domain.Card{}, err) {
					return
				}
				continue
			}
			if !yield(*card, nil) {
				return
			}
		}
	}
}

func (s *cardStore) bodies(ctx context.Context) ([]string, error) {
	rows, err := s.store.db.QueryContext(ctx, `SELECT body FROM cards ORDER BY id`)
	if err != nil {
		return nil, domain.NewIOError("list cards", err)
	}
	defer rows.Close()

	var bodies []string
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, domain.NewIOError("scan card", err)
		}
		bodies = append(bodies, body)
	}
	return bodies, domain.NewIOError("list cards", rows.Err())
}

func decodeCard(body string) (*domain.Card, error) {
	var card domain.Card
	if err := json.Unmarshal([]byte(body), &card); err != nil {
		return nil, fmt.Errorf("%w: decode card: %v", domain.ErrInvalidInput, err)
	}
	card = card.Normalized()
	return &card, nil
}

// ==================== Ledger ====================

// ledger implements driven.Ledger.
type ledger struct {
	store *Store
}

var _ driven.Ledger = (*ledger)(nil)

// Append inserts one event. The autoincrement sequence is the event order.
func (l *ledger) Append(ctx context.Context, event domain.Event) error {
	data, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("encode event data: %w", err)
	}
	_, err = l.store.db.ExecContext(ctx, `
		INSERT INTO events (event_type, timestamp, id, doc_key, data)
		VALUES (?, ?, ?, ?, ?)
	`, string(event.Type), event.Timestamp.UTC().Format(time.RFC3339Nano), event.ID, event.DocKey, string(data))
	return domain.NewIOError("append event", err)
}

// Events yields every event in sequence order.
func (l *ledger) Events(ctx context.Context) iter.Seq2[domain.Event, error] {
	return func(yield func(domain.Event, error) bool) {
		rows, err := l.store.db.QueryContext(ctx, `
			SELECT seq, event_type, timestamp, id, doc_key, data FROM events ORDER BY seq
		`)
		if err != nil {
			yield(domain.Event{}, domain.NewIOError("read events", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var (
				seq            int64
				eventType, ts  string
				id, docKey, js string
			)
			if err := rows.Scan(&seq, &eventType, &ts, &id, &docKey, &js); err != nil {
				yield(domain.Event{}, domain.NewIOError("scan event", err))
				return
			}
			event, err := decodeEvent(eventType, ts, id, docKey, js)
			if err != nil {
				err = fmt.Errorf("event %d: %w", seq, err)
			}
			if !yield(event, err) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(domain.Event{}, domain.NewIOError("read events", err))
		}
	}
}

func decodeEvent(eventType, ts, id, docKey, data string) (domain.Event, error) {
	at, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return domain.Event{}, fmt.Errorf("%w: parse timestamp: %v", domain.ErrInvalidInput, err)
	}
	payload := map[string]any{}
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return domain.Event{}, fmt.Errorf("%w: decode event data: %v", domain.ErrInvalidInput, err)
	}
	return domain.Event{
		Type:      domain.EventType(eventType),
		Timestamp: at,
		ID:        id,
		DocKey:    docKey,
		Data:      payload,
	}, nil
}

// nullString converts empty strings to NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
