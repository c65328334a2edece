// Package history persists the searches run from the search box.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"

	"github.com/llehouerou/mbrowse/internal/db"
	"github.com/llehouerou/mbrowse/internal/entity"
)

const (
	appName    = "mbrowse"
	dbFileName = "history.db"

	// MaxEntries bounds the stored history; older searches are pruned.
	MaxEntries = 200
)

// Entry is one past search.
type Entry struct {
	Query      string
	Kind       entity.Kind
	Results    int
	SearchedAt time.Time
}

// Store is a SQLite-backed search history.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens the history database at path. Use db.Memory for a throwaway
// store.
func Open(path string) (*Store, error) {
	conn, err := db.Open(path)
	if err != nil {
		return nil, err
	}
	if err := initSchema(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("history schema: %w", err)
	}
	return &Store{db: conn, now: time.Now}, nil
}

// OpenDefault opens the history database in the XDG data directory.
func OpenDefault() (*Store, error) {
	path, err := xdg.DataFile(filepath.Join(appName, dbFileName))
	if err != nil {
		return nil, err
	}
	return Open(path)
}

func initSchema(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE TABLE IF NOT EXISTS searches (
			query TEXT NOT NULL,
			kind TEXT NOT NULL,
			results INTEGER NOT NULL DEFAULT 0,
			searched_at INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			PRIMARY KEY (query, kind)
		);

		CREATE INDEX IF NOT EXISTS idx_searches_seq ON searches(seq);
	`)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Add records e as the most recent search. Searching the same query and kind
// again moves the existing entry to the front.
func (s *Store) Add(ctx context.Context, e Entry) error {
	q := strings.TrimSpace(e.Query)
	if q == "" || !e.Kind.IsKnown() {
		return nil
	}
	at := e.SearchedAt
	if at.IsZero() {
		at = s.now()
	}

	return db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO searches (query, kind, results, searched_at, seq)
			VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM searches))
			ON CONFLICT(query, kind) DO UPDATE SET
				results = excluded.results,
				searched_at = excluded.searched_at,
				seq = excluded.seq
		`, q, e.Kind.String(), e.Results, at.UnixMilli())
		if err != nil {
			return fmt.Errorf("adding search: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			DELETE FROM searches WHERE seq NOT IN (
				SELECT seq FROM searches ORDER BY seq DESC LIMIT ?
			)
		`, MaxEntries)
		if err != nil {
			return fmt.Errorf("pruning history: %w", err)
		}
		return nil
	})
}

// Recent returns up to n entries, most recent first.
func (s *Store) Recent(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		n = MaxEntries
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT query, kind, results, searched_at
		FROM searches
		ORDER BY seq DESC
		LIMIT ?
	`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e    Entry
			kind string
			at   int64
		)
		if err := rows.Scan(&e.Query, &kind, &e.Results, &at); err != nil {
			return nil, err
		}
		e.Kind = entity.ParseKind(kind)
		e.SearchedAt = time.UnixMilli(at)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Clear removes every entry.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM searches`)
	return err
}
