package paircache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "embed"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

// Result is a cached pairing outcome. Names are case sensitive.
type Result struct {
	Name             string
	Emoji            string
	IsFirstDiscovery bool
}

// Store caches pairing results keyed on the two input names. Pairing
// is commutative upstream so the key orders the two names
// lexicographically before lookup and insert.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	_, err := db.Exec(Schema)
	if err != nil {
		return Store{}, fmt.Errorf("apply pair cache schema: %w", err)
	}
	return Store{db: db}, nil
}

// Open opens (creating if necessary) a pair cache at the given sqlite
// file path. ":memory:" works for tests.
func Open(path string) (Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return Store{}, err
	}
	return NewStore(db)
}

func (s Store) Close() error {
	return s.db.Close()
}

func key(first, second string) (string, string) {
	if second < first {
		return second, first
	}
	return first, second
}

// Get returns the cached result for a pair and whether one exists.
func (s Store) Get(ctx context.Context, first, second string) (Result, bool, error) {
	a, b := key(first, second)

	row := s.db.QueryRowContext(
		ctx,
		`SELECT name, emoji, is_first_discovery FROM pair_results WHERE first = ? AND second = ?`,
		a, b,
	)

	var out Result
	err := row.Scan(&out.Name, &out.Emoji, &out.IsFirstDiscovery)
	if errors.Is(err, sql.ErrNoRows) {
		return Result{}, false, nil
	}
	if err != nil {
		return Result{}, false, err
	}
	return out, true, nil
}

// Put records a pairing outcome, overwriting any previous entry for
// the same pair.
func (s Store) Put(ctx context.Context, first, second string, result Result) error {
	a, b := key(first, second)

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO pair_results (first, second, name, emoji, is_first_discovery, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (first, second) DO UPDATE SET
		     name = excluded.name,
		     emoji = excluded.emoji,
		     is_first_discovery = excluded.is_first_discovery,
		     created_at = excluded.created_at`,
		a, b, result.Name, result.Emoji, result.IsFirstDiscovery, time.Now().Unix(),
	)
	return err
}
