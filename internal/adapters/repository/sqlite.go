package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/tierlist/internal/domain/model"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

const schema = `
CREATE TABLE IF NOT EXISTS rankings (
	key        TEXT PRIMARY KEY,
	version    INTEGER NOT NULL,
	doc        TEXT NOT NULL,
	saved_at   INTEGER NOT NULL,
	updated_at INTEGER NOT NULL,
	revision   INTEGER NOT NULL DEFAULT 0
);
`

// SQLiteStore keeps one JSON document per key in a single table.
type SQLiteStore struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(path string, opts ...Option) (*SQLiteStore, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if path == "" {
		return nil, ErrEmptyPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)", path, o.busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	if err := addRevisionColumn(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db, path: path, now: o.now}, nil
}

func (s *SQLiteStore) Put(ctx context.Context, key string, doc model.SavedRanking) (err error) {
	defer func(start time.Time) { observe("put", start, err) }(time.Now())
	if key == "" {
		return ErrEmptyKey
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode ranking: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO rankings (key, version, doc, saved_at, updated_at, revision)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			version = excluded.version,
			doc = excluded.doc,
			saved_at = excluded.saved_at,
			updated_at = excluded.updated_at,
			revision = excluded.revision
		WHERE excluded.revision >= rankings.revision`,
		key, doc.Version, string(raw), doc.SavedAt, s.now().UnixMilli(), doc.Revision)
	if err != nil {
		return fmt.Errorf("upsert ranking %s: %w", key, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		stale(key, doc.Revision)
	}
	return nil
}

// addRevisionColumn upgrades databases created before rankings carried a revision.
func addRevisionColumn(db *sql.DB) error {
	found, err := hasColumn(db, "rankings", "revision")
	if err != nil || found {
		return err
	}
	if _, err := db.Exec(`ALTER TABLE rankings ADD COLUMN revision INTEGER NOT NULL DEFAULT 0`); err != nil {
		return fmt.Errorf("add revision column: %w", err)
	}
	return nil
}

// hasColumn releases its rows before returning; the pool holds one connection.
func hasColumn(db *sql.DB, table, column string) (bool, error) {
	rows, err := db.Query(`SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return false, fmt.Errorf("inspect schema: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return false, fmt.Errorf("inspect schema: %w", err)
		}
		if name == column {
			return true, nil
		}
	}
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("inspect schema: %w", err)
	}
	return false, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (doc model.SavedRanking, err error) {
	defer func(start time.Time) { observe("get", start, err) }(time.Now())

	var raw string
	err = s.db.QueryRowContext(ctx, `SELECT doc FROM rankings WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SavedRanking{}, ErrNotFound
	}
	if err != nil {
		return model.SavedRanking{}, fmt.Errorf("select ranking %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return model.SavedRanking{}, fmt.Errorf("decode ranking %s: %w", key, err)
	}
	return doc, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) (err error) {
	defer func(start time.Time) { observe("delete", start, err) }(time.Now())

	if _, err = s.db.ExecContext(ctx, `DELETE FROM rankings WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete ranking %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM rankings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list rankings: %w", err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
