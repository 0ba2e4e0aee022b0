// Package sqlitestore emulates a bucket in a single SQLite table so the cleaner
// can run against a local repository copy.
package sqlitestore

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mattjoyce/s3-maven-cleaner/internal/objectstore"
)

const defaultMaxKeys = 1000

// Store is an objectstore.Store backed by SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (and creates if needed) the SQLite database at path and
// ensures the objects table exists.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	if err := checkLocalFilesystem(path); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(pctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy_timeout: %w", err)
	}
	if err := Bootstrap(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Bootstrap creates the objects table if missing.
func Bootstrap(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS objects (
  key        TEXT PRIMARY KEY,
  body       BLOB,
  size       INTEGER NOT NULL,
  created_at TEXT NOT NULL
);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap sqlite: %w", err)
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put writes (or replaces) an object.
func (s *Store) Put(ctx context.Context, key string, body []byte) error {
	if body == nil {
		body = []byte{}
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO objects(key, body, size, created_at) VALUES(?, ?, ?, ?)
ON CONFLICT(key) DO UPDATE SET body = excluded.body, size = excluded.size;`,
		key, body, len(body), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return &objectstore.TransportError{Op: "put", Key: key, Err: err}
	}
	return nil
}

// List pages through keys in byte order. The continuation token is the
// last key of the previous page.
func (s *Store) List(ctx context.Context, in objectstore.ListInput) (*objectstore.ListPage, error) {
	limit := in.MaxKeys
	if limit <= 0 || limit > defaultMaxKeys {
		limit = defaultMaxKeys
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT key, size FROM objects
WHERE substr(key, 1, length(?)) = ? AND key > ?
ORDER BY key
LIMIT ?;`, in.Prefix, in.Prefix, in.ContinuationToken, limit+1)
	if err != nil {
		return nil, &objectstore.TransportError{Op: "list", Key: in.Prefix, Err: err}
	}
	defer rows.Close()

	page := &objectstore.ListPage{}
	for rows.Next() {
		var obj objectstore.Object
		if err := rows.Scan(&obj.Key, &obj.Size); err != nil {
			return nil, &objectstore.TransportError{Op: "list", Key: in.Prefix, Err: err}
		}
		page.Objects = append(page.Objects, obj)
	}
	if err := rows.Err(); err != nil {
		return nil, &objectstore.TransportError{Op: "list", Key: in.Prefix, Err: err}
	}

	if len(page.Objects) > limit {
		page.Objects = page.Objects[:limit]
		page.Truncated = true
		page.NextContinuationToken = page.Objects[limit-1].Key
	}
	return page, nil
}

func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx, `SELECT body FROM objects WHERE key = ?;`, key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &objectstore.TransportError{Op: "get", Key: key, Err: fmt.Errorf("no such key")}
	}
	if err != nil {
		return nil, &objectstore.TransportError{Op: "get", Key: key, Err: err}
	}
	return io.NopCloser(bytes.NewReader(body)), nil
}

// DeleteObjects removes keys in one transaction. Missing keys count as
// deleted, as they do on S3.
func (s *Store) DeleteObjects(ctx context.Context, keys []string) (*objectstore.DeleteResult, error) {
	if len(keys) > objectstore.MaxDeleteBatch {
		return nil, fmt.Errorf("delete batch of %d exceeds limit %d", len(keys), objectstore.MaxDeleteBatch)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &objectstore.TransportError{Op: "delete", Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	res := &objectstore.DeleteResult{}
	for _, k := range keys {
		if _, err := tx.ExecContext(ctx, `DELETE FROM objects WHERE key = ?;`, k); err != nil {
			res.Failed = append(res.Failed, objectstore.DeleteFailure{Key: k, Code: "InternalError", Message: err.Error()})
			continue
		}
		res.Deleted = append(res.Deleted, k)
	}
	if err := tx.Commit(); err != nil {
		return nil, &objectstore.TransportError{Op: "delete", Err: err}
	}
	return res, nil
}
