// Package sqlite stores protocol documents and their embeddings in SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/kailas-cloud/medtriage/internal/db"
	"github.com/kailas-cloud/medtriage/internal/db/sqlite/migrations"
)

// Compile-time check: Store implements db.DocumentStore.
var _ db.DocumentStore = (*Store)(nil)

// maxInArgs bounds the number of ids bound into one IN (...) clause.
const maxInArgs = 500

// Config holds connection parameters for the SQLite store.
type Config struct {
	Path         string
	BusyTimeout  time.Duration
	MaxOpenConns int
}

// Store implements db.DocumentStore on database/sql with the modernc driver.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the database at cfg.Path and runs migrations.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	busy := cfg.BusyTimeout
	if busy <= 0 {
		busy = 5 * time.Second
	}
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)",
		cfg.Path, busy.Milliseconds())

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	s := &Store{db: conn, path: cfg.Path}
	if err := s.migrate(migrations.FS); err != nil {
		_ = conn.Close()
		return nil, &db.Error{Op: db.OpMigrate, Err: err}
	}
	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return wrapErr(db.OpPing, err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() {
	_ = s.db.Close()
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.Ping(ctx); err == nil {
		return nil
	}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// DocumentIDs returns ids of embedded documents for a specialty, ascending.
func (s *Store) DocumentIDs(ctx context.Context, specialtyID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id
		FROM documents d
		JOIN document_embeddings e ON e.document_id = d.id
		WHERE d.specialty_id = ?
		ORDER BY d.id`, specialtyID)
	if err != nil {
		return nil, wrapErr(db.OpSelect, err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, wrapErr(db.OpSelect, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(db.OpSelect, err)
	}
	return ids, nil
}

// Documents loads documents with their embeddings, ordered by id.
// Unknown ids are skipped.
func (s *Store) Documents(ctx context.Context, ids []int64) ([]db.DocumentRow, error) {
	out := make([]db.DocumentRow, 0, len(ids))
	for start := 0; start < len(ids); start += maxInArgs {
		end := min(start+maxInArgs, len(ids))
		chunk, err := s.documentsChunk(ctx, ids[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) documentsChunk(ctx context.Context, ids []int64) ([]db.DocumentRow, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	//nolint:gosec // placeholders only, values are bound
	query := `
		SELECT d.id, d.specialty_id, d.title, d.body, e.embedding
		FROM documents d
		JOIN document_embeddings e ON e.document_id = d.id
		WHERE d.id IN (` + placeholders + `)`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(db.OpSelect, err)
	}
	defer rows.Close()

	var out []db.DocumentRow
	for rows.Next() {
		var r db.DocumentRow
		if err := rows.Scan(&r.ID, &r.SpecialtyID, &r.Title, &r.Text, &r.Embedding); err != nil {
			return nil, wrapErr(db.OpSelect, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(db.OpSelect, err)
	}
	return out, nil
}

// InsertDocument stores a document and its embedding atomically and returns the new id.
func (s *Store) InsertDocument(ctx context.Context, row db.DocumentRow) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, wrapErr(db.OpInsert, err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO documents (specialty_id, title, body) VALUES (?, ?, ?)`,
		row.SpecialtyID, row.Title, row.Text)
	if err != nil {
		return 0, wrapErr(db.OpInsert, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, wrapErr(db.OpInsert, err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO document_embeddings (document_id, embedding) VALUES (?, ?)`,
		id, row.Embedding); err != nil {
		return 0, wrapErr(db.OpInsert, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, wrapErr(db.OpInsert, err)
	}
	return id, nil
}

// CountBySpecialty returns the number of embedded documents per specialty.
func (s *Store) CountBySpecialty(ctx context.Context) (map[int64]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.specialty_id, COUNT(*)
		FROM documents d
		JOIN document_embeddings e ON e.document_id = d.id
		GROUP BY d.specialty_id`)
	if err != nil {
		return nil, wrapErr(db.OpSelect, err)
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var id int64
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, wrapErr(db.OpSelect, err)
		}
		counts[id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(db.OpSelect, err)
	}
	return counts, nil
}

// migrate applies pending "NNN_name.up.sql" files in order and records each version.
func (s *Store) migrate(fsys fs.FS) error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	var current int
	if err := s.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	names, err := fs.Glob(fsys, "*.up.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			return fmt.Errorf("migration %s: bad file name", name)
		}
		if version <= current {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if err := s.apply(version, string(content)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}
	return nil
}

func (s *Store) apply(version int, stmt string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(stmt); err != nil {
		return errors.Join(err, tx.Rollback())
	}
	if _, err := tx.Exec(`INSERT INTO schema_migrations (version) VALUES (?)`, version); err != nil {
		return errors.Join(err, tx.Rollback())
	}
	return tx.Commit()
}
