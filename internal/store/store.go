// Package store keeps processed records in a local SQLite library so
// batches can be browsed and re-exported without reprocessing the PDFs.
package store

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	"pdf-abstract/internal/logger"
	"pdf-abstract/internal/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	stem       TEXT NOT NULL,
	title      TEXT NOT NULL DEFAULT '',
	year       TEXT NOT NULL DEFAULT '',
	author     TEXT NOT NULL DEFAULT '',
	abstract   TEXT NOT NULL DEFAULT '',
	keywords   TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_records_stem ON records(stem);
`

// StoredRecord is one library row.
type StoredRecord struct {
	ID        int64                  `json:"id"`
	Stem      string                 `json:"stem"`
	Record    types.ExtractionRecord `json:"record"`
	CreatedAt time.Time              `json:"created_at"`
}

// Store wraps the SQLite record library.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the library at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		logger.Error("failed to open record library", err, logger.String("path", path))
		return nil, types.NewAppError(types.ErrStore, "failed to open record library", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		logger.Error("failed to initialize record library", err, logger.String("path", path))
		return nil, types.NewAppError(types.ErrStore, "failed to initialize record library", err)
	}
	logger.Info("record library opened", logger.String("path", path))
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Insert adds one record and returns its id.
func (s *Store) Insert(ctx context.Context, stem string, rec types.ExtractionRecord) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO records (stem, title, year, author, abstract, keywords, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		stem, rec.Title, rec.Year, rec.Author, rec.Abstract, rec.Keywords,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return 0, types.NewAppError(types.ErrStore, "failed to insert record", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, types.NewAppError(types.ErrStore, "failed to read insert id", err)
	}
	logger.Debug("record stored", logger.Int("id", int(id)), logger.String("stem", stem))
	return id, nil
}

// List returns one page of records, newest first.
// page is 1-indexed; pageSize <= 0 falls back to 20.
func (s *Store) List(ctx context.Context, page, pageSize int) ([]StoredRecord, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, stem, title, year, author, abstract, keywords, created_at
		 FROM records ORDER BY id DESC LIMIT ? OFFSET ?`,
		pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, types.NewAppError(types.ErrStore, "failed to list records", err)
	}
	defer rows.Close()

	var out []StoredRecord
	for rows.Next() {
		var r StoredRecord
		var created string
		if err := rows.Scan(&r.ID, &r.Stem, &r.Record.Title, &r.Record.Year,
			&r.Record.Author, &r.Record.Abstract, &r.Record.Keywords, &created); err != nil {
			return nil, types.NewAppError(types.ErrStore, "failed to scan record", err)
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339, created)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrStore, "failed to read records", err)
	}
	return out, nil
}

// All returns every record in insertion order, for export.
func (s *Store) All(ctx context.Context) ([]StoredRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, stem, title, year, author, abstract, keywords, created_at
		 FROM records ORDER BY id ASC`)
	if err != nil {
		return nil, types.NewAppError(types.ErrStore, "failed to read records", err)
	}
	defer rows.Close()

	var out []StoredRecord
	for rows.Next() {
		var r StoredRecord
		var created string
		if err := rows.Scan(&r.ID, &r.Stem, &r.Record.Title, &r.Record.Year,
			&r.Record.Author, &r.Record.Abstract, &r.Record.Keywords, &created); err != nil {
			return nil, types.NewAppError(types.ErrStore, "failed to scan record", err)
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339, created)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrStore, "failed to read records", err)
	}
	return out, nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&n); err != nil {
		return 0, types.NewAppError(types.ErrStore, "failed to count records", err)
	}
	return n, nil
}
