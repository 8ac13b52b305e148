// Package store provides the database implementation of the record stores.
// This implementation supports SQLite, PostgreSQL, and MySQL through Go's
// database/sql package, providing a consistent API across all three
// databases. It is the durable deployment option: record state survives
// process restarts without replaying the blob backend.
//
// Schema:
//   - facts: one row per fact id, full record as JSON plus a blob_id column
//   - comments: one row per comment id with an indexed fact_id column;
//     insertion order is preserved by an auto-incrementing seq column
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	// Database drivers - imported for side effects (driver registration)
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/factvault/factvault/internal/config"
	"github.com/factvault/factvault/internal/model"
)

// Database holds the shared connection behind the SQL-backed record stores.
type Database struct {
	db     *sql.DB
	driver string // "sqlite3", "postgres", or "mysql"
}

// NewDatabase creates a new database record-store backend.
// Tables are created automatically if they don't exist.
func NewDatabase(cfg *config.Config) (*Database, error) {
	driver := cfg.Model.Driver
	dsn := cfg.Model.DSN

	// lib/pq accepts "postgres://" URLs; normalize the long form.
	if driver == "postgres" && strings.HasPrefix(dsn, "postgresql://") {
		dsn = strings.Replace(dsn, "postgresql://", "postgres://", 1)
	}

	// sqlite's default deferred transactions can deadlock on the
	// read-then-write upgrade in upsertWithSeq; take the write lock at
	// BEGIN instead.
	if driver == "sqlite3" && !strings.Contains(dsn, "_txlock") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_txlock=immediate"
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	d := &Database{
		db:     db,
		driver: driver,
	}

	if err := d.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return d, nil
}

// Facts returns the FactStore view over this database.
func (d *Database) Facts() FactStore {
	return &dbFactStore{d}
}

// Comments returns the CommentStore view over this database.
func (d *Database) Comments() CommentStore {
	return &dbCommentStore{d}
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// createTables creates the necessary database tables.
func (d *Database) createTables() error {
	textType := d.textType()

	factsSQL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS facts (
			id VARCHAR(128) PRIMARY KEY,
			blob_id VARCHAR(128) NOT NULL,
			record %s NOT NULL,
			seq BIGINT NOT NULL
		)
	`, textType)

	if _, err := d.db.Exec(factsSQL); err != nil {
		return fmt.Errorf("creating facts table: %w", err)
	}

	commentsSQL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS comments (
			id VARCHAR(128) PRIMARY KEY,
			fact_id VARCHAR(128) NOT NULL,
			blob_id VARCHAR(128) NOT NULL,
			record %s NOT NULL,
			seq BIGINT NOT NULL
		)
	`, textType)

	if _, err := d.db.Exec(commentsSQL); err != nil {
		return fmt.Errorf("creating comments table: %w", err)
	}

	// Index on comments.fact_id for efficient ListForFact
	indexSQL := "CREATE INDEX IF NOT EXISTS idx_comments_fact_id ON comments (fact_id)"
	if _, err := d.db.Exec(indexSQL); err != nil {
		// MySQL has no IF NOT EXISTS for indexes; tolerate duplicates
		if !strings.Contains(err.Error(), "already exists") &&
			!strings.Contains(err.Error(), "Duplicate") {
			return fmt.Errorf("creating comments index: %w", err)
		}
	}

	return nil
}

// textType returns the appropriate TEXT type for the database driver.
func (d *Database) textType() string {
	switch d.driver {
	case "mysql":
		return "MEDIUMTEXT" // Up to 16MB
	default:
		return "TEXT"
	}
}

// placeholder returns the appropriate placeholder for the database.
// PostgreSQL uses $1, $2, etc. Others use ?.
func (d *Database) placeholder(n int) string {
	if d.driver == "postgres" {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// placeholders returns a string of comma-separated placeholders.
func (d *Database) placeholders(count int) string {
	if d.driver == "postgres" {
		parts := make([]string, count)
		for i := 0; i < count; i++ {
			parts[i] = fmt.Sprintf("$%d", i+1)
		}
		return strings.Join(parts, ", ")
	}
	return strings.Repeat("?, ", count-1) + "?"
}

// upsertSQL builds the driver-specific upsert for a table with an id
// primary key and the given extra columns. updateCols lists the columns to
// refresh on conflict; seq is deliberately excluded so insertion order is
// preserved across replacements.
func (d *Database) upsertSQL(table string, cols []string, updateCols []string) string {
	insert := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), d.placeholders(len(cols)),
	)

	switch d.driver {
	case "postgres":
		sets := make([]string, len(updateCols))
		for i, c := range updateCols {
			sets[i] = fmt.Sprintf("%s = EXCLUDED.%s", c, c)
		}
		return insert + " ON CONFLICT (id) DO UPDATE SET " + strings.Join(sets, ", ")
	case "mysql":
		sets := make([]string, len(updateCols))
		for i, c := range updateCols {
			sets[i] = fmt.Sprintf("%s = VALUES(%s)", c, c)
		}
		return insert + " ON DUPLICATE KEY UPDATE " + strings.Join(sets, ", ")
	default: // sqlite3
		sets := make([]string, len(updateCols))
		for i, c := range updateCols {
			sets[i] = fmt.Sprintf("%s = excluded.%s", c, c)
		}
		return insert + " ON CONFLICT (id) DO UPDATE SET " + strings.Join(sets, ", ")
	}
}

// upsertWithSeq allocates the next sequence value and runs the upsert in a
// single transaction, so concurrent upserts cannot mint the same seq.
// args receives the allocated seq and returns the full argument list for
// the upsert statement.
func (d *Database) upsertWithSeq(table, query string, args func(seq int64) []any) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var max sql.NullInt64
	//nolint:gosec // table names are compile-time constants
	if err := tx.QueryRow(fmt.Sprintf("SELECT MAX(seq) FROM %s", table)).Scan(&max); err != nil {
		return fmt.Errorf("allocating sequence: %w", err)
	}

	if _, err := tx.Exec(query, args(max.Int64+1)...); err != nil {
		return fmt.Errorf("upserting into %s: %w", table, err)
	}
	return tx.Commit()
}

// dbFactStore implements FactStore over the shared database.
type dbFactStore struct {
	d *Database
}

// Upsert inserts or replaces a record by fact id.
func (s *dbFactStore) Upsert(record model.StoredFactRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("serializing fact record: %w", err)
	}

	query := s.d.upsertSQL("facts",
		[]string{"id", "blob_id", "record", "seq"},
		[]string{"blob_id", "record"})

	return s.d.upsertWithSeq("facts", query, func(seq int64) []any {
		return []any{record.Fact.ID, record.BlobID, string(data), seq}
	})
}

// Get retrieves a record by fact id.
func (s *dbFactStore) Get(id string) (model.StoredFactRecord, bool) {
	query := fmt.Sprintf("SELECT record FROM facts WHERE id = %s", s.d.placeholder(1))

	var data string
	err := s.d.db.QueryRow(query, id).Scan(&data)
	if err != nil {
		return model.StoredFactRecord{}, false
	}

	var record model.StoredFactRecord
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return model.StoredFactRecord{}, false
	}
	return record, true
}

// List returns all fact records in insertion order.
func (s *dbFactStore) List() []model.StoredFactRecord {
	rows, err := s.d.db.Query("SELECT record FROM facts ORDER BY seq ASC")
	if err != nil {
		return nil
	}
	defer rows.Close()

	var out []model.StoredFactRecord
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			continue
		}
		var record model.StoredFactRecord
		if err := json.Unmarshal([]byte(data), &record); err != nil {
			continue
		}
		out = append(out, record)
	}
	return out
}

// Count returns the number of stored facts.
func (s *dbFactStore) Count() int {
	var count int
	if err := s.d.db.QueryRow("SELECT COUNT(*) FROM facts").Scan(&count); err != nil {
		return 0
	}
	return count
}

// Clear resets the facts table. Used only for test isolation.
func (s *dbFactStore) Clear() {
	s.d.db.Exec("DELETE FROM facts")
}

// dbCommentStore implements CommentStore over the shared database.
// The fact_id column plus its index is the SQL rendition of the
// fact-to-comment secondary index; the row write and the index update are
// a single statement, so they are atomic by construction.
type dbCommentStore struct {
	d *Database
}

// Upsert inserts or replaces a record by comment id.
func (s *dbCommentStore) Upsert(record model.StoredCommentRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("serializing comment record: %w", err)
	}

	query := s.d.upsertSQL("comments",
		[]string{"id", "fact_id", "blob_id", "record", "seq"},
		[]string{"fact_id", "blob_id", "record"})

	return s.d.upsertWithSeq("comments", query, func(seq int64) []any {
		return []any{record.Comment.ID, record.Comment.FactID, record.BlobID, string(data), seq}
	})
}

// Get retrieves a record by comment id.
func (s *dbCommentStore) Get(id string) (model.StoredCommentRecord, bool) {
	query := fmt.Sprintf("SELECT record FROM comments WHERE id = %s", s.d.placeholder(1))

	var data string
	err := s.d.db.QueryRow(query, id).Scan(&data)
	if err != nil {
		return model.StoredCommentRecord{}, false
	}

	var record model.StoredCommentRecord
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return model.StoredCommentRecord{}, false
	}
	return record, true
}

// ListForFact returns the comments on a fact in insertion order.
func (s *dbCommentStore) ListForFact(factID string) []model.StoredCommentRecord {
	query := fmt.Sprintf(
		"SELECT record FROM comments WHERE fact_id = %s ORDER BY seq ASC",
		s.d.placeholder(1),
	)

	rows, err := s.d.db.Query(query, factID)
	if err != nil {
		return []model.StoredCommentRecord{}
	}
	defer rows.Close()

	out := make([]model.StoredCommentRecord, 0)
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			continue
		}
		var record model.StoredCommentRecord
		if err := json.Unmarshal([]byte(data), &record); err != nil {
			continue
		}
		out = append(out, record)
	}
	return out
}

// Count returns the number of stored comments.
func (s *dbCommentStore) Count() int {
	var count int
	if err := s.d.db.QueryRow("SELECT COUNT(*) FROM comments").Scan(&count); err != nil {
		return 0
	}
	return count
}

// Clear resets the comments table. Used only for test isolation.
func (s *dbCommentStore) Clear() {
	s.d.db.Exec("DELETE FROM comments")
}
