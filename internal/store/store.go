// Package store persists the correction log of every turn in SQLite so
// recurring LLM mistakes can be reviewed per disc.
package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/ppiankov/findmindisc/internal/model"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 1

// Store is the SQLite-backed correction log
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	_ = os.Chmod(path, 0o600)
	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

func migrate(db *sql.DB) error {
	version, err := userVersion(db)
	if err != nil {
		return err
	}

	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS turns (
		  turn_id     TEXT PRIMARY KEY,
		  query       TEXT NOT NULL,
		  provider    TEXT,
		  model       TEXT,
		  discs_json  TEXT NOT NULL,
		  rejected    INTEGER NOT NULL,
		  unresolved  INTEGER NOT NULL,
		  created_at  INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS corrections (
		  id          TEXT PRIMARY KEY,
		  turn_id     TEXT NOT NULL REFERENCES turns(turn_id),
		  disc        TEXT NOT NULL,
		  field       TEXT NOT NULL,
		  original    TEXT NOT NULL,
		  corrected   TEXT NOT NULL,
		  rule        TEXT NOT NULL,
		  created_at  INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_corrections_disc
		ON corrections(disc, field);

		CREATE INDEX IF NOT EXISTS idx_corrections_turn
		ON corrections(turn_id);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if err := setUserVersion(db, 1); err != nil {
			return err
		}
	}

	return nil
}

func userVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

func setUserVersion(db *sql.DB, version int) error {
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version)); err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}

// Record writes a turn and its corrections in one transaction
func (s *Store) Record(ctx context.Context, rec *model.Recommendation) error {
	discs, err := json.Marshal(rec.DiscNames())
	if err != nil {
		return fmt.Errorf("marshal discs: %w", err)
	}

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO turns (turn_id, query, provider, model, discs_json, rejected, unresolved, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.TurnID, rec.Query, rec.Provider, rec.Model, string(discs),
		len(rec.Rejected), len(rec.Unresolved), createdAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert turn: %w", err)
	}

	entropy := ulid.Monotonic(rand.Reader, 0)
	for _, c := range rec.Corrections {
		id := ulid.MustNew(ulid.Timestamp(createdAt), entropy).String()
		_, err := tx.ExecContext(ctx, `
			INSERT INTO corrections (id, turn_id, disc, field, original, corrected, rule, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, rec.TurnID, c.Disc, c.Field, c.Original, c.Corrected, c.Rule, createdAt.UnixMilli(),
		)
		if err != nil {
			return fmt.Errorf("insert correction: %w", err)
		}
	}

	return tx.Commit()
}

// LoggedCorrection is one stored correction with its turn
type LoggedCorrection struct {
	ID     string `json:"id"`
	TurnID string `json:"turn_id"`
	model.Correction
	CreatedAt time.Time `json:"created_at"`
}

// Recent returns the newest corrections, optionally for one disc
func (s *Store) Recent(ctx context.Context, disc string, limit int) ([]LoggedCorrection, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, turn_id, disc, field, original, corrected, rule, created_at
		FROM corrections`
	args := []any{}
	if disc != "" {
		query += ` WHERE disc = ? COLLATE NOCASE`
		args = append(args, disc)
	}
	query += ` ORDER BY created_at DESC, rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query corrections: %w", err)
	}
	defer rows.Close()

	var out []LoggedCorrection
	for rows.Next() {
		var lc LoggedCorrection
		var created int64
		if err := rows.Scan(&lc.ID, &lc.TurnID, &lc.Disc, &lc.Field, &lc.Original, &lc.Corrected, &lc.Rule, &created); err != nil {
			return nil, fmt.Errorf("scan correction: %w", err)
		}
		lc.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, lc)
	}
	return out, rows.Err()
}

// FieldStat counts corrections of one field of one disc
type FieldStat struct {
	Disc  string `json:"disc"`
	Field string `json:"field"`
	Count int    `json:"count"`
}

// Stats returns correction counts per disc and field, most frequent first
func (s *Store) Stats(ctx context.Context) ([]FieldStat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT disc, field, COUNT(*) AS n
		FROM corrections
		GROUP BY disc, field
		ORDER BY n DESC, disc, field`)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	var out []FieldStat
	for rows.Next() {
		var st FieldStat
		if err := rows.Scan(&st.Disc, &st.Field, &st.Count); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// TurnCount returns the number of recorded turns
func (s *Store) TurnCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM turns`).Scan(&n)
	return n, err
}
