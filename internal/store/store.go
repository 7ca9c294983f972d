// Package store provides the SQLite persistence layer behind the tracker's
// save endpoints.
//
// The database runs in embedded mode with WAL enabled for concurrent reads.
// Rows are addressed by the same composite keys the sync engine uses: a
// month row per (year, month), five habit rows per month, and one daily
// entry per (month, day). Get-or-create seeds a month with default habit
// labels and entries for days 1..31; callers never see row IDs.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/kshaw/monthgrid/internal/field"
)

// ErrNotFound is returned when a keyed row does not exist.
var ErrNotFound = errors.New("not found")

// Store wraps the SQLite connection with tracker-specific operations.
type Store struct {
	conn *sql.DB
	path string
}

// Open creates a database connection at the specified path.
//
// Missing parent directories are created. The caller MUST call Close when
// done.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", fmt.Sprintf("file:%s", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(5 * time.Minute)

	s := &Store{conn: conn, path: path}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := s.conn.Exec(pragma); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	return s, nil
}

// Close closes the database connection after checkpointing the WAL.
func (s *Store) Close() error {
	if s.conn == nil {
		return nil
	}

	if _, err := s.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to checkpoint WAL: %v\n", err)
	}

	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	s.conn = nil
	return nil
}

// Checkpoint truncates the WAL. Called from the periodic maintenance job.
func (s *Store) Checkpoint() error {
	if _, err := s.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("failed to checkpoint WAL: %w", err)
	}
	return nil
}

// InitSchema creates the schema if it doesn't exist. Idempotent.
func (s *Store) InitSchema() error {
	return s.InitSchemaContext(context.Background())
}

// InitSchemaContext creates the schema with context support.
func (s *Store) InitSchemaContext(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS months (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		best_day INTEGER,
		UNIQUE(year, month)
	);

	CREATE TABLE IF NOT EXISTS habits (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		month_id INTEGER NOT NULL,
		habit_number INTEGER NOT NULL,
		habit_name TEXT,
		UNIQUE(month_id, habit_number),
		FOREIGN KEY (month_id) REFERENCES months(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS daily_entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		month_id INTEGER NOT NULL,
		day INTEGER NOT NULL,
		one_liner TEXT,
		detailed_journal TEXT,
		word_count INTEGER DEFAULT 0,
		habit1 INTEGER DEFAULT 0,
		habit2 INTEGER DEFAULT 0,
		habit3 INTEGER DEFAULT 0,
		habit4 INTEGER DEFAULT 0,
		habit5 INTEGER DEFAULT 0,
		UNIQUE(month_id, day),
		FOREIGN KEY (month_id) REFERENCES months(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_months_year_month ON months(year, month);
	CREATE INDEX IF NOT EXISTS idx_entries_month ON daily_entries(month_id);
	CREATE INDEX IF NOT EXISTS idx_habits_month ON habits(month_id);
	`

	if _, err := s.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// GetOrCreateMonth returns the row ID for (year, month), creating the month
// with its five default habits and 31 daily entries on first access.
func (s *Store) GetOrCreateMonth(ctx context.Context, year, month int) (int64, error) {
	if month < 1 || month > 12 {
		return 0, fmt.Errorf("month must be between 1 and 12 (got %d)", month)
	}

	var id int64
	err := s.conn.QueryRowContext(ctx,
		`SELECT id FROM months WHERE year = ? AND month = ?`, year, month).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to look up month: %w", err)
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO months (year, month) VALUES (?, ?)`, year, month)
	if err != nil {
		// A concurrent request may have created the row between our lookup
		// and insert; re-read before failing.
		if lookupErr := s.conn.QueryRowContext(ctx,
			`SELECT id FROM months WHERE year = ? AND month = ?`, year, month).Scan(&id); lookupErr == nil {
			return id, nil
		}
		return 0, fmt.Errorf("failed to insert month: %w", err)
	}

	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read month id: %w", err)
	}

	for i := 1; i <= field.HabitCount; i++ {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO habits (month_id, habit_number, habit_name) VALUES (?, ?, ?)`,
			id, i, field.DefaultLabel(i)); err != nil {
			return 0, fmt.Errorf("failed to seed habit %d: %w", i, err)
		}
	}

	for day := 1; day <= 31; day++ {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO daily_entries (month_id, day) VALUES (?, ?)`, id, day); err != nil {
			return 0, fmt.Errorf("failed to seed day %d: %w", day, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit month creation: %w", err)
	}
	return id, nil
}

// SaveOneLiner updates the one-liner text for a day.
func (s *Store) SaveOneLiner(ctx context.Context, year, month, day int, text string) error {
	monthID, err := s.GetOrCreateMonth(ctx, year, month)
	if err != nil {
		return err
	}

	res, err := s.conn.ExecContext(ctx,
		`UPDATE daily_entries SET one_liner = ? WHERE month_id = ? AND day = ?`,
		text, monthID, day)
	if err != nil {
		return fmt.Errorf("failed to save one-liner: %w", err)
	}
	return requireRow(res)
}

// SaveHabitCheck updates one habit checkmark for a day.
func (s *Store) SaveHabitCheck(ctx context.Context, year, month, day, habit int, checked bool) error {
	if habit < 1 || habit > field.HabitCount {
		return fmt.Errorf("habit number must be between 1 and %d (got %d)", field.HabitCount, habit)
	}

	monthID, err := s.GetOrCreateMonth(ctx, year, month)
	if err != nil {
		return err
	}

	value := 0
	if checked {
		value = 1
	}

	// The habit column name is derived from a validated 1..5 integer, never
	// from request input.
	query := fmt.Sprintf(`UPDATE daily_entries SET habit%d = ? WHERE month_id = ? AND day = ?`, habit)
	res, err := s.conn.ExecContext(ctx, query, value, monthID, day)
	if err != nil {
		return fmt.Errorf("failed to save habit check: %w", err)
	}
	return requireRow(res)
}

// SaveJournal updates the detailed journal for a day and returns the
// recomputed word count.
func (s *Store) SaveJournal(ctx context.Context, year, month, day int, text string) (int, error) {
	monthID, err := s.GetOrCreateMonth(ctx, year, month)
	if err != nil {
		return 0, err
	}

	wordCount := len(strings.Fields(text))
	res, err := s.conn.ExecContext(ctx,
		`UPDATE daily_entries SET detailed_journal = ?, word_count = ? WHERE month_id = ? AND day = ?`,
		text, wordCount, monthID, day)
	if err != nil {
		return 0, fmt.Errorf("failed to save journal: %w", err)
	}
	if err := requireRow(res); err != nil {
		return 0, err
	}
	return wordCount, nil
}

// UpdateHabitName renames a habit column for the month.
func (s *Store) UpdateHabitName(ctx context.Context, year, month, habit int, name string) error {
	if habit < 1 || habit > field.HabitCount {
		return fmt.Errorf("habit number must be between 1 and %d (got %d)", field.HabitCount, habit)
	}

	monthID, err := s.GetOrCreateMonth(ctx, year, month)
	if err != nil {
		return err
	}

	res, err := s.conn.ExecContext(ctx,
		`UPDATE habits SET habit_name = ? WHERE month_id = ? AND habit_number = ?`,
		name, monthID, habit)
	if err != nil {
		return fmt.Errorf("failed to update habit name: %w", err)
	}
	return requireRow(res)
}

// SaveBestDay records the month's best-day selection. A zero day clears
// the selection.
func (s *Store) SaveBestDay(ctx context.Context, year, month, bestDay int) error {
	monthID, err := s.GetOrCreateMonth(ctx, year, month)
	if err != nil {
		return err
	}

	var value sql.NullInt64
	if bestDay > 0 {
		value = sql.NullInt64{Int64: int64(bestDay), Valid: true}
	}
	res, err := s.conn.ExecContext(ctx,
		`UPDATE months SET best_day = ? WHERE id = ?`, value, monthID)
	if err != nil {
		return fmt.Errorf("failed to save best day: %w", err)
	}
	return requireRow(res)
}

// requireRow converts a zero-row update into ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
