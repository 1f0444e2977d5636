// Package store persists completed comparison runs in a SQL database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/samcharles93/lstmtrace/internal/compare"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// ErrNotFound is returned by Get and Delete for an unknown run ID.
var ErrNotFound = errors.New("store: run not found")

// Fixed-width UTC timestamps sort lexically in both databases.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id           VARCHAR(64) PRIMARY KEY,
	source       TEXT NOT NULL,
	row_count    INTEGER NOT NULL,
	scale        DOUBLE PRECISION NOT NULL,
	weights_json TEXT NOT NULL,
	stats_c_json TEXT NOT NULL,
	stats_h_json TEXT NOT NULL,
	passed       INTEGER NOT NULL,
	failure      TEXT NOT NULL,
	started_at   VARCHAR(40) NOT NULL,
	finished_at  VARCHAR(40) NOT NULL
)`

// Run is the persisted summary of one comparison.
type Run struct {
	ID         string             `json:"id"`
	Source     string             `json:"source"`
	Rows       int                `json:"rows"`
	Scale      float64            `json:"scale"`
	Weights    map[string]float64 `json:"weights"`
	DiffC      compare.Stats      `json:"diff_c"`
	DiffH      compare.Stats      `json:"diff_h"`
	Passed     bool               `json:"passed"`
	Failure    string             `json:"failure,omitempty"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt time.Time          `json:"finished_at"`
}

// Store is a run database.
type Store struct {
	db     *sql.DB
	driver string
}

// Open connects to the database and creates the runs table.
// An empty driver selects sqlite.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	if driver == "" {
		driver = DriverSQLite
	}
	if driver != DriverSQLite && driver != DriverMySQL {
		return nil, fmt.Errorf("unsupported store driver %q (sqlite, mysql)", driver)
	}
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("store: empty dsn")
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if driver == DriverSQLite {
		// A single connection keeps ":memory:" databases coherent.
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("pragma: %w", err)
		}
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db, driver: driver}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Driver returns the database driver name.
func (s *Store) Driver() string {
	return s.driver
}

// Save inserts r, assigning an ID when it has none, and returns the ID.
func (s *Store) Save(ctx context.Context, r *Run) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	weights, err := json.Marshal(r.Weights)
	if err != nil {
		return "", fmt.Errorf("marshal weights: %w", err)
	}
	statsC, err := json.Marshal(r.DiffC)
	if err != nil {
		return "", fmt.Errorf("marshal diff_c stats: %w", err)
	}
	statsH, err := json.Marshal(r.DiffH)
	if err != nil {
		return "", fmt.Errorf("marshal diff_h stats: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, source, row_count, scale, weights_json, stats_c_json, stats_h_json, passed, failure, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Source, r.Rows, r.Scale, string(weights), string(statsC), string(statsH),
		boolInt(r.Passed), r.Failure,
		r.StartedAt.UTC().Format(timeLayout), r.FinishedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return r.ID, nil
}

const selectRun = `SELECT id, source, row_count, scale, weights_json, stats_c_json, stats_h_json, passed, failure, started_at, finished_at FROM runs`

// Get returns the run with the given ID.
func (s *Store) Get(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, selectRun+` WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r, err
}

// List returns up to limit runs, newest first. A non-positive limit returns
// every run.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	q := selectRun + ` ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	out := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Delete removes a run.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		r                       Run
		weights, statsC, statsH string
		passed                  int
		startedAt, finishedAt   string
	)
	if err := sc.Scan(&r.ID, &r.Source, &r.Rows, &r.Scale, &weights, &statsC, &statsH, &passed, &r.Failure, &startedAt, &finishedAt); err != nil {
		return Run{}, err
	}
	if err := json.Unmarshal([]byte(weights), &r.Weights); err != nil {
		return Run{}, fmt.Errorf("decode weights: %w", err)
	}
	if err := json.Unmarshal([]byte(statsC), &r.DiffC); err != nil {
		return Run{}, fmt.Errorf("decode diff_c stats: %w", err)
	}
	if err := json.Unmarshal([]byte(statsH), &r.DiffH); err != nil {
		return Run{}, fmt.Errorf("decode diff_h stats: %w", err)
	}
	r.Passed = passed != 0
	var err error
	if r.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
		return Run{}, fmt.Errorf("decode started_at: %w", err)
	}
	if r.FinishedAt, err = time.Parse(timeLayout, finishedAt); err != nil {
		return Run{}, fmt.Errorf("decode finished_at: %w", err)
	}
	return r, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
