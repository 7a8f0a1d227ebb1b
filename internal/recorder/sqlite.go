package recorder

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"SetupScanner/internal/model"
)

// SQLiteRecorder persists scan runs and their results to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS scan_runs (
			id          TEXT PRIMARY KEY,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			total       INTEGER,
			processed   INTEGER,
			skipped     INTEGER,
			matches     INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scan_runs_finished ON scan_runs(finished_at)`,

		`CREATE TABLE IF NOT EXISTS scan_results (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id         TEXT NOT NULL REFERENCES scan_runs(id),
			position       INTEGER NOT NULL,
			symbol         TEXT NOT NULL,
			setup_type     TEXT NOT NULL,
			price          REAL,
			day_change_pct REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scan_results_run ON scan_results(run_id, position)`,
		`CREATE INDEX IF NOT EXISTS idx_scan_results_symbol ON scan_results(symbol)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordScan stores a run and its ordered results in one transaction.
func (r *SQLiteRecorder) RecordScan(run *model.ScanRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO scan_runs
		(id, started_at, finished_at, total, processed, skipped, matches)
		VALUES (?,?,?,?,?,?,?)`,
		run.ID, run.StartedAt.UnixMilli(), run.FinishedAt.UnixMilli(),
		run.Total, run.Processed, run.Skipped, len(run.Results),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, res := range run.Results {
		// NaN is not representable in SQLite; store NULL instead.
		var pct sql.NullFloat64
		if !math.IsNaN(res.DayChangePct) {
			pct = sql.NullFloat64{Float64: res.DayChangePct, Valid: true}
		}
		if _, err := tx.Exec(`INSERT INTO scan_results
			(run_id, position, symbol, setup_type, price, day_change_pct)
			VALUES (?,?,?,?,?,?)`,
			run.ID, i, res.Symbol, string(res.Type), res.Price, pct,
		); err != nil {
			return fmt.Errorf("insert result %s: %w", res.Symbol, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) LatestScan() (*model.ScanRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		run                   model.ScanRun
		startedMs, finishedMs int64
	)
	err := r.db.QueryRow(`SELECT id, started_at, finished_at, total, processed, skipped
		FROM scan_runs ORDER BY finished_at DESC LIMIT 1`).
		Scan(&run.ID, &startedMs, &finishedMs, &run.Total, &run.Processed, &run.Skipped)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest run: %w", err)
	}
	run.StartedAt = time.UnixMilli(startedMs)
	run.FinishedAt = time.UnixMilli(finishedMs)

	rows, err := r.db.Query(`SELECT symbol, setup_type, price, day_change_pct
		FROM scan_results WHERE run_id = ? ORDER BY position`, run.ID)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	run.Results = []model.ScanResult{}
	for rows.Next() {
		var (
			res       model.ScanResult
			setupType string
			pct       sql.NullFloat64
		)
		if err := rows.Scan(&res.Symbol, &setupType, &res.Price, &pct); err != nil {
			return nil, fmt.Errorf("scan result row: %w", err)
		}
		res.Type = model.SetupType(setupType)
		res.DayChangePct = math.NaN()
		if pct.Valid {
			res.DayChangePct = pct.Float64
		}
		run.Results = append(run.Results, res)
	}
	return &run, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
