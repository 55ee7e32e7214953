package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists historical data to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets dashboards read while the bot writes.
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
		`CREATE TABLE IF NOT EXISTS evaluations (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp         INTEGER NOT NULL,
			source            TEXT,
			symbol            TEXT,
			bars              INTEGER,
			rsi_threshold     REAL,
			volume_multiplier REAL,
			hour_start        INTEGER,
			hour_end          INTEGER,
			has_trade         INTEGER,
			trade_count       INTEGER,
			success_rate      REAL,
			avg_return        REAL,
			alerted           INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_evaluations_ts ON evaluations(timestamp)`,

		`CREATE TABLE IF NOT EXISTS search_runs (
			run_id            TEXT PRIMARY KEY,
			symbol            TEXT,
			started_at        INTEGER NOT NULL,
			finished_at       INTEGER,
			total             INTEGER,
			evaluated         INTEGER,
			qualified         INTEGER,
			found             INTEGER,
			rsi_threshold     REAL,
			volume_multiplier REAL,
			hour_start        INTEGER,
			hour_end          INTEGER,
			success_rate      REAL,
			avg_return        REAL,
			trade_count       INTEGER,
			error             TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_search_runs_started ON search_runs(started_at)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordEvaluation(rec *EvaluationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := rec.Result.Params
	_, err := r.db.Exec(`INSERT INTO evaluations
		(timestamp, source, symbol, bars, rsi_threshold, volume_multiplier, hour_start, hour_end,
		 has_trade, trade_count, success_rate, avg_return, alerted)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), rec.Source, rec.Symbol, rec.Bars,
		p.RSIThreshold, p.VolumeMultiplier, p.HourStart, p.HourEnd,
		boolInt(rec.HasTrade), rec.Result.TradeCount, rec.Result.SuccessRatePct, rec.Result.AvgReturnPct,
		boolInt(rec.Alerted),
	)
	return err
}

func (r *SQLiteRecorder) RecordSearchRun(run *SearchRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		rsi, vol, rate, ret sql.NullFloat64
		hs, he, trades      sql.NullInt64
	)
	if b := run.Best; b != nil {
		rsi = sql.NullFloat64{Float64: b.Params.RSIThreshold, Valid: true}
		vol = sql.NullFloat64{Float64: b.Params.VolumeMultiplier, Valid: true}
		hs = sql.NullInt64{Int64: int64(b.Params.HourStart), Valid: true}
		he = sql.NullInt64{Int64: int64(b.Params.HourEnd), Valid: true}
		rate = sql.NullFloat64{Float64: b.SuccessRatePct, Valid: true}
		ret = sql.NullFloat64{Float64: b.AvgReturnPct, Valid: true}
		trades = sql.NullInt64{Int64: int64(b.TradeCount), Valid: true}
	}

	_, err := r.db.Exec(`INSERT OR REPLACE INTO search_runs
		(run_id, symbol, started_at, finished_at, total, evaluated, qualified, found,
		 rsi_threshold, volume_multiplier, hour_start, hour_end,
		 success_rate, avg_return, trade_count, error)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		run.RunID, run.Symbol, run.StartedAt.Unix(), run.FinishedAt.Unix(),
		run.Total, run.Evaluated, run.Qualified, boolInt(run.Best != nil),
		rsi, vol, hs, he, rate, ret, trades, run.Err,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
