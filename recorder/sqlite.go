package recorder

import (
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/nmoreau/tradecore/broker"
)

// SQLite persists runs and fills to a SQLite database.
type SQLite struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLite opens (or creates) the database and runs migrations.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	r := &SQLite{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return r, nil
}

func (r *SQLite) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			strategy    TEXT NOT NULL,
			symbol      TEXT NOT NULL,
			start_date  INTEGER NOT NULL,
			end_date    INTEGER NOT NULL,
			start_cash  REAL,
			final_cash  REAL,
			final_value REAL
		)`,
		`CREATE TABLE IF NOT EXISTS fills (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id    INTEGER NOT NULL REFERENCES runs(id),
			timestamp INTEGER NOT NULL,
			symbol    TEXT NOT NULL,
			side      TEXT NOT NULL,
			qty       REAL,
			price     REAL,
			fee       REAL,
			cash      REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fills_run ON fills(run_id, timestamp)`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLite) RecordRun(info RunInfo) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, err := r.db.Exec(
		`INSERT INTO runs (strategy, symbol, start_date, end_date, start_cash) VALUES (?, ?, ?, ?, ?)`,
		info.Strategy, info.Symbol, info.Start.Unix(), info.End.Unix(), info.StartCash,
	)
	if err != nil {
		return 0, fmt.Errorf("record run: %w", err)
	}
	return res.LastInsertId()
}

func (r *SQLite) RecordFill(runID int64, f broker.Fill) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.db.Exec(
		`INSERT INTO fills (run_id, timestamp, symbol, side, qty, price, fee, cash) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, f.Time.Unix(), f.Symbol, string(f.Side), f.Qty, f.Price, f.Fee, f.Cash,
	)
	if err != nil {
		return fmt.Errorf("record fill: %w", err)
	}
	return nil
}

func (r *SQLite) FinishRun(runID int64, info RunInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.db.Exec(
		`UPDATE runs SET final_cash = ?, final_value = ? WHERE id = ?`,
		info.FinalCash, info.FinalValue, runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

func (r *SQLite) Close() error { return r.db.Close() }
