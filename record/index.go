package record

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"spherecull/geom"
	"spherecull/sim"
)

// Index is a sqlite catalog of runs and their rounds.
type Index struct {
	db *sql.DB

	mu    sync.Mutex
	runID int64
	err   error
}

// RunInfo describes a run when it starts.
type RunInfo struct {
	Variant string
	Seed    uint64
	Points  int
	Budget  int
}

// Run is a row of the runs table.
type Run struct {
	ID         int64
	StartedAt  time.Time
	Variant    string
	Seed       uint64
	Points     int
	Budget     int
	Rounds     uint64
	Survivor   *geom.Vec3
	FinishedAt *time.Time
}

func OpenIndex(path string) (*Index, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Index{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at TEXT NOT NULL,
			variant TEXT NOT NULL,
			seed INTEGER NOT NULL,
			points INTEGER NOT NULL,
			budget INTEGER NOT NULL,
			rounds INTEGER NOT NULL DEFAULT 0,
			survivor_x REAL,
			survivor_y REAL,
			survivor_z REAL,
			finished_at TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS rounds (
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			round INTEGER NOT NULL,
			tick INTEGER NOT NULL,
			sample INTEGER NOT NULL,
			removed INTEGER NOT NULL,
			survivor INTEGER,
			reset INTEGER NOT NULL,
			live INTEGER NOT NULL,
			raw_json TEXT NOT NULL,
			PRIMARY KEY (run_id, round)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (x *Index) Close() error { return x.db.Close() }

// BeginRun inserts a runs row and makes it the target of ObserveRound.
func (x *Index) BeginRun(ctx context.Context, info RunInfo) (int64, error) {
	res, err := x.db.ExecContext(ctx,
		`INSERT INTO runs(started_at,variant,seed,points,budget) VALUES(?,?,?,?,?)`,
		time.Now().UTC().Format(time.RFC3339Nano), info.Variant, int64(info.Seed), info.Points, info.Budget)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	x.mu.Lock()
	x.runID = id
	x.mu.Unlock()
	return id, nil
}

// ObserveRound implements sim.Observer for the current run.
func (x *Index) ObserveRound(r sim.Report) {
	x.mu.Lock()
	id := x.runID
	x.mu.Unlock()
	if id == 0 {
		return
	}

	raw, err := json.Marshal(r)
	if err == nil {
		var survivor any
		if r.Survivor != 0 {
			survivor = int64(r.Survivor)
		}
		_, err = x.db.Exec(
			`INSERT OR REPLACE INTO rounds(run_id,round,tick,sample,removed,survivor,reset,live,raw_json) VALUES(?,?,?,?,?,?,?,?,?)`,
			id, int64(r.Round), int64(r.Tick), r.Sample, len(r.Removed), survivor, boolInt(r.Reset), r.Live, string(raw))
	}
	if err == nil {
		_, err = x.db.Exec(`UPDATE runs SET rounds=? WHERE id=?`, int64(r.Round), id)
	}
	if err != nil {
		x.mu.Lock()
		if x.err == nil {
			x.err = err
		}
		x.mu.Unlock()
	}
}

// Err returns the first ObserveRound failure.
func (x *Index) Err() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.err
}

// FinishRun stamps the run's end, round count and last survivor position.
func (x *Index) FinishRun(ctx context.Context, id int64, rounds uint64, survivor *geom.Vec3) error {
	var sx, sy, sz any
	if survivor != nil {
		sx, sy, sz = float64(survivor.X), float64(survivor.Y), float64(survivor.Z)
	}
	_, err := x.db.ExecContext(ctx,
		`UPDATE runs SET rounds=?, survivor_x=?, survivor_y=?, survivor_z=?, finished_at=? WHERE id=?`,
		int64(rounds), sx, sy, sz, time.Now().UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("finish run %d: %w", id, err)
	}
	return nil
}

// Runs lists runs newest first.
func (x *Index) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := x.db.QueryContext(ctx,
		`SELECT id,started_at,variant,seed,points,budget,rounds,survivor_x,survivor_y,survivor_z,finished_at
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r          Run
			started    string
			seed       int64
			rounds     int64
			sx, sy, sz sql.NullFloat64
			finished   sql.NullString
		)
		if err := rows.Scan(&r.ID, &started, &r.Variant, &seed, &r.Points, &r.Budget, &rounds, &sx, &sy, &sz, &finished); err != nil {
			return nil, err
		}
		r.Seed = uint64(seed)
		r.Rounds = uint64(rounds)
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		if sx.Valid && sy.Valid && sz.Valid {
			v := geom.V3(geom.Scalar(sx.Float64), geom.Scalar(sy.Float64), geom.Scalar(sz.Float64))
			r.Survivor = &v
		}
		if finished.Valid {
			if ts, err := time.Parse(time.RFC3339Nano, finished.String); err == nil {
				r.FinishedAt = &ts
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RoundCount returns how many rounds are stored for a run.
func (x *Index) RoundCount(ctx context.Context, runID int64) (int, error) {
	var n int
	err := x.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rounds WHERE run_id=?`, runID).Scan(&n)
	return n, err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
