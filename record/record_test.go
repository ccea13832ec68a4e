package record

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"spherecull/geom"
	"spherecull/sim"
	"spherecull/sim/pointset"
)

func sampleReport(round uint64) sim.Report {
	pos := geom.V3(0.1, -0.2, 0.3)
	return sim.Report{
		Round:       round,
		Tick:        round * 3,
		Variant:     "centroid",
		Sample:      4,
		Removed:     []pointset.ID{1, 3, 4},
		Survivor:    2,
		SurvivorPos: &pos,
		Live:        10,
	}
}

func TestRoundLoggerRoundTrip(t *testing.T) {
	dir := t.TempDir()
	l := NewRoundLogger(dir)
	l.w.now = func() time.Time { return time.Date(2024, 5, 1, 13, 20, 0, 0, time.UTC) }
	l.SetRun(7)
	for i := uint64(1); i <= 3; i++ {
		l.ObserveRound(sampleReport(i))
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if l.Err() != nil || l.Written() != 3 {
		t.Fatalf("Written() = %d, Err() = %v", l.Written(), l.Err())
	}

	files, err := ListRoundFiles(dir)
	if err != nil {
		t.Fatalf("ListRoundFiles: %v", err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "rounds-2024-05-01-13.jsonl.zst" {
		t.Fatalf("files = %v", files)
	}

	var got []Entry
	if err := ReadRounds(files[0], func(e Entry) error {
		got = append(got, e)
		return nil
	}); err != nil {
		t.Fatalf("ReadRounds: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("entries = %d, want 3", len(got))
	}
	e := got[2]
	if e.RunID != 7 || e.Round != 3 || e.Survivor != 2 || len(e.Removed) != 3 || e.SurvivorPos == nil || e.SurvivorPos.Z != 0.3 {
		t.Fatalf("entry = %+v", e)
	}
}

func TestRoundLoggerRotatesHourly(t *testing.T) {
	dir := t.TempDir()
	l := NewRoundLogger(dir)
	now := time.Date(2024, 5, 1, 13, 59, 0, 0, time.UTC)
	l.w.now = func() time.Time { return now }
	l.ObserveRound(sampleReport(1))
	now = now.Add(2 * time.Minute)
	l.ObserveRound(sampleReport(2))
	_ = l.Close()

	files, _ := ListRoundFiles(dir)
	if len(files) != 2 {
		t.Fatalf("files = %v, want two hourly files", files)
	}
}

func TestReadRoundsStopsOnCallbackError(t *testing.T) {
	dir := t.TempDir()
	l := NewRoundLogger(dir)
	l.ObserveRound(sampleReport(1))
	l.ObserveRound(sampleReport(2))
	_ = l.Close()

	files, _ := ListRoundFiles(dir)
	stop := errors.New("stop")
	n := 0
	err := ReadRounds(files[0], func(Entry) error {
		n++
		return stop
	})
	if !errors.Is(err, stop) || n != 1 {
		t.Fatalf("ReadRounds = %v after %d entries", err, n)
	}
}

func TestListRoundFilesIgnoresOthers(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"rounds-2024-01-01-00.jsonl.zst", "notes.txt", "events-2024-01-01-00.jsonl.zst"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	files, err := ListRoundFiles(dir)
	if err != nil || len(files) != 1 {
		t.Fatalf("ListRoundFiles = %v, %v", files, err)
	}
}

func TestIndexRunLifecycle(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "runs", "index.db")
	idx, err := OpenIndex(path)
	if err != nil {
		t.Fatalf("OpenIndex: %v", err)
	}

	id, err := idx.BeginRun(ctx, RunInfo{Variant: "triangle", Seed: 42, Points: 100, Budget: 1000})
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	idx.ObserveRound(sampleReport(1))
	idx.ObserveRound(sampleReport(2))
	if err := idx.Err(); err != nil {
		t.Fatalf("ObserveRound: %v", err)
	}
	if n, err := idx.RoundCount(ctx, id); err != nil || n != 2 {
		t.Fatalf("RoundCount() = %d, %v, want 2", n, err)
	}

	last := geom.V3(0.5, 0.25, -1)
	if err := idx.FinishRun(ctx, id, 2, &last); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}
	runs, err := idx.Runs(ctx, 10)
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("runs = %d, want 1", len(runs))
	}
	r := runs[0]
	if r.ID != id || r.Variant != "triangle" || r.Seed != 42 || r.Rounds != 2 || r.FinishedAt == nil {
		t.Fatalf("run = %+v", r)
	}
	if r.Survivor == nil || *r.Survivor != last {
		t.Fatalf("survivor = %v, want %v", r.Survivor, last)
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	defer db.Close()
	var removed, live int
	if err := db.QueryRow(`SELECT removed,live FROM rounds WHERE run_id=? AND round=2`, id).Scan(&removed, &live); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if removed != 3 || live != 10 {
		t.Fatalf("round row removed=%d live=%d", removed, live)
	}
}

func TestIndexIgnoresRoundsWithoutRun(t *testing.T) {
	idx, err := OpenIndex(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("OpenIndex: %v", err)
	}
	defer idx.Close()
	idx.ObserveRound(sampleReport(1))
	if err := idx.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}
}
