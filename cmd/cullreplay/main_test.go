package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"spherecull/geom"
	"spherecull/record"
	"spherecull/sim"
	"spherecull/sim/pointset"
)

func TestSummarize(t *testing.T) {
	dir := t.TempDir()
	l := record.NewRoundLogger(dir)
	pos := geom.V3(0.5, 0, -0.5)
	l.SetRun(1)
	l.ObserveRound(sim.Report{Round: 1, Variant: "triangle", Removed: []pointset.ID{2, 3}, Survivor: 1, SurvivorPos: &pos, Live: 8})
	l.ObserveRound(sim.Report{Round: 2, Variant: "triangle", Reset: true, Live: 8})
	l.SetRun(2)
	l.ObserveRound(sim.Report{Round: 1, Variant: "centroid", Removed: []pointset.ID{1, 2, 3}, Survivor: 4, Live: 5})
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	files, err := record.ListRoundFiles(dir)
	if err != nil {
		t.Fatalf("ListRoundFiles: %v", err)
	}
	var verbose bytes.Buffer
	sums, err := summarize(files, 0, &verbose)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if len(sums) != 2 {
		t.Fatalf("summaries = %d, want 2", len(sums))
	}
	s := sums[0]
	if s.RunID != 1 || s.Rounds != 2 || s.Resets != 1 || s.Removed != 2 || s.Survivor == nil || *s.Survivor != pos {
		t.Fatalf("run 1 = %+v", s)
	}
	if !strings.Contains(s.String(), "survivor=(0.500, 0.000, -0.500)") {
		t.Fatalf("String() = %q", s.String())
	}
	if strings.Count(verbose.String(), "\n") != 3 {
		t.Fatalf("verbose output = %q", verbose.String())
	}

	only, err := summarize(files, 2, nil)
	if err != nil || len(only) != 1 || only[0].Variant != "centroid" || only[0].Removed != 3 {
		t.Fatalf("summarize(run 2) = %+v, %v", only, err)
	}
}

func TestListRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	idx, err := record.OpenIndex(path)
	if err != nil {
		t.Fatalf("OpenIndex: %v", err)
	}
	if _, err := idx.BeginRun(context.Background(), record.RunInfo{Variant: "centroid", Seed: 3, Points: 10, Budget: 4}); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	idx.Close()

	var buf bytes.Buffer
	if err := listRuns(&buf, path, 5); err != nil {
		t.Fatalf("listRuns: %v", err)
	}
	if out := buf.String(); !strings.Contains(out, "centroid") || !strings.Contains(out, "running") {
		t.Fatalf("listRuns output = %q", out)
	}
}
