package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"spherecull/geom"
	"spherecull/record"
)

func main() {
	var (
		dir     = flag.String("dir", "", "Directory containing rounds-*.jsonl.zst files.")
		dbPath  = flag.String("db", "", "SQLite run index to list (optional).")
		runID   = flag.Int64("run", 0, "Only summarize this run id (0 = all).")
		limit   = flag.Int("limit", 20, "Runs to list with -db.")
		verbose = flag.Bool("v", false, "Print every round.")
	)
	flag.Parse()

	if *dir == "" && *dbPath == "" {
		fatalf("usage: cullreplay -dir rounds/ [-run N] [-v]\n       cullreplay -db index.db [-limit 20]")
	}

	if *dbPath != "" {
		if err := listRuns(os.Stdout, *dbPath, *limit); err != nil {
			fatalf("db: %v", err)
		}
	}
	if *dir != "" {
		files, err := record.ListRoundFiles(*dir)
		if err != nil {
			fatalf("list: %v", err)
		}
		var out io.Writer
		if *verbose {
			out = os.Stdout
		}
		sums, err := summarize(files, *runID, out)
		if err != nil {
			fatalf("replay: %v", err)
		}
		for _, s := range sums {
			fmt.Println(s)
		}
	}
}

func fatalf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(2)
}

type summary struct {
	RunID    int64
	Variant  string
	Rounds   int
	Resets   int
	Removed  int
	Live     int
	Survivor *geom.Vec3
}

func (s summary) String() string {
	pos := "-"
	if s.Survivor != nil {
		pos = fmt.Sprintf("(%.3f, %.3f, %.3f)", s.Survivor.X, s.Survivor.Y, s.Survivor.Z)
	}
	return fmt.Sprintf("run=%d variant=%s rounds=%d resets=%d removed=%d live=%d survivor=%s",
		s.RunID, s.Variant, s.Rounds, s.Resets, s.Removed, s.Live, pos)
}

// summarize folds the entries of files into one summary per run id. With
// verbose non-nil each round is printed as it is read.
func summarize(files []string, onlyRun int64, verbose io.Writer) ([]summary, error) {
	byRun := map[int64]*summary{}
	for _, f := range files {
		err := record.ReadRounds(f, func(e record.Entry) error {
			if onlyRun != 0 && e.RunID != onlyRun {
				return nil
			}
			s, ok := byRun[e.RunID]
			if !ok {
				s = &summary{RunID: e.RunID, Variant: e.Variant}
				byRun[e.RunID] = s
			}
			s.Rounds++
			s.Removed += len(e.Removed)
			s.Live = e.Live
			if e.Reset {
				s.Resets++
			}
			if e.SurvivorPos != nil {
				pos := *e.SurvivorPos
				s.Survivor = &pos
			}
			if verbose != nil {
				fmt.Fprintf(verbose, "run=%d round=%d tick=%d removed=%d survivor=%d live=%d reset=%v\n",
					e.RunID, e.Round, e.Tick, len(e.Removed), e.Survivor, e.Live, e.Reset)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	out := make([]summary, 0, len(byRun))
	for _, s := range byRun {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RunID < out[j].RunID })
	return out, nil
}

func listRuns(w io.Writer, path string, limit int) error {
	idx, err := record.OpenIndex(path)
	if err != nil {
		return err
	}
	defer idx.Close()

	runs, err := idx.Runs(context.Background(), limit)
	if err != nil {
		return err
	}
	for _, r := range runs {
		finished := "running"
		if r.FinishedAt != nil {
			finished = r.FinishedAt.Format("2006-01-02 15:04:05")
		}
		pos := "-"
		if r.Survivor != nil {
			pos = fmt.Sprintf("(%.3f, %.3f, %.3f)", r.Survivor.X, r.Survivor.Y, r.Survivor.Z)
		}
		fmt.Fprintf(w, "%4d  %s  %-8s seed=%d points=%d budget=%d rounds=%d survivor=%s  %s\n",
			r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.Variant, r.Seed, r.Points, r.Budget, r.Rounds, pos, finished)
	}
	return nil
}
