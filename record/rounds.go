// Package record persists reduce rounds: a compressed JSONL log per hour and
// a sqlite index of runs.
package record

import (
	"sync"
	"time"

	"spherecull/sim"
)

const roundsPrefix = "rounds"

// Entry is one line of a rounds file.
type Entry struct {
	RunID int64     `json:"run_id,omitempty"`
	At    time.Time `json:"at"`
	sim.Report
}

// RoundLogger writes every observed round to <dir>/rounds-*.jsonl.zst.
type RoundLogger struct {
	w     *JSONLZstdWriter
	runID int64

	mu  sync.Mutex
	err error
	n   uint64
}

func NewRoundLogger(dir string) *RoundLogger {
	return &RoundLogger{w: NewJSONLZstdWriter(dir, roundsPrefix)}
}

// SetRun tags subsequent entries with an index run id.
func (l *RoundLogger) SetRun(id int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.runID = id
}

// ObserveRound implements sim.Observer. The first write error is kept and
// reported by Err; later rounds are still attempted.
func (l *RoundLogger) ObserveRound(r sim.Report) {
	l.mu.Lock()
	e := Entry{RunID: l.runID, At: l.w.now().UTC(), Report: r}
	l.mu.Unlock()

	err := l.w.Write(e)

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		if l.err == nil {
			l.err = err
		}
		return
	}
	l.n++
}

// Written returns the number of rounds written.
func (l *RoundLogger) Written() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.n
}

func (l *RoundLogger) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

func (l *RoundLogger) Close() error { return l.w.Close() }
