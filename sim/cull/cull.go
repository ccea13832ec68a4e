// Package cull implements the selection rules run on every reduce round.
//
// A Strategy inspects the point set and decides which points go. Removal
// itself is left to the caller so every strategy shares one scheduling and
// bookkeeping path.
package cull

import (
	"errors"
	"fmt"
	"sort"

	"spherecull/geom"
	"spherecull/sim/pointset"
)

// Strategy chooses points for removal.
type Strategy interface {
	Name() string
	// Reduce may update visited flags but must not remove points.
	Reduce(set *pointset.Set) Result
}

// Result describes one reduce round.
type Result struct {
	// Sample is the number of points the rule looked at.
	Sample int
	// Removed lists the ids the caller must remove, in iteration order.
	Removed []pointset.ID
	// Survivor is the point the rule kept, zero if none.
	Survivor pointset.ID
	// Reset is set when the rule restarted its sweep instead of selecting.
	Reset bool

	// Angles holds alpha, beta, gamma for triangle rounds.
	Angles []geom.Scalar
	// Triangle holds the three vertex positions for triangle rounds.
	Triangle []geom.Vec3
}

func (r Result) HasSurvivor() bool { return r.Survivor != 0 }

// Options carries the knobs a Factory may use.
type Options struct {
	Budget int
}

// Factory constructs a Strategy.
type Factory func(opts Options) Strategy

var ErrUnknownStrategy = errors.New("unknown strategy")

var strategies = map[string]Factory{}

// Register adds a strategy factory under name.
func Register(name string, f Factory) {
	if name == "" || f == nil {
		return
	}
	strategies[name] = f
}

// Lookup builds the strategy registered under name.
func Lookup(name string, opts Options) (Strategy, error) {
	f, ok := strategies[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
	return f(opts), nil
}

// Names lists registered strategies in sorted order.
func Names() []string {
	out := make([]string, 0, len(strategies))
	for name := range strategies {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
