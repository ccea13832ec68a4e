// Package sim owns a run: the point set, the round timer, the phase flag and
// the selection strategy. Everything advances through State.Step, called
// once per host frame.
package sim

import (
	"fmt"
	"time"

	"spherecull/geom"
	"spherecull/sim/clock"
	"spherecull/sim/cull"
	"spherecull/sim/pointset"
)

const (
	DefaultCentroidPoints = 10000
	DefaultTrianglePoints = 1000
)

// Config describes one run.
type Config struct {
	Variant string
	Points  int
	Budget  int
	Period  time.Duration
	Seed    uint64
}

// DefaultPoints returns the population size used for variant when none is set.
func DefaultPoints(variant string) int {
	if variant == "triangle" {
		return DefaultTrianglePoints
	}
	return DefaultCentroidPoints
}

// Logger receives console lines. hal.Logger satisfies it.
type Logger interface {
	WriteLineString(s string)
}

// Observer is told about every reduce round.
type Observer interface {
	ObserveRound(r Report)
}

// Report is the record of one reduce round.
type Report struct {
	Round       uint64        `json:"round"`
	Tick        uint64        `json:"tick"`
	Variant     string        `json:"variant"`
	Sample      int           `json:"sample"`
	Removed     []pointset.ID `json:"removed,omitempty"`
	Survivor    pointset.ID   `json:"survivor,omitempty"`
	SurvivorPos *geom.Vec3    `json:"survivor_pos,omitempty"`
	Reset       bool          `json:"reset,omitempty"`
	Angles      []float32     `json:"angles,omitempty"`
	Live        int           `json:"live"`
}

// Frame summarizes one Step.
type Frame struct {
	Tick   uint64
	Round  uint64
	Phase  clock.Phase
	Fired  bool
	Live   int
	Result *cull.Result
}

// State is the whole simulation.
type State struct {
	cfg      Config
	set      *pointset.Set
	timer    *clock.Timer
	phase    clock.Phase
	strategy cull.Strategy

	log       Logger
	observers []Observer

	tick     uint64
	round    uint64
	reported bool
}

// New resolves the strategy, fills defaults and spawns the initial points.
func New(cfg Config, log Logger) (*State, error) {
	if cfg.Variant == "" {
		cfg.Variant = "centroid"
	}
	if cfg.Budget <= 0 {
		cfg.Budget = cull.DefaultBudget
	}
	if cfg.Points <= 0 {
		cfg.Points = DefaultPoints(cfg.Variant)
	}
	if cfg.Period <= 0 {
		cfg.Period = clock.DefaultPeriod
	}
	if cfg.Seed == 0 {
		cfg.Seed = timeSeed()
	}
	strategy, err := cull.Lookup(cfg.Variant, cull.Options{Budget: cfg.Budget})
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = discard{}
	}

	s := &State{
		cfg:      cfg,
		set:      pointset.New(cfg.Points),
		timer:    clock.NewTimer(cfg.Period),
		phase:    clock.PhaseReduce,
		strategy: strategy,
		log:      log,
	}
	s.populate(cfg.Seed)
	return s, nil
}

func (s *State) Config() Config          { return s.cfg }
func (s *State) Phase() clock.Phase      { return s.phase }
func (s *State) Round() uint64           { return s.round }
func (s *State) Tick() uint64            { return s.tick }
func (s *State) Live() int               { return s.set.Len() }
func (s *State) Strategy() cull.Strategy { return s.strategy }

// Points returns the live points for renderers. The slice is only valid
// until the next Step or Reset.
func (s *State) Points() []pointset.Point { return s.set.Points() }

// Observe registers o for round reports.
func (s *State) Observe(o Observer) {
	if o != nil {
		s.observers = append(s.observers, o)
	}
}

// Reset respawns the population from seed and rewinds the timer and phase.
// A zero seed picks one from the clock.
func (s *State) Reset(seed uint64) {
	if seed == 0 {
		seed = timeSeed()
	}
	s.cfg.Seed = seed
	s.set.Clear()
	s.timer.Reset()
	s.phase = clock.PhaseReduce
	s.round = 0
	s.reported = false
	s.populate(seed)
}

func (s *State) populate(seed uint64) {
	pointset.Populate(s.set, NewRand(seed), s.cfg.Points)
	s.log.WriteLineString(fmt.Sprintf("spawned %d points (variant=%s budget=%d)", s.set.Len(), s.cfg.Variant, s.cfg.Budget))
}

// Step advances the simulation by one host frame of length delta.
//
// At most one pass runs per Step, even when delta spans several periods.
func (s *State) Step(delta time.Duration) Frame {
	s.tick++
	s.timer.Tick(delta)

	f := Frame{Tick: s.tick, Phase: s.phase, Fired: s.timer.Finished()}
	if f.Fired {
		switch s.phase {
		case clock.PhaseMark:
			s.highlight()
		case clock.PhaseReduce:
			res := s.reduce()
			f.Result = &res
		}
		s.phase = s.phase.Flip()
	}
	s.reportLast()

	f.Round = s.round
	f.Live = s.set.Len()
	return f
}

// highlight paints the next batch of unvisited points as candidates.
// Visited points keep their visual.
func (s *State) highlight() {
	for _, p := range s.set.Points() {
		if !p.Visited && p.Visual != pointset.VisualDefault {
			s.set.SetVisual(p.ID, pointset.VisualDefault)
		}
	}
	for _, id := range s.set.FirstUnvisited(s.cfg.Budget) {
		s.set.SetVisual(id, pointset.VisualCandidate)
	}
}

func (s *State) reduce() cull.Result {
	res := s.strategy.Reduce(s.set)
	s.set.Remove(res.Removed...)
	if res.HasSurvivor() {
		s.set.SetVisual(res.Survivor, pointset.VisualCenter)
	}
	s.round++

	if res.Reset {
		s.log.WriteLineString(fmt.Sprintf("round %d: sweep reset with %d points live", s.round, s.set.Len()))
	}
	if len(res.Angles) == 3 && len(res.Triangle) == 3 {
		s.log.WriteLineString(fmt.Sprintf("round %d: alpha=%.4f beta=%.4f gamma=%.4f a=%s b=%s c=%s",
			s.round, res.Angles[0], res.Angles[1], res.Angles[2],
			formatPos(res.Triangle[0]), formatPos(res.Triangle[1]), formatPos(res.Triangle[2])))
	}

	if len(s.observers) > 0 {
		r := s.report(res)
		for _, o := range s.observers {
			o.ObserveRound(r)
		}
	}
	return res
}

func (s *State) report(res cull.Result) Report {
	r := Report{
		Round:    s.round,
		Tick:     s.tick,
		Variant:  s.strategy.Name(),
		Sample:   res.Sample,
		Removed:  res.Removed,
		Survivor: res.Survivor,
		Reset:    res.Reset,
		Live:     s.set.Len(),
	}
	if p, ok := s.set.Get(res.Survivor); ok {
		pos := p.Pos
		r.SurvivorPos = &pos
	}
	for _, a := range res.Angles {
		r.Angles = append(r.Angles, float32(a))
	}
	return r
}

// reportLast logs the position of the last remaining point once each time
// the set shrinks to exactly one.
func (s *State) reportLast() {
	if s.set.Len() != 1 {
		s.reported = false
		return
	}
	if s.reported {
		return
	}
	s.reported = true
	p := s.set.Points()[0]
	s.log.WriteLineString("last point: " + formatPos(p.Pos))
}

func timeSeed() uint64 {
	if seed := uint64(time.Now().UnixNano()); seed != 0 {
		return seed
	}
	return 1
}

func formatPos(v geom.Vec3) string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", v.X, v.Y, v.Z)
}

type discard struct{}

func (discard) WriteLineString(string) {}
