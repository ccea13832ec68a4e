package clock

// Phase selects which pass acts on a firing tick.
type Phase uint8

const (
	// PhaseReduce runs the selection/elimination pass. Runs start here.
	PhaseReduce Phase = iota
	// PhaseMark runs the highlight pass.
	PhaseMark
)

// Flip returns the other phase.
func (p Phase) Flip() Phase {
	if p == PhaseMark {
		return PhaseReduce
	}
	return PhaseMark
}

func (p Phase) String() string {
	if p == PhaseMark {
		return "mark"
	}
	return "reduce"
}
