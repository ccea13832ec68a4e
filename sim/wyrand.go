package sim

import (
	"math/bits"
	"math/rand/v2"
	"time"
)

// WyRand is the wyrand generator. It implements rand.Source.
type WyRand struct {
	state uint64
}

// NewWyRand seeds a generator. A zero seed is replaced by the current time.
func NewWyRand(seed uint64) *WyRand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &WyRand{state: seed}
}

func (w *WyRand) Uint64() uint64 {
	w.state += 0xa0761d6478bd642f
	hi, lo := bits.Mul64(w.state, w.state^0xe7037ed1a0b428db)
	return hi ^ lo
}

// NewRand wraps a seeded WyRand in a *rand.Rand.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(NewWyRand(seed))
}
