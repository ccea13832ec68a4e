package pointset

import "spherecull/geom"

// IntN is the slice of a random source that population needs.
// *math/rand/v2.Rand satisfies it.
type IntN interface {
	IntN(n int) int
}

// Populate appends n points at random coordinates in [-1,1]³.
func Populate(s *Set, rng IntN, n int) {
	for i := 0; i < n; i++ {
		s.Add(RandomPosition(rng))
	}
}

// RandomPosition draws one coordinate per axis with RandomCoord.
func RandomPosition(rng IntN) geom.Vec3 {
	x := RandomCoord(rng)
	y := RandomCoord(rng)
	z := RandomCoord(rng)
	return geom.V3(x, y, z)
}

// RandomCoord maps a uniform integer in [0,200] to (i-100)/100.
func RandomCoord(rng IntN) geom.Scalar {
	i := rng.IntN(201)
	return geom.Scalar(i-100) / 100
}
