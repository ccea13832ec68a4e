package cull

import (
	"spherecull/geom"
	"spherecull/sim/pointset"
)

func init() {
	Register("triangle", func(Options) Strategy { return &Triangle{} })
}

// Triangle takes the first three unvisited points, keeps the vertex with the
// largest interior angle and removes the other two. When fewer than three
// unvisited points are left the sweep restarts from scratch.
type Triangle struct{}

func (t *Triangle) Name() string { return "triangle" }

func (t *Triangle) Reduce(set *pointset.Set) Result {
	ids := set.FirstUnvisited(3)
	if len(ids) < 3 {
		set.ResetVisited()
		return Result{Sample: len(ids), Reset: true}
	}

	pts := make([]pointset.Point, 3)
	for i, id := range ids {
		set.SetVisited(id, true)
		pts[i], _ = set.Get(id)
	}

	alpha, beta, gamma := geom.TriangleAngles(pts[0].Pos, pts[1].Pos, pts[2].Pos)
	keep := LargestAngle(alpha, beta, gamma)

	res := Result{
		Sample:   3,
		Survivor: ids[keep],
		Removed:  make([]pointset.ID, 0, 2),
		Angles:   []geom.Scalar{alpha, beta, gamma},
		Triangle: []geom.Vec3{pts[0].Pos, pts[1].Pos, pts[2].Pos},
	}
	for i, id := range ids {
		if i != keep {
			res.Removed = append(res.Removed, id)
		}
	}
	return res
}

// LargestAngle returns 0, 1 or 2 for the largest of alpha, beta and gamma.
// Ties go to alpha, then beta; gamma is the fallback.
func LargestAngle(alpha, beta, gamma geom.Scalar) int {
	switch {
	case compareTotal(alpha, beta) >= 0 && compareTotal(alpha, gamma) >= 0:
		return 0
	case compareTotal(beta, gamma) >= 0:
		return 1
	default:
		return 2
	}
}
