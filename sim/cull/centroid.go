package cull

import (
	"spherecull/geom"
	"spherecull/sim/pointset"
)

// DefaultBudget is the sample window used when none is configured.
const DefaultBudget = 1000

func init() {
	Register("centroid", func(opts Options) Strategy {
		return &Centroid{Budget: opts.Budget}
	})
}

// Centroid keeps the sampled point closest on average to its sampled peers
// and removes the rest of the sample.
//
// The sample is the first Budget live points in iteration order. Points
// past the window are not looked at.
type Centroid struct {
	Budget int
}

func (c *Centroid) Name() string { return "centroid" }

func (c *Centroid) Reduce(set *pointset.Set) Result {
	budget := c.Budget
	if budget <= 0 {
		budget = DefaultBudget
	}
	sample := set.Prefix(budget)
	res := Result{Sample: len(sample)}
	if len(sample) <= 1 {
		return res
	}

	keep := CenterIndex(sample)
	res.Survivor = sample[keep].ID
	res.Removed = make([]pointset.ID, 0, len(sample)-1)
	for i, p := range sample {
		if i == keep {
			continue
		}
		res.Removed = append(res.Removed, p.ID)
	}
	return res
}

// CenterIndex returns the index of the point with the smallest mean
// distance to the other points. The first minimum wins ties.
func CenterIndex(points []pointset.Point) int {
	best := -1
	var bestD geom.Scalar
	for i := range points {
		d := MeanDistance(points, i)
		if best < 0 || compareTotal(d, bestD) < 0 {
			best = i
			bestD = d
		}
	}
	return best
}

// MeanDistance is the average distance from points[i] to every other point.
func MeanDistance(points []pointset.Point, i int) geom.Scalar {
	if len(points) <= 1 {
		return 0
	}
	p := points[i].Pos
	var sum geom.Scalar
	for j := range points {
		if j == i {
			continue
		}
		sum += geom.Distance(p, points[j].Pos)
	}
	return sum / geom.Scalar(len(points)-1)
}
