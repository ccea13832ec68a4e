package geom

import "math"

// TriangleAngles returns the interior angles of triangle abc in radians:
// alpha at a, beta at b and gamma at c, each from the law of cosines.
//
// A zero-length side makes the ratio 0/0 and the matching angles NaN.
// Callers must compare the results with a NaN-tolerant ordering.
func TriangleAngles(a, b, c Vec3) (alpha, beta, gamma Scalar) {
	ab := Distance(a, b)
	ac := Distance(a, c)
	bc := Distance(b, c)

	gamma = acos((ab*ab - ac*ac - bc*bc) / (-2 * ac * bc))
	beta = acos((ac*ac - ab*ab - bc*bc) / (-2 * ab * bc))
	alpha = acos((bc*bc - ac*ac - ab*ab) / (-2 * ab * ac))
	return alpha, beta, gamma
}

func acos(v Scalar) Scalar {
	return Scalar(math.Acos(float64(v)))
}
