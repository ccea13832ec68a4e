package cull

import (
	"cmp"
	"math"
)

// compareTotal orders float32 values with every NaN above +Inf and equal to
// other NaNs, so searches over degenerate values stay deterministic.
func compareTotal(a, b float32) int {
	an := math.IsNaN(float64(a))
	bn := math.IsNaN(float64(b))
	switch {
	case an && bn:
		return 0
	case an:
		return 1
	case bn:
		return -1
	}
	return cmp.Compare(a, b)
}
