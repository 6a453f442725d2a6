package core

import (
	"golang.org/x/exp/constraints"
)

// Clamp limits x to the closed interval [lo, hi]
func Clamp[T constraints.Integer | constraints.Float](x, lo, hi T) T {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Lerp linearly interpolates between a and b
func Lerp[T constraints.Float](a, b, t T) T {
	return a + (b-a)*t
}

// PowerHeuristic calculates the power heuristic weight for multiple importance sampling (beta = 2)
func PowerHeuristic(nf int, fPdf float64, ng int, gPdf float64) float64 {
	f := float64(nf) * fPdf
	g := float64(ng) * gPdf
	if f == 0 && g == 0 {
		return 0
	}
	return (f * f) / (f*f + g*g)
}
