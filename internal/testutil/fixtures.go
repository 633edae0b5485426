// Package testutil provides numeric tolerance helpers and deterministic
// spectrum fixtures shared by the package tests.
package testutil

import "math/rand/v2"

// GeomEdges returns nBins+1 geometrically spaced bin edges starting at eMin
// with the given ratio between consecutive edges.
func GeomEdges(eMin, ratio float64, nBins int) []float64 {
	edges := make([]float64, nBins+1)
	e := eMin
	for i := range edges {
		edges[i] = e
		e *= ratio
	}
	return edges
}

// Ones returns a slice of n ones.
func Ones(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1
	}
	return out
}

// RandomCounts returns n deterministic pseudo-random count values in
// [0, upper), reproducible for a given seed pair.
func RandomCounts(seed1, seed2 uint64, upper float64, n int) []float64 {
	rng := rand.New(rand.NewPCG(seed1, seed2))
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(int(rng.Float64() * upper))
	}
	return out
}
