package testutil

import "testing"

func TestGeomEdges(t *testing.T) {
	edges := GeomEdges(1, 2, 3)
	want := []float64{1, 2, 4, 8}
	RequireSliceNearlyEqual(t, edges, want, 1e-12)
}

func TestOnes(t *testing.T) {
	v := Ones(4)
	RequireSliceNearlyEqual(t, v, []float64{1, 1, 1, 1}, 0)
}

func TestRandomCountsReproducible(t *testing.T) {
	a := RandomCounts(3, 5, 100, 32)
	b := RandomCounts(3, 5, 100, 32)
	RequireSliceNearlyEqual(t, a, b, 0)
	for i, v := range a {
		if v < 0 || v >= 100 {
			t.Fatalf("index %d: value %v out of range [0, 100)", i, v)
		}
	}
}
