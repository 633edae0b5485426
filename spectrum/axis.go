package spectrum

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ErrAxisMismatch is returned by binary operations whose operands are not
// defined on the same energy axis.
var ErrAxisMismatch = errors.New("spectrum: energy axis mismatch")

// EnergyAxis is an ordered sequence of N+1 contiguous bin edges defining N
// energy bins. Edges are in TeV and strictly increasing. The axis is
// immutable after construction and is shared by all arrays indexed by it.
type EnergyAxis struct {
	edges []float64
}

// NewEnergyAxis creates an axis from bin edges in TeV.
// At least two edges are required and edges must be strictly increasing.
func NewEnergyAxis(edges []float64) (*EnergyAxis, error) {
	if len(edges) < 2 {
		return nil, fmt.Errorf("spectrum: axis needs at least 2 edges, got %d", len(edges))
	}
	for i := 1; i < len(edges); i++ {
		if !(edges[i] > edges[i-1]) {
			return nil, fmt.Errorf("spectrum: axis edges must be strictly increasing at index %d: %g >= %g",
				i, edges[i-1], edges[i])
		}
	}
	e := make([]float64, len(edges))
	copy(e, edges)
	return &EnergyAxis{edges: e}, nil
}

// LogSpacedAxis creates an axis with n bins whose edges are log-uniform
// between eMin and eMax (TeV). Both bounds must be positive.
func LogSpacedAxis(eMin, eMax float64, n int) (*EnergyAxis, error) {
	if eMin <= 0 || eMax <= eMin {
		return nil, fmt.Errorf("spectrum: invalid axis range [%g, %g]", eMin, eMax)
	}
	if n < 1 {
		return nil, fmt.Errorf("spectrum: axis needs at least 1 bin, got %d", n)
	}
	edges := make([]float64, n+1)
	step := math.Log(eMax/eMin) / float64(n)
	for i := range edges {
		edges[i] = eMin * math.Exp(step*float64(i))
	}
	edges[n] = eMax
	return &EnergyAxis{edges: edges}, nil
}

// NBins returns the number of bins N.
func (a *EnergyAxis) NBins() int { return len(a.edges) - 1 }

// Edges returns a copy of the N+1 bin edges.
func (a *EnergyAxis) Edges() []float64 {
	e := make([]float64, len(a.edges))
	copy(e, a.edges)
	return e
}

// Lo returns the lower edge of bin i.
func (a *EnergyAxis) Lo(i int) float64 { return a.edges[i] }

// Hi returns the upper edge of bin i.
func (a *EnergyAxis) Hi(i int) float64 { return a.edges[i+1] }

// Width returns the width of bin i.
func (a *EnergyAxis) Width(i int) float64 { return a.edges[i+1] - a.edges[i] }

// Center returns the logarithmic center sqrt(lo*hi) of bin i.
// For axes reaching non-positive energies it falls back to the
// arithmetic midpoint.
func (a *EnergyAxis) Center(i int) float64 {
	lo, hi := a.edges[i], a.edges[i+1]
	if lo <= 0 {
		return 0.5 * (lo + hi)
	}
	return math.Sqrt(lo * hi)
}

// EdgeMin returns the lowest edge of the axis.
func (a *EnergyAxis) EdgeMin() float64 { return a.edges[0] }

// EdgeMax returns the highest edge of the axis.
func (a *EnergyAxis) EdgeMax() float64 { return a.edges[len(a.edges)-1] }

// Equal reports whether both axes have exactly the same edges.
// Bin-by-bin operations are only defined between equal axes.
func (a *EnergyAxis) Equal(b *EnergyAxis) bool {
	if a == nil || b == nil {
		return a == b
	}
	return floats.Equal(a.edges, b.edges)
}

// Squash returns a single-bin axis spanning the full range of a.
func (a *EnergyAxis) Squash() *EnergyAxis {
	return &EnergyAxis{edges: []float64{a.EdgeMin(), a.EdgeMax()}}
}

// GroupIndex maps every bin of a onto the bin of the coarse axis that
// contains it. Every coarse edge must coincide with one of a's edges and the
// coarse axis must span the same range, so that each coarse bin is the exact
// union of one or more fine bins.
func (a *EnergyAxis) GroupIndex(coarse *EnergyAxis) ([]int, error) {
	if a.edges[0] != coarse.edges[0] || a.EdgeMax() != coarse.EdgeMax() {
		return nil, fmt.Errorf("spectrum: coarse axis range [%g, %g] does not match [%g, %g]",
			coarse.edges[0], coarse.EdgeMax(), a.edges[0], a.EdgeMax())
	}
	group := make([]int, a.NBins())
	j := 0
	for i := 0; i < a.NBins(); i++ {
		if a.edges[i] >= coarse.edges[j+1] {
			j++
			if j >= coarse.NBins() || a.edges[i] != coarse.edges[j] {
				return nil, fmt.Errorf("spectrum: coarse axis edges are not a subset of fine axis edges near %g",
					a.edges[i])
			}
		}
		if a.edges[i+1] > coarse.edges[j+1] {
			return nil, fmt.Errorf("spectrum: fine bin [%g, %g] straddles a coarse edge",
				a.edges[i], a.edges[i+1])
		}
		group[i] = j
	}
	return group, nil
}
