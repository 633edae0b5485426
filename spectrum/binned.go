package spectrum

import (
	"fmt"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/floats"
)

// BinnedSpectrum is a 1-D array of per-bin scalar values (counts, exposure,
// acceptance, ...) indexed by an EnergyAxis, with an associated physical
// unit label.
type BinnedSpectrum struct {
	axis *EnergyAxis
	data []float64
	unit string
}

// New creates a zero-valued spectrum on the given axis.
func New(axis *EnergyAxis, unit string) *BinnedSpectrum {
	return &BinnedSpectrum{axis: axis, data: make([]float64, axis.NBins()), unit: unit}
}

// FromData creates a spectrum wrapping a copy of data, which must have one
// value per axis bin.
func FromData(axis *EnergyAxis, data []float64, unit string) (*BinnedSpectrum, error) {
	if len(data) != axis.NBins() {
		return nil, fmt.Errorf("spectrum: data length %d does not match %d axis bins",
			len(data), axis.NBins())
	}
	d := make([]float64, len(data))
	copy(d, data)
	return &BinnedSpectrum{axis: axis, data: d, unit: unit}, nil
}

// Full creates a spectrum with every bin set to value. It is the scalar
// broadcast used e.g. for constant acceptances.
func Full(axis *EnergyAxis, value float64, unit string) *BinnedSpectrum {
	s := New(axis, unit)
	for i := range s.data {
		s.data[i] = value
	}
	return s
}

// Axis returns the energy axis the spectrum is defined on.
func (s *BinnedSpectrum) Axis() *EnergyAxis { return s.axis }

// Unit returns the unit label.
func (s *BinnedSpectrum) Unit() string { return s.unit }

// Data returns the underlying per-bin values. The slice is live: mutating it
// mutates the spectrum.
func (s *BinnedSpectrum) Data() []float64 { return s.data }

// At returns the value of bin i.
func (s *BinnedSpectrum) At(i int) float64 { return s.data[i] }

// Copy returns a deep copy of the spectrum sharing the (immutable) axis.
func (s *BinnedSpectrum) Copy() *BinnedSpectrum {
	out, _ := FromData(s.axis, s.data, s.unit)
	return out
}

func (s *BinnedSpectrum) checkAxis(other *BinnedSpectrum) error {
	if !s.axis.Equal(other.axis) {
		return ErrAxisMismatch
	}
	return nil
}

// Add returns the elementwise sum s + other.
func (s *BinnedSpectrum) Add(other *BinnedSpectrum) (*BinnedSpectrum, error) {
	if err := s.checkAxis(other); err != nil {
		return nil, err
	}
	out := s.Copy()
	vecmath.AddBlockInPlace(out.data, other.data)
	return out, nil
}

// Sub returns the elementwise difference s - other.
func (s *BinnedSpectrum) Sub(other *BinnedSpectrum) (*BinnedSpectrum, error) {
	if err := s.checkAxis(other); err != nil {
		return nil, err
	}
	out := s.Copy()
	for i, v := range other.data {
		out.data[i] -= v
	}
	return out, nil
}

// Mul returns the elementwise product s * other.
func (s *BinnedSpectrum) Mul(other *BinnedSpectrum) (*BinnedSpectrum, error) {
	if err := s.checkAxis(other); err != nil {
		return nil, err
	}
	out := New(s.axis, s.unit)
	vecmath.MulBlock(out.data, s.data, other.data)
	return out, nil
}

// Div returns the elementwise quotient s / other. Bins where the divisor is
// zero yield 0 rather than NaN or Inf, so downstream consumers never see
// non-finite values from a degenerate denominator.
func (s *BinnedSpectrum) Div(other *BinnedSpectrum) (*BinnedSpectrum, error) {
	if err := s.checkAxis(other); err != nil {
		return nil, err
	}
	out := New(s.axis, s.unit)
	for i, v := range other.data {
		if v == 0 {
			out.data[i] = 0
			continue
		}
		out.data[i] = s.data[i] / v
	}
	return out, nil
}

// Scale returns the spectrum multiplied by the scalar k.
func (s *BinnedSpectrum) Scale(k float64) *BinnedSpectrum {
	out := New(s.axis, s.unit)
	vecmath.ScaleBlock(out.data, s.data, k)
	return out
}

// ApplyMask zeroes every bin excluded by the mask, in place.
func (s *BinnedSpectrum) ApplyMask(m *Mask) error {
	if !s.axis.Equal(m.axis) {
		return ErrAxisMismatch
	}
	vecmath.MulBlockInPlace(s.data, m.weights())
	return nil
}

// Sum returns the total over all bins.
func (s *BinnedSpectrum) Sum() float64 { return floats.Sum(s.data) }

// MaskedSum returns the total over the bins included by the mask.
// A nil mask includes every bin.
func (s *BinnedSpectrum) MaskedSum(m *Mask) (float64, error) {
	if m == nil {
		return s.Sum(), nil
	}
	if !s.axis.Equal(m.axis) {
		return 0, ErrAxisMismatch
	}
	sum := 0.0
	for i, ok := range m.data {
		if ok {
			sum += s.data[i]
		}
	}
	return sum, nil
}

// Stack accumulates other into s in place, gating each of other's bins by
// the weights mask: s_i += other_i * w_i. A nil mask means weight 1
// everywhere. This is the primitive under dataset stacking.
func (s *BinnedSpectrum) Stack(other *BinnedSpectrum, weights *Mask) error {
	if err := s.checkAxis(other); err != nil {
		return err
	}
	if weights == nil {
		vecmath.AddBlockInPlace(s.data, other.data)
		return nil
	}
	if !s.axis.Equal(weights.axis) {
		return ErrAxisMismatch
	}
	for i, ok := range weights.data {
		if ok {
			s.data[i] += other.data[i]
		}
	}
	return nil
}

// Slice returns the sub-spectrum covering bins [i0, i1) on the matching
// sub-axis.
func (s *BinnedSpectrum) Slice(i0, i1 int) (*BinnedSpectrum, error) {
	if i0 < 0 || i1 > s.axis.NBins() || i0 >= i1 {
		return nil, fmt.Errorf("spectrum: invalid slice [%d, %d) of %d bins", i0, i1, s.axis.NBins())
	}
	axis, err := NewEnergyAxis(s.axis.edges[i0 : i1+1])
	if err != nil {
		return nil, err
	}
	return FromData(axis, s.data[i0:i1], s.unit)
}

// Resample sums the spectrum onto a coarser axis whose edges are a subset of
// the current edges. Bins excluded by the weights mask contribute zero,
// mirroring the stacking rule. A nil mask includes every bin.
func (s *BinnedSpectrum) Resample(coarse *EnergyAxis, weights *Mask) (*BinnedSpectrum, error) {
	group, err := s.axis.GroupIndex(coarse)
	if err != nil {
		return nil, err
	}
	if weights != nil && !s.axis.Equal(weights.axis) {
		return nil, ErrAxisMismatch
	}
	out := New(coarse, s.unit)
	for i, j := range group {
		if weights != nil && !weights.data[i] {
			continue
		}
		out.data[j] += s.data[i]
	}
	return out, nil
}
