package spectrum

import "fmt"

// Mask is a per-bin boolean flag array on an energy axis. True marks a bin
// as included in the analysis.
type Mask struct {
	axis *EnergyAxis
	data []bool
}

// NewMask creates a mask with every bin set to value.
func NewMask(axis *EnergyAxis, value bool) *Mask {
	m := &Mask{axis: axis, data: make([]bool, axis.NBins())}
	if value {
		for i := range m.data {
			m.data[i] = true
		}
	}
	return m
}

// MaskFromData creates a mask wrapping a copy of data, one flag per bin.
func MaskFromData(axis *EnergyAxis, data []bool) (*Mask, error) {
	if len(data) != axis.NBins() {
		return nil, fmt.Errorf("spectrum: mask length %d does not match %d axis bins",
			len(data), axis.NBins())
	}
	d := make([]bool, len(data))
	copy(d, data)
	return &Mask{axis: axis, data: d}, nil
}

// Axis returns the energy axis the mask is defined on.
func (m *Mask) Axis() *EnergyAxis { return m.axis }

// Data returns the underlying flags. The slice is live.
func (m *Mask) Data() []bool { return m.data }

// At returns the flag of bin i.
func (m *Mask) At(i int) bool { return m.data[i] }

// Set assigns the flag of bin i.
func (m *Mask) Set(i int, v bool) { m.data[i] = v }

// Copy returns a deep copy of the mask.
func (m *Mask) Copy() *Mask {
	out, _ := MaskFromData(m.axis, m.data)
	return out
}

// Or returns the elementwise logical OR of both masks.
func (m *Mask) Or(other *Mask) (*Mask, error) {
	if !m.axis.Equal(other.axis) {
		return nil, ErrAxisMismatch
	}
	out := m.Copy()
	for i, v := range other.data {
		out.data[i] = out.data[i] || v
	}
	return out, nil
}

// And returns the elementwise logical AND of both masks.
func (m *Mask) And(other *Mask) (*Mask, error) {
	if !m.axis.Equal(other.axis) {
		return nil, ErrAxisMismatch
	}
	out := m.Copy()
	for i, v := range other.data {
		out.data[i] = out.data[i] && v
	}
	return out, nil
}

// Any reports whether at least one bin is included.
func (m *Mask) Any() bool {
	for _, v := range m.data {
		if v {
			return true
		}
	}
	return false
}

// All reports whether every bin is included.
func (m *Mask) All() bool {
	for _, v := range m.data {
		if !v {
			return false
		}
	}
	return true
}

// CountTrue returns the number of included bins.
func (m *Mask) CountTrue() int {
	n := 0
	for _, v := range m.data {
		if v {
			n++
		}
	}
	return n
}

// weights returns the mask as 0/1 multipliers.
func (m *Mask) weights() []float64 {
	w := make([]float64, len(m.data))
	for i, v := range m.data {
		if v {
			w[i] = 1
		}
	}
	return w
}

// AsWeights returns the mask as a 0/1 valued spectrum on the same axis.
func (m *Mask) AsWeights() *BinnedSpectrum {
	return &BinnedSpectrum{axis: m.axis, data: m.weights()}
}

// Slice returns the sub-mask covering bins [i0, i1) on the matching
// sub-axis.
func (m *Mask) Slice(i0, i1 int) (*Mask, error) {
	if i0 < 0 || i1 > m.axis.NBins() || i0 >= i1 {
		return nil, fmt.Errorf("spectrum: invalid slice [%d, %d) of %d bins", i0, i1, m.axis.NBins())
	}
	axis, err := NewEnergyAxis(m.axis.edges[i0 : i1+1])
	if err != nil {
		return nil, err
	}
	return MaskFromData(axis, m.data[i0:i1])
}

// Resample combines the mask onto a coarser axis with logical OR: a coarse
// bin is included if any of its constituent fine bins is.
func (m *Mask) Resample(coarse *EnergyAxis) (*Mask, error) {
	group, err := m.axis.GroupIndex(coarse)
	if err != nil {
		return nil, err
	}
	out := NewMask(coarse, false)
	for i, j := range group {
		out.data[j] = out.data[j] || m.data[i]
	}
	return out, nil
}
