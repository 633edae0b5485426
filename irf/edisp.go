package irf

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-gamma/spectrum"
)

// rowSumTolerance is the slack allowed on the probability normalisation of a
// dispersion row. Rows may sum to less than 1 (photon loss) but never more.
const rowSumTolerance = 1e-6

// ErrAxisMismatch is returned when response components do not share the
// required energy axes.
var ErrAxisMismatch = errors.New("irf: energy axis mismatch")

// EDispKernel is the energy-dispersion matrix: element (l, k) is the
// probability that a photon of true energy in bin l is reconstructed in
// reco-energy bin k. Rows sum to at most 1.
type EDispKernel struct {
	axisTrue *spectrum.EnergyAxis
	axisReco *spectrum.EnergyAxis
	pdf      *mat.Dense // nTrue x nReco
}

// NewEDispKernel creates a kernel from a row-major probability matrix with
// one row per true-energy bin and one column per reco-energy bin.
func NewEDispKernel(axisTrue, axisReco *spectrum.EnergyAxis, data []float64) (*EDispKernel, error) {
	nTrue, nReco := axisTrue.NBins(), axisReco.NBins()
	if len(data) != nTrue*nReco {
		return nil, fmt.Errorf("irf: matrix has %d elements, want %d x %d", len(data), nTrue, nReco)
	}
	d := make([]float64, len(data))
	copy(d, data)
	k := &EDispKernel{
		axisTrue: axisTrue,
		axisReco: axisReco,
		pdf:      mat.NewDense(nTrue, nReco, d),
	}
	if err := k.validate(); err != nil {
		return nil, err
	}
	return k, nil
}

// NewDiagonal creates the identity response: every photon is reconstructed
// in the bin matching its true energy. Both axes must have the same number
// of bins.
func NewDiagonal(axisTrue, axisReco *spectrum.EnergyAxis) (*EDispKernel, error) {
	if axisTrue.NBins() != axisReco.NBins() {
		return nil, fmt.Errorf("irf: diagonal response needs equal bin counts, got %d and %d",
			axisTrue.NBins(), axisReco.NBins())
	}
	k := &EDispKernel{
		axisTrue: axisTrue,
		axisReco: axisReco,
		pdf:      mat.NewDense(axisTrue.NBins(), axisReco.NBins(), nil),
	}
	for i := 0; i < axisTrue.NBins(); i++ {
		k.pdf.Set(i, i, 1)
	}
	return k, nil
}

// NewZeroEDispKernel creates an all-zero kernel (total photon loss). Used as
// the empty container in dataset factories.
func NewZeroEDispKernel(axisTrue, axisReco *spectrum.EnergyAxis) *EDispKernel {
	return &EDispKernel{
		axisTrue: axisTrue,
		axisReco: axisReco,
		pdf:      mat.NewDense(axisTrue.NBins(), axisReco.NBins(), nil),
	}
}

func (k *EDispKernel) validate() error {
	nTrue, nReco := k.pdf.Dims()
	for l := 0; l < nTrue; l++ {
		sum := 0.0
		for j := 0; j < nReco; j++ {
			v := k.pdf.At(l, j)
			if v < 0 {
				return fmt.Errorf("irf: negative dispersion probability %g at (%d, %d)", v, l, j)
			}
			sum += v
		}
		if sum > 1+rowSumTolerance {
			return fmt.Errorf("irf: dispersion row %d sums to %g > 1", l, sum)
		}
	}
	return nil
}

// AxisTrue returns the true-energy axis.
func (k *EDispKernel) AxisTrue() *spectrum.EnergyAxis { return k.axisTrue }

// AxisReco returns the reconstructed-energy axis.
func (k *EDispKernel) AxisReco() *spectrum.EnergyAxis { return k.axisReco }

// At returns the probability that true bin l reconstructs into reco bin kk.
func (k *EDispKernel) At(l, kk int) float64 { return k.pdf.At(l, kk) }

// Copy returns a deep copy of the kernel.
func (k *EDispKernel) Copy() *EDispKernel {
	return &EDispKernel{
		axisTrue: k.axisTrue,
		axisReco: k.axisReco,
		pdf:      mat.DenseCopyOf(k.pdf),
	}
}

// Apply projects per-true-bin counts through the dispersion matrix into
// reco-energy bins: reco_k = sum_l true_l * pdf(l, k).
func (k *EDispKernel) Apply(trueBins []float64) ([]float64, error) {
	nTrue, nReco := k.pdf.Dims()
	if len(trueBins) != nTrue {
		return nil, fmt.Errorf("irf: got %d true bins, want %d", len(trueBins), nTrue)
	}
	v := mat.NewVecDense(nTrue, trueBins)
	out := mat.NewVecDense(nReco, nil)
	out.MulVec(k.pdf.T(), v)
	reco := make([]float64, nReco)
	copy(reco, out.RawVector().Data)
	return reco, nil
}

// Stack replaces k in place with the exposure-weighted average of k and
// other. Each operand's dispersion row is weighted by its own exposure in
// that true bin, and its reco-bin contributions are zeroed wherever that
// operand's safe mask excludes the reco bin. True bins with zero total
// exposure get an all-zero row.
//
// Exposures are defined on the shared true axis, masks on the shared reco
// axis. A nil mask includes every reco bin.
func (k *EDispKernel) Stack(other *EDispKernel, expSelf, expOther *spectrum.BinnedSpectrum, maskSelf, maskOther *spectrum.Mask) error {
	if !k.axisTrue.Equal(other.axisTrue) || !k.axisReco.Equal(other.axisReco) {
		return ErrAxisMismatch
	}
	if !expSelf.Axis().Equal(k.axisTrue) || !expOther.Axis().Equal(k.axisTrue) {
		return ErrAxisMismatch
	}
	if maskSelf != nil && !maskSelf.Axis().Equal(k.axisReco) {
		return ErrAxisMismatch
	}
	if maskOther != nil && !maskOther.Axis().Equal(k.axisReco) {
		return ErrAxisMismatch
	}

	nTrue, nReco := k.pdf.Dims()
	for l := 0; l < nTrue; l++ {
		w1, w2 := expSelf.At(l), expOther.At(l)
		total := w1 + w2
		for j := 0; j < nReco; j++ {
			if total == 0 {
				k.pdf.Set(l, j, 0)
				continue
			}
			p1 := k.pdf.At(l, j) * w1
			if maskSelf != nil && !maskSelf.At(j) {
				p1 = 0
			}
			p2 := other.pdf.At(l, j) * w2
			if maskOther != nil && !maskOther.At(j) {
				p2 = 0
			}
			k.pdf.Set(l, j, (p1+p2)/total)
		}
	}
	return nil
}

// ResampleReco regroups the kernel onto a coarser reco axis, summing column
// probabilities. Reco bins excluded by the weights mask contribute zero,
// the same gating discipline as stacking. A nil mask includes every bin.
func (k *EDispKernel) ResampleReco(coarse *spectrum.EnergyAxis, weights *spectrum.Mask) (*EDispKernel, error) {
	group, err := k.axisReco.GroupIndex(coarse)
	if err != nil {
		return nil, err
	}
	if weights != nil && !weights.Axis().Equal(k.axisReco) {
		return nil, ErrAxisMismatch
	}
	nTrue, nReco := k.pdf.Dims()
	out := mat.NewDense(nTrue, coarse.NBins(), nil)
	for l := 0; l < nTrue; l++ {
		for j := 0; j < nReco; j++ {
			if weights != nil && !weights.At(j) {
				continue
			}
			g := group[j]
			out.Set(l, g, out.At(l, g)+k.pdf.At(l, j))
		}
	}
	return &EDispKernel{axisTrue: k.axisTrue, axisReco: coarse, pdf: out}, nil
}

// SliceReco restricts the kernel to reco bins [i0, i1).
func (k *EDispKernel) SliceReco(i0, i1 int) (*EDispKernel, error) {
	nTrue, nReco := k.pdf.Dims()
	if i0 < 0 || i1 > nReco || i0 >= i1 {
		return nil, fmt.Errorf("irf: invalid reco slice [%d, %d) of %d bins", i0, i1, nReco)
	}
	axis, err := spectrum.NewEnergyAxis(k.axisReco.Edges()[i0 : i1+1])
	if err != nil {
		return nil, err
	}
	out := mat.NewDense(nTrue, i1-i0, nil)
	out.Copy(k.pdf.Slice(0, nTrue, i0, i1))
	return &EDispKernel{axisTrue: k.axisTrue, axisReco: axis, pdf: out}, nil
}
