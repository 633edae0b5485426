package dataset

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/integrate"

	"github.com/cwbudde/algo-gamma/irf"
	"github.com/cwbudde/algo-gamma/model"
	"github.com/cwbudde/algo-gamma/spectrum"
)

// fluxNodesPerBin is the number of log-spaced sample points used to
// integrate the model flux across one true-energy bin.
const fluxNodesPerBin = 17

// ErrNoExposure is returned when predicted counts are requested without an
// exposure.
var ErrNoExposure = errors.New("dataset: evaluator needs an exposure")

// Evaluator forward-folds one spectral model through the instrument
// response: the model flux is integrated over each true-energy bin,
// multiplied by the exposure, and projected into reconstructed-energy bins
// through the dispersion kernel.
//
// ComputeNpred is a pure function of the evaluator's inputs; the dataset
// re-creates evaluators whenever its model set changes.
type Evaluator struct {
	model    model.SpectralModel
	exposure *spectrum.BinnedSpectrum
	edisp    *irf.EDispKernel
}

// NewEvaluator creates an evaluator. The exposure is required and defines
// the true-energy axis. A nil dispersion kernel means reconstructed energy
// equals true energy (identity response).
func NewEvaluator(m model.SpectralModel, exposure *spectrum.BinnedSpectrum, edisp *irf.EDispKernel) (*Evaluator, error) {
	if exposure == nil {
		return nil, ErrNoExposure
	}
	if edisp != nil && !edisp.AxisTrue().Equal(exposure.Axis()) {
		return nil, irf.ErrAxisMismatch
	}
	return &Evaluator{model: m, exposure: exposure, edisp: edisp}, nil
}

// integrateFlux returns the model flux integrated over [lo, hi] using
// trapezoidal quadrature on a log-spaced grid.
func (e *Evaluator) integrateFlux(lo, hi float64) float64 {
	if lo <= 0 {
		// Degenerate axis; fall back to midpoint times width.
		return e.model.Evaluate(0.5*(lo+hi)) * (hi - lo)
	}
	x := make([]float64, fluxNodesPerBin)
	y := make([]float64, fluxNodesPerBin)
	step := math.Log(hi/lo) / float64(fluxNodesPerBin-1)
	for i := range x {
		x[i] = lo * math.Exp(step*float64(i))
		y[i] = e.model.Evaluate(x[i])
	}
	x[fluxNodesPerBin-1] = hi
	return integrate.Trapezoidal(x, y)
}

// ComputeNpred returns the predicted counts per reconstructed-energy bin.
func (e *Evaluator) ComputeNpred() (*spectrum.BinnedSpectrum, error) {
	axisTrue := e.exposure.Axis()
	perTrue := make([]float64, axisTrue.NBins())
	for l := range perTrue {
		flux := e.integrateFlux(axisTrue.Lo(l), axisTrue.Hi(l))
		perTrue[l] = flux * e.exposure.At(l)
	}

	if e.edisp == nil {
		return spectrum.FromData(axisTrue, perTrue, "")
	}
	reco, err := e.edisp.Apply(perTrue)
	if err != nil {
		return nil, err
	}
	return spectrum.FromData(e.edisp.AxisReco(), reco, "")
}
