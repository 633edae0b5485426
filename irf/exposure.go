package irf

import "github.com/cwbudde/algo-gamma/spectrum"

// ExposureUnit is the unit of exposure values: effective area integrated
// over observing time.
const ExposureUnit = "m2 s"

// NewExposure creates an exposure spectrum on a true-energy axis.
func NewExposure(axisTrue *spectrum.EnergyAxis, data []float64) (*spectrum.BinnedSpectrum, error) {
	return spectrum.FromData(axisTrue, data, ExposureUnit)
}

// NewEmptyExposure creates a zero exposure on a true-energy axis.
func NewEmptyExposure(axisTrue *spectrum.EnergyAxis) *spectrum.BinnedSpectrum {
	return spectrum.New(axisTrue, ExposureUnit)
}
