package model

import "math"

// Parameter is a named, mutable model parameter. Frozen parameters are
// excluded from the free-parameter count reported to fitting engines.
type Parameter struct {
	Name   string
	Value  float64
	Frozen bool
}

// SpectralModel is a pure function from energy to differential flux plus an
// iterable parameter set. The core only evaluates the flux and reads
// parameter counts for reporting; parameter management itself is external.
type SpectralModel interface {
	// Evaluate returns the differential flux at energy (TeV) in
	// 1 / (TeV m^2 s).
	Evaluate(energy float64) float64
	// Parameters returns the model's parameters. The slice and the
	// parameters themselves are live.
	Parameters() []*Parameter
}

// Models is an ordered collection of spectral models. Predicted counts of
// independent models add.
type Models []SpectralModel

// Parameters returns all parameters of all models in order.
func (m Models) Parameters() []*Parameter {
	var out []*Parameter
	for _, mod := range m {
		out = append(out, mod.Parameters()...)
	}
	return out
}

// FreeParameters returns the non-frozen parameters of all models.
func (m Models) FreeParameters() []*Parameter {
	var out []*Parameter
	for _, p := range m.Parameters() {
		if !p.Frozen {
			out = append(out, p)
		}
	}
	return out
}

// PowerLaw is the reference spectral model
//
//	phi(E) = amplitude * (E / reference)^(-index)
type PowerLaw struct {
	amplitude *Parameter
	index     *Parameter
	reference *Parameter
}

// NewPowerLaw creates a power law with the given amplitude
// (1 / (TeV m^2 s)), spectral index and reference energy (TeV). The
// reference energy is frozen.
func NewPowerLaw(amplitude, index, reference float64) *PowerLaw {
	return &PowerLaw{
		amplitude: &Parameter{Name: "amplitude", Value: amplitude},
		index:     &Parameter{Name: "index", Value: index},
		reference: &Parameter{Name: "reference", Value: reference, Frozen: true},
	}
}

// Evaluate returns the differential flux at energy.
func (p *PowerLaw) Evaluate(energy float64) float64 {
	return p.amplitude.Value * math.Pow(energy/p.reference.Value, -p.index.Value)
}

// Parameters returns amplitude, index and reference.
func (p *PowerLaw) Parameters() []*Parameter {
	return []*Parameter{p.amplitude, p.index, p.reference}
}

// Constant is a flat spectral model, phi(E) = norm.
type Constant struct {
	norm *Parameter
}

// NewConstant creates a constant model with the given differential flux.
func NewConstant(norm float64) *Constant {
	return &Constant{norm: &Parameter{Name: "norm", Value: norm}}
}

// Evaluate returns the constant flux.
func (c *Constant) Evaluate(float64) float64 { return c.norm.Value }

// Parameters returns the norm parameter.
func (c *Constant) Parameters() []*Parameter { return []*Parameter{c.norm} }
