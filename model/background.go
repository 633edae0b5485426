package model

import (
	"errors"

	"github.com/cwbudde/algo-gamma/spectrum"
)

// ErrNoTemplate is returned when a background model is constructed without a
// template spectrum.
var ErrNoTemplate = errors.New("model: background model needs a template spectrum")

// BackgroundModel predicts background counts in reconstructed-energy bins as
// a fixed template spectrum scaled by a fittable norm. Each dataset owns its
// own instance; cross-dataset sharing is always by value copy.
type BackgroundModel struct {
	template *spectrum.BinnedSpectrum
	norm     *Parameter
}

// NewBackgroundModel creates a background model with norm 1 around a copy of
// the template.
func NewBackgroundModel(template *spectrum.BinnedSpectrum) (*BackgroundModel, error) {
	if template == nil {
		return nil, ErrNoTemplate
	}
	return &BackgroundModel{
		template: template.Copy(),
		norm:     &Parameter{Name: "norm", Value: 1},
	}, nil
}

// Axis returns the reconstructed-energy axis of the template.
func (b *BackgroundModel) Axis() *spectrum.EnergyAxis { return b.template.Axis() }

// Norm returns the live norm parameter.
func (b *BackgroundModel) Norm() *Parameter { return b.norm }

// Parameters returns the norm parameter.
func (b *BackgroundModel) Parameters() []*Parameter { return []*Parameter{b.norm} }

// Evaluate returns the predicted background counts, norm * template.
func (b *BackgroundModel) Evaluate() *spectrum.BinnedSpectrum {
	return b.template.Scale(b.norm.Value)
}

// Copy returns an independent copy of the model.
func (b *BackgroundModel) Copy() *BackgroundModel {
	p := *b.norm
	return &BackgroundModel{template: b.template.Copy(), norm: &p}
}

// Stack folds other into b in place under the mask-gated sum rule: the
// evaluated templates are gated by their own safe masks and summed, and the
// norm is reset to 1 so the combined template carries the full prediction.
func (b *BackgroundModel) Stack(other *BackgroundModel, maskSelf, maskOther *spectrum.Mask) error {
	evaluated := b.Evaluate()
	if maskSelf != nil {
		if err := evaluated.ApplyMask(maskSelf); err != nil {
			return err
		}
	}
	if err := evaluated.Stack(other.Evaluate(), maskOther); err != nil {
		return err
	}
	b.template = evaluated
	b.norm = &Parameter{Name: "norm", Value: 1}
	return nil
}

// Resample returns a copy of the model on a coarser axis, with the evaluated
// template summed under the weights mask.
func (b *BackgroundModel) Resample(coarse *spectrum.EnergyAxis, weights *spectrum.Mask) (*BackgroundModel, error) {
	resampled, err := b.Evaluate().Resample(coarse, weights)
	if err != nil {
		return nil, err
	}
	return NewBackgroundModel(resampled)
}

// Slice returns a copy of the model restricted to bins [i0, i1).
func (b *BackgroundModel) Slice(i0, i1 int) (*BackgroundModel, error) {
	sliced, err := b.Evaluate().Slice(i0, i1)
	if err != nil {
		return nil, err
	}
	return NewBackgroundModel(sliced)
}
