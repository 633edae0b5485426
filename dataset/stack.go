package dataset

import "fmt"

// Stack merges other into d in place. Bins outside either dataset's safe
// mask contribute nothing: counts outside the safe range are lost, by
// construction. The stacked safe mask is the OR of both masks.
//
// Stack must not be called concurrently on the same receiver; other is only
// read.
func (d *SpectrumDataset) Stack(other Dataset) error {
	o, ok := other.(*SpectrumDataset)
	if !ok {
		return fmt.Errorf("%w: %T and %T", ErrTypeMismatch, d, other)
	}
	return d.stackCommon(o)
}

// stackCommon is the stacking template shared by both dataset kinds: counts,
// background model, exposure and livetime, dispersion kernel, safe mask,
// good-time intervals and metadata. On/off-specific acceptance handling
// happens in SpectrumDatasetOnOff.Stack before this runs.
func (d *SpectrumDataset) stackCommon(other *SpectrumDataset) error {
	maskSelf := d.MaskSafe()
	maskOther := other.MaskSafe()

	if d.counts != nil && other.counts != nil {
		if err := d.counts.ApplyMask(maskSelf); err != nil {
			return err
		}
		if err := d.counts.Stack(other.counts, maskOther); err != nil {
			return err
		}
	}

	if d.background != nil && other.background != nil {
		if err := d.background.Stack(other.background, maskSelf, maskOther); err != nil {
			return err
		}
	}

	// The dispersion average is weighted by each operand's own exposure, so
	// it runs before the exposures are summed.
	if d.edisp != nil && other.edisp != nil && d.exposure != nil && other.exposure != nil {
		if err := d.edisp.Stack(other.edisp, d.exposure, other.exposure, maskSelf, maskOther); err != nil {
			return err
		}
	}

	if d.exposure != nil && other.exposure != nil {
		if err := d.exposure.Stack(other.exposure, nil); err != nil {
			return err
		}
		d.livetime += other.livetime
	}

	if d.maskSafe != nil && other.maskSafe != nil {
		merged, err := d.maskSafe.Or(other.maskSafe)
		if err != nil {
			return err
		}
		d.maskSafe = merged
	}

	if d.gtis != nil && other.gtis != nil {
		d.gtis.Stack(other.gtis)
		d.gtis = d.gtis.Union()
	}

	if d.meta != nil && other.meta != nil {
		d.meta.Join(other.meta)
	} else if other.meta != nil {
		d.meta = other.meta.Copy()
	}

	d.evals = map[int]*Evaluator{}
	return nil
}

// Merged returns a new dataset combining a and b without mutating either.
// Both must be plain SpectrumDatasets.
func Merged(a, b *SpectrumDataset, name string) (*SpectrumDataset, error) {
	out := a.Copy(name)
	if err := out.Stack(b); err != nil {
		return nil, err
	}
	return out, nil
}
