package dataset

import (
	"github.com/cwbudde/algo-gamma/model"
	"github.com/cwbudde/algo-gamma/spectrum"
)

// derivedConfig seeds the config of a resampled or sliced dataset with
// copies of the components the reco-energy rebinning leaves untouched.
// Sharing them with the source would let a later in-place Stack on the
// derived dataset corrupt the original.
func (d *SpectrumDataset) derivedConfig(name string) Config {
	cfg := Config{
		Name:     name,
		Livetime: d.livetime,
		Models:   append(model.Models(nil), d.models...),
	}
	if d.exposure != nil {
		cfg.Exposure = d.exposure.Copy()
	}
	if d.gtis != nil {
		cfg.GTI = d.gtis.Copy()
	}
	if d.meta != nil {
		cfg.Meta = d.meta.Copy()
	}
	return cfg
}

// ResampleEnergyAxis returns a copy of the dataset rebinned onto a coarser
// reconstructed-energy axis whose edges are a subset of the current edges.
// Counts and the background template are summed over the safe mask, the
// dispersion kernel's reco columns are merged, and the safe mask groups with
// OR, so a coarse bin is safe when any of its fine bins was. The true-energy
// side (exposure, models) is untouched.
func (d *SpectrumDataset) ResampleEnergyAxis(coarse *spectrum.EnergyAxis, name string) (*SpectrumDataset, error) {
	cfg, err := d.resampledConfig(coarse, name)
	if err != nil {
		return nil, err
	}
	return New(cfg)
}

func (d *SpectrumDataset) resampledConfig(coarse *spectrum.EnergyAxis, name string) (Config, error) {
	cfg := d.derivedConfig(name)
	weights := d.maskSafe

	var err error
	if d.counts != nil {
		if cfg.Counts, err = d.counts.Resample(coarse, weights); err != nil {
			return Config{}, err
		}
	}
	if d.background != nil {
		if cfg.Background, err = d.background.Resample(coarse, weights); err != nil {
			return Config{}, err
		}
	}
	if d.edisp != nil {
		if cfg.EDisp, err = d.edisp.ResampleReco(coarse, weights); err != nil {
			return Config{}, err
		}
	}
	if d.maskSafe != nil {
		if cfg.MaskSafe, err = d.maskSafe.Resample(coarse); err != nil {
			return Config{}, err
		}
	}
	if d.maskFit != nil {
		if cfg.MaskFit, err = d.maskFit.Resample(coarse); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

// ToImage collapses the dataset onto a single reconstructed-energy bin.
func (d *SpectrumDataset) ToImage(name string) (*SpectrumDataset, error) {
	axis, err := d.recoAxis()
	if err != nil {
		return nil, err
	}
	return d.ResampleEnergyAxis(axis.Squash(), name)
}

// SliceByIdx returns a copy of the dataset restricted to reconstructed-energy
// bins [i0, i1). Unlike resampling, slicing drops the bins outside the range
// instead of merging them.
func (d *SpectrumDataset) SliceByIdx(i0, i1 int, name string) (*SpectrumDataset, error) {
	cfg, err := d.slicedConfig(i0, i1, name)
	if err != nil {
		return nil, err
	}
	return New(cfg)
}

func (d *SpectrumDataset) slicedConfig(i0, i1 int, name string) (Config, error) {
	cfg := d.derivedConfig(name)

	var err error
	if d.counts != nil {
		if cfg.Counts, err = d.counts.Slice(i0, i1); err != nil {
			return Config{}, err
		}
	}
	if d.background != nil {
		if cfg.Background, err = d.background.Slice(i0, i1); err != nil {
			return Config{}, err
		}
	}
	if d.edisp != nil {
		if cfg.EDisp, err = d.edisp.SliceReco(i0, i1); err != nil {
			return Config{}, err
		}
	}
	if d.maskSafe != nil {
		if cfg.MaskSafe, err = d.maskSafe.Slice(i0, i1); err != nil {
			return Config{}, err
		}
	}
	if d.maskFit != nil {
		if cfg.MaskFit, err = d.maskFit.Slice(i0, i1); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

// ResampleEnergyAxis returns a copy of the on/off dataset rebinned onto a
// coarser reconstructed-energy axis. Off counts are summed like counts; the
// stacked-style acceptance bookkeeping keeps alpha * counts_off conserved:
// the resampled off acceptance is acceptance * counts_off / background on the
// coarse axis, with the background being resampled alpha * counts_off.
func (d *SpectrumDatasetOnOff) ResampleEnergyAxis(coarse *spectrum.EnergyAxis, name string) (*SpectrumDatasetOnOff, error) {
	cfg, err := d.resampledConfig(coarse, name)
	if err != nil {
		return nil, err
	}
	out := OnOffConfig{Config: cfg}
	weights := d.maskSafe

	if d.countsOff != nil {
		if out.CountsOff, err = d.countsOff.Resample(coarse, weights); err != nil {
			return nil, err
		}
	}
	if d.acceptance != nil {
		if out.Acceptance, err = d.acceptance.Resample(coarse, weights); err != nil {
			return nil, err
		}
		normalised, err := d.CountsOffNormalised()
		if err != nil {
			return nil, err
		}
		background, err := normalised.Resample(coarse, weights)
		if err != nil {
			return nil, err
		}
		scaled, err := out.Acceptance.Mul(out.CountsOff)
		if err != nil {
			return nil, err
		}
		if out.AcceptanceOff, err = scaled.Div(background); err != nil {
			return nil, err
		}
	}
	return NewOnOff(out)
}

// ToImage collapses the on/off dataset onto a single reconstructed-energy
// bin.
func (d *SpectrumDatasetOnOff) ToImage(name string) (*SpectrumDatasetOnOff, error) {
	axis, err := d.recoAxisOnOff()
	if err != nil {
		return nil, err
	}
	return d.ResampleEnergyAxis(axis.Squash(), name)
}

// SliceByIdx returns a copy of the on/off dataset restricted to
// reconstructed-energy bins [i0, i1).
func (d *SpectrumDatasetOnOff) SliceByIdx(i0, i1 int, name string) (*SpectrumDatasetOnOff, error) {
	cfg, err := d.slicedConfig(i0, i1, name)
	if err != nil {
		return nil, err
	}
	out := OnOffConfig{Config: cfg}

	if d.countsOff != nil {
		if out.CountsOff, err = d.countsOff.Slice(i0, i1); err != nil {
			return nil, err
		}
	}
	if d.acceptance != nil {
		if out.Acceptance, err = d.acceptance.Slice(i0, i1); err != nil {
			return nil, err
		}
	}
	if d.acceptanceOff != nil {
		if out.AcceptanceOff, err = d.acceptanceOff.Slice(i0, i1); err != nil {
			return nil, err
		}
	}
	return NewOnOff(out)
}

var (
	_ Dataset = (*SpectrumDataset)(nil)
	_ Dataset = (*SpectrumDatasetOnOff)(nil)
)
