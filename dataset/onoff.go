package dataset

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/cwbudde/algo-gamma/gti"
	"github.com/cwbudde/algo-gamma/irf"
	"github.com/cwbudde/algo-gamma/model"
	"github.com/cwbudde/algo-gamma/spectrum"
	"github.com/cwbudde/algo-gamma/stats"
)

var (
	// ErrNotStackable is returned when an on/off dataset lacks the
	// off-region components stacking needs.
	ErrNotStackable = errors.New("dataset: cannot stack incomplete on/off dataset")
	// ErrBackgroundOwned is returned when an on/off dataset is constructed
	// with an explicit background model.
	ErrBackgroundOwned = errors.New("dataset: on/off dataset profiles its background from counts_off")
)

// OnOffConfig collects the components of a SpectrumDatasetOnOff. Acceptances
// are relative background-collection efficiencies on the reco axis; use
// spectrum.Full for a scalar acceptance broadcast to every bin.
type OnOffConfig struct {
	Config
	CountsOff     *spectrum.BinnedSpectrum
	Acceptance    *spectrum.BinnedSpectrum
	AcceptanceOff *spectrum.BinnedSpectrum
}

// SpectrumDatasetOnOff is a spectrum dataset fit with the WStat statistic:
// the background is estimated from an off-region counts measurement scaled
// by the on/off acceptance ratio and profiled out of the likelihood.
type SpectrumDatasetOnOff struct {
	SpectrumDataset
	countsOff     *spectrum.BinnedSpectrum
	acceptance    *spectrum.BinnedSpectrum
	acceptanceOff *spectrum.BinnedSpectrum
}

// NewOnOff creates a SpectrumDatasetOnOff. The embedded background model
// slot must be empty: the on/off background comes from the off counts.
func NewOnOff(cfg OnOffConfig) (*SpectrumDatasetOnOff, error) {
	if cfg.Background != nil {
		return nil, ErrBackgroundOwned
	}
	d := &SpectrumDatasetOnOff{
		countsOff:     cfg.CountsOff,
		acceptance:    cfg.Acceptance,
		acceptanceOff: cfg.AcceptanceOff,
	}
	d.SpectrumDataset = SpectrumDataset{
		name:     cfg.Name,
		counts:   cfg.Counts,
		exposure: cfg.Exposure,
		livetime: cfg.Livetime,
		edisp:    cfg.EDisp,
		maskSafe: cfg.MaskSafe,
		maskFit:  cfg.MaskFit,
		gtis:     cfg.GTI,
		meta:     cfg.Meta,
		models:   append(model.Models(nil), cfg.Models...),
		evals:    map[int]*Evaluator{},
	}
	if d.name == "" {
		d.name = makeName()
	}
	axis, err := d.recoAxisOnOff()
	if err != nil {
		return nil, err
	}
	for name, a := range map[string]*spectrum.EnergyAxis{
		"counts":         axisOf(d.counts),
		"counts_off":     axisOf(d.countsOff),
		"acceptance":     axisOf(d.acceptance),
		"acceptance_off": axisOf(d.acceptanceOff),
		"mask_safe":      maskAxisOf(d.maskSafe),
		"mask_fit":       maskAxisOf(d.maskFit),
	} {
		if a != nil && !a.Equal(axis) {
			return nil, fmt.Errorf("dataset: %s is not on the analysis axis: %w", name, spectrum.ErrAxisMismatch)
		}
	}
	if d.edisp != nil {
		if !d.edisp.AxisReco().Equal(axis) {
			return nil, fmt.Errorf("dataset: edisp reco axis mismatch: %w", spectrum.ErrAxisMismatch)
		}
		if d.exposure != nil && !d.exposure.Axis().Equal(d.edisp.AxisTrue()) {
			return nil, fmt.Errorf("dataset: exposure is not on the edisp true axis: %w", spectrum.ErrAxisMismatch)
		}
	}
	return d, nil
}

// recoAxisOnOff infers the analysis axis from any of the on/off components.
func (d *SpectrumDatasetOnOff) recoAxisOnOff() (*spectrum.EnergyAxis, error) {
	for _, s := range []*spectrum.BinnedSpectrum{d.counts, d.countsOff, d.acceptance, d.acceptanceOff} {
		if s != nil {
			return s.Axis(), nil
		}
	}
	return nil, errors.New("dataset: either counts, counts_off, acceptance or acceptance_off must be defined")
}

// StatType returns "wstat".
func (d *SpectrumDatasetOnOff) StatType() string { return "wstat" }

// CountsOff returns the off-region counts spectrum, or nil.
func (d *SpectrumDatasetOnOff) CountsOff() *spectrum.BinnedSpectrum { return d.countsOff }

// Acceptance returns the on-region relative background efficiency, or nil.
func (d *SpectrumDatasetOnOff) Acceptance() *spectrum.BinnedSpectrum { return d.acceptance }

// AcceptanceOff returns the off-region relative background efficiency, or
// nil.
func (d *SpectrumDatasetOnOff) AcceptanceOff() *spectrum.BinnedSpectrum { return d.acceptanceOff }

// Alpha returns the per-bin acceptance ratio acceptance / acceptance_off,
// with 0 substituted where acceptance_off is 0.
func (d *SpectrumDatasetOnOff) Alpha() (*spectrum.BinnedSpectrum, error) {
	if d.acceptance == nil || d.acceptanceOff == nil {
		return nil, errors.New("dataset: alpha needs acceptance and acceptance_off")
	}
	return d.acceptance.Div(d.acceptanceOff)
}

// CountsOffNormalised returns alpha * counts_off, the background estimate
// scaled into the on region.
func (d *SpectrumDatasetOnOff) CountsOffNormalised() (*spectrum.BinnedSpectrum, error) {
	if d.countsOff == nil {
		return nil, errors.New("dataset: counts_off normalisation needs counts_off")
	}
	alpha, err := d.Alpha()
	if err != nil {
		return nil, err
	}
	return alpha.Mul(d.countsOff)
}

// Excess returns counts - alpha * counts_off.
func (d *SpectrumDatasetOnOff) Excess() (*spectrum.BinnedSpectrum, error) {
	normalised, err := d.CountsOffNormalised()
	if err != nil {
		return nil, err
	}
	return d.counts.Sub(normalised)
}

// Background returns the profiled background expectation in the on region,
// alpha * mu_bkg, where mu_bkg maximises the joint Poisson likelihood at the
// current predicted signal. For alpha = 0 the background is exactly 0.
func (d *SpectrumDatasetOnOff) Background() (*spectrum.BinnedSpectrum, error) {
	alpha, err := d.Alpha()
	if err != nil {
		return nil, err
	}
	muSig, err := d.NPredSig()
	if err != nil {
		return nil, err
	}
	bkg := stats.WStatBackground(d.counts.Data(), d.countsOff.Data(), alpha.Data(), muSig.Data())
	return spectrum.FromData(d.counts.Axis(), bkg, "")
}

// NPred returns predicted signal plus profiled background.
func (d *SpectrumDatasetOnOff) NPred() (*spectrum.BinnedSpectrum, error) {
	npred, err := d.NPredSig()
	if err != nil {
		return nil, err
	}
	bkg, err := d.Background()
	if err != nil {
		return nil, err
	}
	return npred.Add(bkg)
}

// StatArray returns the per-bin WStat statistic for the current models.
// NaN from degenerate bins is replaced with 0.
func (d *SpectrumDatasetOnOff) StatArray() ([]float64, error) {
	alpha, err := d.Alpha()
	if err != nil {
		return nil, err
	}
	muSig, err := d.NPredSig()
	if err != nil {
		return nil, err
	}
	stat := stats.WStat(d.counts.Data(), d.countsOff.Data(), alpha.Data(), muSig.Data())
	for i, v := range stat {
		if math.IsNaN(v) {
			stat[i] = 0
		}
	}
	return stat, nil
}

// StatSum returns the WStat statistic summed over the evaluation mask.
func (d *SpectrumDatasetOnOff) StatSum() (float64, error) {
	stat, err := d.StatArray()
	if err != nil {
		return 0, err
	}
	return sumWithMask(stat, d.Mask()), nil
}

// Residuals returns per-bin residuals against the on/off total prediction.
func (d *SpectrumDatasetOnOff) Residuals(method string) (*spectrum.BinnedSpectrum, error) {
	npred, err := d.NPred()
	if err != nil {
		return nil, err
	}
	return computeResiduals(d.counts, npred, method)
}

// IsStackable reports whether the dataset carries the off-region components
// stacking requires: counts_off, acceptance and acceptance_off.
func (d *SpectrumDatasetOnOff) IsStackable() bool {
	return d.countsOff != nil && d.acceptance != nil && d.acceptanceOff != nil
}

// Fake replaces counts and off counts with Poisson samples: counts from
// predicted signal plus the given background expectation, off counts from
// background / alpha.
func (d *SpectrumDatasetOnOff) Fake(background *model.BackgroundModel, src rand.Source) error {
	npredSig, err := d.NPredSig()
	if err != nil {
		return err
	}
	bkg := background.Evaluate()

	counts := samplePoisson(npredSig, src)
	if err := counts.Stack(samplePoisson(bkg, src), nil); err != nil {
		return err
	}

	alpha, err := d.Alpha()
	if err != nil {
		return err
	}
	bkgOff, err := bkg.Div(alpha)
	if err != nil {
		return err
	}

	d.counts = counts
	d.countsOff = samplePoisson(bkgOff, src)
	return nil
}

// Copy returns a deep copy under a new name.
func (d *SpectrumDatasetOnOff) Copy(name string) *SpectrumDatasetOnOff {
	out := &SpectrumDatasetOnOff{SpectrumDataset: *d.SpectrumDataset.Copy(name)}
	if d.countsOff != nil {
		out.countsOff = d.countsOff.Copy()
	}
	if d.acceptance != nil {
		out.acceptance = d.acceptance.Copy()
	}
	if d.acceptanceOff != nil {
		out.acceptanceOff = d.acceptanceOff.Copy()
	}
	return out
}

// Stack merges other into d in place. On top of the shared stacking
// template, the off-region acceptances are re-derived: the stacked on
// acceptance is 1 in every bin and the off acceptance becomes the ratio of
// mask-gated off counts to mask-gated alpha-weighted off counts. Bins with
// zero stacked off counts fall back to 1 / averageAlpha, with averageAlpha
// the global ratio of the two accumulator sums.
//
// Both operands must be stackable on/off datasets.
func (d *SpectrumDatasetOnOff) Stack(other Dataset) error {
	o, ok := other.(*SpectrumDatasetOnOff)
	if !ok {
		return fmt.Errorf("%w: %T and %T", ErrTypeMismatch, d, other)
	}
	if !d.IsStackable() || !o.IsStackable() {
		return ErrNotStackable
	}

	axis := d.counts.Axis()
	maskSelf := d.MaskSafe()
	maskOther := o.MaskSafe()

	totalOff := spectrum.New(axis, "")
	totalAlpha := spectrum.New(axis, "")

	if err := totalOff.Stack(d.countsOff, maskSelf); err != nil {
		return err
	}
	if err := totalOff.Stack(o.countsOff, maskOther); err != nil {
		return err
	}

	alphaSelf, err := d.Alpha()
	if err != nil {
		return err
	}
	weightedSelf, err := alphaSelf.Mul(d.countsOff)
	if err != nil {
		return err
	}
	if err := totalAlpha.Stack(weightedSelf, maskSelf); err != nil {
		return err
	}

	alphaOther, err := o.Alpha()
	if err != nil {
		return err
	}
	weightedOther, err := alphaOther.Mul(o.countsOff)
	if err != nil {
		return err
	}
	if err := totalAlpha.Stack(weightedOther, maskOther); err != nil {
		return err
	}

	acceptanceOff, err := totalOff.Div(totalAlpha)
	if err != nil {
		return err
	}
	// Bins with zero stacked off counts fall back to the global average
	// alpha so the acceptance ratio never divides by zero downstream.
	fallback := 1.0
	if sumOff := totalOff.Sum(); sumOff > 0 {
		if averageAlpha := totalAlpha.Sum() / sumOff; averageAlpha > 0 {
			fallback = 1 / averageAlpha
		}
	}
	for i, v := range totalOff.Data() {
		if v == 0 {
			acceptanceOff.Data()[i] = fallback
		}
	}

	d.acceptance = spectrum.Full(axis, 1, "")
	d.acceptanceOff = acceptanceOff

	if err := d.countsOff.ApplyMask(maskSelf); err != nil {
		return err
	}
	if err := d.countsOff.Stack(o.countsOff, maskOther); err != nil {
		return err
	}

	return d.stackCommon(&o.SpectrumDataset)
}

// MergedOnOff returns a new on/off dataset combining a and b without
// mutating either.
func MergedOnOff(a, b *SpectrumDatasetOnOff, name string) (*SpectrumDatasetOnOff, error) {
	out := a.Copy(name)
	if err := out.Stack(b); err != nil {
		return nil, err
	}
	return out, nil
}

// FromSpectrumDataset builds an on/off dataset around an existing dataset's
// counts, response and masks. When countsOff is nil and the source carries a
// background model, the off counts are derived as background / alpha.
func FromSpectrumDataset(ds *SpectrumDataset, acceptance, acceptanceOff, countsOff *spectrum.BinnedSpectrum) (*SpectrumDatasetOnOff, error) {
	if countsOff == nil && ds.background != nil {
		alpha, err := acceptance.Div(acceptanceOff)
		if err != nil {
			return nil, err
		}
		countsOff, err = ds.background.Evaluate().Div(alpha)
		if err != nil {
			return nil, err
		}
	}
	return NewOnOff(OnOffConfig{
		Config: Config{
			Name:     ds.name,
			Counts:   ds.counts,
			Exposure: ds.exposure,
			Livetime: ds.livetime,
			EDisp:    ds.edisp,
			MaskSafe: ds.maskSafe,
			MaskFit:  ds.maskFit,
			Models:   ds.models,
			GTI:      ds.gtis,
			Meta:     ds.meta,
		},
		CountsOff:     countsOff,
		Acceptance:    acceptance,
		AcceptanceOff: acceptanceOff,
	})
}

// ToSpectrumDataset converts the on/off dataset to a Cash-mode dataset whose
// background model template is alpha * counts_off.
func (d *SpectrumDatasetOnOff) ToSpectrumDataset(name string) (*SpectrumDataset, error) {
	normalised, err := d.CountsOffNormalised()
	if err != nil {
		return nil, err
	}
	background, err := model.NewBackgroundModel(normalised)
	if err != nil {
		return nil, err
	}
	return New(Config{
		Name:       name,
		Counts:     d.counts,
		Exposure:   d.exposure,
		Livetime:   d.livetime,
		EDisp:      d.edisp,
		MaskSafe:   d.maskSafe,
		MaskFit:    d.maskFit,
		Background: background,
		Models:     d.models,
		GTI:        d.gtis,
		Meta:       d.meta,
	})
}

// CreateOnOff returns an empty on/off dataset with the correct geometry:
// zero counts and off counts, unit acceptances, a diagonal dispersion kernel
// and an all-false safe mask.
func CreateOnOff(eReco, eTrue *spectrum.EnergyAxis, name string) (*SpectrumDatasetOnOff, error) {
	if eTrue == nil {
		eTrue = eReco
	}
	edisp, err := irf.NewDiagonal(eTrue, eReco)
	if err != nil {
		return nil, err
	}
	return NewOnOff(OnOffConfig{
		Config: Config{
			Name:     name,
			Counts:   spectrum.New(eReco, ""),
			Exposure: irf.NewEmptyExposure(eTrue),
			EDisp:    edisp,
			MaskSafe: spectrum.NewMask(eReco, false),
			GTI:      gti.Empty(),
		},
		CountsOff:     spectrum.New(eReco, ""),
		Acceptance:    spectrum.Full(eReco, 1, ""),
		AcceptanceOff: spectrum.Full(eReco, 1, ""),
	})
}
