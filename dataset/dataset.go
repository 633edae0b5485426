package dataset

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/cwbudde/algo-gamma/gti"
	"github.com/cwbudde/algo-gamma/irf"
	"github.com/cwbudde/algo-gamma/model"
	"github.com/cwbudde/algo-gamma/spectrum"
	"github.com/cwbudde/algo-gamma/stats"
)

var (
	// ErrTypeMismatch is returned when two datasets of different kinds
	// (and hence different statistics) are stacked.
	ErrTypeMismatch = errors.New("dataset: incompatible dataset types for stacking")
	// ErrNoGeometry is returned when a dataset is constructed without any
	// component it could infer the analysis axis from.
	ErrNoGeometry = errors.New("dataset: either counts or a background model must be defined")
	// ErrNoBackground is returned by operations that need a background
	// estimate on a dataset that has none.
	ErrNoBackground = errors.New("dataset: no background model defined")
)

// Dataset is the uniform evaluate / statistic / stack contract shared by
// Cash-mode and on/off datasets. StatSum is the scalar an external optimizer
// minimises.
type Dataset interface {
	Name() string
	StatType() string
	NPred() (*spectrum.BinnedSpectrum, error)
	StatArray() ([]float64, error)
	StatSum() (float64, error)
	Stack(other Dataset) error
}

// makeName returns a short generated dataset handle.
func makeName() string {
	return uuid.NewString()[:8]
}

// Config collects the components of a SpectrumDataset. Counts, masks and the
// background template live on the reconstructed-energy axis; exposure and
// the dispersion kernel share the true-energy axis.
type Config struct {
	Name       string
	Counts     *spectrum.BinnedSpectrum
	Exposure   *spectrum.BinnedSpectrum
	Livetime   float64 // seconds
	EDisp      *irf.EDispKernel
	MaskSafe   *spectrum.Mask
	MaskFit    *spectrum.Mask
	Background *model.BackgroundModel
	Models     model.Models
	GTI        *gti.GTI
	Meta       *MetaTable
}

// SpectrumDataset is a binned spectrum dataset fit with the Cash statistic:
// observed counts against forward-folded signal models plus an owned
// background model.
type SpectrumDataset struct {
	name       string
	counts     *spectrum.BinnedSpectrum
	exposure   *spectrum.BinnedSpectrum
	livetime   float64
	edisp      *irf.EDispKernel
	maskSafe   *spectrum.Mask
	maskFit    *spectrum.Mask
	background *model.BackgroundModel
	gtis       *gti.GTI
	meta       *MetaTable

	models model.Models
	evals  map[int]*Evaluator
}

// New creates a SpectrumDataset and validates axis compatibility of its
// components. The dataset takes ownership of the passed spectra and masks;
// the background model is copied so it is never shared between datasets.
// An empty name is replaced by a generated handle.
func New(cfg Config) (*SpectrumDataset, error) {
	d := &SpectrumDataset{
		name:     cfg.Name,
		counts:   cfg.Counts,
		exposure: cfg.Exposure,
		livetime: cfg.Livetime,
		edisp:    cfg.EDisp,
		maskSafe: cfg.MaskSafe,
		maskFit:  cfg.MaskFit,
		gtis:     cfg.GTI,
		meta:     cfg.Meta,
		evals:    map[int]*Evaluator{},
	}
	if cfg.Background != nil {
		d.background = cfg.Background.Copy()
	}
	if d.name == "" {
		d.name = makeName()
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	d.models = append(model.Models(nil), cfg.Models...)
	return d, nil
}

// recoAxis returns the reconstructed-energy analysis axis.
func (d *SpectrumDataset) recoAxis() (*spectrum.EnergyAxis, error) {
	switch {
	case d.counts != nil:
		return d.counts.Axis(), nil
	case d.background != nil:
		return d.background.Axis(), nil
	default:
		return nil, ErrNoGeometry
	}
}

func (d *SpectrumDataset) validate() error {
	axis, err := d.recoAxis()
	if err != nil {
		return err
	}
	for name, a := range map[string]*spectrum.EnergyAxis{
		"counts":     axisOf(d.counts),
		"mask_safe":  maskAxisOf(d.maskSafe),
		"mask_fit":   maskAxisOf(d.maskFit),
		"background": backgroundAxisOf(d.background),
	} {
		if a != nil && !a.Equal(axis) {
			return fmt.Errorf("dataset: %s is not on the analysis axis: %w", name, spectrum.ErrAxisMismatch)
		}
	}
	if d.edisp != nil {
		if !d.edisp.AxisReco().Equal(axis) {
			return fmt.Errorf("dataset: edisp reco axis mismatch: %w", spectrum.ErrAxisMismatch)
		}
		if d.exposure != nil && !d.exposure.Axis().Equal(d.edisp.AxisTrue()) {
			return fmt.Errorf("dataset: exposure is not on the edisp true axis: %w", spectrum.ErrAxisMismatch)
		}
	}
	return nil
}

func axisOf(s *spectrum.BinnedSpectrum) *spectrum.EnergyAxis {
	if s == nil {
		return nil
	}
	return s.Axis()
}

func maskAxisOf(m *spectrum.Mask) *spectrum.EnergyAxis {
	if m == nil {
		return nil
	}
	return m.Axis()
}

func backgroundAxisOf(b *model.BackgroundModel) *spectrum.EnergyAxis {
	if b == nil {
		return nil
	}
	return b.Axis()
}

// Name returns the dataset's unique handle.
func (d *SpectrumDataset) Name() string { return d.name }

// StatType returns "cash".
func (d *SpectrumDataset) StatType() string { return "cash" }

// Counts returns the observed counts spectrum.
func (d *SpectrumDataset) Counts() *spectrum.BinnedSpectrum { return d.counts }

// Exposure returns the exposure over the true-energy axis.
func (d *SpectrumDataset) Exposure() *spectrum.BinnedSpectrum { return d.exposure }

// Livetime returns the total live observing time in seconds.
func (d *SpectrumDataset) Livetime() float64 { return d.livetime }

// EDisp returns the energy-dispersion kernel, or nil.
func (d *SpectrumDataset) EDisp() *irf.EDispKernel { return d.edisp }

// Background returns the owned background model, or nil.
func (d *SpectrumDataset) Background() *model.BackgroundModel { return d.background }

// GTI returns the good-time intervals, or nil.
func (d *SpectrumDataset) GTI() *gti.GTI { return d.gtis }

// Meta returns the per-observation metadata table, or nil.
func (d *SpectrumDataset) Meta() *MetaTable { return d.meta }

// MaskSafe returns the safe-energy mask. A dataset without an explicit safe
// mask includes every bin.
func (d *SpectrumDataset) MaskSafe() *spectrum.Mask {
	if d.maskSafe != nil {
		return d.maskSafe
	}
	axis, err := d.recoAxis()
	if err != nil {
		return nil
	}
	return spectrum.NewMask(axis, true)
}

// SetMaskSafe replaces the safe-energy mask.
func (d *SpectrumDataset) SetMaskSafe(m *spectrum.Mask) { d.maskSafe = m }

// MaskFit returns the optional user fit mask, or nil.
func (d *SpectrumDataset) MaskFit() *spectrum.Mask { return d.maskFit }

// SetMaskFit replaces the fit mask.
func (d *SpectrumDataset) SetMaskFit(m *spectrum.Mask) { d.maskFit = m }

// Mask returns the evaluation mask: safe mask AND fit mask.
func (d *SpectrumDataset) Mask() *spectrum.Mask {
	safe := d.MaskSafe()
	if d.maskFit == nil || safe == nil {
		return safe
	}
	both, err := safe.And(d.maskFit)
	if err != nil {
		return safe
	}
	return both
}

// Models returns the signal models attached to the dataset.
func (d *SpectrumDataset) Models() model.Models { return d.models }

// SetModels replaces the signal model set. All cached evaluators are
// invalidated; they are rebuilt lazily on the next prediction.
func (d *SpectrumDataset) SetModels(models model.Models) {
	d.models = append(model.Models(nil), models...)
	d.evals = map[int]*Evaluator{}
}

// evaluator returns the cached forward-folding evaluator for model index i.
func (d *SpectrumDataset) evaluator(i int) (*Evaluator, error) {
	if ev, ok := d.evals[i]; ok {
		return ev, nil
	}
	ev, err := NewEvaluator(d.models[i], d.exposure, d.edisp)
	if err != nil {
		return nil, err
	}
	d.evals[i] = ev
	return ev, nil
}

// NPredSig returns the total predicted signal counts: the predicted-count
// spectra of all attached models, summed. With no models attached it returns
// a zero spectrum on the analysis axis.
func (d *SpectrumDataset) NPredSig() (*spectrum.BinnedSpectrum, error) {
	axis, err := d.recoAxis()
	if err != nil {
		return nil, err
	}
	total := spectrum.New(axis, "")
	for i := range d.models {
		ev, err := d.evaluator(i)
		if err != nil {
			return nil, err
		}
		npred, err := ev.ComputeNpred()
		if err != nil {
			return nil, err
		}
		if err := total.Stack(npred, nil); err != nil {
			return nil, err
		}
	}
	return total, nil
}

// NPredModel returns the predicted counts of the single model at index i.
func (d *SpectrumDataset) NPredModel(i int) (*spectrum.BinnedSpectrum, error) {
	if i < 0 || i >= len(d.models) {
		return nil, fmt.Errorf("dataset: no model at index %d", i)
	}
	ev, err := d.evaluator(i)
	if err != nil {
		return nil, err
	}
	return ev.ComputeNpred()
}

// NPred returns the total predicted counts: signal plus background.
func (d *SpectrumDataset) NPred() (*spectrum.BinnedSpectrum, error) {
	npred, err := d.NPredSig()
	if err != nil {
		return nil, err
	}
	if d.background == nil {
		return npred, nil
	}
	return npred.Add(d.background.Evaluate())
}

// Excess returns counts minus the predicted background.
func (d *SpectrumDataset) Excess() (*spectrum.BinnedSpectrum, error) {
	if d.background == nil {
		return nil, ErrNoBackground
	}
	return d.counts.Sub(d.background.Evaluate())
}

// StatArray returns the per-bin Cash statistic for the current models.
func (d *SpectrumDataset) StatArray() ([]float64, error) {
	npred, err := d.NPred()
	if err != nil {
		return nil, err
	}
	return stats.Cash(d.counts.Data(), npred.Data()), nil
}

// StatSum returns the Cash statistic summed over the evaluation mask.
func (d *SpectrumDataset) StatSum() (float64, error) {
	stat, err := d.StatArray()
	if err != nil {
		return 0, err
	}
	return sumWithMask(stat, d.Mask()), nil
}

func sumWithMask(values []float64, m *spectrum.Mask) float64 {
	sum := 0.0
	for i, v := range values {
		if m != nil && !m.At(i) {
			continue
		}
		sum += v
	}
	return sum
}

// Fake replaces the counts with a Poisson sample of the current total
// prediction.
func (d *SpectrumDataset) Fake(src rand.Source) error {
	npred, err := d.NPred()
	if err != nil {
		return err
	}
	d.counts = samplePoisson(npred, src)
	return nil
}

func samplePoisson(mean *spectrum.BinnedSpectrum, src rand.Source) *spectrum.BinnedSpectrum {
	out := spectrum.New(mean.Axis(), mean.Unit())
	for i, mu := range mean.Data() {
		if mu <= 0 {
			continue
		}
		out.Data()[i] = distuv.Poisson{Lambda: mu, Src: src}.Rand()
	}
	return out
}

// EnergyRange returns the energy bounds spanned by the safe mask. ok is
// false when no bin is safe.
func (d *SpectrumDataset) EnergyRange() (eMin, eMax float64, ok bool) {
	axis, err := d.recoAxis()
	if err != nil {
		return 0, 0, false
	}
	safe := d.MaskSafe()
	eMin, eMax = math.Inf(1), math.Inf(-1)
	for i := 0; i < axis.NBins(); i++ {
		if safe != nil && !safe.At(i) {
			continue
		}
		ok = true
		if axis.Lo(i) < eMin {
			eMin = axis.Lo(i)
		}
		if axis.Hi(i) > eMax {
			eMax = axis.Hi(i)
		}
	}
	if !ok {
		return 0, 0, false
	}
	return eMin, eMax, true
}

// Residuals returns the per-bin residuals between counts and the total
// prediction. Supported methods: "diff" (data - model), "diff/model" and
// "diff/sqrt(model)"; quotients substitute 0 where the prediction is 0.
func (d *SpectrumDataset) Residuals(method string) (*spectrum.BinnedSpectrum, error) {
	npred, err := d.NPred()
	if err != nil {
		return nil, err
	}
	return computeResiduals(d.counts, npred, method)
}

func computeResiduals(counts, npred *spectrum.BinnedSpectrum, method string) (*spectrum.BinnedSpectrum, error) {
	diff, err := counts.Sub(npred)
	if err != nil {
		return nil, err
	}
	switch method {
	case "diff":
		return diff, nil
	case "diff/model":
		return diff.Div(npred)
	case "diff/sqrt(model)":
		sqrt := npred.Copy()
		for i, v := range sqrt.Data() {
			sqrt.Data()[i] = math.Sqrt(v)
		}
		return diff.Div(sqrt)
	default:
		return nil, fmt.Errorf("dataset: unknown residuals method %q", method)
	}
}

// Copy returns a deep copy of the dataset under a new name. Cached
// evaluators are not carried over.
func (d *SpectrumDataset) Copy(name string) *SpectrumDataset {
	out := &SpectrumDataset{
		name:     name,
		livetime: d.livetime,
		models:   append(model.Models(nil), d.models...),
		evals:    map[int]*Evaluator{},
	}
	if out.name == "" {
		out.name = makeName()
	}
	if d.counts != nil {
		out.counts = d.counts.Copy()
	}
	if d.exposure != nil {
		out.exposure = d.exposure.Copy()
	}
	if d.edisp != nil {
		out.edisp = d.edisp.Copy()
	}
	if d.maskSafe != nil {
		out.maskSafe = d.maskSafe.Copy()
	}
	if d.maskFit != nil {
		out.maskFit = d.maskFit.Copy()
	}
	if d.background != nil {
		out.background = d.background.Copy()
	}
	if d.gtis != nil {
		out.gtis = d.gtis.Copy()
	}
	if d.meta != nil {
		out.meta = d.meta.Copy()
	}
	return out
}

// Create returns an empty SpectrumDataset with the correct geometry: zero
// counts, exposure and background, a diagonal dispersion kernel and an
// all-false safe mask. A nil eTrue reuses the reco axis. Both axes must have
// the same bin count for the diagonal response.
func Create(eReco, eTrue *spectrum.EnergyAxis, name string) (*SpectrumDataset, error) {
	if eTrue == nil {
		eTrue = eReco
	}
	edisp, err := irf.NewDiagonal(eTrue, eReco)
	if err != nil {
		return nil, err
	}
	background, err := model.NewBackgroundModel(spectrum.New(eReco, ""))
	if err != nil {
		return nil, err
	}
	return New(Config{
		Name:       name,
		Counts:     spectrum.New(eReco, ""),
		Exposure:   irf.NewEmptyExposure(eTrue),
		EDisp:      edisp,
		MaskSafe:   spectrum.NewMask(eReco, false),
		Background: background,
		GTI:        gti.Empty(),
	})
}
