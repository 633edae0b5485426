package dataset

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/cwbudde/algo-gamma/internal/testutil"
	"github.com/cwbudde/algo-gamma/spectrum"
)

func mustOnOff(t *testing.T, cfg OnOffConfig) *SpectrumDatasetOnOff {
	t.Helper()
	d, err := NewOnOff(cfg)
	if err != nil {
		t.Fatalf("NewOnOff: %v", err)
	}
	return d
}

// simpleOnOff builds a three-bin on/off dataset with counts [10 20 30],
// off counts [5 5 5] and alpha 0.5 everywhere.
func simpleOnOff(t *testing.T) *SpectrumDatasetOnOff {
	t.Helper()
	a := mustAxis(t, []float64{1, 2, 4, 8})
	return mustOnOff(t, OnOffConfig{
		Config: Config{
			Counts: mustSpectrum(t, a, []float64{10, 20, 30}),
		},
		CountsOff:     mustSpectrum(t, a, []float64{5, 5, 5}),
		Acceptance:    spectrum.Full(a, 1, ""),
		AcceptanceOff: spectrum.Full(a, 2, ""),
	})
}

func TestNewOnOffRejectsBackgroundModel(t *testing.T) {
	a := mustAxis(t, []float64{1, 2, 4})
	_, err := NewOnOff(OnOffConfig{
		Config: Config{
			Counts:     spectrum.New(a, ""),
			Background: mustBackground(t, a, []float64{1, 1}),
		},
		CountsOff: spectrum.New(a, ""),
	})
	if !errors.Is(err, ErrBackgroundOwned) {
		t.Fatalf("err = %v, want ErrBackgroundOwned", err)
	}
}

func TestOnOffAlphaAndExcess(t *testing.T) {
	d := simpleOnOff(t)

	alpha, err := d.Alpha()
	if err != nil {
		t.Fatalf("Alpha: %v", err)
	}
	requireValues(t, alpha.Data(), []float64{0.5, 0.5, 0.5})

	excess, err := d.Excess()
	if err != nil {
		t.Fatalf("Excess: %v", err)
	}
	requireValues(t, excess.Data(), []float64{7.5, 17.5, 27.5})
}

func TestOnOffBackgroundProfiled(t *testing.T) {
	d := simpleOnOff(t)

	// No models: the profiled background absorbs the full on counts,
	// alpha*mu_bkg = alpha*(n_on + n_off)/(1 + alpha).
	bkg, err := d.Background()
	if err != nil {
		t.Fatalf("Background: %v", err)
	}
	requireValues(t, bkg.Data(), []float64{5, 25.0 / 3, 35.0 / 3})
}

func TestOnOffStatSumWStat(t *testing.T) {
	d := simpleOnOff(t)

	sum, err := d.StatSum()
	if err != nil {
		t.Fatalf("StatSum: %v", err)
	}
	if math.Abs(sum-71.17373937747568) > 1e-10 {
		t.Fatalf("StatSum = %v, want 71.17373937747568", sum)
	}
}

func TestOnOffAlphaZeroDecouples(t *testing.T) {
	a := mustAxis(t, []float64{1, 2, 4})
	d := mustOnOff(t, OnOffConfig{
		Config: Config{
			Counts: mustSpectrum(t, a, []float64{3, 7}),
		},
		CountsOff:     mustSpectrum(t, a, []float64{100, 100}),
		Acceptance:    spectrum.Full(a, 0, ""),
		AcceptanceOff: spectrum.Full(a, 1, ""),
	})

	bkg, err := d.Background()
	if err != nil {
		t.Fatalf("Background: %v", err)
	}
	requireValues(t, bkg.Data(), []float64{0, 0})

	excess, err := d.Excess()
	if err != nil {
		t.Fatalf("Excess: %v", err)
	}
	requireValues(t, excess.Data(), []float64{3, 7})
}

func TestOnOffMissingOffCountsIsError(t *testing.T) {
	a := mustAxis(t, []float64{1, 2, 4, 8})
	d := mustOnOff(t, OnOffConfig{
		Config: Config{
			Counts: mustSpectrum(t, a, []float64{1, 2, 3}),
		},
		Acceptance:    spectrum.Full(a, 1, ""),
		AcceptanceOff: spectrum.Full(a, 2, ""),
	})

	if _, err := d.CountsOffNormalised(); err == nil {
		t.Fatal("expected error for missing counts_off")
	}
	coarse := mustAxis(t, []float64{1, 4, 8})
	if _, err := d.ResampleEnergyAxis(coarse, ""); err == nil {
		t.Fatal("expected error resampling without counts_off")
	}
}

func TestOnOffStackDoubling(t *testing.T) {
	d := simpleOnOff(t)
	o := simpleOnOff(t)

	if err := d.Stack(o); err != nil {
		t.Fatalf("Stack: %v", err)
	}

	requireValues(t, d.Counts().Data(), []float64{20, 40, 60})
	requireValues(t, d.CountsOff().Data(), []float64{10, 10, 10})
	requireValues(t, d.Acceptance().Data(), []float64{1, 1, 1})
	requireValues(t, d.AcceptanceOff().Data(), []float64{2, 2, 2})

	excess, err := d.Excess()
	if err != nil {
		t.Fatalf("Excess: %v", err)
	}
	requireValues(t, excess.Data(), []float64{15, 35, 55})
}

func TestOnOffStackMixedAcceptance(t *testing.T) {
	a := mustAxis(t, []float64{1, 2, 4, 8})
	d := mustOnOff(t, OnOffConfig{
		Config: Config{
			Counts:   mustSpectrum(t, a, []float64{10, 20, 30}),
			MaskSafe: mustMask(t, a, []bool{false, true, true}),
		},
		CountsOff:     mustSpectrum(t, a, []float64{4, 8, 12}),
		Acceptance:    spectrum.Full(a, 1, ""),
		AcceptanceOff: spectrum.Full(a, 2, ""),
	})
	o := mustOnOff(t, OnOffConfig{
		Config: Config{
			Counts:   mustSpectrum(t, a, []float64{1, 2, 3}),
			MaskSafe: mustMask(t, a, []bool{true, true, false}),
		},
		CountsOff:     mustSpectrum(t, a, []float64{8, 8, 8}),
		Acceptance:    spectrum.Full(a, 1, ""),
		AcceptanceOff: spectrum.Full(a, 4, ""),
	})

	if err := d.Stack(o); err != nil {
		t.Fatalf("Stack: %v", err)
	}

	requireValues(t, d.Counts().Data(), []float64{1, 22, 30})
	requireValues(t, d.CountsOff().Data(), []float64{8, 16, 12})
	requireValues(t, d.Acceptance().Data(), []float64{1, 1, 1})
	requireValues(t, d.AcceptanceOff().Data(), []float64{4, 16.0 / 6, 2})

	// alpha * counts_off is conserved bin by bin under the gated sums.
	normalised, err := d.CountsOffNormalised()
	if err != nil {
		t.Fatalf("CountsOffNormalised: %v", err)
	}
	requireValues(t, normalised.Data(), []float64{2, 6, 6})
}

func TestOnOffStackZeroOffFallback(t *testing.T) {
	a := mustAxis(t, []float64{1, 2, 4, 8})
	d := mustOnOff(t, OnOffConfig{
		Config: Config{
			Counts: mustSpectrum(t, a, []float64{1, 1, 1}),
		},
		CountsOff:     mustSpectrum(t, a, []float64{0, 2, 4}),
		Acceptance:    spectrum.Full(a, 1, ""),
		AcceptanceOff: spectrum.Full(a, 2, ""),
	})
	o := mustOnOff(t, OnOffConfig{
		Config: Config{
			Counts: mustSpectrum(t, a, []float64{1, 1, 1}),
		},
		CountsOff:     mustSpectrum(t, a, []float64{0, 8, 4}),
		Acceptance:    spectrum.Full(a, 1, ""),
		AcceptanceOff: spectrum.Full(a, 4, ""),
	})

	if err := d.Stack(o); err != nil {
		t.Fatalf("Stack: %v", err)
	}

	// Bin 0 has no off counts at all and falls back to the global
	// average alpha of 1/3.
	requireValues(t, d.AcceptanceOff().Data(), []float64{3, 10.0 / 3, 8.0 / 3})
}

func TestOnOffStackRequiresOffComponents(t *testing.T) {
	a := mustAxis(t, []float64{1, 2, 4})
	d := mustOnOff(t, OnOffConfig{
		Config:    Config{Counts: spectrum.New(a, "")},
		CountsOff: spectrum.New(a, ""),
	})
	o, err := CreateOnOff(a, nil, "")
	if err != nil {
		t.Fatalf("CreateOnOff: %v", err)
	}
	if err := d.Stack(o); !errors.Is(err, ErrNotStackable) {
		t.Fatalf("err = %v, want ErrNotStackable", err)
	}
}

func TestMergedOnOff(t *testing.T) {
	d := simpleOnOff(t)
	o := simpleOnOff(t)

	merged, err := MergedOnOff(d, o, "merged")
	if err != nil {
		t.Fatalf("MergedOnOff: %v", err)
	}
	requireValues(t, merged.Counts().Data(), []float64{20, 40, 60})
	requireValues(t, d.Counts().Data(), []float64{10, 20, 30})
	requireValues(t, d.CountsOff().Data(), []float64{5, 5, 5})
}

func TestOnOffToSpectrumDataset(t *testing.T) {
	d := simpleOnOff(t)

	cash, err := d.ToSpectrumDataset("converted")
	if err != nil {
		t.Fatalf("ToSpectrumDataset: %v", err)
	}
	if cash.StatType() != "cash" {
		t.Fatalf("stat type = %q, want cash", cash.StatType())
	}
	requireValues(t, cash.Background().Evaluate().Data(), []float64{2.5, 2.5, 2.5})
	requireValues(t, cash.Counts().Data(), []float64{10, 20, 30})
}

func TestFromSpectrumDatasetDerivesOffCounts(t *testing.T) {
	a := mustAxis(t, []float64{1, 2, 4})
	src := mustDataset(t, Config{
		Counts:     mustSpectrum(t, a, []float64{10, 20}),
		Background: mustBackground(t, a, []float64{4, 6}),
	})

	onoff, err := FromSpectrumDataset(src, spectrum.Full(a, 1, ""), spectrum.Full(a, 2, ""), nil)
	if err != nil {
		t.Fatalf("FromSpectrumDataset: %v", err)
	}
	// counts_off = background / alpha with alpha = 0.5.
	requireValues(t, onoff.CountsOff().Data(), []float64{8, 12})
	if onoff.StatType() != "wstat" {
		t.Fatalf("stat type = %q, want wstat", onoff.StatType())
	}
}

func TestOnOffFakeReproducible(t *testing.T) {
	a := mustAxis(t, []float64{1, 2, 4})
	build := func() *SpectrumDatasetOnOff {
		return mustOnOff(t, OnOffConfig{
			Config:        Config{Counts: spectrum.New(a, "")},
			CountsOff:     spectrum.New(a, ""),
			Acceptance:    spectrum.Full(a, 1, ""),
			AcceptanceOff: spectrum.Full(a, 2, ""),
		})
	}
	bkg := mustBackground(t, a, []float64{40, 60})

	d1, d2 := build(), build()
	if err := d1.Fake(bkg, rand.NewPCG(7, 7)); err != nil {
		t.Fatalf("Fake: %v", err)
	}
	if err := d2.Fake(bkg, rand.NewPCG(7, 7)); err != nil {
		t.Fatalf("Fake: %v", err)
	}
	requireValues(t, d1.Counts().Data(), d2.Counts().Data())
	requireValues(t, d1.CountsOff().Data(), d2.CountsOff().Data())
	testutil.RequireFinite(t, d1.CountsOff().Data())
}

func TestOnOffCopyIsDeep(t *testing.T) {
	d := simpleOnOff(t)
	c := d.Copy("clone")

	c.CountsOff().Data()[0] = 99
	c.AcceptanceOff().Data()[1] = 99
	requireValues(t, d.CountsOff().Data(), []float64{5, 5, 5})
	requireValues(t, d.AcceptanceOff().Data(), []float64{2, 2, 2})
}

func TestCreateOnOffGeometry(t *testing.T) {
	a := mustAxis(t, []float64{1, 2, 4})
	d, err := CreateOnOff(a, nil, "empty")
	if err != nil {
		t.Fatalf("CreateOnOff: %v", err)
	}
	requireValues(t, d.Counts().Data(), []float64{0, 0})
	requireValues(t, d.CountsOff().Data(), []float64{0, 0})
	requireValues(t, d.Acceptance().Data(), []float64{1, 1})
	requireValues(t, d.AcceptanceOff().Data(), []float64{1, 1})
	if d.MaskSafe().Any() {
		t.Fatal("expected an all-false safe mask")
	}
	if !d.IsStackable() {
		t.Fatal("expected a stackable empty dataset")
	}
}

func TestOnOffInfo(t *testing.T) {
	d := simpleOnOff(t)

	info, err := d.Info()
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info.StatType != "wstat" {
		t.Fatalf("stat type = %q, want wstat", info.StatType)
	}
	if info.CountsSum != 60 || info.CountsOffSum != 15 {
		t.Fatalf("counts = %v / off = %v, want 60 / 15", info.CountsSum, info.CountsOffSum)
	}
	if math.Abs(info.Alpha-0.5) > 1e-12 {
		t.Fatalf("alpha = %v, want 0.5", info.Alpha)
	}
	if math.Abs(info.ExcessSum-52.5) > 1e-12 {
		t.Fatalf("excess = %v, want 52.5", info.ExcessSum)
	}
	if info.Significance <= 0 {
		t.Fatalf("significance = %v, want positive for a positive excess", info.Significance)
	}
}
