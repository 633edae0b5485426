package stats

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestCashPerfectPredictionIsZero(t *testing.T) {
	for _, n := range []float64{1, 5, 42, 1e6} {
		if got := CashBin(n, n); !almostEqual(got, 0, 1e-9) {
			t.Fatalf("CashBin(%g, %g) = %g, want 0", n, n, got)
		}
	}
}

func TestCashKnownValues(t *testing.T) {
	cases := []struct {
		n, mu, want float64
	}{
		{10, 12.5, 0.5371289737158058},
		{0, 3.2, 6.4},
		{5, 5, 0},
	}
	for _, c := range cases {
		if got := CashBin(c.n, c.mu); !almostEqual(got, c.want, 1e-12) {
			t.Fatalf("CashBin(%g, %g) = %v, want %v", c.n, c.mu, got, c.want)
		}
	}
}

func TestCashZeroMeanIsFinite(t *testing.T) {
	// mu = 0 with observed counts is clamped, never Inf or NaN.
	got := CashBin(4, 0)
	if math.IsInf(got, 0) || math.IsNaN(got) {
		t.Fatalf("CashBin(4, 0) = %v, want finite", got)
	}
	if !almostEqual(got, 463.60737348776826, 1e-9) {
		t.Fatalf("CashBin(4, 0) = %v", got)
	}
}

func TestCashArray(t *testing.T) {
	got := Cash([]float64{5, 0}, []float64{5, 3.2})
	if !almostEqual(got[0], 0, 1e-12) || !almostEqual(got[1], 6.4, 1e-12) {
		t.Fatalf("Cash = %v", got)
	}
}

func TestWStatMuBkg(t *testing.T) {
	// With mu_sig equal to the measured excess the profile estimate is n_off.
	if got := WStatMuBkg(10, 5, 0.5, 7.5); !almostEqual(got, 5, 1e-12) {
		t.Fatalf("WStatMuBkg = %v, want 5", got)
	}
	// alpha = 0 decouples the off measurement.
	if got := WStatMuBkg(7, 4, 0, 3); got != 4 {
		t.Fatalf("WStatMuBkg(alpha=0) = %v, want 4", got)
	}
	if got := WStatMuBkg(10, 5, 0.5, 0); !almostEqual(got, 10, 1e-12) {
		t.Fatalf("WStatMuBkg(mu_sig=0) = %v, want 10", got)
	}
}

func TestWStatSaturatedModelIsZero(t *testing.T) {
	// mu_sig = n_on - alpha*n_off saturates the likelihood.
	if got := WStatBin(10, 5, 0.5, 7.5); !almostEqual(got, 0, 1e-9) {
		t.Fatalf("WStatBin saturated = %v, want 0", got)
	}
}

func TestWStatKnownValues(t *testing.T) {
	cases := []struct {
		nOn, nOff, alpha, muSig, want float64
	}{
		{10, 5, 0.5, 0, 6.931471805599454},
		{20, 5, 0.5, 0, 22.979021450896624},
		{30, 5, 0.5, 0, 41.26324612097959},
		{7, 4, 0, 3, 3.8621700454208483},
	}
	for _, c := range cases {
		got := WStatBin(c.nOn, c.nOff, c.alpha, c.muSig)
		if !almostEqual(got, c.want, 1e-9) {
			t.Fatalf("WStatBin(%g, %g, %g, %g) = %v, want %v",
				c.nOn, c.nOff, c.alpha, c.muSig, got, c.want)
		}
	}
}

func TestWStatBackgroundStable(t *testing.T) {
	// alpha = 0 gives exactly zero background in the on region.
	got := WStatBackground([]float64{10}, []float64{5}, []float64{0}, []float64{3})
	if got[0] != 0 {
		t.Fatalf("WStatBackground(alpha=0) = %v, want 0", got[0])
	}
	// alpha*mu_bkg for the saturating case: 0.5 * 5.
	got = WStatBackground([]float64{10}, []float64{5}, []float64{0.5}, []float64{7.5})
	if !almostEqual(got[0], 2.5, 1e-12) {
		t.Fatalf("WStatBackground = %v, want 2.5", got[0])
	}
}

func TestWStatDegenerateInputs(t *testing.T) {
	// alpha = 0 with n_off = 0: everything collapses to a pure on Cash term.
	got := WStatBin(0, 0, 0, 0)
	if got != 0 {
		t.Fatalf("WStatBin(0,0,0,0) = %v, want 0", got)
	}
}
