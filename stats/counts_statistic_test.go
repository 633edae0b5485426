package stats

import (
	"math"
	"testing"
)

func TestCashCountsStatistic(t *testing.T) {
	s := CashCountsStatistic{NOn: 60, MuBkg: 50}
	if s.Excess() != 10 {
		t.Fatalf("Excess = %g, want 10", s.Excess())
	}
	if got := s.Significance(); !almostEqual(got, 1.3706154877552466, 1e-9) {
		t.Fatalf("Significance = %v", got)
	}
	// Deficit gives negative significance.
	d := CashCountsStatistic{NOn: 40, MuBkg: 50}
	if d.Significance() >= 0 {
		t.Fatalf("deficit significance = %v, want negative", d.Significance())
	}
}

func TestWStatCountsStatistic(t *testing.T) {
	s := WStatCountsStatistic{NOn: 60, NOff: 100, Alpha: 0.3}
	if !almostEqual(s.Excess(), 30, 1e-12) {
		t.Fatalf("Excess = %g, want 30", s.Excess())
	}
	if got := s.Significance(); !almostEqual(got, 4.090606915624522, 1e-9) {
		t.Fatalf("Significance = %v", got)
	}
}

func TestWStatCountsStatisticDegenerate(t *testing.T) {
	s := WStatCountsStatistic{NOn: 0, NOff: 0, Alpha: 0}
	if got := s.Significance(); got != 0 || math.IsNaN(got) {
		t.Fatalf("degenerate significance = %v, want 0", got)
	}
}
