package stats

import "math"

// CashCountsStatistic summarises a counts measurement against a known
// background expectation using the Cash likelihood.
type CashCountsStatistic struct {
	NOn   float64
	MuBkg float64
}

// Excess returns the background-subtracted counts.
func (s CashCountsStatistic) Excess() float64 { return s.NOn - s.MuBkg }

// TS returns the likelihood-ratio test statistic of the null (background
// only) hypothesis against the saturated model.
func (s CashCountsStatistic) TS() float64 { return CashBin(s.NOn, s.MuBkg) }

// Significance returns the signed square root of TS: positive for an excess,
// negative for a deficit.
func (s CashCountsStatistic) Significance() float64 {
	return math.Copysign(math.Sqrt(s.TS()), s.Excess())
}

// WStatCountsStatistic summarises an on/off counts measurement using the
// WStat likelihood with the background profiled out.
type WStatCountsStatistic struct {
	NOn   float64
	NOff  float64
	Alpha float64
}

// Excess returns n_on - alpha*n_off.
func (s WStatCountsStatistic) Excess() float64 { return s.NOn - s.Alpha*s.NOff }

// TS returns the likelihood-ratio test statistic of the null (no signal)
// hypothesis.
func (s WStatCountsStatistic) TS() float64 {
	ts := WStatBin(s.NOn, s.NOff, s.Alpha, 0)
	if math.IsNaN(ts) || ts < 0 {
		return 0
	}
	return ts
}

// Significance returns the signed square root of TS: positive for an excess,
// negative for a deficit.
func (s WStatCountsStatistic) Significance() float64 {
	return math.Copysign(math.Sqrt(s.TS()), s.Excess())
}
