package stats

import "math"

// truncationValue is the lower clamp applied to predicted means before
// taking logarithms. A bin predicting exactly zero with observed counts
// contributes a large finite penalty instead of Inf or NaN.
const truncationValue = 1e-25

// CashBin returns the per-bin Cash statistic for observed counts nOn and
// predicted mean muOn:
//
//	C = 2 * (mu - n + n*ln(n/mu))
//
// with the convention n*ln(n/mu) = 0 at n = 0. The predicted mean is clamped
// below at 1e-25.
func CashBin(nOn, muOn float64) float64 {
	if muOn < truncationValue {
		muOn = truncationValue
	}
	if nOn == 0 {
		return 2 * muOn
	}
	return 2 * (muOn - nOn + nOn*math.Log(nOn/muOn))
}

// Cash returns the per-bin Cash statistic array. Both slices must have the
// same length.
func Cash(nOn, muOn []float64) []float64 {
	out := make([]float64, len(nOn))
	for i := range out {
		out[i] = CashBin(nOn[i], muOn[i])
	}
	return out
}

// WStatMuBkg returns the profile maximum-likelihood estimate of the true
// background rate in the off region for a single bin of an on/off
// measurement, obtained by maximising the joint Poisson likelihood over the
// nuisance background parameter at fixed predicted signal muSig.
//
// For alpha = 0 the on and off measurements decouple and the estimate is
// exactly nOff.
func WStatMuBkg(nOn, nOff, alpha, muSig float64) float64 {
	if alpha == 0 {
		return nOff
	}
	c := alpha*(nOn+nOff) - (1+alpha)*muSig
	d := math.Sqrt(c*c + 4*alpha*(1+alpha)*nOff*muSig)
	return (c + d) / (2 * alpha * (1 + alpha))
}

// wstatAlphaMuBkg returns alpha * WStatMuBkg in a form that stays finite as
// alpha goes to zero.
func wstatAlphaMuBkg(nOn, nOff, alpha, muSig float64) float64 {
	c := alpha*(nOn+nOff) - (1+alpha)*muSig
	d := math.Sqrt(c*c + 4*alpha*(1+alpha)*nOff*muSig)
	return (c + d) / (2 * (1 + alpha))
}

// WStatBin returns the per-bin WStat statistic: the two-Poisson
// profile-likelihood-ratio statistic for observed on counts nOn, off counts
// nOff, acceptance ratio alpha and predicted signal muSig, with the
// background profiled out. Includes the saturated-likelihood terms, so a
// model that saturates the data scores 0.
//
// Degenerate inputs can produce NaN; callers that feed optimizers replace
// NaN with 0 (see dataset.StatArray).
func WStatBin(nOn, nOff, alpha, muSig float64) float64 {
	muBkg := WStatMuBkg(nOn, nOff, alpha, muSig)

	stat := muSig + (1+alpha)*muBkg
	if nOn > 0 {
		stat -= nOn * math.Log(muSig+alpha*muBkg)
		stat -= nOn * (1 - math.Log(nOn))
	}
	if nOff > 0 {
		stat -= nOff * math.Log(muBkg)
		stat -= nOff * (1 - math.Log(nOff))
	}
	return 2 * stat
}

// WStat returns the per-bin WStat statistic array. All slices must have the
// same length.
func WStat(nOn, nOff, alpha, muSig []float64) []float64 {
	out := make([]float64, len(nOn))
	for i := range out {
		out[i] = WStatBin(nOn[i], nOff[i], alpha[i], muSig[i])
	}
	return out
}

// WStatBackground returns the per-bin profiled background expectation in the
// on region, alpha * mu_bkg, evaluated in a numerically stable form: for
// alpha = 0 the result is exactly 0.
func WStatBackground(nOn, nOff, alpha, muSig []float64) []float64 {
	out := make([]float64, len(nOn))
	for i := range out {
		v := wstatAlphaMuBkg(nOn[i], nOff[i], alpha[i], muSig[i])
		if math.IsNaN(v) || v < 0 {
			v = 0
		}
		out[i] = v
	}
	return out
}
