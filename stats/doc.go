// Package stats implements Poisson-likelihood fit statistics for binned
// counting data: the Cash statistic for analyses with a modelled background
// and the WStat statistic for on/off analyses where the background is
// profiled out of the likelihood.
//
// All functions are pure array transformations. The returned values are
// -2 log(L) up to the saturated-likelihood normalisation, so a model that
// predicts the data exactly scores 0 and an external optimizer can minimise
// the sum directly.
package stats
