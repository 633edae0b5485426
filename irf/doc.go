// Package irf models the instrument response: effective exposure per
// true-energy bin and the energy-dispersion kernel mapping true energy to
// reconstructed energy.
package irf
