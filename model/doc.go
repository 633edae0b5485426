// Package model defines the spectral-model collaborator contract consumed
// by the forward-folding evaluator, two reference implementations (power law
// and constant), and the background model used by Cash-mode datasets.
//
// Energies are in TeV and differential fluxes in 1 / (TeV m^2 s).
package model
