// Package ogip reads and writes spectrum datasets as groups of co-located
// YAML documents following the OGIP four-file convention: counts (PHA),
// off counts (BKG), exposure (ARF) and energy dispersion (RMF), keyed by the
// dataset name.
package ogip
