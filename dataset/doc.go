// Package dataset bundles reduced counts data with the instrument response,
// safe-energy masks and models into fittable spectrum datasets.
//
// SpectrumDataset uses the Cash statistic against a modelled background;
// SpectrumDatasetOnOff uses the WStat statistic with the background profiled
// from an off-region measurement. Both expose the same evaluate / statistic
// / stack contract through the Dataset interface.
//
// Datasets are not safe for concurrent use: Stack mutates the receiver in
// place and provides no internal locking. Independent datasets may be used
// from independent goroutines.
package dataset
