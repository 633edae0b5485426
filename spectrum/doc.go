// Package spectrum provides the binned-spectrum data model: an immutable
// energy axis, 1-D arrays of per-bin values indexed by that axis, and
// per-bin boolean masks.
//
// All binary operations require that both operands share the same energy
// axis (exact, bin-by-bin edge equality). The package deliberately carries
// no physics: it is the array substrate that irf, stats and dataset build on.
package spectrum
