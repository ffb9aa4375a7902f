// Package dcptime provides the fixed-rate time arithmetic used across the
// writing engine.
//
// Times are integer tick counts at 96000 ticks per second, which divides
// evenly by every DCI frame rate and by common audio sample rates, so frame
// and sample conversions stay exact. Periods are half-open [From, To) ranges
// used to describe reel boundaries.
package dcptime
