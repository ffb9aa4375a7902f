// Package packaging assembles the final package manifest from sealed reels.
//
// It writes a composition playlist, a packing list, and an asset map into
// the output directory, copies font attachments alongside them, and signs
// the composition playlist when a signer is configured. The writing engine
// calls it exactly once, at the end of a build.
package packaging
