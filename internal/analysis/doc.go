// Package analysis summarizes recorded trajectories.
//
// The package includes:
//
//   - [PowerSpectrum] and [DominantFrequency]: spectral content of a
//     sampled series, for example the height of a bouncing body
//   - [SettleTime]: when a series falls and stays under a threshold
//   - [Describe]: mean, spread and range of a series
//   - [Bounces]: floor contacts counted from a height trace
//
// # Wobble Frequency
//
// A soft body oscillates about its goal shape after an impact. Sampling
// the bounding radius each frame exposes that wobble:
//
//	radii := res.Series(0, func(b sim.BodyState) float64 { return b.Radius })
//	hz, err := analysis.DominantFrequency(radii, frameDt)
package analysis
