package model

import (
	"math/rand/v2"

	"graphtrust/internal/features"
)

// Synthetic feature ranges, half-open.
const (
	minDegree, maxDegree             = 1, 50
	minDeviceLinks, maxDeviceLinks   = 1, 5
	minFlaggedLinks, maxFlaggedLinks = 0, 3
)

// Sample is one labeled training row.
type Sample struct {
	Features features.Vector
	Label    float64
}

// LabelFor is the ground-truth scoring rule the synthetic history encodes:
// flagged links weigh heaviest, extra devices cost a little, a broad network
// helps slightly.
func LabelFor(v features.Vector) float64 {
	score := MaxScore -
		1.5*float64(v.FlaggedLinks) -
		0.2*float64(v.DeviceLinks) +
		0.01*float64(v.Degree)
	return Clamp(score)
}

// GenerateSynthetic draws n labeled samples from the synthetic feature ranges.
func GenerateSynthetic(n int, rng *rand.Rand) []Sample {
	samples := make([]Sample, 0, n)
	for range n {
		v := features.Vector{
			Degree:       minDegree + rng.IntN(maxDegree-minDegree),
			DeviceLinks:  minDeviceLinks + rng.IntN(maxDeviceLinks-minDeviceLinks),
			FlaggedLinks: minFlaggedLinks + rng.IntN(maxFlaggedLinks-minFlaggedLinks),
		}
		samples = append(samples, Sample{Features: v, Label: LabelFor(v)})
	}
	return samples
}

// newRand builds the deterministic generator used for a given seed.
func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
