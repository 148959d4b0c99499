package generate

import (
	"math/rand"

	"github.com/elsid/sigame-tools/internal/theme"
)

// weightedSample draws up to k distinct themes from population with
// probability proportional to weight. Population order must be
// deterministic for a seeded rng to reproduce the draw. When all remaining
// weights are zero the draw is uniform.
func weightedSample(rng *rand.Rand, population []theme.Metadata, k int, weight func(theme.Metadata) float64) []theme.Metadata {
	if k > len(population) {
		k = len(population)
	}
	if k <= 0 {
		return nil
	}
	weights := make([]float64, len(population))
	taken := make([]bool, len(population))
	total := 0.0
	for i, t := range population {
		weights[i] = weight(t)
		total += weights[i]
	}

	out := make([]theme.Metadata, 0, k)
	for len(out) < k {
		i := pick(rng, weights, taken, total, len(population)-len(out))
		taken[i] = true
		total -= weights[i]
		out = append(out, population[i])
	}
	return out
}

// pick returns the index of one untaken entry.
func pick(rng *rand.Rand, weights []float64, taken []bool, total float64, left int) int {
	if total > 0 {
		x := rng.Float64() * total
		last := -1
		for i, w := range weights {
			if taken[i] {
				continue
			}
			last = i
			if x < w {
				return i
			}
			x -= w
		}
		// Float rounding can leave x just above the last weight.
		if last >= 0 {
			return last
		}
	}
	n := rng.Intn(left)
	for i := range weights {
		if taken[i] {
			continue
		}
		if n == 0 {
			return i
		}
		n--
	}
	panic("generate: pick called with nothing left")
}
