package generate

import (
	"math/rand"
	"slices"

	"github.com/elsid/sigame-tools/internal/theme"
)

// shuffleThemes redistributes themes among normal rounds that share a
// question count. Round sizes and the overall selection stay the same; the
// final round is left alone.
func shuffleThemes(rng *rand.Rand, rounds []*Round) {
	groups := make(map[int][]theme.Metadata)
	for _, r := range rounds {
		if r.Type == theme.RoundFinal || len(r.Themes) == 0 {
			continue
		}
		q := r.QuestionsNum()
		groups[q] = append(groups[q], r.Themes...)
	}

	// Map order is random; shuffle groups in key order for reproducibility.
	keys := make([]int, 0, len(groups))
	for q := range groups {
		keys = append(keys, q)
	}
	slices.Sort(keys)
	for _, q := range keys {
		group := groups[q]
		rng.Shuffle(len(group), func(i, j int) { group[i], group[j] = group[j], group[i] })
	}

	for _, r := range rounds {
		if r.Type == theme.RoundFinal || len(r.Themes) == 0 {
			continue
		}
		q := r.QuestionsNum()
		n := len(r.Themes)
		group := groups[q]
		r.Themes = slices.Clone(group[len(group)-n:])
		groups[q] = group[:len(group)-n]
	}
}
