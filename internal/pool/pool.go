// Package pool partitions candidate themes into sampling buckets keyed by
// round type and exact question count.
package pool

import (
	"slices"

	"github.com/elsid/sigame-tools/internal/theme"
)

// Bucket holds the themes of one round type and question count, sorted by
// theme.Compare without duplicates.
type Bucket struct {
	themes []theme.Metadata
}

// Len returns the number of themes left in the bucket.
func (b *Bucket) Len() int {
	if b == nil {
		return 0
	}
	return len(b.themes)
}

// Themes returns the remaining themes in order. The slice must not be
// modified.
func (b *Bucket) Themes() []theme.Metadata {
	if b == nil {
		return nil
	}
	return b.themes
}

// Remove drops the given themes from the bucket.
func (b *Bucket) Remove(themes ...theme.Metadata) {
	for _, t := range themes {
		i, found := slices.BinarySearchFunc(b.themes, t, theme.Compare)
		if found {
			b.themes = slices.Delete(b.themes, i, i+1)
		}
	}
}

func (b *Bucket) normalize() {
	slices.SortFunc(b.themes, theme.Compare)
	b.themes = slices.CompactFunc(b.themes, theme.Metadata.Equal)
}

// Tier maps round type and question count to a bucket.
type Tier map[theme.RoundType]map[int]*Bucket

// Bucket returns the bucket for a round type and question count, creating
// an empty one when needed.
func (t Tier) Bucket(roundType theme.RoundType, questions int) *Bucket {
	byCount, ok := t[roundType]
	if !ok {
		byCount = make(map[int]*Bucket)
		t[roundType] = byCount
	}
	b, ok := byCount[questions]
	if !ok {
		b = &Bucket{}
		byCount[questions] = b
	}
	return b
}

// Count returns the number of themes of a round type across all buckets.
func (t Tier) Count(roundType theme.RoundType) int {
	total := 0
	for _, b := range t[roundType] {
		total += b.Len()
	}
	return total
}

// Total returns the number of themes in the tier.
func (t Tier) Total() int {
	total := 0
	for roundType := range t {
		total += t.Count(roundType)
	}
	return total
}

// Pools is the partitioned candidate collection.
type Pools struct {
	Accepted  Tier
	Preferred Tier
}

// Partition sorts themes into tiers. Themes failing accept are dropped;
// accepted themes go to Preferred when prefer holds and to Accepted
// otherwise. Round types other than final are treated as normal. The input
// slice is not modified.
func Partition(themes []theme.Metadata, accept func(theme.Metadata) bool, prefer func(theme.Metadata) bool) Pools {
	pools := Pools{Accepted: make(Tier), Preferred: make(Tier)}
	for _, t := range themes {
		if t.RoundType != theme.RoundFinal {
			t.RoundType = theme.RoundNormal
		}
		if !accept(t) {
			continue
		}
		tier := pools.Accepted
		if prefer(t) {
			tier = pools.Preferred
		}
		b := tier.Bucket(t.RoundType, t.QuestionsNum)
		b.themes = append(b.themes, t)
	}
	for _, tier := range []Tier{pools.Accepted, pools.Preferred} {
		for _, byCount := range tier {
			for _, b := range byCount {
				b.normalize()
			}
		}
	}
	return pools
}
