package filter

import (
	"fmt"
	"math"
)

// Keyed records can be memoized by the Weigher.
type Keyed interface {
	CacheKey() string
}

type compiledWeight struct {
	fieldTest
	weight float64
}

// Weigher computes per-record sampling weights from weight rules.
type Weigher struct {
	schema Schema
	rules  []compiledWeight
	cache  map[string]float64
}

// NewWeigher compiles weight rules against a schema.
func NewWeigher(rules []WeightRule, schema Schema) (*Weigher, error) {
	w := &Weigher{schema: schema, cache: make(map[string]float64)}
	for _, r := range DedupWeightRules(rules) {
		if r.Weight < 0 || math.IsNaN(r.Weight) || math.IsInf(r.Weight, 0) {
			return nil, fmt.Errorf("%w: weight %v for field %s must be a finite non-negative number", ErrInvalidRule, r.Weight, r.Field)
		}
		test, err := compileFieldTest(schema, r.Field, r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("weight rule: %w", err)
		}
		if test == nil {
			continue
		}
		w.rules = append(w.rules, compiledWeight{fieldTest: *test, weight: r.Weight})
	}
	return w, nil
}

// Weight returns the record's weight: for each field with rules, the mean
// of the matched weights (1 for rules that did not match); fields without
// rules count as 1; the result is the mean over the whole schema.
func (w *Weigher) Weight(r Record) float64 {
	if len(w.rules) == 0 || len(w.schema) == 0 {
		return 1
	}
	key := ""
	if k, ok := r.(Keyed); ok {
		key = k.CacheKey()
		if v, ok := w.cache[key]; ok {
			return v
		}
	}

	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, rule := range w.rules {
		value := 1.0
		if rule.match(r) {
			value = rule.weight
		}
		sums[rule.field] += value
		counts[rule.field]++
	}

	total := 0.0
	for _, f := range w.schema {
		if n := counts[f.Name]; n > 0 {
			total += sums[f.Name] / float64(n)
			continue
		}
		total++
	}
	result := total / float64(len(w.schema))

	if key != "" {
		w.cache[key] = result
	}
	return result
}
