package generate

import (
	"fmt"
	"math/rand"

	"github.com/elsid/sigame-tools/internal/filter"
	"github.com/elsid/sigame-tools/internal/log"
	"github.com/elsid/sigame-tools/internal/pool"
	"github.com/elsid/sigame-tools/internal/theme"
)

// Generator fills rounds from a candidate collection. A Generator is not
// safe for concurrent use; each Generate call owns its buckets and usage
// sets.
type Generator struct {
	opts    Options
	rng     *rand.Rand
	accept  filter.Predicate
	prefer  filter.Predicate
	weigher *filter.Weigher
	log     *log.Logger

	excluded map[string]struct{}
}

// New validates options and compiles filter and weight rules.
func New(opts Options, rules []filter.Rule, weights []filter.WeightRule, rng *rand.Rand, logger *log.Logger) (*Generator, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	accept, err := filter.Compose(rules, theme.Schema)
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	prefer, err := filter.Preferred(rules, theme.Schema)
	if err != nil {
		return nil, fmt.Errorf("prefer filter: %w", err)
	}
	weigher, err := filter.NewWeigher(weights, theme.Schema)
	if err != nil {
		return nil, fmt.Errorf("weights: %w", err)
	}
	if logger == nil {
		logger = log.Nop()
	}
	return &Generator{opts: opts, rng: rng, accept: accept, prefer: prefer, weigher: weigher, log: logger}, nil
}

// Generate selects themes for every round. On success each round holds
// exactly its target number of themes; on failure no rounds are returned.
func (g *Generator) Generate(themes []theme.Metadata) ([]*Round, error) {
	g.log.Info().Int("themes", len(themes)).Msg("generate rounds")

	pools := pool.Partition(themes, g.isAcceptable, g.isPreferred)
	g.log.Info().
		Int("preferred_normal", pools.Preferred.Count(theme.RoundNormal)).
		Int("preferred_final", pools.Preferred.Count(theme.RoundFinal)).
		Int("accepted_normal", pools.Accepted.Count(theme.RoundNormal)).
		Int("accepted_final", pools.Accepted.Count(theme.RoundFinal)).
		Msg("partitioned themes")
	if pools.Preferred.Total()+pools.Accepted.Total() == 0 {
		return nil, ErrNoThemes
	}

	rounds := makeRounds(g.opts.Rounds)
	used := newUsage(g.opts)

	for _, r := range rounds {
		g.populateWithPreferred(r, pools.Preferred, used)
	}
	for _, r := range rounds {
		if err := g.populate(r, pools.Accepted, used); err != nil {
			return nil, err
		}
	}
	if g.opts.Shuffle {
		shuffleThemes(g.rng, rounds)
	}
	return rounds, nil
}

// Exclude rejects themes by id regardless of the filter rules.
func (g *Generator) Exclude(ids ...string) {
	if len(ids) == 0 {
		return
	}
	if g.excluded == nil {
		g.excluded = make(map[string]struct{}, len(ids))
	}
	for _, id := range ids {
		g.excluded[id] = struct{}{}
	}
}

func (g *Generator) isAcceptable(t theme.Metadata) bool {
	lo, hi := g.opts.questionRange(t.RoundType)
	if t.QuestionsNum < lo || t.QuestionsNum > hi {
		return false
	}
	if _, ok := g.excluded[t.ID]; ok {
		return false
	}
	return g.accept(t)
}

func (g *Generator) isPreferred(t theme.Metadata) bool {
	return g.prefer(t)
}

// populateWithPreferred places as many preferred themes as the round takes
// from the fullest preferred bucket.
func (g *Generator) populateWithPreferred(r *Round, preferred pool.Tier, used *usage) {
	lo, hi := g.opts.questionRange(r.Type)
	questions := lo
	for q := lo; q <= hi; q++ {
		if preferred.Bucket(r.Type, q).Len() > preferred.Bucket(r.Type, questions).Len() {
			questions = q
		}
	}
	bucket := preferred.Bucket(r.Type, questions)
	if bucket.Len() == 0 {
		return
	}
	g.log.Debug().Str("round", r.Name).Int("questions", questions).Int("available", bucket.Len()).
		Msg("populate with preferred themes")

	samples, _ := g.drawUnique(bucket.Themes(), g.opts.target(r), used, false)
	r.Themes = append(r.Themes, samples...)
	bucket.Remove(samples...)
}

// populate tops the round up from the accepted tier, trying question
// counts until one bucket can supply every missing theme.
func (g *Generator) populate(r *Round, accepted pool.Tier, used *usage) error {
	need := g.opts.target(r) - len(r.Themes)
	if need <= 0 {
		return nil
	}
	g.log.Info().Str("round", r.Name).Int("need", need).Msg("populate round")

	lo, hi := g.opts.questionRange(r.Type)
	var candidates []int
	switch {
	case len(r.Themes) > 0:
		candidates = []int{r.QuestionsNum()}
	case r.Type == theme.RoundFinal:
		candidates = []int{1}
	default:
		for q := lo; q <= hi; q++ {
			candidates = append(candidates, q)
		}
		g.rng.Shuffle(len(candidates), func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})
	}

	attempts := make([]Attempt, 0, len(candidates))
	for _, questions := range candidates {
		bucket := accepted.Bucket(r.Type, questions)
		available := g.unused(bucket.Themes(), used)
		g.log.Debug().Str("round", r.Name).Int("questions", questions).
			Int("bucket", bucket.Len()).Int("unused", len(available)).Msg("try bucket")
		attempts = append(attempts, Attempt{Questions: questions, Available: len(available), Need: need})
		if len(available) < need {
			continue
		}

		tx := used.begin()
		samples, ok := g.drawUnique(available, need, used, true)
		if !ok {
			tx.rollback()
			attempts[len(attempts)-1].Available = len(samples)
			continue
		}
		tx.commit()
		r.Themes = append(r.Themes, samples...)
		bucket.Remove(samples...)
		return nil
	}

	return &ExhaustedError{
		Round:        r.Name,
		Type:         r.Type,
		MinQuestions: lo,
		MaxQuestions: hi,
		Need:         need,
		Attempts:     attempts,
	}
}

// drawUnique draws up to need themes that do not collide with used or with
// each other, recording each pick in used. Candidates are re-filtered
// after every weighted batch since picks can make others collide. In
// strict mode it stops as soon as fewer candidates remain than are still
// needed and reports false.
func (g *Generator) drawUnique(population []theme.Metadata, need int, used *usage, strict bool) ([]theme.Metadata, bool) {
	selected := make([]theme.Metadata, 0, need)
	candidates := population
	for len(selected) < need {
		candidates = g.unused(candidates, used)
		missing := need - len(selected)
		if len(candidates) == 0 || (strict && len(candidates) < missing) {
			return selected, false
		}
		batch := weightedSample(g.rng, candidates, missing, g.weight)
		for _, sample := range batch {
			if used.isUsed(sample) {
				continue
			}
			selected = append(selected, sample)
			used.add(sample)
		}
		candidates = without(candidates, batch)
	}
	return selected, true
}

func (g *Generator) weight(t theme.Metadata) float64 {
	return g.weigher.Weight(t)
}

func (g *Generator) unused(themes []theme.Metadata, used *usage) []theme.Metadata {
	out := make([]theme.Metadata, 0, len(themes))
	for _, t := range themes {
		if !used.isUsed(t) {
			out = append(out, t)
		}
	}
	return out
}

// without returns themes minus the drawn ones, keeping order.
func without(themes []theme.Metadata, drawn []theme.Metadata) []theme.Metadata {
	skip := make(map[string]bool, len(drawn))
	for _, t := range drawn {
		skip[t.ID] = true
	}
	out := make([]theme.Metadata, 0, len(themes))
	for _, t := range themes {
		if !skip[t.ID] {
			out = append(out, t)
		}
	}
	return out
}
