// Package filter turns ordered filter and weight rules into predicates
// and sampling weights over records with a typed field schema.
package filter

import (
	"errors"
	"fmt"
)

// Mode selects how a filter rule participates in the decision.
type Mode string

// Filter rule modes.
const (
	ModeInclude      Mode = "include"
	ModeExclude      Mode = "exclude"
	ModePrefer       Mode = "prefer"
	ModeForceInclude Mode = "force_include"
)

// ErrUnknownField is returned when a rule names a field outside the schema.
var ErrUnknownField = errors.New("unknown field")

// ErrInvalidRule is returned for rules with an unknown mode or a bad weight.
var ErrInvalidRule = errors.New("invalid rule")

// Rule is one (mode, field, pattern) filter triple.
type Rule struct {
	Mode    Mode   `yaml:"mode" json:"mode"`
	Field   string `yaml:"field" json:"field"`
	Pattern string `yaml:"pattern" json:"pattern"`
}

// WeightRule is one (field, pattern, weight) triple.
type WeightRule struct {
	Field   string  `yaml:"field" json:"field"`
	Pattern string  `yaml:"pattern" json:"pattern"`
	Weight  float64 `yaml:"weight" json:"weight"`
}

// including reports whether the mode counts as include evidence.
func (m Mode) including() bool {
	return m == ModeInclude || m == ModePrefer || m == ModeForceInclude
}

func (m Mode) valid() bool {
	return m.including() || m == ModeExclude
}

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	m := Mode(s)
	if !m.valid() {
		return "", fmt.Errorf("%w: mode %q is not one of include, exclude, prefer, force_include", ErrInvalidRule, s)
	}
	return m, nil
}

// DedupRules drops repeated rules, keeping the first occurrence and the
// original order.
func DedupRules(rules []Rule) []Rule {
	seen := make(map[Rule]bool, len(rules))
	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}

// DedupWeightRules drops repeated weight rules, keeping the first
// occurrence and the original order.
func DedupWeightRules(rules []WeightRule) []WeightRule {
	seen := make(map[WeightRule]bool, len(rules))
	out := make([]WeightRule, 0, len(rules))
	for _, r := range rules {
		if seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}
