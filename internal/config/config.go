package config

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/elsid/sigame-tools/internal/assemble"
	"github.com/elsid/sigame-tools/internal/filter"
	"github.com/elsid/sigame-tools/internal/generate"
)

// ErrInvalid is returned for configuration values that cannot be used.
var ErrInvalid = errors.New("invalid configuration")

// Config is the top-level configuration of the generate command. Pointer
// fields distinguish "not set" from false or zero, so an explicit zero is
// validated instead of falling back to a default.
type Config struct {
	Index        string   `yaml:"index"`
	ExcludeIndex []string `yaml:"exclude-index"`
	OutputIndex  string   `yaml:"output-index"`
	PackageName  string   `yaml:"package-name"`
	Author       string   `yaml:"author"`
	Seed         *int64   `yaml:"seed"`

	Rounds         *int `yaml:"rounds"`
	ThemesPerRound *int `yaml:"themes-per-round"`
	MinQuestions   *int `yaml:"min-questions"`
	MaxQuestions   *int `yaml:"max-questions"`
	FinalThemes    *int `yaml:"final-themes"`

	UniqueThemeNames   *bool `yaml:"unique-theme-names"`
	UniqueRightAnswers *bool `yaml:"unique-right-answers"`
	CheckSimilarity    *bool `yaml:"check-similarity"`
	Obfuscate          *bool `yaml:"obfuscate"`
	UnifyPrice         *bool `yaml:"unify-price"`
	Shuffle            *bool `yaml:"shuffle"`

	Filters []FilterRule `yaml:"filters"`
	Weights []WeightRule `yaml:"weights"`
}

// FilterRule is a filter rule written either as a "mode:field:pattern"
// string or as a mapping with mode, field and pattern keys.
type FilterRule struct {
	filter.Rule
}

// UnmarshalYAML implements custom YAML unmarshalling for FilterRule.
func (r *FilterRule) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		rule, err := ParseFilter(value.Value)
		if err != nil {
			return err
		}
		r.Rule = rule
		return nil
	case yaml.MappingNode:
		return value.Decode(&r.Rule)
	}
	return fmt.Errorf("filter must be a string or a mapping, got %v", value.Kind)
}

// WeightRule is a weight rule written either as a "field:weight:pattern"
// string or as a mapping with field, weight and pattern keys.
type WeightRule struct {
	filter.WeightRule
}

// UnmarshalYAML implements custom YAML unmarshalling for WeightRule.
func (r *WeightRule) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		rule, err := ParseWeight(value.Value)
		if err != nil {
			return err
		}
		r.WeightRule = rule
		return nil
	case yaml.MappingNode:
		return value.Decode(&r.WeightRule)
	}
	return fmt.Errorf("weight must be a string or a mapping, got %v", value.Kind)
}

// ParseFilter parses "mode:field:pattern". The pattern may contain colons.
func ParseFilter(s string) (filter.Rule, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 {
		return filter.Rule{}, fmt.Errorf("%w: filter %q is not mode:field:pattern", ErrInvalid, s)
	}
	mode, err := filter.ParseMode(parts[0])
	if err != nil {
		return filter.Rule{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return filter.Rule{Mode: mode, Field: parts[1], Pattern: parts[2]}, nil
}

// ParseWeight parses "field:weight:pattern". The pattern may contain
// colons.
func ParseWeight(s string) (filter.WeightRule, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 {
		return filter.WeightRule{}, fmt.Errorf("%w: weight %q is not field:weight:pattern", ErrInvalid, s)
	}
	weight, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return filter.WeightRule{}, fmt.Errorf("%w: weight %q: %w", ErrInvalid, s, err)
	}
	return filter.WeightRule{Field: parts[0], Pattern: parts[2], Weight: weight}, nil
}

// Validate checks the values that are set. Counts other than final-themes
// must be positive; final-themes may be 0, meaning themes per round.
func (cfg *Config) Validate() error {
	counts := []struct {
		name  string
		value *int
		min   int
	}{
		{"rounds", cfg.Rounds, 1},
		{"themes-per-round", cfg.ThemesPerRound, 1},
		{"min-questions", cfg.MinQuestions, 1},
		{"max-questions", cfg.MaxQuestions, 1},
		{"final-themes", cfg.FinalThemes, 0},
	}
	for _, c := range counts {
		if c.value != nil && *c.value < c.min {
			return fmt.Errorf("%w: %s must be >= %d, got %d", ErrInvalid, c.name, c.min, *c.value)
		}
	}
	for _, f := range cfg.Filters {
		if _, err := filter.ParseMode(string(f.Mode)); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalid, err)
		}
		if f.Field == "" {
			return fmt.Errorf("%w: filter %s has no field", ErrInvalid, f.Mode)
		}
	}
	for _, w := range cfg.Weights {
		if w.Field == "" {
			return fmt.Errorf("%w: weight rule has no field", ErrInvalid)
		}
		if w.Weight < 0 || math.IsNaN(w.Weight) || math.IsInf(w.Weight, 0) {
			return fmt.Errorf("%w: weight for %s must be a finite number >= 0, got %v", ErrInvalid, w.Field, w.Weight)
		}
	}
	return nil
}

// Rules returns the filter rules in configuration order.
func (cfg *Config) Rules() []filter.Rule {
	out := make([]filter.Rule, 0, len(cfg.Filters))
	for _, f := range cfg.Filters {
		out = append(out, f.Rule)
	}
	return out
}

// WeightRules returns the weight rules in configuration order.
func (cfg *Config) WeightRules() []filter.WeightRule {
	out := make([]filter.WeightRule, 0, len(cfg.Weights))
	for _, w := range cfg.Weights {
		out = append(out, w.WeightRule)
	}
	return out
}

// GenerateOptions returns the round filler options.
func (cfg *Config) GenerateOptions() generate.Options {
	return generate.Options{
		Rounds:                intValue(cfg.Rounds),
		ThemesPerRound:        intValue(cfg.ThemesPerRound),
		MinQuestions:          intValue(cfg.MinQuestions),
		MaxQuestions:          intValue(cfg.MaxQuestions),
		FinalThemes:           intValue(cfg.FinalThemes),
		UniqueThemeNames:      boolValue(cfg.UniqueThemeNames),
		UniqueRightAnswers:    boolValue(cfg.UniqueRightAnswers),
		CheckAnswerSimilarity: boolValue(cfg.CheckSimilarity),
		Shuffle:               boolValue(cfg.Shuffle),
	}
}

// AssembleOptions returns the package document options.
func (cfg *Config) AssembleOptions() assemble.Options {
	return assemble.Options{
		Name:       cfg.PackageName,
		Author:     cfg.Author,
		Obfuscate:  boolValue(cfg.Obfuscate),
		UnifyPrice: boolValue(cfg.UnifyPrice),
	}
}

func boolValue(p *bool) bool {
	return p != nil && *p
}

func intValue(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
