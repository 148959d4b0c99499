package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/elsid/sigame-tools/internal/config"
	"github.com/elsid/sigame-tools/internal/filter"
	"github.com/elsid/sigame-tools/internal/generate"
	vlog "github.com/elsid/sigame-tools/internal/log"
	"github.com/elsid/sigame-tools/internal/theme"
)

func TestIndexedIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.json")
	if err := theme.WriteIndex(path, []theme.Metadata{{ID: "a.b"}, {ID: "c"}}); err != nil {
		t.Fatalf("WriteIndex: %v", err)
	}
	got, err := indexedIDs(path, vlog.Nop())
	if err != nil {
		t.Fatalf("indexedIDs: %v", err)
	}
	if diff := cmp.Diff([]string{"a.b", "c"}, got); diff != "" {
		t.Fatalf("ids (-want +got):\n%s", diff)
	}

	if _, err := indexedIDs(filepath.Join(t.TempDir(), "missing.json"), vlog.Nop()); err == nil {
		t.Fatal("expected error for a missing index")
	}
}

func TestOverrides_OnlyChangedFlags(t *testing.T) {
	var f generateFlags
	fs := newGenerateFlagSet(&f)
	err := fs.Parse([]string{
		"--rounds", "4", "--obfuscate",
		"--filter", "include:theme_name:^A",
		"--filter", "prefer:authors:Bob",
		"--weight", "images_num:0.5:0",
		"--exclude-index", "old.json",
	})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	cfg, err := f.overrides(fs)
	if err != nil {
		t.Fatalf("overrides: %v", err)
	}
	if cfg.Rounds == nil || *cfg.Rounds != 4 || cfg.ThemesPerRound != nil {
		t.Errorf("counts = %v/%v, want only rounds set", cfg.Rounds, cfg.ThemesPerRound)
	}
	if cfg.Obfuscate == nil || !*cfg.Obfuscate {
		t.Error("obfuscate should be set")
	}
	if cfg.Shuffle != nil || cfg.Seed != nil || cfg.PackageName != "" {
		t.Error("unset flags must not override the config file")
	}
	wantRules := []filter.Rule{
		{Mode: filter.ModeInclude, Field: "theme_name", Pattern: "^A"},
		{Mode: filter.ModePrefer, Field: "authors", Pattern: "Bob"},
	}
	if diff := cmp.Diff(wantRules, cfg.Rules()); diff != "" {
		t.Errorf("rules (-want +got):\n%s", diff)
	}
	wantWeights := []filter.WeightRule{{Field: "images_num", Pattern: "0", Weight: 0.5}}
	if diff := cmp.Diff(wantWeights, cfg.WeightRules()); diff != "" {
		t.Errorf("weights (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"old.json"}, cfg.ExcludeIndex); diff != "" {
		t.Errorf("exclude index (-want +got):\n%s", diff)
	}
}

func TestOverrides_FalseBoolean(t *testing.T) {
	var f generateFlags
	fs := newGenerateFlagSet(&f)
	if err := fs.Parse([]string{"--shuffle=false", "--seed", "0"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	cfg, err := f.overrides(fs)
	if err != nil {
		t.Fatalf("overrides: %v", err)
	}
	if cfg.Shuffle == nil || *cfg.Shuffle {
		t.Error("--shuffle=false should override to false")
	}
	if cfg.Seed == nil || *cfg.Seed != 0 {
		t.Error("an explicit zero seed should be kept")
	}
}

func TestOverrides_ZeroCount(t *testing.T) {
	for _, flag := range []string{"--rounds", "--themes-per-round", "--min-questions", "--max-questions"} {
		var f generateFlags
		fs := newGenerateFlagSet(&f)
		if err := fs.Parse([]string{flag, "0"}); err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if _, err := f.overrides(fs); !errors.Is(err, config.ErrInvalid) {
			t.Errorf("%s 0: err = %v, want config.ErrInvalid", flag, err)
		}
	}

	var f generateFlags
	fs := newGenerateFlagSet(&f)
	if err := fs.Parse([]string{"--final-themes", "0"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	cfg, err := f.overrides(fs)
	if err != nil {
		t.Fatalf("--final-themes 0: %v", err)
	}
	if cfg.FinalThemes == nil || *cfg.FinalThemes != 0 {
		t.Errorf("final themes = %v, want explicit 0", cfg.FinalThemes)
	}
}

func TestOverrides_BadRule(t *testing.T) {
	var f generateFlags
	fs := newGenerateFlagSet(&f)
	if err := fs.Parse([]string{"--weight", "authors:heavy:x"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := f.overrides(fs); !errors.Is(err, config.ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"usage", usagef("--index is required"), 2},
		{"config", fmt.Errorf("load: %w", config.ErrInvalid), 2},
		{"options", fmt.Errorf("%w: rounds", generate.ErrInvalidOptions), 2},
		{"field", fmt.Errorf("filter: %w", filter.ErrUnknownField), 2},
		{"exhausted", &generate.ExhaustedError{Round: "Round 1"}, 1},
		{"other", errors.New("disk full"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
