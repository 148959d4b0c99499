package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const configFileName = ".sigame.yml"

// Load reads, parses and validates a config file at the given path.
// Unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: parsing config file %s: %w", ErrInvalid, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return &cfg, nil
}

// Discover looks for .sigame.yml in startDir and its parents. The search
// ends at the first directory holding .git or at the filesystem root, in
// which case it returns "".
func Discover(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving absolute path: %w", err)
	}
	for {
		if found := filepath.Join(dir, configFileName); exists(found) {
			return found, nil
		}
		if isRepoRoot(dir) {
			return "", nil
		}
		next := filepath.Dir(dir)
		if next == dir {
			return "", nil
		}
		dir = next
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func isRepoRoot(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil && info.IsDir()
}

// Defaults returns the built-in generate settings.
func Defaults() *Config {
	return &Config{
		PackageName:        "Generated pack",
		Author:             "elsid",
		Rounds:             intPtr(3),
		ThemesPerRound:     intPtr(3),
		MinQuestions:       intPtr(5),
		MaxQuestions:       intPtr(10),
		UniqueThemeNames:   boolPtr(true),
		UniqueRightAnswers: boolPtr(true),
		CheckSimilarity:    boolPtr(true),
		Obfuscate:          boolPtr(false),
		UnifyPrice:         boolPtr(true),
		Shuffle:            boolPtr(true),
	}
}

func boolPtr(b bool) *bool {
	return &b
}

func intPtr(n int) *int {
	return &n
}
