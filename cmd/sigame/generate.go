package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/elsid/sigame-tools/internal/assemble"
	"github.com/elsid/sigame-tools/internal/config"
	"github.com/elsid/sigame-tools/internal/generate"
	vlog "github.com/elsid/sigame-tools/internal/log"
	"github.com/elsid/sigame-tools/internal/output"
	"github.com/elsid/sigame-tools/internal/theme"
)

// generateFlags holds the raw values of the generate command line.
type generateFlags struct {
	configPath string
	output     string
	format     string
	noColor    bool
	verbose    bool

	index        string
	excludeIndex []string
	outputIndex  string
	packageName  string
	author       string
	seed         int64

	rounds         int
	themesPerRound int
	minQuestions   int
	maxQuestions   int
	finalThemes    int

	uniqueThemeNames   bool
	uniqueRightAnswers bool
	checkSimilarity    bool
	obfuscate          bool
	unifyPrice         bool
	shuffle            bool

	filters []string
	weights []string
}

func newGenerateFlagSet(f *generateFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	defaults := config.Defaults()

	fs.StringVarP(&f.configPath, "config", "c", "", "Override config file path")
	fs.StringVarP(&f.output, "output", "o", "", "Output package path (.siq)")
	fs.StringVarP(&f.format, "format", "f", "text", "Report format: text, json")
	fs.BoolVar(&f.noColor, "no-color", false, "Disable ANSI colors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "Show progress on stderr")

	fs.StringVarP(&f.index, "index", "i", "", "Index of candidate themes")
	fs.StringArrayVar(&f.excludeIndex, "exclude-index", nil, "Exclude themes listed in this index (repeatable)")
	fs.StringVar(&f.outputIndex, "output-index", "", "Write an index of the selected themes")
	fs.StringVar(&f.packageName, "package-name", defaults.PackageName, "Name of the generated package")
	fs.StringVar(&f.author, "author", defaults.Author, "Author listed first in the package")
	fs.Int64Var(&f.seed, "seed", 0, "Random seed (default: current time)")

	fs.IntVar(&f.rounds, "rounds", *defaults.Rounds, "Number of rounds including the final one")
	fs.IntVar(&f.themesPerRound, "themes-per-round", *defaults.ThemesPerRound, "Themes per normal round")
	fs.IntVar(&f.minQuestions, "min-questions", *defaults.MinQuestions, "Minimum questions per theme")
	fs.IntVar(&f.maxQuestions, "max-questions", *defaults.MaxQuestions, "Maximum questions per theme")
	fs.IntVar(&f.finalThemes, "final-themes", 0, "Themes in the final round (default: themes per round)")

	fs.BoolVar(&f.uniqueThemeNames, "unique-theme-names", *defaults.UniqueThemeNames, "Reject repeated theme names")
	fs.BoolVar(&f.uniqueRightAnswers, "unique-right-answers", *defaults.UniqueRightAnswers, "Reject repeated right answers")
	fs.BoolVar(&f.checkSimilarity, "check-similarity", *defaults.CheckSimilarity, "Reject near-duplicate right answers")
	fs.BoolVar(&f.obfuscate, "obfuscate", *defaults.Obfuscate, "Scramble question and answer text")
	fs.BoolVar(&f.unifyPrice, "unify-price", *defaults.UnifyPrice, "Rewrite question prices to a uniform ladder")
	fs.BoolVar(&f.shuffle, "shuffle", *defaults.Shuffle, "Shuffle themes between rounds of equal shape")

	fs.StringArrayVar(&f.filters, "filter", nil, "Filter rule MODE:FIELD:PATTERN (repeatable)")
	fs.StringArrayVar(&f.weights, "weight", nil, "Weight rule FIELD:WEIGHT:PATTERN (repeatable)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: sigame generate --index PATH --output PATH [flags]\n\n"+
			"Compose a package from indexed themes.\n\n"+
			"Flags override values of the config file (.sigame.yml, discovered\n"+
			"from the current directory up to the repository root).\n\n"+
			"Flags:\n")
		fs.PrintDefaults()
	}
	return fs
}

// overrides converts explicitly set flags into a config layer.
func (f *generateFlags) overrides(fs *flag.FlagSet) (*config.Config, error) {
	cfg := &config.Config{}
	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}
	set("index", func() { cfg.Index = f.index })
	set("output-index", func() { cfg.OutputIndex = f.outputIndex })
	set("package-name", func() { cfg.PackageName = f.packageName })
	set("author", func() { cfg.Author = f.author })
	set("seed", func() { cfg.Seed = &f.seed })
	set("rounds", func() { cfg.Rounds = &f.rounds })
	set("themes-per-round", func() { cfg.ThemesPerRound = &f.themesPerRound })
	set("min-questions", func() { cfg.MinQuestions = &f.minQuestions })
	set("max-questions", func() { cfg.MaxQuestions = &f.maxQuestions })
	set("final-themes", func() { cfg.FinalThemes = &f.finalThemes })
	set("unique-theme-names", func() { cfg.UniqueThemeNames = &f.uniqueThemeNames })
	set("unique-right-answers", func() { cfg.UniqueRightAnswers = &f.uniqueRightAnswers })
	set("check-similarity", func() { cfg.CheckSimilarity = &f.checkSimilarity })
	set("obfuscate", func() { cfg.Obfuscate = &f.obfuscate })
	set("unify-price", func() { cfg.UnifyPrice = &f.unifyPrice })
	set("shuffle", func() { cfg.Shuffle = &f.shuffle })
	cfg.ExcludeIndex = f.excludeIndex

	for _, s := range f.filters {
		rule, err := config.ParseFilter(s)
		if err != nil {
			return nil, err
		}
		cfg.Filters = append(cfg.Filters, config.FilterRule{Rule: rule})
	}
	for _, s := range f.weights {
		rule, err := config.ParseWeight(s)
		if err != nil {
			return nil, err
		}
		cfg.Weights = append(cfg.Weights, config.WeightRule{WeightRule: rule})
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runGenerate implements the "generate" subcommand.
func runGenerate(args []string) int {
	var f generateFlags
	fs := newGenerateFlagSet(&f)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "sigame: generate takes no arguments\n")
		return 2
	}
	logger := vlog.New(os.Stderr, f.verbose)

	flagLayer, err := f.overrides(fs)
	if err != nil {
		return fail(err)
	}
	fileLayer, cfgPath, err := loadConfig(f.configPath)
	if err != nil {
		return fail(err)
	}
	if cfgPath != "" {
		logger.Printf("config: %s", cfgPath)
	}
	cfg := config.Merge(config.Defaults(), fileLayer, flagLayer)

	formatter, err := output.New(f.format, !f.noColor)
	if err != nil {
		return fail(&usageError{err: err})
	}
	if err := generatePackage(cfg, f.output, formatter, logger); err != nil {
		return fail(err)
	}
	return 0
}

// generatePackage runs the whole pipeline: read the index, fill rounds,
// assemble and write the package, then report the selection on stdout.
func generatePackage(cfg *config.Config, outputPath string, formatter output.Formatter, logger *vlog.Logger) error {
	if cfg.Index == "" {
		return usagef("--index is required")
	}
	if outputPath == "" {
		return usagef("--output is required")
	}

	index, err := theme.ReadIndex(cfg.Index, logger)
	if err != nil {
		return err
	}
	var excluded []string
	for _, path := range cfg.ExcludeIndex {
		ids, err := indexedIDs(path, logger)
		if err != nil {
			return err
		}
		excluded = append(excluded, ids...)
		logger.Info().Str("path", path).Int("themes", len(ids)).Msg("excluding indexed themes")
	}

	seed := time.Now().UnixNano()
	if cfg.Seed != nil {
		seed = *cfg.Seed
	}
	logger.Info().Int64("seed", seed).Msg("random seed")
	rng := rand.New(rand.NewSource(seed))

	gen, err := generate.New(cfg.GenerateOptions(), cfg.Rules(), cfg.WeightRules(), rng, logger)
	if err != nil {
		return &usageError{err: err}
	}
	gen.Exclude(excluded...)
	rounds, err := gen.Generate(index.Themes)
	if err != nil {
		return err
	}

	asm := assemble.New(cfg.AssembleOptions(), rng, logger)
	pkg, err := asm.Build(rounds)
	if err != nil {
		return err
	}
	if err := asm.Write(pkg, outputPath); err != nil {
		return err
	}
	logger.Info().Str("path", outputPath).Int("media", pkg.Manifest.Len()).Msg("package written")

	if cfg.OutputIndex != "" {
		selected := generate.Selected(rounds)
		if err := theme.WriteIndex(cfg.OutputIndex, selected); err != nil {
			return err
		}
		logger.Info().Str("path", cfg.OutputIndex).Int("themes", len(selected)).Msg("selection index written")
	}

	if err := formatter.Format(os.Stdout, rounds); err != nil {
		return fmt.Errorf("error writing output: %w", err)
	}
	return nil
}

// indexedIDs returns the theme ids of an exclusion index.
func indexedIDs(path string, logger *vlog.Logger) ([]string, error) {
	index, err := theme.ReadIndex(path, logger)
	if err != nil {
		return nil, fmt.Errorf("exclude index: %w", err)
	}
	ids := make([]string, 0, len(index.Themes))
	for _, t := range index.Themes {
		ids = append(ids, t.ID)
	}
	return ids, nil
}

// loadConfig loads configuration by either using the specified path or
// discovering a config file from the current directory. It returns the
// loaded layer (nil if none), the path that was loaded and any error.
func loadConfig(configPath string) (*config.Config, string, error) {
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, "", err
		}
		return loaded, configPath, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, "", nil
	}
	discovered, err := config.Discover(cwd)
	if err != nil || discovered == "" {
		return nil, "", nil
	}
	loaded, err := config.Load(discovered)
	if err != nil {
		return nil, "", err
	}
	return loaded, discovered, nil
}
