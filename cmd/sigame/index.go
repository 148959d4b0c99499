package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/elsid/sigame-tools/internal/discovery"
	"github.com/elsid/sigame-tools/internal/indexer"
	vlog "github.com/elsid/sigame-tools/internal/log"
	"github.com/elsid/sigame-tools/internal/theme"
)

// runIndex implements the "index" subcommand.
func runIndex(args []string) int {
	fs := flag.NewFlagSet("index", flag.ContinueOnError)
	var (
		outputPath string
		ignore     []string
		patterns   []string
		verbose    bool
	)

	fs.StringVarP(&outputPath, "output", "o", "", "Index file to write")
	fs.StringArrayVar(&ignore, "ignore", nil, "Skip paths matching this glob (repeatable)")
	fs.StringArrayVar(&patterns, "pattern", nil, "Archive pattern inside directories (default **/*.siq)")
	fs.BoolVarP(&verbose, "verbose", "v", false, "Show progress on stderr")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: sigame index --output PATH [flags] PATH...\n\n"+
			"Index the themes of package archives.\n\n"+
			"Paths can be .siq files or directories (walked recursively).\n\n"+
			"Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if outputPath == "" {
		return fail(usagef("--output is required"))
	}
	if fs.NArg() == 0 {
		return fail(usagef("index needs at least one path"))
	}

	logger := vlog.New(os.Stderr, verbose)
	themes, err := indexer.New(logger).Build(fs.Args(), discovery.Options{Patterns: patterns, Ignore: ignore})
	if err != nil {
		return fail(err)
	}
	if err := theme.WriteIndex(outputPath, themes); err != nil {
		return fail(err)
	}
	logger.Info().Str("path", outputPath).Int("themes", len(themes)).Msg("index written")
	return 0
}

// runUpdateIndex implements the "update-index" subcommand.
func runUpdateIndex(args []string) int {
	fs := flag.NewFlagSet("update-index", flag.ContinueOnError)
	var (
		indexPath  string
		outputPath string
		force      []string
		ignore     []string
		verbose    bool
	)

	fs.StringVarP(&indexPath, "index", "i", "", "Existing index to update")
	fs.StringVarP(&outputPath, "output", "o", "", "Index file to write")
	fs.StringArrayVar(&force, "force", nil, "Reindex this changed theme id under a new id (repeatable)")
	fs.StringArrayVar(&ignore, "ignore", nil, "Skip paths matching this glob (repeatable)")
	fs.BoolVarP(&verbose, "verbose", "v", false, "Show progress on stderr")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: sigame update-index --index PATH --output PATH [flags] [PATH...]\n\n"+
			"Refresh an index from its archives, keeping the ids of unchanged\n"+
			"themes and adding themes of new archives found under PATH.\n\n"+
			"Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if indexPath == "" || outputPath == "" {
		return fail(usagef("--index and --output are required"))
	}

	logger := vlog.New(os.Stderr, verbose)
	old, err := theme.ReadIndex(indexPath, logger)
	if err != nil {
		return fail(err)
	}
	themes, err := indexer.New(logger).Update(old, fs.Args(), discovery.Options{Ignore: ignore}, force)
	if err != nil {
		return fail(err)
	}
	if err := theme.WriteIndex(outputPath, themes); err != nil {
		return fail(err)
	}
	logger.Info().Str("path", outputPath).Int("themes", len(themes)).Int("previous", len(old.Themes)).Msg("index updated")
	return 0
}
