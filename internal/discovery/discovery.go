// Package discovery finds package archives from command line paths.
package discovery

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gobwas/glob"

	"github.com/elsid/sigame-tools/internal/log"
)

// DefaultPattern matches package archives at any depth.
const DefaultPattern = "**/*.siq"

// Options controls how file discovery behaves.
type Options struct {
	// Patterns are doublestar patterns matched against paths relative to
	// a directory argument. Empty means DefaultPattern.
	Patterns []string

	// Ignore lists glob patterns. A path is skipped when a pattern matches
	// the path as given, its cleaned form, or its base name.
	Ignore []string
}

// Discover expands paths into archive files. Directories are walked and
// filtered by Patterns; files are kept when they have the .siq extension.
// Missing paths and ignored paths are logged and skipped. Results keep
// argument order, sorted within each directory, without duplicates.
func Discover(paths []string, opts Options, logger *log.Logger) ([]string, error) {
	if logger == nil {
		logger = log.Nop()
	}
	patterns := validatePatterns(opts.Patterns)
	if len(opts.Patterns) == 0 {
		patterns = []string{DefaultPattern}
	}

	w := &walker{
		patterns: patterns,
		ignore:   compileIgnore(opts.Ignore, logger),
		log:      logger,
		seen:     make(map[string]bool),
	}
	for _, p := range paths {
		if err := w.resolve(p); err != nil {
			return nil, err
		}
	}
	return w.result, nil
}

// validatePatterns returns patterns that are syntactically valid.
func validatePatterns(patterns []string) []string {
	valid := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if doublestar.ValidatePattern(p) {
			valid = append(valid, p)
		}
	}
	return valid
}

func compileIgnore(patterns []string, logger *log.Logger) []glob.Glob {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			logger.Warn().Str("pattern", p).Err(err).Msg("skip invalid ignore pattern")
			continue
		}
		out = append(out, g)
	}
	return out
}

// walker holds state for one discovery run.
type walker struct {
	patterns []string
	ignore   []glob.Glob
	log      *log.Logger
	seen     map[string]bool
	result   []string
}

func (w *walker) resolve(path string) error {
	if w.ignored(path) {
		w.log.Info().Str("path", path).Msg("ignore: path matches an ignore pattern")
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		w.log.Info().Str("path", path).Msg("ignore: path does not exist")
		return nil
	}
	if info.IsDir() {
		w.log.Debug().Str("path", path).Msg("process directory")
		return w.walkDir(path)
	}
	if !isArchive(path) {
		w.log.Info().Str("path", path).Msg("ignore: not a .siq file")
		return nil
	}
	w.addFile(path)
	return nil
}

func (w *walker) walkDir(dir string) error {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != dir && w.ignored(path) {
			w.log.Info().Str("path", path).Msg("ignore: path matches an ignore pattern")
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return nil
		}
		if w.matchesAny(filepath.ToSlash(rel)) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return err
	}
	sort.Strings(files)
	for _, f := range files {
		w.addFile(f)
	}
	return nil
}

// matchesAny returns true if rel matches any of the configured patterns.
func (w *walker) matchesAny(rel string) bool {
	for _, p := range w.patterns {
		matched, err := doublestar.Match(p, rel)
		if err == nil && matched {
			return true
		}
	}
	return false
}

func (w *walker) ignored(path string) bool {
	clean := filepath.Clean(path)
	base := filepath.Base(path)
	for _, g := range w.ignore {
		if g.Match(path) || g.Match(clean) || g.Match(base) {
			return true
		}
	}
	return false
}

// addFile adds a file to the result set if not already seen.
func (w *walker) addFile(path string) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	if !w.seen[absPath] {
		w.seen[absPath] = true
		w.result = append(w.result, path)
	}
}

func isArchive(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".siq")
}
