package indexer

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"

	"github.com/elsid/sigame-tools/internal/discovery"
	"github.com/elsid/sigame-tools/internal/log"
	"github.com/elsid/sigame-tools/internal/siq"
	"github.com/elsid/sigame-tools/internal/theme"
)

// ErrThemeChanged is returned by Update when an indexed theme no longer
// matches its archive and its id was not forced.
var ErrThemeChanged = errors.New("theme changed since it was indexed")

// ChangedError carries the drift of one indexed theme.
type ChangedError struct {
	ID   string
	Path string
	Diff string
}

func (e *ChangedError) Error() string {
	return fmt.Sprintf("%v: theme %s in %s, remove it from the index or force it by id (-old +new):\n%s",
		ErrThemeChanged, e.ID, e.Path, e.Diff)
}

func (e *ChangedError) Unwrap() error {
	return ErrThemeChanged
}

// Indexer reads package archives into theme metadata.
type Indexer struct {
	log   *log.Logger
	newID func() (string, error)
}

// New returns an Indexer assigning time-based UUIDs to new themes.
func New(logger *log.Logger) *Indexer {
	if logger == nil {
		logger = log.Nop()
	}
	return &Indexer{log: logger, newID: newUUID}
}

func newUUID() (string, error) {
	id, err := uuid.NewUUID()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Archive returns the themes of one archive in position order.
func (ix *Indexer) Archive(path string) ([]theme.Metadata, error) {
	name, err := fileName(path)
	if err != nil {
		return nil, err
	}
	ix.log.Debug().Str("path", path).Msg("read archive")
	doc, err := siq.ReadContent(path)
	if err != nil {
		return nil, err
	}
	return extract(path, name, doc, ix.newID)
}

// Build indexes every archive found under paths. Archives that cannot be
// read are logged and skipped.
func (ix *Indexer) Build(paths []string, opts discovery.Options) ([]theme.Metadata, error) {
	files, err := discovery.Discover(paths, opts, ix.log)
	if err != nil {
		return nil, fmt.Errorf("discover archives: %w", err)
	}
	return ix.archives(files), nil
}

func (ix *Indexer) archives(files []string) []theme.Metadata {
	var out []theme.Metadata
	for _, path := range files {
		themes, err := ix.Archive(path)
		if err != nil {
			ix.log.Warn().Str("path", path).Err(err).Msg("ignore archive")
			continue
		}
		ix.log.Info().Str("path", path).Int("themes", len(themes)).Msg("indexed archive")
		out = append(out, themes...)
	}
	return out
}

// Update refreshes an index against the current archives. Themes keep
// their ids while their content is unchanged. A changed theme fails the
// update unless its id is in force, in which case it is reindexed under a
// new id. Themes whose archive or position disappeared are dropped. New
// themes of known archives and archives found under paths that the index
// never covered are appended with fresh ids.
func (ix *Indexer) Update(old theme.Index, paths []string, opts discovery.Options, force []string) ([]theme.Metadata, error) {
	ignore := compareOptions(old.Version)
	type archive struct {
		path   string
		themes map[position]theme.Metadata
	}
	var order []*archive
	archives := make(map[string]*archive)
	broken := make(map[string]bool)
	processed := make(map[string]bool)

	var out []theme.Metadata
	for _, prev := range old.Themes {
		a, ok := archives[prev.Path]
		if !ok {
			if broken[prev.Path] {
				continue
			}
			current, err := ix.Archive(prev.Path)
			if err != nil {
				ix.log.Warn().Str("path", prev.Path).Err(err).Msg("drop themes of unreadable archive")
				broken[prev.Path] = true
				processed[absPath(prev.Path)] = true
				continue
			}
			a = &archive{path: prev.Path, themes: make(map[position]theme.Metadata, len(current))}
			for _, t := range current {
				a.themes[positionOf(t)] = t
			}
			archives[prev.Path] = a
			order = append(order, a)
		}

		pos := positionOf(prev)
		next, ok := a.themes[pos]
		if !ok {
			ix.log.Info().Str("id", prev.ID).Str("path", prev.Path).
				Int("round_number", pos.round).Int("theme_number", pos.theme).
				Msg("drop theme missing from archive")
			continue
		}
		next.ID = prev.ID
		if diff := cmp.Diff(record(prev), record(next), ignore...); diff != "" {
			if !slices.Contains(force, prev.ID) {
				return nil, &ChangedError{ID: prev.ID, Path: prev.Path, Diff: diff}
			}
			ix.log.Info().Str("id", prev.ID).Msg("theme changed, reindex under a new id")
			continue
		}
		out = append(out, next)
		delete(a.themes, pos)
	}

	for _, a := range order {
		processed[absPath(a.path)] = true
		rest := make([]theme.Metadata, 0, len(a.themes))
		for _, t := range a.themes {
			rest = append(rest, t)
		}
		slices.SortFunc(rest, func(x, y theme.Metadata) int {
			return comparePositions(positionOf(x), positionOf(y))
		})
		if len(rest) > 0 {
			ix.log.Info().Str("path", a.path).Int("themes", len(rest)).Msg("add new themes of indexed archive")
		}
		out = append(out, rest...)
	}

	files, err := discovery.Discover(paths, opts, ix.log)
	if err != nil {
		return nil, fmt.Errorf("discover archives: %w", err)
	}
	files = slices.DeleteFunc(files, func(path string) bool {
		return processed[absPath(path)]
	})
	return append(out, ix.archives(files)...), nil
}

// record drops the Metadata methods so cmp compares field by field.
type record theme.Metadata

// compareOptions ignores fields an index of the given version did not
// carry, so an upgrade alone does not count as a change.
func compareOptions(version int) []cmp.Option {
	opts := []cmp.Option{cmpopts.EquateEmpty()}
	var ignored []string
	if version < 3 {
		ignored = append(ignored, "ImagesNum", "VideosNum", "VoicesNum")
	}
	if version < 2 {
		ignored = append(ignored, "FileName")
	}
	if len(ignored) > 0 {
		opts = append(opts, cmpopts.IgnoreFields(record{}, ignored...))
	}
	return opts
}

type position struct {
	round, theme int
}

func positionOf(t theme.Metadata) position {
	return position{round: t.RoundNumber, theme: t.ThemeNumber}
}

func comparePositions(a, b position) int {
	if a.round != b.round {
		return a.round - b.round
	}
	return a.theme - b.theme
}

func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
