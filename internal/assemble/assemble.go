// Package assemble turns generated rounds into a playable package: it
// copies each theme's XML from its source archive, renames media, and
// writes the output archive.
package assemble

import (
	"fmt"
	"math/rand"
	"path"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/google/uuid"

	"github.com/elsid/sigame-tools/internal/generate"
	"github.com/elsid/sigame-tools/internal/log"
	"github.com/elsid/sigame-tools/internal/siq"
	"github.com/elsid/sigame-tools/internal/theme"
)

const (
	packageVersion    = "4"
	packageDifficulty = "5"
	packageNamespace  = "http://vladimirkhil.com/ygpackage3.0.xsd"
	compositionRole   = "Composition"
	mediaMarker       = "@"
)

// Options controls the generated document.
type Options struct {
	// Name is the package name.
	Name string
	// Author is listed first among the package authors.
	Author     string
	Obfuscate  bool
	UnifyPrice bool
	// Now stamps the package date. Zero means time.Now.
	Now time.Time
}

// Package is an assembled document plus the media it references.
type Package struct {
	Doc      *etree.Document
	Manifest *Manifest
}

// Assembler builds and writes packages. Source documents are parsed once
// per Assembler.
type Assembler struct {
	opts  Options
	rng   *rand.Rand
	cache *siq.Cache
	log   *log.Logger
}

// New returns an Assembler drawing ids and obfuscation from rng.
func New(opts Options, rng *rand.Rand, logger *log.Logger) *Assembler {
	if logger == nil {
		logger = log.Nop()
	}
	return &Assembler{opts: opts, rng: rng, cache: siq.NewCache(), log: logger}
}

// Build creates the package document for the rounds.
func (a *Assembler) Build(rounds []*generate.Round) (*Package, error) {
	now := a.opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	id, err := a.newID()
	if err != nil {
		return nil, err
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)
	pkg := doc.CreateElement("package")
	pkg.CreateAttr("name", a.opts.Name)
	pkg.CreateAttr("version", packageVersion)
	pkg.CreateAttr("id", id)
	pkg.CreateAttr("date", now.Format("02.01.2006"))
	pkg.CreateAttr("difficulty", packageDifficulty)
	pkg.CreateAttr("xmlns", packageNamespace)

	authorsEl := pkg.CreateElement("info").CreateElement("authors")
	authors := newAuthorSet(a.opts.Author)
	manifest := newManifest()

	roundsEl := pkg.CreateElement("rounds")
	for _, r := range rounds {
		roundEl := roundsEl.CreateElement("round")
		roundEl.CreateAttr("name", r.Name)
		if r.Type == theme.RoundFinal {
			roundEl.CreateAttr("type", string(theme.RoundFinal))
		}
		themesEl := roundEl.CreateElement("themes")
		for _, t := range r.Themes {
			a.log.Debug().Str("round", r.Name).Str("theme", t.ThemeName).Str("id", t.ID).Msg("add theme")
			if err := a.addTheme(themesEl, r, t, manifest, authors); err != nil {
				return nil, err
			}
		}
	}

	for _, line := range authors.lines() {
		authorsEl.CreateElement("author").SetText(line)
	}
	doc.Indent(2)
	a.log.Info().Int("rounds", len(rounds)).Int("media", manifest.Len()).Msg("built package document")
	return &Package{Doc: doc, Manifest: manifest}, nil
}

func (a *Assembler) addTheme(parent *etree.Element, r *generate.Round, t theme.Metadata, manifest *Manifest, authors *authorSet) error {
	src, err := a.cache.Get(t.Path)
	if err != nil {
		return fmt.Errorf("reading theme %s: %w", t.ID, err)
	}
	found := findTheme(src, t)
	if found == nil {
		return &IntegrityError{Err: ErrThemeNotFound, ThemeID: t.ID, Archive: t.Path}
	}
	body := found.Copy()

	// Rounds group themes by indexed question count, so the price ladder
	// must match it.
	questions := body.FindElements(".//question")
	if len(questions) != t.QuestionsNum {
		return &IntegrityError{Err: ErrQuestionCountMismatch, ThemeID: t.ID, Archive: t.Path}
	}

	for _, atom := range body.FindElements(".//atom") {
		if err := a.rewriteAtom(atom, t, manifest); err != nil {
			return err
		}
	}
	if a.opts.Obfuscate {
		for _, answer := range body.FindElements(".//answer") {
			if text := answer.Text(); text != "" {
				answer.SetText(Obfuscate(a.rng, text))
			}
		}
	}
	if a.opts.UnifyPrice {
		setPrices(questions, r.Type)
	}

	themeEl := parent.CreateElement("theme")
	themeEl.CreateAttr("name", t.ThemeName)
	for _, child := range body.ChildElements() {
		themeEl.AddChild(child)
	}

	for _, author := range src.FindElements("//author") {
		authors.add(author.Text(), t.PackageName)
	}
	return nil
}

// rewriteAtom renames media references and obfuscates plain text.
func (a *Assembler) rewriteAtom(atom *etree.Element, t theme.Metadata, manifest *Manifest) error {
	text := atom.Text()
	if text == "" {
		return nil
	}
	atomType := atom.SelectAttrValue("type", "")
	if atomType == "" {
		if a.opts.Obfuscate {
			atom.SetText(Obfuscate(a.rng, text))
		}
		return nil
	}
	if !strings.HasPrefix(text, mediaMarker) {
		return nil
	}
	if _, ok := siq.MediaDir(atomType); !ok {
		return nil
	}
	source := strings.TrimPrefix(text, mediaMarker)
	id, err := a.newID()
	if err != nil {
		return err
	}
	name := id + path.Ext(source)
	manifest.add(t.Path, MediaRef{Type: atomType, Source: source, Name: name, ThemeID: t.ID})
	atom.SetText(mediaMarker + name)
	return nil
}

func setPrices(questions []*etree.Element, roundType theme.RoundType) {
	if roundType == theme.RoundFinal {
		for _, q := range questions {
			q.CreateAttr("price", "0")
		}
		return
	}
	for i, price := range Prices(len(questions), MaxPrice) {
		questions[i].CreateAttr("price", strconv.Itoa(price))
	}
}

// findTheme locates a theme by its round and theme position. Rounds are
// counted across the whole document, themes within the matching round.
func findTheme(doc *etree.Document, t theme.Metadata) *etree.Element {
	roundNumber := 0
	for _, r := range doc.FindElements("//round") {
		roundNumber++
		if r.SelectAttrValue("name", "") != t.RoundName {
			continue
		}
		themeNumber := 0
		for _, th := range r.FindElements(".//theme") {
			themeNumber++
			if th.SelectAttrValue("name", "") != t.ThemeName {
				continue
			}
			if roundNumber == t.RoundNumber && themeNumber == t.ThemeNumber {
				return th
			}
		}
	}
	return nil
}

func (a *Assembler) newID() (string, error) {
	id, err := uuid.NewRandomFromReader(a.rng)
	if err != nil {
		return "", fmt.Errorf("generating id: %w", err)
	}
	return id.String(), nil
}

// authorSet collects contributors and the packages they came from.
type authorSet struct {
	compiler string
	roles    map[string]map[string]bool
}

func newAuthorSet(compiler string) *authorSet {
	s := &authorSet{compiler: compiler, roles: make(map[string]map[string]bool)}
	if compiler != "" {
		s.roles[compiler] = map[string]bool{compositionRole: true}
	}
	return s
}

func (s *authorSet) add(author, pkg string) {
	author = strings.TrimSpace(author)
	if author == "" {
		return
	}
	if s.roles[author] == nil {
		s.roles[author] = make(map[string]bool)
	}
	s.roles[author][pkg] = true
}

// lines formats "author (pkg, pkg)" with the compiler first and the rest
// sorted by name.
func (s *authorSet) lines() []string {
	names := make([]string, 0, len(s.roles))
	for name := range s.roles {
		if name != s.compiler {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	if _, ok := s.roles[s.compiler]; ok {
		names = append([]string{s.compiler}, names...)
	}

	out := make([]string, 0, len(names))
	for _, name := range names {
		roles := make([]string, 0, len(s.roles[name]))
		for role := range s.roles[name] {
			roles = append(roles, role)
		}
		slices.Sort(roles)
		out = append(out, fmt.Sprintf("%s (%s)", name, strings.Join(roles, ", ")))
	}
	return out
}
