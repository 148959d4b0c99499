package indexer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/elsid/sigame-tools/internal/discovery"
	"github.com/elsid/sigame-tools/internal/siq/siqtest"
	"github.com/elsid/sigame-tools/internal/theme"
)

// newTestIndexer returns an Indexer with predictable ids.
func newTestIndexer() *Indexer {
	ix := New(nil)
	n := 0
	ix.newID = func() (string, error) {
		n++
		return fmt.Sprintf("id-%d", n), nil
	}
	return ix
}

func sampleThemes(path, fileName string) []theme.Metadata {
	base := theme.Metadata{
		Path:        path,
		PackageName: "Sample",
		Authors:     []string{"Alice", "Bob"},
		FileName:    fileName,
	}
	animals := base
	animals.ID, animals.RoundNumber, animals.ThemeNumber = "id-1", 1, 1
	animals.RoundName, animals.ThemeName, animals.QuestionsNum = "First", "Animals", 2
	animals.Base64EncodedRightAnswers = []string{theme.EncodeAnswer("Cat"), theme.EncodeAnswer("Dog")}
	animals.ImagesNum = 1

	rivers := base
	rivers.ID, rivers.RoundNumber, rivers.ThemeNumber = "id-2", 1, 2
	rivers.RoundName, rivers.ThemeName, rivers.QuestionsNum = "First", "Rivers", 1
	rivers.Base64EncodedRightAnswers = []string{theme.EncodeAnswer("Nile")}

	space := base
	space.ID, space.RoundNumber, space.ThemeNumber = "id-3", 2, 1
	space.RoundName, space.ThemeName, space.QuestionsNum = "Last", "Space", 1
	space.Base64EncodedRightAnswers = []string{theme.EncodeAnswer("Moon")}
	space.RoundType = theme.RoundFinal
	space.VoicesNum = 1

	return []theme.Metadata{animals, rivers, space}
}

func TestArchive_Extracts(t *testing.T) {
	t.Parallel()

	path := siqtest.Write(t, filepath.Join(t.TempDir(), "sample.siq"), siqtest.Package, nil)
	got, err := newTestIndexer().Archive(path)
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if diff := cmp.Diff(sampleThemes(path, "sample.siq"), got); diff != "" {
		t.Fatalf("themes (-want +got):\n%s", diff)
	}
}

func TestArchive_SidecarName(t *testing.T) {
	t.Parallel()

	path := siqtest.Write(t, filepath.Join(t.TempDir(), "123.siq"), siqtest.Package, nil)
	if err := os.WriteFile(path+".meta.json", []byte(`{"name": "Original name.siq"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := newTestIndexer().Archive(path)
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	for _, th := range got {
		if th.FileName != "Original name.siq" {
			t.Fatalf("file name = %q, want sidecar name", th.FileName)
		}
	}
}

func TestBuild_SkipsBrokenArchives(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := siqtest.Write(t, filepath.Join(dir, "a.siq"), siqtest.Package, nil)
	siqtest.Write(t, filepath.Join(dir, "b.siq"), "", map[string][]byte{"x": []byte("x")})
	if err := os.WriteFile(filepath.Join(dir, "c.siq"), []byte("not a zip"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := newTestIndexer().Build([]string{dir}, discovery.Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("themes = %d, want 3", len(got))
	}
	for _, th := range got {
		if th.Path != good {
			t.Fatalf("unexpected theme from %s", th.Path)
		}
	}
}

func ids(themes []theme.Metadata) []string {
	out := make([]string, 0, len(themes))
	for _, th := range themes {
		out = append(out, th.ID)
	}
	return out
}

func TestUpdate_KeepsIDs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := siqtest.Write(t, filepath.Join(dir, "sample.siq"), siqtest.Package, nil)
	old := sampleThemes(path, "sample.siq")
	for i := range old {
		old[i].ID = fmt.Sprintf("old-%d", i)
	}
	fresh := siqtest.Write(t, filepath.Join(dir, "fresh.siq"), siqtest.Package, nil)

	got, err := newTestIndexer().Update(theme.NewIndex(old), []string{dir}, discovery.Options{}, nil)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	want := []string{"old-0", "old-1", "old-2", "id-4", "id-5", "id-6"}
	if diff := cmp.Diff(want, ids(got)); diff != "" {
		t.Fatalf("ids (-want +got):\n%s", diff)
	}
	for _, th := range got[3:] {
		if th.Path != fresh {
			t.Fatalf("new theme from %s, want %s", th.Path, fresh)
		}
	}
}

func TestUpdate_AppendsUnknownThemesOfIndexedArchive(t *testing.T) {
	t.Parallel()

	path := siqtest.Write(t, filepath.Join(t.TempDir(), "sample.siq"), siqtest.Package, nil)
	old := sampleThemes(path, "sample.siq")[:1]
	old[0].ID = "old"

	got, err := newTestIndexer().Update(theme.NewIndex(old), []string{path}, discovery.Options{}, nil)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if diff := cmp.Diff([]string{"old", "id-2", "id-3"}, ids(got)); diff != "" {
		t.Fatalf("ids (-want +got):\n%s", diff)
	}
}

func TestUpdate_ChangedTheme(t *testing.T) {
	t.Parallel()

	path := siqtest.Write(t, filepath.Join(t.TempDir(), "sample.siq"), siqtest.Package, nil)
	old := sampleThemes(path, "sample.siq")
	old[0].ID = "changed"
	old[0].QuestionsNum = 7

	_, err := newTestIndexer().Update(theme.NewIndex(old), nil, discovery.Options{}, nil)
	if !errors.Is(err, ErrThemeChanged) {
		t.Fatalf("err = %v, want ErrThemeChanged", err)
	}
	var changed *ChangedError
	if !errors.As(err, &changed) || changed.ID != "changed" || changed.Diff == "" {
		t.Fatalf("err = %v, want ChangedError for the changed theme", err)
	}

	got, err := newTestIndexer().Update(theme.NewIndex(old), nil, discovery.Options{}, []string{"changed"})
	if err != nil {
		t.Fatalf("forced Update: %v", err)
	}
	if diff := cmp.Diff([]string{"id-2", "id-3", "id-1"}, ids(got)); diff != "" {
		t.Fatalf("forced theme should be reindexed under a new id (-want +got):\n%s", diff)
	}
}

func TestUpdate_DropsMissing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := siqtest.Write(t, filepath.Join(dir, "sample.siq"), siqtest.Package, nil)
	old := sampleThemes(path, "sample.siq")
	gone := old[0]
	gone.ID = "gone-archive"
	gone.Path = filepath.Join(dir, "gone.siq")
	moved := old[1]
	moved.ID = "gone-position"
	moved.ThemeNumber = 9

	got, err := newTestIndexer().Update(theme.NewIndex([]theme.Metadata{gone, moved, old[2]}), nil, discovery.Options{}, nil)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if diff := cmp.Diff([]string{"id-3", "id-1", "id-2"}, ids(got)); diff != "" {
		t.Fatalf("ids (-want +got):\n%s", diff)
	}
}

func TestUpdate_OldVersionIgnoresNewFields(t *testing.T) {
	t.Parallel()

	path := siqtest.Write(t, filepath.Join(t.TempDir(), "sample.siq"), siqtest.Package, nil)
	old := sampleThemes(path, "sample.siq")
	for i := range old {
		old[i].ImagesNum, old[i].VideosNum, old[i].VoicesNum = 0, 0, 0
		old[i].FileName = ""
	}

	got, err := newTestIndexer().Update(theme.Index{Version: 1, Themes: old}, nil, discovery.Options{}, nil)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got[0].ImagesNum != 1 || got[0].FileName != "sample.siq" {
		t.Fatalf("updated theme should carry current fields: %+v", got[0])
	}

	if _, err := newTestIndexer().Update(theme.NewIndex(old), nil, discovery.Options{}, nil); !errors.Is(err, ErrThemeChanged) {
		t.Fatalf("current version index with stale counters: err = %v, want ErrThemeChanged", err)
	}
}
