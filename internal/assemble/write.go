package assemble

import (
	"fmt"

	"github.com/elsid/sigame-tools/internal/siq"
)

// Write stores the package at output. Media files are copied from their
// source archives under their new names. On any failure the output path
// is left as it was.
func (a *Assembler) Write(pkg *Package, output string) (err error) {
	w, err := siq.Create(output)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			w.Abort()
		}
	}()

	if err := w.WriteConstFiles(); err != nil {
		return err
	}
	if err := w.WriteContent(pkg.Doc); err != nil {
		return err
	}
	for _, archive := range pkg.Manifest.Archives() {
		if err := a.copyMedia(w, archive, pkg.Manifest.Refs(archive)); err != nil {
			return err
		}
	}
	if err := w.Commit(); err != nil {
		return err
	}
	a.log.Info().Str("path", output).Msg("wrote package")
	return nil
}

func (a *Assembler) copyMedia(w *siq.Writer, archive string, refs []MediaRef) error {
	a.log.Debug().Str("archive", archive).Int("files", len(refs)).Msg("copy media")
	src, err := siq.Open(archive)
	if err != nil {
		return err
	}
	defer src.Close()

	for _, ref := range refs {
		f, ok := src.LookupMedia(ref.Type, ref.Source)
		if !ok {
			return &IntegrityError{
				Err:       ErrMediaNotFound,
				ThemeID:   ref.ThemeID,
				Archive:   archive,
				MediaType: ref.Type,
				File:      ref.Source,
			}
		}
		data, err := siq.ReadFile(f)
		if err != nil {
			return fmt.Errorf("reading %s from %s: %w", f.Name, archive, err)
		}
		if err := w.WriteMedia(ref.Type, ref.Name, data); err != nil {
			return err
		}
	}
	return nil
}
