package assemble

// MediaRef is one media file to copy from a source archive.
type MediaRef struct {
	Type    string
	Source  string
	Name    string
	ThemeID string
}

// Manifest groups media references by source archive in order of first
// reference.
type Manifest struct {
	order []string
	refs  map[string][]MediaRef
}

func newManifest() *Manifest {
	return &Manifest{refs: make(map[string][]MediaRef)}
}

func (m *Manifest) add(archive string, ref MediaRef) {
	if _, ok := m.refs[archive]; !ok {
		m.order = append(m.order, archive)
	}
	m.refs[archive] = append(m.refs[archive], ref)
}

// Archives returns the source archives in order of first reference.
func (m *Manifest) Archives() []string {
	return m.order
}

// Refs returns the references into one archive in document order.
func (m *Manifest) Refs(archive string) []MediaRef {
	return m.refs[archive]
}

// Len returns the total number of references.
func (m *Manifest) Len() int {
	n := 0
	for _, refs := range m.refs {
		n += len(refs)
	}
	return n
}
