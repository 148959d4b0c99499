package generate

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/elsid/sigame-tools/internal/theme"
)

// minSimilarAnswerLen is the shortest answer checked for near duplicates.
const minSimilarAnswerLen = 5

// usage tracks theme names and right answers already placed in the
// package. A nil set means the corresponding check is disabled.
type usage struct {
	names   map[string]bool
	answers map[string]bool
	similar bool
	// lowered keeps the answers in insertion order for similarity scans.
	lowered []string
	journal []usageEntry
}

type usageEntry struct {
	answer bool
	value  string
}

func newUsage(opts Options) *usage {
	u := &usage{}
	if opts.UniqueThemeNames {
		u.names = make(map[string]bool)
	}
	if opts.UniqueRightAnswers {
		u.answers = make(map[string]bool)
		u.similar = opts.CheckAnswerSimilarity
	}
	return u
}

// isUsed reports whether the theme collides with anything already placed.
func (u *usage) isUsed(t theme.Metadata) bool {
	if u.names != nil && u.names[t.Name()] {
		return true
	}
	if u.answers == nil {
		return false
	}
	for _, answer := range t.RightAnswers() {
		if u.answers[answer] {
			return true
		}
		if u.similar && u.containsSimilar(answer) {
			return true
		}
	}
	return false
}

func (u *usage) containsSimilar(answer string) bool {
	if utf8.RuneCountInString(answer) < minSimilarAnswerLen {
		return false
	}
	target := strings.ToLower(answer)
	targetLen := utf8.RuneCountInString(target)
	for _, value := range u.lowered {
		longest := max(targetLen, utf8.RuneCountInString(value))
		if levenshtein.ComputeDistance(target, value) <= max(1, longest/10) {
			return true
		}
	}
	return false
}

// add records the theme's name and answers.
func (u *usage) add(t theme.Metadata) {
	if u.names != nil {
		name := t.Name()
		if !u.names[name] {
			u.names[name] = true
			u.journal = append(u.journal, usageEntry{value: name})
		}
	}
	if u.answers != nil {
		for _, answer := range t.RightAnswers() {
			if u.answers[answer] {
				continue
			}
			u.answers[answer] = true
			u.lowered = append(u.lowered, strings.ToLower(answer))
			u.journal = append(u.journal, usageEntry{answer: true, value: answer})
		}
	}
}

// transaction marks a point the usage sets can be restored to.
type transaction struct {
	u    *usage
	mark int
}

func (u *usage) begin() transaction {
	return transaction{u: u, mark: len(u.journal)}
}

// commit keeps everything added since begin. The entries stay journaled,
// so an enclosing transaction can still roll them back.
func (tx transaction) commit() {}

// rollback forgets everything added since begin.
func (tx transaction) rollback() {
	u := tx.u
	for len(u.journal) > tx.mark {
		last := u.journal[len(u.journal)-1]
		u.journal = u.journal[:len(u.journal)-1]
		if last.answer {
			delete(u.answers, last.value)
			u.lowered = u.lowered[:len(u.lowered)-1]
			continue
		}
		delete(u.names, last.value)
	}
}
