package generate

import (
	"fmt"

	"github.com/elsid/sigame-tools/internal/theme"
)

// FinalRoundName is the label of the last round.
const FinalRoundName = "Final round"

// Round is one round of the generated package.
type Round struct {
	Name   string
	Type   theme.RoundType
	Themes []theme.Metadata
}

// QuestionsNum returns the question count shared by the round's themes, or
// zero for an empty round.
func (r *Round) QuestionsNum() int {
	if len(r.Themes) == 0 {
		return 0
	}
	return r.Themes[0].QuestionsNum
}

// makeRounds returns rounds-1 normal rounds followed by the final round.
func makeRounds(rounds int) []*Round {
	out := make([]*Round, 0, rounds)
	for i := 1; i < rounds; i++ {
		out = append(out, &Round{Name: fmt.Sprintf("Round %d", i), Type: theme.RoundNormal})
	}
	return append(out, &Round{Name: FinalRoundName, Type: theme.RoundFinal})
}

// target returns how many themes a round needs.
func (o Options) target(r *Round) int {
	if r.Type == theme.RoundFinal {
		return o.finalThemes()
	}
	return o.ThemesPerRound
}

// questionRange returns the allowed question counts for a round type.
func (o Options) questionRange(roundType theme.RoundType) (int, int) {
	if roundType == theme.RoundFinal {
		return 1, 1
	}
	return o.MinQuestions, o.MaxQuestions
}

// Selected returns every theme of the rounds in round order.
func Selected(rounds []*Round) []theme.Metadata {
	var out []theme.Metadata
	for _, r := range rounds {
		out = append(out, r.Themes...)
	}
	return out
}
