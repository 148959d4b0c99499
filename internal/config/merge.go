package config

// Merge layers configs from lowest to highest precedence, typically
// defaults, then the config file, then command line overrides. Set fields
// of a later config replace earlier values; rule lists are appended so
// file rules are evaluated before command line rules.
func Merge(layers ...*Config) *Config {
	out := &Config{}
	for _, l := range layers {
		if l == nil {
			continue
		}
		mergeString(&out.Index, l.Index)
		mergeString(&out.OutputIndex, l.OutputIndex)
		mergeString(&out.PackageName, l.PackageName)
		mergeString(&out.Author, l.Author)
		if l.Seed != nil {
			seed := *l.Seed
			out.Seed = &seed
		}

		mergeInt(&out.Rounds, l.Rounds)
		mergeInt(&out.ThemesPerRound, l.ThemesPerRound)
		mergeInt(&out.MinQuestions, l.MinQuestions)
		mergeInt(&out.MaxQuestions, l.MaxQuestions)
		mergeInt(&out.FinalThemes, l.FinalThemes)

		mergeBool(&out.UniqueThemeNames, l.UniqueThemeNames)
		mergeBool(&out.UniqueRightAnswers, l.UniqueRightAnswers)
		mergeBool(&out.CheckSimilarity, l.CheckSimilarity)
		mergeBool(&out.Obfuscate, l.Obfuscate)
		mergeBool(&out.UnifyPrice, l.UnifyPrice)
		mergeBool(&out.Shuffle, l.Shuffle)

		out.ExcludeIndex = append(out.ExcludeIndex, l.ExcludeIndex...)
		out.Filters = append(out.Filters, l.Filters...)
		out.Weights = append(out.Weights, l.Weights...)
	}
	return out
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func mergeInt(dst **int, v *int) {
	if v != nil {
		n := *v
		*dst = &n
	}
}

func mergeBool(dst **bool, v *bool) {
	if v != nil {
		b := *v
		*dst = &b
	}
}
