package assemble

import (
	"math/rand"
	"strings"
	"unicode"
)

const (
	upperLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowerLetters = "abcdefghijklmnopqrstuvwxyz"
)

// Obfuscate replaces letters with random ASCII letters of the same case and
// digits with random digits. Everything else is kept in place.
func Obfuscate(rng *rand.Rand, text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case unicode.IsDigit(r):
			b.WriteByte(byte('0' + rng.Intn(10)))
		case unicode.IsUpper(r):
			b.WriteByte(upperLetters[rng.Intn(len(upperLetters))])
		case unicode.IsLetter(r):
			b.WriteByte(lowerLetters[rng.Intn(len(lowerLetters))])
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
