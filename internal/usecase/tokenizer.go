package usecase

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Package-level compiled regex patterns for performance
var (
	// Matches quantity/unit runs like "600g", "1 kg", "250ml" when followed
	// by whitespace or end of string. Alternation order matters for the
	// single-letter units.
	quantityUnitRegex = regexp.MustCompile(`\d+\s?(?:g|kg|ml|l|mg|szt|pcs|oz|lb)(?:\s|$)`)

	// Maximal runs of word characters. \p{L}\p{N} instead of \w so Polish
	// diacritics survive tokenization.
	wordRegex = regexp.MustCompile(`[\p{L}\p{N}_]+`)
)

// Tokens shorter than this carry no signal in product names.
const minTokenLength = 3

// nameStopWords is a fixed bilingual stop-word list: English and Polish
// articles/prepositions plus generic packaging and marketing fillers that
// appear in most product names of a category.
var nameStopWords = map[string]bool{
	// English
	"the": true, "and": true, "for": true, "with": true, "of": true,
	"in": true, "on": true, "at": true, "a": true, "an": true,
	"pack": true, "mix": true, "set": true, "piece": true, "pieces": true,
	"bag": true, "box": true, "free": true,
	// Polish
	"i": true, "na": true, "do": true, "z": true, "w": true,
	"o": true, "dla": true, "po": true, "ze": true, "od": true,
}

// TokenSet is a set of normalized keywords extracted from a product name.
type TokenSet map[string]struct{}

// Contains reports whether the token is in the set.
func (s TokenSet) Contains(token string) bool {
	_, ok := s[token]
	return ok
}

// Tokenize turns a raw product name into its set of significant keywords.
// Lowercases, strips quantity/unit runs, extracts word runs, and drops
// stop words and tokens shorter than three characters. Duplicates collapse;
// an empty name yields an empty set.
func Tokenize(name string) TokenSet {
	tokens := make(TokenSet)
	if name == "" {
		return tokens
	}

	text := strings.ToLower(name)
	text = quantityUnitRegex.ReplaceAllString(text, " ")

	for _, word := range wordRegex.FindAllString(text, -1) {
		if nameStopWords[word] {
			continue
		}
		if utf8.RuneCountInString(word) < minTokenLength {
			continue
		}
		tokens[word] = struct{}{}
	}

	return tokens
}
