package usecase

import (
	"regexp"
	"strings"
)

// disallowedCharsRegex matches everything a keyword may not contain
var disallowedCharsRegex = regexp.MustCompile(`[^a-z0-9\s-]`)

// stopWords are dropped from every keyword set
var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true,
	"of": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "with": true, "by": true, "from": true, "is": true,
	"it": true, "as": true, "be": true, "are": true, "this": true,
	// Listing noise
	"new": true, "hot": true, "sale": true, "free": true, "shipping": true,
	"best": true, "top": true, "quality": true, "high": true, "original": true,
	"-": true,
}

// KeywordSet is a set of normalized tokens.
// Tokens remember the order they were first seen in; membership never depends on it.
type KeywordSet struct {
	tokens []string
	index  map[string]struct{}
}

// NewKeywordSet builds a set from tokens, collapsing duplicates
func NewKeywordSet(tokens ...string) KeywordSet {
	ks := KeywordSet{index: make(map[string]struct{}, len(tokens))}
	for _, t := range tokens {
		ks.add(t)
	}
	return ks
}

func (ks *KeywordSet) add(token string) {
	if _, ok := ks.index[token]; ok {
		return
	}
	ks.index[token] = struct{}{}
	ks.tokens = append(ks.tokens, token)
}

// Len returns the number of distinct tokens
func (ks KeywordSet) Len() int {
	return len(ks.tokens)
}

// Contains reports whether token is in the set
func (ks KeywordSet) Contains(token string) bool {
	_, ok := ks.index[token]
	return ok
}

// Tokens returns the tokens in first-seen order
func (ks KeywordSet) Tokens() []string {
	out := make([]string, len(ks.tokens))
	copy(out, ks.tokens)
	return out
}

// Union returns a new set with the tokens of ks followed by the new tokens of other
func (ks KeywordSet) Union(other KeywordSet) KeywordSet {
	out := NewKeywordSet(ks.tokens...)
	for _, t := range other.tokens {
		out.add(t)
	}
	return out
}

// Tokenize lowercases text, strips everything outside [a-z0-9\s-], splits on
// whitespace and drops stop words. Repeated words collapse into one entry.
func Tokenize(text string) KeywordSet {
	cleaned := disallowedCharsRegex.ReplaceAllString(strings.ToLower(text), "")

	ks := NewKeywordSet()
	for _, word := range strings.Fields(cleaned) {
		if stopWords[word] {
			continue
		}
		ks.add(word)
	}
	return ks
}

// Jaccard returns |a ∩ b| / |a ∪ b|, or 0 when either set is empty
func Jaccard(a, b KeywordSet) float64 {
	if a.Len() == 0 || b.Len() == 0 {
		return 0
	}

	small, large := a, b
	if small.Len() > large.Len() {
		small, large = large, small
	}

	intersection := 0
	for _, t := range small.tokens {
		if large.Contains(t) {
			intersection++
		}
	}

	union := a.Len() + b.Len() - intersection
	return float64(intersection) / float64(union)
}
