package usecase

import (
	"strings"

	"github.com/dealfinder/backend/internal/domain"
)

// SmartFilter drops candidates whose title names a product type that
// conflicts with the reference item's core noun
type SmartFilter struct {
	vocabulary Vocabulary
	conflicts  ConflictMap
}

// NewSmartFilter creates a filter over fixed vocabulary and conflict data.
// Neither map is copied or modified.
func NewSmartFilter(vocabulary Vocabulary, conflicts ConflictMap) *SmartFilter {
	return &SmartFilter{vocabulary: vocabulary, conflicts: conflicts}
}

// CoreNoun returns the first keyword, in set order, that is a recognized product noun
func (f *SmartFilter) CoreNoun(keywords KeywordSet) (string, bool) {
	for _, t := range keywords.tokens {
		if f.vocabulary.Contains(t) {
			return t, true
		}
	}
	return "", false
}

// Filter returns the candidates that do not conflict with the reference keywords.
// Survivors keep their relative order; the input slice is not modified.
func (f *SmartFilter) Filter(candidates []domain.Candidate, keywords KeywordSet) []domain.Candidate {
	noun, ok := f.CoreNoun(keywords)
	if !ok {
		return candidates
	}
	forbidden, ok := f.conflicts[noun]
	if !ok || len(forbidden) == 0 {
		return candidates
	}

	kept := make([]domain.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if !containsAny(strings.ToLower(c.Title), forbidden) {
			kept = append(kept, c)
		}
	}
	return kept
}

func containsAny(s string, fragments []string) bool {
	for _, frag := range fragments {
		if strings.Contains(s, frag) {
			return true
		}
	}
	return false
}
