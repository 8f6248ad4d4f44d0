package usecase

import (
	"cmp"
	"slices"

	"github.com/dealfinder/backend/internal/domain"
)

// Rank orders matches by score, highest first. Equal scores keep their input order.
func Rank(matches []domain.ScoredCandidate) []domain.ScoredCandidate {
	ranked := slices.Clone(matches)
	slices.SortStableFunc(ranked, func(a, b domain.ScoredCandidate) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return ranked
}

// MergeDedup concatenates a and b and keeps the first listing seen for each product ID
func MergeDedup(a, b []domain.Candidate) []domain.Candidate {
	merged := make([]domain.Candidate, 0, len(a)+len(b))
	seen := make(map[string]struct{}, len(a)+len(b))

	for _, list := range [][]domain.Candidate{a, b} {
		for _, c := range list {
			if _, dup := seen[c.ProductID]; dup {
				continue
			}
			seen[c.ProductID] = struct{}{}
			merged = append(merged, c)
		}
	}
	return merged
}
