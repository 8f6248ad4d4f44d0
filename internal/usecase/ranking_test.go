package usecase

import (
	"testing"

	"github.com/dealfinder/backend/internal/domain"
)

func TestRank(t *testing.T) {
	t.Run("sorts by score descending", func(t *testing.T) {
		in := []domain.ScoredCandidate{
			{Title: "low", Score: 0.1},
			{Title: "high", Score: 0.9},
			{Title: "mid", Score: 0.5},
		}

		got := Rank(in)
		for i := 1; i < len(got); i++ {
			if got[i-1].Score < got[i].Score {
				t.Errorf("Rank() not sorted at %d: %v < %v", i, got[i-1].Score, got[i].Score)
			}
		}
		if got[0].Title != "high" || got[2].Title != "low" {
			t.Errorf("Rank() order = %v, %v, %v", got[0].Title, got[1].Title, got[2].Title)
		}
		if in[0].Title != "low" {
			t.Error("Rank() modified its input")
		}
	})

	t.Run("ties keep first-seen order", func(t *testing.T) {
		in := []domain.ScoredCandidate{
			{Title: "a", Score: 0.5},
			{Title: "b", Score: 0.7},
			{Title: "c", Score: 0.5},
			{Title: "d", Score: 0.5},
		}

		got := Rank(in)
		want := []string{"b", "a", "c", "d"}
		for i, w := range want {
			if got[i].Title != w {
				t.Errorf("Rank()[%d] = %q, want %q", i, got[i].Title, w)
			}
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if got := Rank(nil); len(got) != 0 {
			t.Errorf("Rank(nil) = %v, want empty", got)
		}
	})
}

func TestMergeDedup(t *testing.T) {
	t.Run("first list wins on duplicates", func(t *testing.T) {
		a := []domain.Candidate{
			{ProductID: "1", Title: "a1"},
			{ProductID: "2", Title: "a2"},
		}
		b := []domain.Candidate{
			{ProductID: "2", Title: "b2"},
			{ProductID: "3", Title: "b3"},
		}

		got := MergeDedup(a, b)
		want := []string{"a1", "a2", "b3"}
		if len(got) != len(want) {
			t.Fatalf("MergeDedup() len = %d, want %d", len(got), len(want))
		}
		for i, w := range want {
			if got[i].Title != w {
				t.Errorf("MergeDedup()[%d] = %q, want %q", i, got[i].Title, w)
			}
		}
	})

	t.Run("duplicates within one list collapse", func(t *testing.T) {
		a := []domain.Candidate{{ProductID: "1", Title: "first"}, {ProductID: "1", Title: "second"}}
		got := MergeDedup(a, nil)
		if len(got) != 1 || got[0].Title != "first" {
			t.Errorf("MergeDedup() = %v, want [first]", titles(got))
		}
	})

	t.Run("empty lists", func(t *testing.T) {
		got := MergeDedup(nil, nil)
		if got == nil || len(got) != 0 {
			t.Errorf("MergeDedup(nil, nil) = %v, want empty non-nil", got)
		}
	})

	t.Run("only second list", func(t *testing.T) {
		b := []domain.Candidate{{ProductID: "9", Title: "b9"}}
		got := MergeDedup(nil, b)
		if len(got) != 1 || got[0].Title != "b9" {
			t.Errorf("MergeDedup(nil, b) = %v, want [b9]", titles(got))
		}
	})
}
