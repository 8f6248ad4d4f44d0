package usecase

import (
	"github.com/rs/zerolog"

	"github.com/dealfinder/backend/internal/domain"
)

// Strategy selects how a candidate batch is turned into the final ordering
type Strategy int

const (
	// StrategyRank filters, scores and sorts a single candidate list
	StrategyRank Strategy = iota
	// StrategyMerge combines two differently ordered lists without scoring
	StrategyMerge
)

func (s Strategy) String() string {
	switch s {
	case StrategyRank:
		return "rank"
	case StrategyMerge:
		return "merge"
	default:
		return "unknown"
	}
}

// CandidateBatch is the upstream result handed to the matching pipeline.
// Secondary is only read by StrategyMerge.
type CandidateBatch struct {
	Strategy  Strategy
	Primary   []domain.Candidate
	Secondary []domain.Candidate
}

// Outcome holds the result of one pipeline run.
// Matches is set for StrategyRank, Listings for StrategyMerge.
type Outcome struct {
	Strategy Strategy
	Matches  []domain.ScoredCandidate
	Listings []domain.Candidate
}

// MatchConfig holds configuration for the matching service
type MatchConfig struct {
	Vocabulary  Vocabulary
	Conflicts   ConflictMap
	EnableDebug bool
}

// MatchingService runs the tokenize -> filter -> score -> rank pipeline
type MatchingService struct {
	filter      *SmartFilter
	enableDebug bool
	logger      zerolog.Logger
}

// NewMatchingService creates a matching service. Missing vocabulary or
// conflict data falls back to the built-in tables.
func NewMatchingService(config MatchConfig, logger zerolog.Logger) *MatchingService {
	vocabulary := config.Vocabulary
	if vocabulary == nil {
		vocabulary = DefaultVocabulary()
	}
	conflicts := config.Conflicts
	if conflicts == nil {
		conflicts = DefaultConflictMap()
	}

	return &MatchingService{
		filter:      NewSmartFilter(vocabulary, conflicts),
		enableDebug: config.EnableDebug,
		logger:      logger.With().Str("component", "matching").Logger(),
	}
}

// Run produces the final ordering for batch using the strategy it names
func (s *MatchingService) Run(ref domain.ReferenceItem, batch CandidateBatch) Outcome {
	switch batch.Strategy {
	case StrategyMerge:
		return Outcome{Strategy: StrategyMerge, Listings: MergeDedup(batch.Primary, batch.Secondary)}
	default:
		return Outcome{Strategy: StrategyRank, Matches: s.RankCandidates(ref, batch.Primary)}
	}
}

// RankCandidates returns the cheaper, relevant candidates sorted by score.
// The result is never nil.
func (s *MatchingService) RankCandidates(ref domain.ReferenceItem, candidates []domain.Candidate) []domain.ScoredCandidate {
	titleKeywords := Tokenize(ref.Title)
	queryKeywords := Tokenize(ref.SearchQuery)

	filtered := s.filter.Filter(candidates, titleKeywords.Union(queryKeywords))

	scored := make([]domain.ScoredCandidate, 0, len(filtered))
	for _, c := range filtered {
		match, ok := Score(c, titleKeywords, queryKeywords, ref.Price)
		if !ok {
			continue
		}
		if s.enableDebug {
			s.logger.Debug().
				Str("product_id", c.ProductID).
				Str("title", c.Title).
				Float64("score", match.Score).
				Msg("candidate scored")
		}
		scored = append(scored, match)
	}

	ranked := Rank(scored)

	if s.enableDebug {
		noun, _ := s.filter.CoreNoun(titleKeywords.Union(queryKeywords))
		s.logger.Debug().
			Str("reference", ref.Title).
			Str("core_noun", noun).
			Int("candidates", len(candidates)).
			Int("after_filter", len(filtered)).
			Int("matches", len(ranked)).
			Msg("ranking complete")
	}

	return ranked
}
