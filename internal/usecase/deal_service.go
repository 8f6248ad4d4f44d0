package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/dealfinder/backend/internal/domain"
)

// Package-level compiled regex patterns for performance
var (
	nonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9\s]`)
	multipleSpacesRegex  = regexp.MustCompile(`\s+`)
)

const (
	defaultCacheTTL   = 6 * time.Hour
	defaultMaxResults = 10
)

// DealServiceConfig holds configuration for the deal service
type DealServiceConfig struct {
	CacheTTL    time.Duration
	MaxResults  int
	EnableDebug bool
}

// DealService finds cheaper marketplace alternatives for a reference item
type DealService struct {
	cache        domain.CacheRepository
	marketplace  domain.MarketplaceClient
	matcher      *MatchingService
	preprocessor *QueryPreprocessor
	cacheTTL     time.Duration
	maxResults   int
	logger       zerolog.Logger
}

// NewDealService creates a new deal service with dependencies
func NewDealService(
	cache domain.CacheRepository,
	marketplace domain.MarketplaceClient,
	config DealServiceConfig,
	logger zerolog.Logger,
) *DealService {
	cacheTTL := config.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}
	maxResults := config.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	return &DealService{
		cache:        cache,
		marketplace:  marketplace,
		matcher:      NewMatchingService(MatchConfig{EnableDebug: config.EnableDebug}, logger),
		preprocessor: NewQueryPreprocessor(config.EnableDebug, logger),
		cacheTTL:     cacheTTL,
		maxResults:   maxResults,
		logger:       logger.With().Str("component", "deals").Logger(),
	}
}

// FindDeals looks up cheaper matches for ref.
// Flow: validate -> check cache -> query marketplace -> rank -> cache -> return
func (s *DealService) FindDeals(ctx context.Context, ref *domain.ReferenceItem) ([]domain.ScoredCandidate, error) {
	if err := validateReference(ref); err != nil {
		return nil, err
	}

	cacheKey := generateCacheKey(ref)
	if cached, ok := s.getFromCache(ctx, cacheKey); ok {
		return cached, nil
	}

	candidates, err := s.marketplace.SearchProducts(ctx, domain.SearchParams{
		Keywords:     s.preprocessor.BuildKeywords(*ref),
		CategoryID:   ref.Category,
		MaxSalePrice: ref.Price,
		Sort:         domain.SortSalePriceAsc,
	})
	if err != nil {
		return nil, upstreamError(err)
	}

	outcome := s.matcher.Run(*ref, CandidateBatch{Strategy: StrategyRank, Primary: candidates})
	matches := outcome.Matches
	if len(matches) > s.maxResults {
		matches = matches[:s.maxResults]
	}

	if err := s.setInCache(ctx, cacheKey, matches); err != nil {
		s.logger.Warn().Err(err).Str("key", cacheKey).Msg("failed to cache deals")
	}

	return matches, nil
}

// FindListings runs two differently ordered marketplace queries in parallel and
// merges them, keeping the cheapest-first listing for products seen in both.
// One failed query degrades to the other's results.
func (s *DealService) FindListings(ctx context.Context, ref *domain.ReferenceItem) ([]domain.Candidate, error) {
	if err := validateReference(ref); err != nil {
		return nil, err
	}

	keywords := s.preprocessor.BuildKeywords(*ref)
	sorts := [2]domain.ProductSort{domain.SortSalePriceAsc, domain.SortLastVolumeDesc}

	var results [2][]domain.Candidate
	var errs [2]error

	g, gctx := errgroup.WithContext(ctx)
	for i, sort := range sorts {
		i, sort := i, sort
		g.Go(func() error {
			results[i], errs[i] = s.marketplace.SearchProducts(gctx, domain.SearchParams{
				Keywords:     keywords,
				CategoryID:   ref.Category,
				MaxSalePrice: ref.Price,
				Sort:         sort,
			})
			// Never cancel the sibling query; a partial result is still useful
			return nil
		})
	}
	_ = g.Wait()

	if errs[0] != nil && errs[1] != nil {
		return nil, upstreamError(errors.Join(errs[0], errs[1]))
	}
	for i, err := range errs {
		if err != nil {
			s.logger.Warn().Err(err).Str("sort", string(sorts[i])).Msg("listing query failed, using partial results")
		}
	}

	outcome := s.matcher.Run(*ref, CandidateBatch{
		Strategy:  StrategyMerge,
		Primary:   results[0],
		Secondary: results[1],
	})
	return outcome.Listings, nil
}

// validateReference rejects items the pipeline cannot price-gate against
func validateReference(ref *domain.ReferenceItem) error {
	if ref == nil || strings.TrimSpace(ref.Title) == "" {
		return domain.ErrInvalidRequest
	}
	if math.IsNaN(ref.Price) || math.IsInf(ref.Price, 0) || ref.Price <= 0 {
		return fmt.Errorf("%w: price must be a positive number", domain.ErrInvalidRequest)
	}
	return nil
}

// upstreamError tags err as an upstream failure unless it is a context error or already tagged
func upstreamError(err error) error {
	if errors.Is(err, domain.ErrUpstreamFailure) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
}

// generateCacheKey creates a normalized cache key from the reference item.
// Format: "deals:{title}:{price}:{category}:{query}"
func generateCacheKey(ref *domain.ReferenceItem) string {
	return fmt.Sprintf("deals:%s:%s:%s:%s",
		normalizeForCacheKey(ref.Title),
		strconv.FormatFloat(ref.Price, 'f', 2, 64),
		normalizeForCacheKey(ref.Category),
		normalizeForCacheKey(ref.SearchQuery),
	)
}

// normalizeForCacheKey lowercases s, drops special characters and collapses whitespace
func normalizeForCacheKey(s string) string {
	if s == "" {
		return ""
	}
	result := strings.ToLower(s)
	result = nonAlphanumericRegex.ReplaceAllString(result, "")
	result = multipleSpacesRegex.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}

// getFromCache returns cached matches; any cache or decode failure counts as a miss
func (s *DealService) getFromCache(ctx context.Context, key string) ([]domain.ScoredCandidate, bool) {
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			s.logger.Warn().Err(err).Str("key", key).Msg("cache lookup failed")
		}
		return nil, false
	}

	var matches []domain.ScoredCandidate
	if err := json.Unmarshal(data, &matches); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("discarding undecodable cache entry")
		return nil, false
	}
	if matches == nil {
		matches = []domain.ScoredCandidate{}
	}
	return matches, true
}

// setInCache stores matches in cache
func (s *DealService) setInCache(ctx context.Context, key string, matches []domain.ScoredCandidate) error {
	data, err := json.Marshal(matches)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, key, data, s.cacheTTL)
}
