package usecase

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dealfinder/backend/internal/domain"
)

const maxQueryLength = 100

// QueryPreprocessor turns a reference item into a marketplace search phrase
type QueryPreprocessor struct {
	enableDebug bool
	logger      zerolog.Logger
}

// Compiled regex patterns for query preprocessing
var (
	// Matches storage and size patterns like "128GB", "6.1 inch", "20W", "1m"
	specPattern = regexp.MustCompile(`(?i)\b\d+\.?\d*\s*(?:gb|tb|mah|w|inch|mm|cm|m|ft)\b`)

	// Matches pack/count patterns like "2 pack", "pack of 3", "3-pack", "2pcs"
	packCountPattern = regexp.MustCompile(`(?i)\b\d+[-\s]*(?:pack|pk|pcs|pieces?|count|ct)\b|\bpack\s*of\s*\d+\b`)

	// Characters the marketplace gateway rejects or ignores
	queryPunctuation = regexp.MustCompile(`[#%+@!^*()=\[\]{}<>|\\~"` + "`" + `,;:]`)

	multiSpacePattern = regexp.MustCompile(`\s+`)
)

// queryNoiseWords are retailer marketing terms that only narrow the search badly
var queryNoiseWords = map[string]bool{
	"new": true, "newest": true, "latest": true, "upgraded": true, "2024": true, "2025": true,
	"premium": true, "genuine": true, "official": true, "authentic": true,
	"best": true, "seller": true, "deal": true, "sale": true, "hot": true,
	"compatible": true, "with": true, "for": true, "edition": true,
}

// NewQueryPreprocessor creates a new query preprocessor
func NewQueryPreprocessor(enableDebug bool, logger zerolog.Logger) *QueryPreprocessor {
	return &QueryPreprocessor{
		enableDebug: enableDebug,
		logger:      logger.With().Str("component", "preprocess").Logger(),
	}
}

// BuildKeywords returns the upstream search phrase for ref. An explicit user
// search query wins; otherwise the title is cleaned of specs, pack counts and
// marketing noise.
func (p *QueryPreprocessor) BuildKeywords(ref domain.ReferenceItem) string {
	if q := normalizeSpaces(ref.SearchQuery); q != "" {
		return truncateAtWord(q, maxQueryLength)
	}
	if ref.Title == "" {
		return ""
	}

	cleaned := packCountPattern.ReplaceAllString(ref.Title, " ")
	cleaned = specPattern.ReplaceAllString(cleaned, " ")
	cleaned = queryPunctuation.ReplaceAllString(cleaned, " ")
	cleaned = removeNoiseWords(cleaned)
	cleaned = truncateAtWord(normalizeSpaces(cleaned), maxQueryLength)

	// Everything was noise; fall back to the raw title
	if cleaned == "" {
		cleaned = truncateAtWord(normalizeSpaces(queryPunctuation.ReplaceAllString(ref.Title, " ")), maxQueryLength)
	}

	if p.enableDebug {
		p.logger.Debug().Str("input", ref.Title).Str("output", cleaned).Msg("built search keywords")
	}

	return cleaned
}

// removeNoiseWords drops marketing terms, keeping the original casing of other words
func removeNoiseWords(s string) string {
	words := strings.Fields(s)
	kept := make([]string, 0, len(words))
	for _, word := range words {
		clean := strings.ToLower(strings.Trim(word, ".!?-'"))
		if queryNoiseWords[clean] {
			continue
		}
		kept = append(kept, word)
	}
	return strings.Join(kept, " ")
}

func normalizeSpaces(s string) string {
	return strings.TrimSpace(multiSpacePattern.ReplaceAllString(s, " "))
}

// truncateAtWord cuts s to at most limit bytes, preferring a word boundary in the second half
func truncateAtWord(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := s[:limit]
	if lastSpace := strings.LastIndex(cut, " "); lastSpace > limit/2 {
		cut = cut[:lastSpace]
	}
	return strings.TrimSpace(cut)
}
