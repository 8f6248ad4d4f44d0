package usecase

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/dealfinder/backend/internal/domain"
)

// Blend weights between the user's search intent and the reference title context
const (
	intentWeight  = 0.40
	contextWeight = 0.60
)

// SourceLabel marks every match produced from marketplace listings
const SourceLabel = "AliExpress"

const defaultCurrency = "USD"

// leadingNumberRegex finds the first decimal number in a price string
var leadingNumberRegex = regexp.MustCompile(`[-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?`)

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
}

// Score applies the price gate and blends intent and context Jaccard similarity.
// It reports false for candidates that are not strictly cheaper than referencePrice
// or share no keywords with the reference item.
func Score(
	candidate domain.Candidate,
	titleKeywords KeywordSet,
	queryKeywords KeywordSet,
	referencePrice float64,
) (domain.ScoredCandidate, bool) {
	price, ok := ParsePrice(candidate.SalePrice)
	if !ok || !(price < referencePrice) {
		return domain.ScoredCandidate{}, false
	}

	candidateKeywords := Tokenize(candidate.Title)
	intentScore := Jaccard(queryKeywords, candidateKeywords)
	contextScore := Jaccard(titleKeywords, candidateKeywords)

	finalScore := intentWeight*intentScore + contextWeight*contextScore
	if finalScore <= 0 {
		return domain.ScoredCandidate{}, false
	}

	return domain.ScoredCandidate{
		Title:        candidate.Title,
		Link:         candidate.PromotionLink,
		Price:        price,
		PriceDisplay: FormatPrice(price, candidate.CurrencyCode),
		SourceLabel:  SourceLabel,
		ImageURL:     candidate.ImageURL,
		Score:        finalScore,
		ProductID:    candidate.ProductID,
	}, true
}

// ParsePrice extracts the first decimal number from a marketplace price.
// Thousands separators are ignored. Only finite positive values are accepted.
func ParsePrice(p domain.Price) (float64, bool) {
	raw := strings.ReplaceAll(strings.TrimSpace(p.String()), ",", "")
	match := leadingNumberRegex.FindString(raw)
	if match == "" {
		return 0, false
	}

	value, err := strconv.ParseFloat(match, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return 0, false
	}
	return value, true
}

// FormatPrice renders a price for display, e.g. "$8.00" or "8.00 CNY"
func FormatPrice(price float64, currency string) string {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "" {
		code = defaultCurrency
	}
	if symbol, ok := currencySymbols[code]; ok {
		return fmt.Sprintf("%s%.2f", symbol, price)
	}
	return fmt.Sprintf("%.2f %s", price, code)
}
