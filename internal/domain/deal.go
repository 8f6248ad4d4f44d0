package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// ReferenceItem is the product the user is looking at and wants a cheaper match for
type ReferenceItem struct {
	Title       string  `json:"title" binding:"required"`
	Price       float64 `json:"price" binding:"required"`
	Category    string  `json:"category,omitempty"`
	SearchQuery string  `json:"searchQuery,omitempty"`
}

// Candidate is a marketplace listing as returned by the upstream API
type Candidate struct {
	Title         string `json:"title"`
	SalePrice     Price  `json:"salePrice"`
	PromotionLink string `json:"promotionLink"`
	ImageURL      string `json:"imageUrl"`
	CurrencyCode  string `json:"currencyCode,omitempty"`
	ProductID     string `json:"productId"`
}

// ScoredCandidate is a candidate that passed the price gate and has a positive relevance score
type ScoredCandidate struct {
	Title        string  `json:"title"`
	Link         string  `json:"link"`
	Price        float64 `json:"price"`
	PriceDisplay string  `json:"priceDisplay"`
	SourceLabel  string  `json:"sourceLabel"`
	ImageURL     string  `json:"imageUrl"`
	Score        float64 `json:"score"`
	ProductID    string  `json:"-"`
}

// Price holds a sale price exactly as the marketplace sent it.
// Upstream payloads carry it either as a JSON string or a JSON number.
type Price string

// UnmarshalJSON accepts strings, numbers and null
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = Price(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*p = Price(n.String())
	return nil
}

// PriceFromFloat builds a Price from a numeric value
func PriceFromFloat(v float64) Price {
	return Price(strconv.FormatFloat(v, 'f', -1, 64))
}

// String returns the raw text
func (p Price) String() string {
	return string(p)
}
