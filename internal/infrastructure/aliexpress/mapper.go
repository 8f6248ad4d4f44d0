package aliexpress

import (
	"encoding/json"
	"strings"

	"github.com/dealfinder/backend/internal/domain"
)

// queryResponse is the envelope of aliexpress.affiliate.product.query
type queryResponse struct {
	Response *struct {
		RespResult struct {
			RespCode int    `json:"resp_code"`
			RespMsg  string `json:"resp_msg"`
			Result   struct {
				CurrentRecordCount int `json:"current_record_count"`
				TotalRecordCount   int `json:"total_record_count"`
				Products           struct {
					Product []apiProduct `json:"product"`
				} `json:"products"`
			} `json:"result"`
		} `json:"resp_result"`
	} `json:"aliexpress_affiliate_product_query_response"`
	Error *struct {
		Code      string `json:"code"`
		Msg       string `json:"msg"`
		RequestID string `json:"request_id"`
	} `json:"error_response"`
}

// apiProduct is a single listing as the gateway returns it
type apiProduct struct {
	ProductID               json.Number  `json:"product_id"`
	ProductTitle            string       `json:"product_title"`
	TargetSalePrice         domain.Price `json:"target_sale_price"`
	TargetSalePriceCurrency string       `json:"target_sale_price_currency"`
	SalePrice               domain.Price `json:"sale_price"`
	SalePriceCurrency       string       `json:"sale_price_currency"`
	PromotionLink           string       `json:"promotion_link"`
	ProductDetailURL        string       `json:"product_detail_url"`
	ProductMainImageURL     string       `json:"product_main_image_url"`
}

// MapToCandidate converts a gateway product to a domain candidate.
// Target (converted) prices are preferred over the seller's original currency.
func MapToCandidate(p apiProduct) domain.Candidate {
	price, currency := p.TargetSalePrice, p.TargetSalePriceCurrency
	if strings.TrimSpace(price.String()) == "" {
		price, currency = p.SalePrice, p.SalePriceCurrency
	}

	link := p.PromotionLink
	if link == "" {
		link = p.ProductDetailURL
	}

	return domain.Candidate{
		Title:         strings.TrimSpace(p.ProductTitle),
		SalePrice:     price,
		PromotionLink: link,
		ImageURL:      p.ProductMainImageURL,
		CurrencyCode:  currency,
		ProductID:     p.ProductID.String(),
	}
}

// mapProducts converts all products, skipping entries without an ID
func mapProducts(products []apiProduct) []domain.Candidate {
	out := make([]domain.Candidate, 0, len(products))
	for _, p := range products {
		if p.ProductID.String() == "" {
			continue
		}
		out = append(out, MapToCandidate(p))
	}
	return out
}
