package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations.
// Values are opaque encoded payloads; callers own the encoding.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// ProductSort is the ordering requested from the marketplace
type ProductSort string

const (
	SortSalePriceAsc   ProductSort = "SALE_PRICE_ASC"
	SortLastVolumeDesc ProductSort = "LAST_VOLUME_DESC"
)

// SearchParams describes a single marketplace product query
type SearchParams struct {
	Keywords     string
	CategoryID   string
	MaxSalePrice float64
	Sort         ProductSort
}

// MarketplaceClient defines the interface for fetching candidate listings
type MarketplaceClient interface {
	SearchProducts(ctx context.Context, params SearchParams) ([]Candidate, error)
}
