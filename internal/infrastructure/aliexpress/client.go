package aliexpress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/dealfinder/backend/internal/domain"
)

const (
	productQueryMethod = "aliexpress.affiliate.product.query"
	maxAttempts        = 3
	maxBodyBytes       = 2 << 20
	maxErrorBodyBytes  = 1024

	// respCodeEmpty is returned by the gateway when a query has no results
	respCodeEmpty = 405
)

// productFields limits the gateway response to what the matcher consumes
const productFields = "product_id,product_title,target_sale_price,target_sale_price_currency," +
	"sale_price,sale_price_currency,promotion_link,product_detail_url,product_main_image_url"

// Config holds marketplace client settings
type Config struct {
	AppKey            string
	AppSecret         string
	BaseURL           string
	TrackingID        string
	Currency          string
	Language          string
	ShipTo            string
	PageSize          int
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// Client handles communication with the AliExpress affiliate API
type Client struct {
	httpClient  *http.Client
	cfg         Config
	rateLimiter *rate.Limiter
	backoff     func(attempt int) time.Duration
	now         func() time.Time
	debug       bool
	logger      zerolog.Logger
}

// NewClient creates a new AliExpress API client
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 50
	}
	if cfg.Currency == "" {
		cfg.Currency = "USD"
	}
	if cfg.Language == "" {
		cfg.Language = "EN"
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 10
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		cfg:         cfg,
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		backoff:     exponentialBackoff,
		now:         time.Now,
		logger:      logger.With().Str("component", "aliexpress").Logger(),
	}
}

// SetDebug enables or disables verbose request logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// debugLog writes a debug line when debug mode is on
func (c *Client) debugLog(format string, args ...interface{}) {
	if c.debug {
		c.logger.Debug().Msgf(format, args...)
	}
}

// exponentialBackoff returns the wait before retrying after the given attempt: 500ms, 1s, 2s...
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500*math.Pow(2, float64(attempt-1))) * time.Millisecond
}

// readLimitedBody reads at most limit bytes from r
func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit))
}

// buildQuery assembles the signed gateway parameters for one product query
func (c *Client) buildQuery(params domain.SearchParams) url.Values {
	q := url.Values{}
	q.Set("app_key", c.cfg.AppKey)
	q.Set("method", productQueryMethod)
	q.Set("sign_method", "sha256")
	q.Set("timestamp", strconv.FormatInt(c.now().UnixMilli(), 10))
	q.Set("fields", productFields)
	q.Set("keywords", params.Keywords)
	q.Set("page_no", "1")
	q.Set("page_size", strconv.Itoa(c.cfg.PageSize))
	q.Set("target_currency", c.cfg.Currency)
	q.Set("target_language", c.cfg.Language)

	if params.Sort != "" {
		q.Set("sort", string(params.Sort))
	}
	if params.CategoryID != "" {
		q.Set("category_ids", params.CategoryID)
	}
	if params.MaxSalePrice > 0 {
		// The gateway filters on cents
		q.Set("max_sale_price", strconv.FormatInt(int64(math.Round(params.MaxSalePrice*100)), 10))
	}
	if c.cfg.TrackingID != "" {
		q.Set("tracking_id", c.cfg.TrackingID)
	}
	if c.cfg.ShipTo != "" {
		q.Set("ship_to_country", c.cfg.ShipTo)
	}

	q.Set("sign", sign(q, c.cfg.AppSecret))
	return q
}

// doRequest executes an HTTP GET request with proper headers and error handling
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "DealFinder/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
	}
	return resp, nil
}

// SearchProducts runs one product query and returns the listings as candidates.
// An empty result is not an error.
func (c *Client) SearchProducts(ctx context.Context, params domain.SearchParams) ([]domain.Candidate, error) {
	c.debugLog("SearchProducts keywords=%q sort=%s max=%.2f", params.Keywords, params.Sort, params.MaxSalePrice)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleepContext(ctx, c.backoff(attempt-1)); err != nil {
				return nil, err
			}
		}

		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		// Signed per attempt so the timestamp stays fresh
		reqURL := fmt.Sprintf("%s?%s", c.cfg.BaseURL, c.buildQuery(params).Encode())

		resp, err := c.doRequest(ctx, reqURL)
		if err != nil {
			if ctx.Err() != nil || !errors.Is(err, domain.ErrUpstreamFailure) {
				return nil, err
			}
			c.logger.Warn().Err(err).Int("attempt", attempt).Msg("request failed")
			lastErr = err
			continue
		}

		body, err := readLimitedBody(resp.Body, maxBodyBytes)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("%w: reading body: %v", domain.ErrUpstreamFailure, err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			snippet := body
			if len(snippet) > maxErrorBodyBytes {
				snippet = snippet[:maxErrorBodyBytes]
			}
			c.logger.Warn().
				Int("attempt", attempt).
				Int("status", resp.StatusCode).
				Str("body", string(snippet)).
				Msg("gateway returned error status")

			lastErr = fmt.Errorf("%w: status %d", domain.ErrUpstreamFailure, resp.StatusCode)
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				continue
			}
			return nil, lastErr
		}

		return c.decodeProducts(body)
	}

	c.logger.Error().Err(lastErr).Str("keywords", params.Keywords).Msg("all retries failed")
	return nil, lastErr
}

// decodeProducts parses a 200 response body into candidates
func (c *Client) decodeProducts(body []byte) ([]domain.Candidate, error) {
	var parsed queryResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", domain.ErrUpstreamFailure, err)
	}

	if parsed.Error != nil {
		return nil, fmt.Errorf("%w: gateway error %s: %s", domain.ErrUpstreamFailure, parsed.Error.Code, parsed.Error.Msg)
	}
	if parsed.Response == nil {
		return nil, fmt.Errorf("%w: failed to decode response: missing product query envelope", domain.ErrUpstreamFailure)
	}

	result := parsed.Response.RespResult
	switch result.RespCode {
	case http.StatusOK:
	case respCodeEmpty:
		return []domain.Candidate{}, nil
	default:
		return nil, fmt.Errorf("%w: resp_code %d: %s", domain.ErrUpstreamFailure, result.RespCode, result.RespMsg)
	}

	candidates := mapProducts(result.Result.Products.Product)
	c.debugLog("decoded %d candidates (total %d)", len(candidates), result.Result.TotalRecordCount)
	return candidates, nil
}

// sleepContext waits for d or until ctx is done
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
