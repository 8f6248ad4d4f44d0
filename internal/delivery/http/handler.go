package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/dealfinder/backend/internal/domain"
	"github.com/dealfinder/backend/internal/logging"
)

// DealFinder is the use case the handlers delegate to
type DealFinder interface {
	FindDeals(ctx context.Context, ref *domain.ReferenceItem) ([]domain.ScoredCandidate, error)
	FindListings(ctx context.Context, ref *domain.ReferenceItem) ([]domain.Candidate, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	deals  DealFinder
	logger zerolog.Logger
}

// NewHandler creates a new HTTP handler.
// A nil finder makes the deal endpoints answer 501.
func NewHandler(deals DealFinder, logger zerolog.Logger) *Handler {
	return &Handler{
		deals:  deals,
		logger: logger,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "dealfinder-backend",
		"version": "1.0.0",
	})
}

// SearchDeals handles cheaper-match lookups for a reference item
func (h *Handler) SearchDeals(c *gin.Context) {
	ref, ok := h.bindReference(c)
	if !ok {
		return
	}

	matches, err := h.deals.FindDeals(c.Request.Context(), ref)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if matches == nil {
		matches = []domain.ScoredCandidate{}
	}

	c.JSON(http.StatusOK, gin.H{
		"matches": matches,
		"count":   len(matches),
	})
}

// SearchListings returns the merged raw listings for a reference item
func (h *Handler) SearchListings(c *gin.Context) {
	ref, ok := h.bindReference(c)
	if !ok {
		return
	}

	products, err := h.deals.FindListings(c.Request.Context(), ref)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if products == nil {
		products = []domain.Candidate{}
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// bindReference decodes the request body, writing the error response itself on failure
func (h *Handler) bindReference(c *gin.Context) (*domain.ReferenceItem, bool) {
	if h.deals == nil {
		c.JSON(http.StatusNotImplemented, gin.H{
			"error": "deal search is not configured",
		})
		return nil, false
	}

	var ref domain.ReferenceItem
	if err := c.ShouldBindJSON(&ref); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request body",
			"details": err.Error(),
		})
		return nil, false
	}
	return &ref, true
}

// respondError maps domain errors to HTTP status codes
func (h *Handler) respondError(c *gin.Context, err error) {
	status, message := statusForError(err)

	logger := logging.FromContext(c.Request.Context(), h.logger)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Int("status", status).Str("path", c.FullPath()).Msg("request failed")
	} else {
		logger.Debug().Err(err).Int("status", status).Str("path", c.FullPath()).Msg("request rejected")
	}

	c.JSON(status, gin.H{"error": message})
}

func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, "rate limit exceeded"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "marketplace request timed out"
	case errors.Is(err, domain.ErrUpstreamFailure):
		return http.StatusBadGateway, "marketplace is unavailable, try again later"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
