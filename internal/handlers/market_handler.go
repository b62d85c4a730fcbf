package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "stocktracker/internal/errors"
	"stocktracker/internal/pricing"
	"stocktracker/internal/validator"
)

// MarketHandler serves raw price lookups.
type MarketHandler struct {
	prices PriceLookup
}

// NewMarketHandler creates a new MarketHandler.
func NewMarketHandler(prices PriceLookup) *MarketHandler {
	return &MarketHandler{prices: prices}
}

// BulkPricesRequest lists symbols to price in one call.
type BulkPricesRequest struct {
	Symbols []string `json:"symbols" binding:"required,min=1,max=50,dive,ticker"`
}

// BulkPricesResponse maps each symbol to its quote or its failure reason.
type BulkPricesResponse struct {
	Prices map[string]*pricing.Quote `json:"prices"`
	Errors map[string]string         `json:"errors"`
}

// SearchResponse lists the listings matching a search query.
type SearchResponse struct {
	Results []pricing.SearchResult `json:"results"`
}

// Quote returns the current quote for one symbol
// @Summary     Get quote
// @Description Current price, change and volume for a symbol
// @Tags        market
// @Produce     json
// @Security    SessionCookie
// @Param       symbol query string true "Ticker symbol"
// @Success     200 {object} pricing.Quote "Quote"
// @Failure     400 {object} ErrorResponse "Invalid symbol"
// @Failure     404 {object} ErrorResponse "Unknown symbol"
// @Failure     502 {object} ErrorResponse "Price source unavailable"
// @Failure     504 {object} ErrorResponse "Price source timed out"
// @Router      /quote [get]
func (h *MarketHandler) Quote(c *gin.Context) {
	symbol := strings.TrimSpace(c.Query("symbol"))
	if !validator.IsTicker(symbol) {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "symbol is required"))
		return
	}

	q, err := h.prices.Quote(c.Request.Context(), symbol)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, q)
}

// Bulk prices several symbols at once
// @Summary     Bulk prices
// @Description Quote up to 50 symbols concurrently. Failures are reported per symbol.
// @Tags        market
// @Accept      json
// @Produce     json
// @Security    SessionCookie
// @Param       request body BulkPricesRequest true "Symbols"
// @Success     200 {object} BulkPricesResponse "Quotes and per-symbol errors"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /prices/bulk [post]
func (h *MarketHandler) Bulk(c *gin.Context) {
	var req BulkPricesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	resp := BulkPricesResponse{
		Prices: map[string]*pricing.Quote{},
		Errors: map[string]string{},
	}
	for sym, res := range h.prices.Quotes(c.Request.Context(), req.Symbols) {
		if res.Err != nil || res.Quote == nil {
			resp.Errors[sym] = priceErrorMessage(res.Err)
			continue
		}
		resp.Prices[sym] = res.Quote
	}

	c.JSON(http.StatusOK, resp)
}

// Search looks up ticker symbols by company name or partial symbol
// @Summary     Search symbols
// @Description Up to 10 listings matching q, optionally limited to one exchange suffix (e.g. NS, BO)
// @Tags        market
// @Produce     json
// @Security    SessionCookie
// @Param       q        query string true  "Company name or symbol"
// @Param       exchange query string false "Exchange suffix filter"
// @Success     200 {object} SearchResponse "Matching listings"
// @Failure     400 {object} ErrorResponse "Missing query"
// @Failure     502 {object} ErrorResponse "Search source unavailable"
// @Failure     504 {object} ErrorResponse "Search source timed out"
// @Router      /search [get]
func (h *MarketHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" || len(query) > 64 {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "No query"))
		return
	}

	results, err := h.prices.Search(c.Request.Context(), query, c.Query("exchange"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, SearchResponse{Results: results})
}
