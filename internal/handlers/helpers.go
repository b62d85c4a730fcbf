package handlers

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "stocktracker/internal/errors"
	"stocktracker/internal/logger"
	"stocktracker/internal/middleware"
	"stocktracker/internal/pricing"
)

func init() {
	// Money and quantities go over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// PriceLookup is the part of the pricing service the handlers depend on.
type PriceLookup interface {
	Quote(ctx context.Context, symbol string) (*pricing.Quote, error)
	Quotes(ctx context.Context, symbols []string) map[string]pricing.Result
	Prices(ctx context.Context, symbols []string) map[string]decimal.Decimal
	Search(ctx context.Context, query, exchange string) ([]pricing.SearchResult, error)
}

// ErrorDetail represents the inner error object in an error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Error   ErrorDetail `json:"error"`
}

// MessageResponse is the body of a successful mutation.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// getUserID extracts the authenticated user ID from the Gin context.
// Returns ErrUnauthenticated if not present.
func getUserID(c *gin.Context) (uint, error) {
	userID, exists := c.Get("userID")
	if !exists {
		return 0, apperrors.ErrUnauthenticated
	}
	id, ok := userID.(uint)
	if !ok {
		return 0, apperrors.ErrUnauthenticated
	}
	return id, nil
}

// invalidInput wraps a binding error as INVALID_INPUT.
func invalidInput(err error) error {
	return apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, and message. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(appErr.StatusCode, middleware.ErrorBody(appErr))
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, middleware.ErrorBody(apperrors.ErrInternalServer))
}

// priceErrorMessage is the client-facing reason a price is missing.
func priceErrorMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return apperrors.ErrUpstreamUnavailable.Message
}

// pricesOf keeps the successful lookups from a bulk quote.
func pricesOf(results map[string]pricing.Result) map[string]decimal.Decimal {
	prices := make(map[string]decimal.Decimal, len(results))
	for sym, res := range results {
		if res.Err == nil && res.Quote != nil {
			prices[sym] = res.Quote.Price
		}
	}
	return prices
}
