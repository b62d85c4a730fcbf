package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"stocktracker/internal/models"
	"stocktracker/internal/services"
)

// WatchlistHandler handles watchlist requests.
type WatchlistHandler struct {
	watchlistService services.WatchlistServicer
	auditService     services.AuditServicer
	prices           PriceLookup
}

// NewWatchlistHandler creates a new WatchlistHandler.
func NewWatchlistHandler(watchlistService services.WatchlistServicer, auditService services.AuditServicer, prices PriceLookup) *WatchlistHandler {
	return &WatchlistHandler{watchlistService: watchlistService, auditService: auditService, prices: prices}
}

// AddWatchRequest represents the request payload for watching a symbol.
type AddWatchRequest struct {
	Symbol string `json:"symbol" binding:"required,ticker"`
	Name   string `json:"name" binding:"max=200"`
}

// RemoveWatchRequest represents the request payload for unwatching a symbol.
type RemoveWatchRequest struct {
	Symbol string `json:"symbol" binding:"required,ticker"`
}

// ReorderWatchRequest lists symbols in their new display order.
type ReorderWatchRequest struct {
	Symbols []string `json:"symbols" binding:"required,min=1,max=500,dive,ticker"`
}

// WatchlistItem is a watchlist entry with its live price. Price fields are
// absent and PriceError set when no price could be fetched.
type WatchlistItem struct {
	models.WatchlistEntry
	Price         *decimal.Decimal `json:"price,omitempty"`
	Change        *decimal.Decimal `json:"change,omitempty"`
	ChangePercent *decimal.Decimal `json:"changePercent,omitempty"`
	Volume        *int64           `json:"volume,omitempty"`
	PriceError    string           `json:"priceError,omitempty"`
}

// List returns the watchlist with live prices
// @Summary     Get watchlist
// @Description List the caller's watched symbols in display order with live prices
// @Tags        watchlist
// @Produce     json
// @Security    SessionCookie
// @Success     200 {array}  WatchlistItem "Watchlist"
// @Failure     401 {object} ErrorResponse "Login required"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /watchlist [get]
func (h *WatchlistHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	entries, err := h.watchlistService.List(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	symbols := make([]string, len(entries))
	for i, e := range entries {
		symbols[i] = e.Symbol
	}
	quotes := h.prices.Quotes(c.Request.Context(), symbols)

	items := make([]WatchlistItem, len(entries))
	for i, e := range entries {
		item := WatchlistItem{WatchlistEntry: e}
		res, ok := quotes[e.Symbol]
		switch {
		case !ok || (res.Err == nil && res.Quote == nil):
			item.PriceError = "Price unavailable"
		case res.Err != nil:
			item.PriceError = priceErrorMessage(res.Err)
		default:
			q := res.Quote
			price := q.Price.Round(2)
			item.Price = &price
			item.Change = &q.Change
			item.ChangePercent = &q.ChangePercent
			item.Volume = &q.Volume
		}
		items[i] = item
	}

	c.JSON(http.StatusOK, items)
}

// Add watches a symbol
// @Summary     Add to watchlist
// @Description Append a symbol to the end of the caller's watchlist
// @Tags        watchlist
// @Accept      json
// @Produce     json
// @Security    SessionCookie
// @Param       request body AddWatchRequest true "Symbol to watch"
// @Success     201 {object} MessageResponse "Added"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Login required"
// @Failure     409 {object} ErrorResponse "Already in watchlist"
// @Router      /watchlist/add [post]
func (h *WatchlistHandler) Add(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AddWatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	entry, err := h.watchlistService.Add(userID, req.Symbol, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "WATCH", "watchlist", entry.ID, c.ClientIP(),
		map[string]interface{}{"symbol": entry.Symbol})

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Added to watchlist", "item": entry})
}

// Remove unwatches a symbol
// @Summary     Remove from watchlist
// @Description Remove a symbol from the caller's watchlist
// @Tags        watchlist
// @Accept      json
// @Produce     json
// @Security    SessionCookie
// @Param       request body RemoveWatchRequest true "Symbol to remove"
// @Success     200 {object} MessageResponse "Removed"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Login required"
// @Failure     404 {object} ErrorResponse "Not in watchlist"
// @Router      /watchlist/remove [post]
func (h *WatchlistHandler) Remove(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RemoveWatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	if err := h.watchlistService.Remove(userID, req.Symbol); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UNWATCH", "watchlist", 0, c.ClientIP(),
		map[string]interface{}{"symbol": services.NormalizeSymbol(req.Symbol)})

	c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "Removed from watchlist"})
}

// Reorder sets the watchlist display order
// @Summary     Reorder watchlist
// @Description Move the given symbols to the front in the given order; others keep their relative order
// @Tags        watchlist
// @Accept      json
// @Produce     json
// @Security    SessionCookie
// @Param       request body ReorderWatchRequest true "Symbols in display order"
// @Success     200 {object} MessageResponse "Reordered"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Login required"
// @Failure     404 {object} ErrorResponse "Symbol not in watchlist"
// @Router      /watchlist/reorder [post]
func (h *WatchlistHandler) Reorder(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ReorderWatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	if err := h.watchlistService.Reorder(userID, req.Symbols); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "REORDER", "watchlist", 0, c.ClientIP(),
		map[string]interface{}{"symbols": req.Symbols})

	c.JSON(http.StatusOK, MessageResponse{Success: true})
}
