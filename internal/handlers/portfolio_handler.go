package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "stocktracker/internal/errors"
	"stocktracker/internal/models"
	"stocktracker/internal/services"
)

const buyDateLayout = "2006-01-02"

// PortfolioHandler handles portfolio requests.
type PortfolioHandler struct {
	portfolioService services.PortfolioServicer
	auditService     services.AuditServicer
	prices           PriceLookup
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(portfolioService services.PortfolioServicer, auditService services.AuditServicer, prices PriceLookup) *PortfolioHandler {
	return &PortfolioHandler{portfolioService: portfolioService, auditService: auditService, prices: prices}
}

// AddHoldingRequest represents the request payload for recording a position.
type AddHoldingRequest struct {
	Symbol   string          `json:"symbol" binding:"required,ticker"`
	Name     string          `json:"name" binding:"max=200"`
	Quantity decimal.Decimal `json:"quantity" binding:"required,gt=0"`
	BuyPrice decimal.Decimal `json:"buy_price" binding:"required,gt=0"`
	BuyDate  string          `json:"buy_date"`
}

// UpdateHoldingRequest carries a partial position update.
type UpdateHoldingRequest struct {
	HoldingID uint             `json:"holding_id" binding:"required"`
	Quantity  *decimal.Decimal `json:"quantity" binding:"omitempty,gt=0"`
	BuyPrice  *decimal.Decimal `json:"buy_price" binding:"omitempty,gt=0"`
}

// RemoveHoldingRequest identifies the position to delete.
type RemoveHoldingRequest struct {
	HoldingID uint `json:"holding_id" binding:"required"`
}

// HoldingView is a valued position as rendered to the client.
type HoldingView struct {
	services.Valuation
	PriceError string `json:"price_error,omitempty"`
}

// List returns positions with live valuations
// @Summary     Get portfolio
// @Description List the caller's positions, newest first, valued at current prices
// @Tags        portfolio
// @Produce     json
// @Security    SessionCookie
// @Success     200 {array}  HoldingView "Positions"
// @Failure     401 {object} ErrorResponse "Login required"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /portfolio [get]
func (h *PortfolioHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	positions, err := h.portfolioService.List(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	results := h.prices.Quotes(c.Request.Context(), positionSymbols(positions))
	prices := pricesOf(results)

	valued := services.Valuate(positions, prices)
	views := make([]HoldingView, len(valued))
	for i, v := range valued {
		views[i] = HoldingView{Valuation: v}
		if _, ok := prices[v.Symbol]; ok {
			continue
		}
		views[i].PriceError = apperrors.ErrUpstreamUnavailable.Message
		if res, ok := results[v.Symbol]; ok && res.Err != nil {
			views[i].PriceError = priceErrorMessage(res.Err)
		}
	}

	c.JSON(http.StatusOK, views)
}

// Add records a new position
// @Summary     Add to portfolio
// @Description Record a lot of a symbol at a buy price. Lots of the same symbol are kept separately.
// @Tags        portfolio
// @Accept      json
// @Produce     json
// @Security    SessionCookie
// @Param       request body AddHoldingRequest true "Position"
// @Success     201 {object} map[string]interface{} "Added, with holding_id"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Login required"
// @Router      /portfolio/add [post]
func (h *PortfolioHandler) Add(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AddHoldingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	var buyDate *time.Time
	if req.BuyDate != "" {
		d, err := time.Parse(buyDateLayout, req.BuyDate)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "buy_date must be YYYY-MM-DD"))
			return
		}
		buyDate = &d
	}

	pos, err := h.portfolioService.Add(userID, req.Symbol, req.Name, req.Quantity, req.BuyPrice, buyDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "BUY", "portfolio", pos.ID, c.ClientIP(),
		map[string]interface{}{"symbol": pos.Symbol, "quantity": pos.Quantity.String(), "buy_price": pos.BuyPrice.String()})

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Added to portfolio", "holding_id": pos.ID})
}

// Update changes quantity and/or buy price of a position
// @Summary     Update holding
// @Description Partially update one of the caller's positions
// @Tags        portfolio
// @Accept      json
// @Produce     json
// @Security    SessionCookie
// @Param       request body UpdateHoldingRequest true "Fields to change"
// @Success     200 {object} MessageResponse "Updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Login required"
// @Failure     403 {object} ErrorResponse "Not the caller's position"
// @Failure     404 {object} ErrorResponse "Holding not found"
// @Router      /portfolio/update [post]
func (h *PortfolioHandler) Update(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateHoldingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	pos, err := h.portfolioService.Update(userID, req.HoldingID, services.PositionUpdate{
		Quantity: req.Quantity,
		BuyPrice: req.BuyPrice,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE", "portfolio", pos.ID, c.ClientIP(),
		map[string]interface{}{"quantity": pos.Quantity.String(), "buy_price": pos.BuyPrice.String()})

	c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "Portfolio updated"})
}

// Remove deletes a position
// @Summary     Remove holding
// @Description Delete one of the caller's positions
// @Tags        portfolio
// @Accept      json
// @Produce     json
// @Security    SessionCookie
// @Param       request body RemoveHoldingRequest true "Holding to delete"
// @Success     200 {object} MessageResponse "Removed"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Login required"
// @Failure     403 {object} ErrorResponse "Not the caller's position"
// @Failure     404 {object} ErrorResponse "Holding not found"
// @Router      /portfolio/remove [post]
func (h *PortfolioHandler) Remove(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RemoveHoldingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	if err := h.portfolioService.Remove(userID, req.HoldingID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "SELL", "portfolio", req.HoldingID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "Removed from portfolio"})
}

// Summary returns portfolio totals
// @Summary     Portfolio summary
// @Description Total invested, current value and profit/loss. Unpriced symbols are valued at cost and listed in stale_symbols.
// @Tags        portfolio
// @Produce     json
// @Security    SessionCookie
// @Success     200 {object} services.PortfolioSummary "Totals"
// @Failure     401 {object} ErrorResponse "Login required"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /portfolio/summary [get]
func (h *PortfolioHandler) Summary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	positions, err := h.portfolioService.List(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.portfolioService.Summary(userID, h.prices.Prices(c.Request.Context(), positionSymbols(positions)))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func positionSymbols(positions []models.PortfolioPosition) []string {
	symbols := make([]string, len(positions))
	for i, p := range positions {
		symbols[i] = p.Symbol
	}
	return symbols
}
