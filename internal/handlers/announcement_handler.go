package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"stocktracker/internal/announcements"
	"stocktracker/internal/services"
)

// AnnouncementLookup is the part of the announcements service the handler uses.
type AnnouncementLookup interface {
	Recent(ctx context.Context, symbols []string) (*announcements.Feed, error)
}

// AnnouncementHandler serves corporate filings for watched symbols.
type AnnouncementHandler struct {
	watchlistService services.WatchlistServicer
	feed             AnnouncementLookup
}

// NewAnnouncementHandler creates a new AnnouncementHandler.
func NewAnnouncementHandler(watchlistService services.WatchlistServicer, feed AnnouncementLookup) *AnnouncementHandler {
	return &AnnouncementHandler{watchlistService: watchlistService, feed: feed}
}

// AnnouncementsRequest names the symbols to collect filings for. An empty
// list means the caller's watchlist.
type AnnouncementsRequest struct {
	Symbols []string `json:"symbols" binding:"max=50,dive,ticker"`
}

// Recent returns recent exchange filings
// @Summary     Corporate announcements
// @Description Recent BSE/NSE filings for the given symbols, or for the caller's watchlist when none are given. Symbols no exchange could answer for are listed under errors.
// @Tags        market
// @Accept      json
// @Produce     json
// @Security    SessionCookie
// @Param       request body AnnouncementsRequest false "Symbols"
// @Success     200 {object} announcements.Feed "Announcements"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Login required"
// @Failure     504 {object} ErrorResponse "Exchanges timed out"
// @Router      /announcements [post]
func (h *AnnouncementHandler) Recent(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AnnouncementsRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondWithError(c, invalidInput(err))
		return
	}

	symbols := req.Symbols
	if len(symbols) == 0 {
		entries, err := h.watchlistService.List(userID)
		if err != nil {
			respondWithError(c, err)
			return
		}
		for _, e := range entries {
			symbols = append(symbols, e.Symbol)
		}
	}

	feed, err := h.feed.Recent(c.Request.Context(), symbols)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, feed)
}
