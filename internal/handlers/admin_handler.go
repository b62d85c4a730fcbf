package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stocktracker/internal/pagination"
	"stocktracker/internal/services"
)

// AdminHandler serves operator-only endpoints.
type AdminHandler struct {
	userService  services.UserServicer
	auditService services.AuditServicer
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(userService services.UserServicer, auditService services.AuditServicer) *AdminHandler {
	return &AdminHandler{userService: userService, auditService: auditService}
}

// ListUsers returns registered accounts with ledger counts
// @Summary     List users
// @Description Paginated list of accounts, newest first, with watchlist and portfolio counts
// @Tags        admin
// @Produce     json
// @Security    ApiKeyAuth
// @Param       page      query int false "Page number"
// @Param       page_size query int false "Page size (max 100)"
// @Success     200 {object} pagination.PageResponse[models.UserOverview] "Users"
// @Failure     400 {object} ErrorResponse "Invalid paging"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     503 {object} ErrorResponse "Admin not configured"
// @Router      /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	users, err := h.userService.ListUsers(page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

// ListAudit returns audit entries
// @Summary     Audit log
// @Description Paginated audit entries, newest first, optionally for one user or action
// @Tags        admin
// @Produce     json
// @Security    ApiKeyAuth
// @Param       user_id   query int    false "User ID"
// @Param       action    query string false "Action, e.g. LOGIN or BUY"
// @Param       page      query int    false "Page number"
// @Param       page_size query int    false "Page size (max 100)"
// @Success     200 {object} pagination.PageResponse[models.AuditLog] "Audit entries"
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Router      /admin/audit [get]
func (h *AdminHandler) ListAudit(c *gin.Context) {
	var filter services.AuditFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	entries, err := h.auditService.List(filter, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}
