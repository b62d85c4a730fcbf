package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"stocktracker/internal/models"
	"stocktracker/internal/pagination"
	"stocktracker/internal/services"
)

func TestAdminHandler_ListUsers(t *testing.T) {
	t.Run("passes paging and returns page", func(t *testing.T) {
		var got pagination.PageRequest
		svc := &mockUserService{
			listUsersFn: func(page pagination.PageRequest) (*pagination.PageResponse[models.UserOverview], error) {
				got = page
				resp := pagination.NewPageResponse([]models.UserOverview{{ID: 1, Username: "alice", WatchlistCount: 2}}, 2, 5, 6)
				return &resp, nil
			},
		}
		r := gin.New()
		r.GET("/admin/users", NewAdminHandler(svc, &mockAuditService{}).ListUsers)

		rec := doRequest(r, http.MethodGet, "/admin/users?page=2&page_size=5", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.Page != 2 || got.PageSize != 5 {
			t.Errorf("unexpected page request %+v", got)
		}
		result := parseJSON(t, rec)
		if result["total_pages"] != float64(2) || result["total_items"] != float64(6) {
			t.Errorf("unexpected paging %v", result)
		}
		data, _ := result["data"].([]interface{})
		if len(data) != 1 {
			t.Fatalf("expected 1 user, got %v", result["data"])
		}
		if _, ok := data[0].(map[string]interface{})["password_hash"]; ok {
			t.Error("password hash must never be listed")
		}
	})

	t.Run("returns 400 for oversized page", func(t *testing.T) {
		r := gin.New()
		r.GET("/admin/users", NewAdminHandler(&mockUserService{}, &mockAuditService{}).ListUsers)

		rec := doRequest(r, http.MethodGet, "/admin/users?page_size=1000", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestAdminHandler_ListAudit(t *testing.T) {
	t.Run("passes filter and paging", func(t *testing.T) {
		var gotFilter services.AuditFilter
		var gotPage pagination.PageRequest
		audit := &mockAuditService{
			listFn: func(filter services.AuditFilter, page pagination.PageRequest) (*pagination.PageResponse[models.AuditLog], error) {
				gotFilter, gotPage = filter, page
				resp := pagination.NewPageResponse([]models.AuditLog{{ID: 1, UserID: 4, Action: "LOGIN"}}, 1, 10, 1)
				return &resp, nil
			},
		}
		r := gin.New()
		r.GET("/admin/audit", NewAdminHandler(&mockUserService{}, audit).ListAudit)

		rec := doRequest(r, http.MethodGet, "/admin/audit?user_id=4&action=LOGIN&page_size=10", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotFilter.UserID != 4 || gotFilter.Action != "LOGIN" {
			t.Errorf("unexpected filter %+v", gotFilter)
		}
		if gotPage.PageSize != 10 {
			t.Errorf("unexpected page %+v", gotPage)
		}
	})

	t.Run("returns 400 for non-numeric user id", func(t *testing.T) {
		r := gin.New()
		r.GET("/admin/audit", NewAdminHandler(&mockUserService{}, &mockAuditService{}).ListAudit)

		rec := doRequest(r, http.MethodGet, "/admin/audit?user_id=abc", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}
