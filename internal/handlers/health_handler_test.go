package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestHealthHandler(t *testing.T) {
	t.Run("ok when all checks pass", func(t *testing.T) {
		h := NewHealthHandler(map[string]HealthCheck{
			"database": func(context.Context) error { return nil },
		})
		r := gin.New()
		r.GET("/health", h.Health)

		rec := doRequest(r, http.MethodGet, "/health", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		if result["status"] != "ok" {
			t.Errorf("expected status ok, got %v", result["status"])
		}
	})

	t.Run("503 when a check fails", func(t *testing.T) {
		h := NewHealthHandler(map[string]HealthCheck{
			"database": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return errors.New("dial tcp: connection refused") },
		})
		r := gin.New()
		r.GET("/health", h.Health)

		rec := doRequest(r, http.MethodGet, "/health", "")

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		checks, _ := result["checks"].(map[string]interface{})
		if checks["database"] != "ok" || checks["redis"] != "unavailable" {
			t.Errorf("unexpected checks %v", checks)
		}
	})
}
