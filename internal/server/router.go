// Package server assembles the HTTP router from services and middleware.
package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "stocktracker/internal/docs" // swagger spec
	apperrors "stocktracker/internal/errors"
	"stocktracker/internal/handlers"
	"stocktracker/internal/middleware"
	"stocktracker/internal/services"
	"stocktracker/internal/session"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Users     services.UserServicer
	Watchlist services.WatchlistServicer
	Portfolio services.PortfolioServicer
	Audit     services.AuditServicer
	Prices    handlers.PriceLookup
	Authority *session.Authority

	Announcements handlers.AnnouncementLookup

	HealthChecks map[string]handlers.HealthCheck

	CORSOrigins  []string
	CookieSecure bool
	AdminAPIKey  string
	StaticDir    string
}

// NewRouter builds the gin engine serving the /api surface, swagger UI and,
// when configured, the static frontend.
func NewRouter(d Deps) *gin.Engine {
	authHandler := handlers.NewAuthHandler(d.Users, d.Audit, d.Authority, d.CookieSecure)
	watchlistHandler := handlers.NewWatchlistHandler(d.Watchlist, d.Audit, d.Prices)
	portfolioHandler := handlers.NewPortfolioHandler(d.Portfolio, d.Audit, d.Prices)
	marketHandler := handlers.NewMarketHandler(d.Prices)
	announcementHandler := handlers.NewAnnouncementHandler(d.Watchlist, d.Announcements)
	adminHandler := handlers.NewAdminHandler(d.Users, d.Audit)
	healthHandler := handlers.NewHealthHandler(d.HealthChecks)

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// Credentialed CORS needs explicit origins; "*" is never sent with cookies.
	if len(d.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     d.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID", "X-API-Key"},
			ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api")
	api.GET("/health", healthHandler.Health)

	// Public routes
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/check", authHandler.Check)

	// Protected routes
	protected := api.Group("")
	protected.Use(middleware.SessionAuth(d.Authority, d.Users))

	watchlist := protected.Group("/watchlist")
	watchlist.GET("", watchlistHandler.List)
	watchlist.POST("/add", watchlistHandler.Add)
	watchlist.POST("/remove", watchlistHandler.Remove)
	watchlist.POST("/reorder", watchlistHandler.Reorder)

	portfolio := protected.Group("/portfolio")
	portfolio.GET("", portfolioHandler.List)
	portfolio.POST("/add", portfolioHandler.Add)
	portfolio.POST("/update", portfolioHandler.Update)
	portfolio.POST("/remove", portfolioHandler.Remove)
	portfolio.GET("/summary", portfolioHandler.Summary)

	protected.GET("/quote", marketHandler.Quote)
	protected.GET("/search", marketHandler.Search)
	protected.POST("/announcements", announcementHandler.Recent)
	protected.POST("/prices/bulk", marketHandler.Bulk)

	// Admin routes
	admin := api.Group("/admin")
	admin.Use(middleware.APIKeyAuth(d.AdminAPIKey))
	admin.GET("/users", adminHandler.ListUsers)
	admin.GET("/audit", adminHandler.ListAudit)

	if d.StaticDir != "" {
		serveStatic(router, d.StaticDir)
	}

	return router
}

// serveStatic serves the single-page frontend: existing files as-is, any
// other non-API path falls back to index.html.
func serveStatic(router *gin.Engine, dir string) {
	index := filepath.Join(dir, "index.html")
	router.NoRoute(func(c *gin.Context) {
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api/") || c.Request.Method != http.MethodGet {
			c.JSON(http.StatusNotFound, middleware.ErrorBody(apperrors.ErrNotFound))
			return
		}
		file := filepath.Join(dir, filepath.Clean("/"+path))
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			c.File(file)
			return
		}
		c.File(index)
	})
}
