package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/automatenwerk/stockpilot/internal/api/handlers"
	"github.com/automatenwerk/stockpilot/internal/api/middleware"
	"github.com/automatenwerk/stockpilot/internal/service"
)

type Services struct {
	Catalog  *service.CatalogService
	Bookings *service.BookingService
	Reorder  *service.ReorderService
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(cors.New(corsConfig(allowedOrigins)))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services == nil {
		return router
	}

	if services.Catalog != nil {
		catalogHandler := handlers.NewCatalogHandler(services.Catalog)
		articles := apiGroup.Group("/articles")
		{
			articles.GET("", catalogHandler.ListArticles)
			articles.POST("", catalogHandler.CreateArticle)
			articles.GET("/:id", catalogHandler.GetArticle)
			articles.PUT("/:id", catalogHandler.UpdateArticle)
			articles.DELETE("/:id", catalogHandler.DeleteArticle)
		}

		suppliers := apiGroup.Group("/suppliers")
		{
			suppliers.GET("", catalogHandler.ListSuppliers)
			suppliers.POST("", catalogHandler.CreateSupplier)
			suppliers.GET("/:id", catalogHandler.GetSupplier)
			suppliers.PUT("/:id", catalogHandler.UpdateSupplier)
			suppliers.DELETE("/:id", catalogHandler.DeleteSupplier)
		}
	}

	if services.Bookings != nil {
		bookingHandler := handlers.NewBookingHandler(services.Bookings)
		bookings := apiGroup.Group("/bookings")
		{
			bookings.POST("", bookingHandler.Book)
			bookings.GET("", bookingHandler.History)
			bookings.GET("/chart", bookingHandler.Chart)
		}
	}

	if services.Reorder != nil {
		reorderHandler := handlers.NewReorderHandler(services.Reorder)
		reorderGroup := apiGroup.Group("/reorder")
		{
			reorderGroup.GET("/suggestions", reorderHandler.Suggestions)
			reorderGroup.GET("/suggestions/:id", reorderHandler.Suggestion)
			reorderGroup.GET("/export", reorderHandler.Export)
		}
	}

	return router
}

func corsConfig(allowedOrigins []string) cors.Config {
	cfg := cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			cfg.AllowOrigins = nil
			cfg.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			cfg.AllowOrigins = normalizedOrigins
		}
	}
	return cfg
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		for _, part := range strings.Split(origin, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
