package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/novatoken/marketplace/internal/identities"
	"github.com/novatoken/marketplace/internal/marketplace"
	apperrors "github.com/novatoken/marketplace/pkg/errors"
)

// Server represents the API server
type Server struct {
	router      *gin.Engine
	logger      *zap.Logger
	marketplace marketplace.MarketplaceService
	identities  identities.IdentityService
}

// NewServer creates a new API server with injected services
func NewServer(logger *zap.Logger, mkt marketplace.MarketplaceService, ids identities.IdentityService) *Server {
	server := &Server{
		logger:      logger,
		marketplace: mkt,
		identities:  ids,
	}

	router := gin.New()
	router.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(logger, true))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	server.router = router
	server.registerRoutes()
	return server
}

// Start starts the API server
func (s *Server) Start(addr string) error {
	s.logger.Info("Starting API server", zap.String("addr", addr))
	return s.router.Run(addr)
}

// Router returns the internal Gin engine for testing purposes
func (s *Server) Router() *gin.Engine {
	return s.router
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/health", s.healthCheck)

		users := v1.Group("/users")
		{
			users.POST("/auth", s.authUser)
			users.GET("/:wallet", s.getUser)
			users.PUT("/:wallet", s.updateUser)
		}

		collections := v1.Group("/collections")
		{
			collections.GET("", s.listCollections)
			collections.GET("/:id", s.getCollection)
			collections.POST("", s.createCollection)
		}

		items := v1.Group("/items")
		{
			items.GET("", s.listItems)
			items.GET("/:id", s.getItem)
			items.GET("/owner/:wallet", s.itemsByOwner)
			items.POST("", s.registerItem)
		}

		listings := v1.Group("/listings")
		{
			listings.POST("", s.createListing)
			listings.GET("", s.activeListings)
			listings.POST("/:id/buy", s.buyListing)
			listings.DELETE("/:id", s.cancelListing)
		}

		v1.GET("/transactions/:wallet", s.transactionsByAddress)
		v1.GET("/stats", s.getStats)

		admin := v1.Group("/admin")
		{
			admin.POST("/seed", s.seed)
		}
	}
}

// healthCheck handles the health check endpoint
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now(),
	})
}

func (s *Server) getStats(c *gin.Context) {
	stats, err := s.marketplace.Stats(c.Request.Context())
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) seed(c *gin.Context) {
	result, err := s.marketplace.Seed(c.Request.Context())
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// queryInt parses an integer query parameter with a default.
func queryInt(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
