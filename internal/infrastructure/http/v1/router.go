// Package v1 provides HTTP API version 1.
package v1

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"stockroom/internal/domain/catalogs/product"
	"stockroom/internal/domain/catalogs/warehouse"
	"stockroom/internal/domain/rollup"
	"stockroom/internal/domain/stock"
	"stockroom/internal/infrastructure/cache"
	"stockroom/internal/infrastructure/events"
	"stockroom/internal/infrastructure/http/v1/handlers"
	"stockroom/internal/infrastructure/http/v1/middleware"
	"stockroom/internal/infrastructure/storage/postgres"
	"stockroom/internal/infrastructure/storage/postgres/catalog_repo"
	"stockroom/internal/infrastructure/storage/postgres/stock_repo"
	"stockroom/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Pool is the database connection pool
	Pool *postgres.Pool

	// Redis enables the summary cache and change event publishing.
	// Nil disables both; everything else keeps working.
	Redis *redis.Client

	// SummaryCacheTTL bounds the staleness of the cached rollup
	SummaryCacheTTL time.Duration

	// Logger for request logging
	Logger *logger.Logger
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	txm := postgres.NewTxManager(cfg.Pool)

	// Repositories
	productRepo := catalog_repo.NewProductRepo(txm)
	warehouseRepo := catalog_repo.NewWarehouseRepo(txm)
	stockRepo := stock_repo.NewRepo(txm)

	// Catalog services
	productService := product.NewService(productRepo, txm)
	warehouseService := warehouse.NewService(warehouseRepo, txm)

	// Rollup: pure aggregation, optionally wrapped by the Redis cache
	rollupService := rollup.NewService(
		stockRepo,
		&productLookup{products: productService},
		&warehouseLookup{warehouses: warehouseService},
	)

	var summarizer rollup.Summarizer = rollupService
	var notifiers stock.Notifiers

	if cfg.Redis != nil {
		cached, err := cache.NewCachedSummarizer(rollupService, cfg.Redis, cfg.SummaryCacheTTL)
		if err != nil {
			return nil, err
		}
		summarizer = cached
		// invalidate before publishing, so subscribers reading back get fresh data
		notifiers = append(notifiers, cached, events.NewPublisher(cfg.Redis))
	}

	// Stock ledger
	stockService := stock.NewService(stockRepo, txm, &productCatalog{products: productService}, notifiers)

	// Handlers
	base := handlers.NewBaseHandler()
	healthHandler := handlers.NewHealthHandler(cfg.Pool, cfg.Redis)
	productHandler := handlers.NewProductHandler(base, productService)
	warehouseHandler := handlers.NewWarehouseHandler(base, warehouseService)
	stockHandler := handlers.NewStockHandler(base, stockService)
	summaryHandler := handlers.NewSummaryHandler(base, summarizer)

	// Health endpoints
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// API v1
	v1 := router.Group("/api/v1")
	{
		products := v1.Group("/catalog/products")
		{
			products.GET("", productHandler.List)
			products.POST("", productHandler.Create)
			products.GET("/:id", productHandler.Get)
			products.PUT("/:id", productHandler.Update)
			products.DELETE("/:id", productHandler.Delete)
		}

		warehouses := v1.Group("/catalog/warehouses")
		{
			warehouses.GET("", warehouseHandler.List)
			warehouses.POST("", warehouseHandler.Create)
			warehouses.GET("/:id", warehouseHandler.Get)
			warehouses.PUT("/:id", warehouseHandler.Update)
			warehouses.DELETE("/:id", warehouseHandler.Delete)
		}

		stocks := v1.Group("/stocks")
		{
			stocks.POST("", stockHandler.Provision)
			stocks.GET("", stockHandler.List)
			stocks.GET("/:id", stockHandler.Get)
			stocks.POST("/:id/adjust", stockHandler.Adjust)
			stocks.POST("/:id/adjust-with-reason", stockHandler.AdjustWithReason)
			stocks.GET("/:id/adjustments", stockHandler.Adjustments)
		}

		v1.GET("/inventory/summary", summaryHandler.Get)
	}

	return router, nil
}
