package router

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/fleetstock/internal/domain/models"
	"github.com/mamadbah2/fleetstock/internal/metrics"
	"github.com/mamadbah2/fleetstock/internal/server/handlers"
	"github.com/mamadbah2/fleetstock/internal/service/catalog"
	"github.com/mamadbah2/fleetstock/internal/service/inventory"
	"github.com/mamadbah2/fleetstock/internal/service/records"
	salessvc "github.com/mamadbah2/fleetstock/internal/service/sales"
)

// Handlers groups every HTTP adapter mounted by the router.
type Handlers struct {
	Inventory  *handlers.InventoryHandler
	Stock      *handlers.StockHandler
	Sales      *handlers.SalesHandler
	Categories *handlers.CategoryHandler
	Suppliers  *handlers.CRUDHandler[models.Supplier]
	TaxRates   *handlers.CRUDHandler[models.TaxRate]
	Vehicles   *handlers.CRUDHandler[models.Vehicle]
	Insurance  *handlers.CRUDHandler[models.Insurance]
	RoadWorth  *handlers.CRUDHandler[models.RoadWorth]
	DriverLogs *handlers.CRUDHandler[models.VehicleDriverLog]
	Employees  *handlers.CRUDHandler[models.Employee]
}

// NewHandlers builds the adapters over the services.
func NewHandlers(inv *inventory.Service, sales *salessvc.Service, cat *catalog.Service, rec *records.Service, logger *zap.Logger) Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return Handlers{
		Inventory:  handlers.NewInventoryHandler(inv, cat, logger.Named("inventory")),
		Stock:      handlers.NewStockHandler(inv, logger.Named("stock")),
		Sales:      handlers.NewSalesHandler(sales, logger.Named("sales")),
		Categories: handlers.NewCategoryHandler(cat, logger.Named("categories")),
		Suppliers:  handlers.NewCRUDHandler(handlers.SupplierOps(cat), logger.Named("suppliers")),
		TaxRates:   handlers.NewCRUDHandler(handlers.TaxRateOps(cat), logger.Named("tax_rates")),
		Vehicles:   handlers.NewCRUDHandler(handlers.ResourceOps(rec.Vehicles), logger.Named("vehicles")),
		Insurance:  handlers.NewCRUDHandler(handlers.ResourceOps(rec.Insurance), logger.Named("insurance")),
		RoadWorth:  handlers.NewCRUDHandler(handlers.ResourceOps(rec.RoadWorth), logger.Named("road_worth")),
		DriverLogs: handlers.NewCRUDHandler(handlers.ResourceOps(rec.DriverLogs), logger.Named("driver_logs")),
		Employees:  handlers.NewCRUDHandler(handlers.ResourceOps(rec.Employees), logger.Named("employees")),
	}
}

// Options tunes the middleware stack.
type Options struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
	Metrics        *metrics.Metrics
	// Ready reports backing store health for /healthz. Nil means always ready.
	Ready func(ctx context.Context) error
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, opts Options, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))
	r.Use(metricsMiddleware(opts.Metrics))
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.New(corsConfig(opts.AllowedOrigins)))
	}

	r.GET("/healthz", func(c *gin.Context) {
		if opts.Ready != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := opts.Ready(ctx); err != nil {
				logger.Warn("health check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))

	api := r.Group("/api")
	api.Use(timeoutMiddleware(opts.RequestTimeout))

	inv := api.Group("/inventory")
	inv.GET("", h.Inventory.List)
	inv.POST("", h.Inventory.Create)
	inv.GET("/low-stock", h.Inventory.LowStock)
	inv.GET("/export", h.Inventory.Export)
	inv.GET("/:id", h.Inventory.Get)
	inv.PUT("/:id", h.Inventory.Update)
	inv.DELETE("/:id", h.Inventory.Delete)

	txs := api.Group("/stock-transactions")
	txs.GET("", h.Stock.ListTransactions)
	txs.POST("", h.Stock.CreateTransaction)
	txs.GET("/:id", h.Stock.GetTransaction)
	txs.PUT("/:id", h.Stock.UpdateTransaction)
	txs.DELETE("/:id", h.Stock.DeleteTransaction)

	stock := api.Group("/stock")
	stock.POST("/transfer/:itemId", h.Stock.Transfer)
	stock.GET("/:itemId", h.Stock.Locations)
	stock.PUT("/:itemId/locations", h.Stock.SetLocation)

	orders := api.Group("/sales-orders")
	orders.GET("", h.Sales.List)
	orders.POST("", h.Sales.Create)
	orders.GET("/summary", h.Sales.Summary)
	orders.GET("/customers/history", h.Sales.CustomerHistory)
	orders.GET("/:id", h.Sales.Get)
	orders.PUT("/:id", h.Sales.Update)
	orders.DELETE("/:id", h.Sales.Delete)

	cats := api.Group("/inventory-categories")
	cats.GET("", h.Categories.List)
	cats.POST("", h.Categories.Create)
	cats.GET("/hierarchy", h.Categories.Hierarchy)
	cats.GET("/:id", h.Categories.Get)
	cats.PUT("/:id", h.Categories.Update)
	cats.DELETE("/:id", h.Categories.Delete)

	h.Suppliers.Register(api.Group("/suppliers"))
	h.TaxRates.Register(api.Group("/tax-rates"))
	h.Vehicles.Register(api.Group("/vehicles"))
	h.Insurance.Register(api.Group("/insurance"))
	h.RoadWorth.Register(api.Group("/road-worth"))
	h.DriverLogs.Register(api.Group("/vehicle-driver-logs"))
	h.Employees.Register(api.Group("/employees"))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Route not found", "error": c.Request.URL.Path})
	})

	logger.Info("router initialized", zap.Int("routes", len(r.Routes())))
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}

func metricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(route, c.Request.Method, strconv.Itoa(c.Writer.Status()), time.Since(start).Seconds())
	}
}

// timeoutMiddleware bounds the context handed to services and the store.
func timeoutMiddleware(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
