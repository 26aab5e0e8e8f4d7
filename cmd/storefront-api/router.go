package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/MikeMC777/storefront-api/docs"
	"github.com/MikeMC777/storefront-api/internal/health"
	"github.com/MikeMC777/storefront-api/internal/httpx"
	"github.com/MikeMC777/storefront-api/internal/metrics"
	ord "github.com/MikeMC777/storefront-api/internal/order"
	prod "github.com/MikeMC777/storefront-api/internal/product"
	"github.com/MikeMC777/storefront-api/internal/stats"
)

type deps struct {
	Products *prod.Service
	Orders   *ord.Service
	Stats    *stats.Service
	Probe    *health.Probe
	Metrics  *metrics.Metrics // optional
	Log      *zap.Logger
	Service  string
	Version  string
}

func newRouter(d deps) *gin.Engine {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger(d.Log))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	r.GET("/health", healthHandler(d))
	r.GET("/ready", readyHandler(d.Probe))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	{
		api.GET("/products", listProductsHandler(d.Products))
		api.GET("/products/:id", getProductHandler(d.Products))
		api.POST("/products", createProductHandler(d.Products))
		api.PUT("/products/:id", updateProductHandler(d.Products))
		api.DELETE("/products/:id", deleteProductHandler(d.Products))

		api.GET("/orders", listOrdersHandler(d.Orders))
		api.GET("/orders/:id", getOrderHandler(d.Orders))
		api.POST("/orders", createOrderHandler(d.Orders))
		api.PATCH("/orders/:id/status", updateOrderStatusHandler(d.Orders))

		api.GET("/stats", statsHandler(d.Stats))
	}

	r.NoRoute(httpx.NoRoute)
	return r
}

// healthHandler godoc
// @Summary  Liveness and store status
// @Tags     ops
// @Produce  json
// @Success  200
// @Router   /health [get]
func healthHandler(d deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		db := "disconnected"
		if d.Probe.Alive(c.Request.Context()) {
			db = "connected"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "OK",
			"service":   d.Service,
			"version":   d.Version,
			"database":  db,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"uptime":    d.Probe.Uptime().Seconds(),
		})
	}
}

// readyHandler godoc
// @Summary  Readiness probe
// @Tags     ops
// @Produce  json
// @Success  200
// @Failure  503
// @Router   /ready [get]
func readyHandler(probe *health.Probe) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !probe.Alive(c.Request.Context()) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "reason": "database not connected"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}
