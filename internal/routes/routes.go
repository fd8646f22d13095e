package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"invoice-dashboard-backend/internal/cache"
	handler "invoice-dashboard-backend/internal/handlers"
	"invoice-dashboard-backend/internal/observability/logger"
	"invoice-dashboard-backend/internal/observability/metrics"
)

type Deps struct {
	Log       *zap.Logger
	Invoices  *handler.InvoiceHandler
	Import    *handler.ImportHandler
	Dashboard *handler.DashboardHandler
	Health    *handler.HealthHandler
	PageCache cache.Store
	Gatherer  prometheus.Gatherer
}

// NewEngine builds the gin engine with recovery, request logging and CORS.
// An empty origin list allows any origin without credentials.
func NewEngine(log *zap.Logger, origins []string) *gin.Engine {
	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", logger.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", "Location", logger.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
		corsCfg.AllowCredentials = true
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.GinMiddleware(log))
	r.Use(cors.New(corsCfg))
	return r
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	api := r.Group("/api")
	api.GET("/health", d.Health.Health)

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler(d.Gatherer)))
	}

	pageCache := d.PageCache
	if pageCache == nil {
		pageCache = cache.Noop{}
	}

	dash := r.Group("/dashboard")
	dash.POST("/invoices/create", d.Invoices.Create)
	dash.POST("/invoices/import", d.Import.Upload)

	views := dash.Group("", cache.Middleware(pageCache, d.Log))
	views.GET("", d.Dashboard.Overview)
	views.GET("/invoices", d.Dashboard.Invoices)
	views.GET("/invoices/:id/edit", d.Dashboard.EditInvoice)
	views.GET("/customers", d.Dashboard.Customers)
}
