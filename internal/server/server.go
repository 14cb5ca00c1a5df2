package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/meatline/internal/config"
	"github.com/smallbiznis/meatline/internal/customer"
	customerdomain "github.com/smallbiznis/meatline/internal/customer/domain"
	"github.com/smallbiznis/meatline/internal/cuttinglist"
	"github.com/smallbiznis/meatline/internal/invoice"
	invoicedomain "github.com/smallbiznis/meatline/internal/invoice/domain"
	"github.com/smallbiznis/meatline/internal/product"
	productdomain "github.com/smallbiznis/meatline/internal/product/domain"
	"github.com/smallbiznis/meatline/internal/providers/pdf"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	product.Module,
	customer.Module,
	invoice.Module,
	cuttinglist.Module,
	pdf.Module,
	MetricsModule,
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(RegisterRoutes),
	fx.Invoke(RunHTTP),
)

// NewEngine builds the gin engine with recovery, request logging,
// metrics and centralized error mapping.
func NewEngine(log *zap.Logger, metrics *HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(MetricsMiddleware(metrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type ServerParam struct {
	fx.In

	Config      config.Config
	Log         *zap.Logger
	ProductSvc  productdomain.Service
	CustomerSvc customerdomain.Service
	InvoiceSvc  invoicedomain.Service
	CuttingSvc  cuttinglist.Service
	PDF         pdf.Provider
}

type Server struct {
	cfg         config.Config
	log         *zap.Logger
	productSvc  productdomain.Service
	customerSvc customerdomain.Service
	invoiceSvc  invoicedomain.Service
	cuttingSvc  cuttinglist.Service
	pdf         pdf.Provider
}

func NewServer(p ServerParam) *Server {
	return &Server{
		cfg:         p.Config,
		log:         p.Log.Named("http.server"),
		productSvc:  p.ProductSvc,
		customerSvc: p.CustomerSvc,
		invoiceSvc:  p.InvoiceSvc,
		cuttingSvc:  p.CuttingSvc,
		pdf:         p.PDF,
	}
}

func RegisterRoutes(s *Server, r *gin.Engine) {
	api := r.Group("/api")

	products := api.Group("/products")
	products.GET("", s.ListProducts)
	products.POST("", s.CreateProduct)
	products.GET("/:id", s.GetProduct)
	products.PUT("/:id", s.UpdateProduct)
	products.DELETE("/:id", s.DeleteProduct)

	customers := api.Group("/customers")
	customers.GET("", s.ListCustomers)
	customers.POST("", s.CreateCustomer)
	customers.GET("/:id", s.GetCustomer)
	customers.PUT("/:id", s.UpdateCustomer)
	customers.DELETE("/:id", s.DeleteCustomer)

	invoices := api.Group("/invoices")
	invoices.GET("", s.ListInvoices)
	invoices.POST("", s.CreateInvoice)
	invoices.GET("/:id", s.GetInvoice)
	invoices.PUT("/:id", s.UpdateInvoice)
	invoices.PUT("/:id/items/:item_id", s.UpdateInvoiceItem)
	invoices.DELETE("/:id", s.DeleteInvoice)
	invoices.GET("/:id/pdf", s.InvoicePDF)

	api.GET("/cutting-list/:date", s.CuttingListRows)
	api.GET("/cutting-list/:date/pdf", s.CuttingListPDF)
}

func RunHTTP(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			log.Info("http server started", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
