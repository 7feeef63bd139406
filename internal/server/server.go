package server

import (
	"context"
	"net/http"
	"time"

	"github.com/billcraft/billcraft/internal/assets"
	"github.com/billcraft/billcraft/internal/config"
	"github.com/billcraft/billcraft/internal/identity"
	invoicedomain "github.com/billcraft/billcraft/internal/invoice/domain"
	profiledomain "github.com/billcraft/billcraft/internal/profile/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewHTTPMetrics),
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, store *assets.Store, httpMetrics *HTTPMetrics) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(MetricsMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Uploaded assets are served back by reference URL under /uploads.
	r.Static("/uploads", store.Dir())

	return r
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine     *gin.Engine
	cfg        config.Config
	log        *zap.Logger
	verifier   *identity.Verifier
	invoiceSvc invoicedomain.Service
	profileSvc profiledomain.Service
	assets     *assets.Store
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	Log        *zap.Logger
	Verifier   *identity.Verifier
	InvoiceSvc invoicedomain.Service
	ProfileSvc profiledomain.Service
	Assets     *assets.Store
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		log:        p.Log.Named("http.server"),
		verifier:   p.Verifier,
		invoiceSvc: p.InvoiceSvc,
		profileSvc: p.ProfileSvc,
		assets:     p.Assets,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.AuthRequired())

	api.POST("/invoices", s.CreateInvoice)
	api.GET("/invoices", s.ListInvoices)
	api.GET("/invoices/:idOrNumber", s.GetInvoice)
	api.PUT("/invoices/:idOrNumber", s.UpdateInvoice)
	api.DELETE("/invoices/:idOrNumber", s.DeleteInvoice)

	api.POST("/business-profile", s.UpsertBusinessProfile)
	api.PUT("/business-profile/:id", s.UpdateBusinessProfile)
	api.GET("/business-profile/mine", s.GetMyBusinessProfile)
}
