package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vendorly/invoicedesk/internal/auth"
	authdomain "github.com/vendorly/invoicedesk/internal/auth/domain"
	"github.com/vendorly/invoicedesk/internal/auth/session"
	"github.com/vendorly/invoicedesk/internal/config"
	"github.com/vendorly/invoicedesk/internal/directory"
	directorydomain "github.com/vendorly/invoicedesk/internal/directory/domain"
	"github.com/vendorly/invoicedesk/internal/invoice"
	invoicedomain "github.com/vendorly/invoicedesk/internal/invoice/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	auth.Module,
	invoice.Module,
	directory.Module,
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestID())
	r.Use(requestLogger(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

const requestIDHeader = "X-Request-ID"

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDHeader, id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("request",
			zap.String("request_id", c.GetString(requestIDHeader)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", srv.Addr))
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
	engine       *gin.Engine
	cfg          config.Config
	log          *zap.Logger
	authSvc      authdomain.Service
	sessions     *session.Manager
	invoiceSvc   invoicedomain.Service
	directorySvc directorydomain.Service
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	Log          *zap.Logger
	AuthSvc      authdomain.Service
	Sessions     *session.Manager
	InvoiceSvc   invoicedomain.Service
	DirectorySvc directorydomain.Service
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		log:          p.Log.Named("server"),
		authSvc:      p.AuthSvc,
		sessions:     p.Sessions,
		invoiceSvc:   p.InvoiceSvc,
		directorySvc: p.DirectorySvc,
	}

	s.registerAuthRoutes()
	s.registerAPIRoutes()

	return s
}

func (s *Server) registerAuthRoutes() {
	grp := s.engine.Group("/auth")
	grp.POST("/signup", s.handleSignup)
	grp.POST("/login", s.handleLogin)
	grp.POST("/logout", s.handleLogout)
	grp.GET("/me", AuthRequired(s.authSvc, s.sessions), s.handleMe)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", AuthRequired(s.authSvc, s.sessions))

	invoices := api.Group("/invoices")
	invoices.POST("", s.handleCreateInvoice)
	invoices.GET("", s.handleListInvoices)
	invoices.GET("/stats", s.handleInvoiceStats)
	invoices.GET("/activity", s.handleRecentActivity)
	invoices.GET("/:id", s.handleGetInvoice)
	invoices.PUT("/:id/status", s.handleTransitionInvoice)

	users := api.Group("/users")
	users.GET("", s.handleListUsers)
	users.POST("", RequireAdmin(), s.handleCreateUser)
	users.DELETE("/:id", RequireAdmin(), s.handleDeleteUser)
}
