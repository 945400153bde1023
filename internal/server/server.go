package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/permitdesk/internal/application"
	applicationdomain "github.com/smallbiznis/permitdesk/internal/application/domain"
	"github.com/smallbiznis/permitdesk/internal/audit"
	auditdomain "github.com/smallbiznis/permitdesk/internal/audit/domain"
	"github.com/smallbiznis/permitdesk/internal/authorization"
	"github.com/smallbiznis/permitdesk/internal/config"
	"github.com/smallbiznis/permitdesk/internal/feecatalog"
	feedomain "github.com/smallbiznis/permitdesk/internal/feecatalog/domain"
	"github.com/smallbiznis/permitdesk/internal/insurance"
	insurancedomain "github.com/smallbiznis/permitdesk/internal/insurance/domain"
	"github.com/smallbiznis/permitdesk/internal/invoice"
	invoicedomain "github.com/smallbiznis/permitdesk/internal/invoice/domain"
	"github.com/smallbiznis/permitdesk/internal/lifecycle"
	lifecycledomain "github.com/smallbiznis/permitdesk/internal/lifecycle/domain"
	"github.com/smallbiznis/permitdesk/internal/notification"
	obslogger "github.com/smallbiznis/permitdesk/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/permitdesk/internal/observability/metrics"
	obstracing "github.com/smallbiznis/permitdesk/internal/observability/tracing"
	"github.com/smallbiznis/permitdesk/internal/park"
	parkdomain "github.com/smallbiznis/permitdesk/internal/park/domain"
	"github.com/smallbiznis/permitdesk/internal/permitdoc"
	permitdomain "github.com/smallbiznis/permitdesk/internal/permitdoc/domain"
	"github.com/smallbiznis/permitdesk/internal/providers"
	"github.com/smallbiznis/permitdesk/internal/providers/storage"
	"github.com/smallbiznis/permitdesk/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	providers.Module,
	authorization.Module,
	audit.Module,
	park.Module,
	feecatalog.Module,
	insurance.Module,
	application.Module,
	invoice.Module,
	lifecycle.Module,
	permitdoc.Module,
	notification.Module,
	ratelimit.Module,
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	if httpMetrics != nil {
		r.Use(httpMetrics.Middleware())
	}
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if httpMetrics != nil {
		r.GET("/metrics", httpMetrics.Handler())
	}

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, r *gin.Engine) {
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
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
	engine *gin.Engine
	cfg    config.Config
	log    *zap.Logger

	authzSvc      authorization.Service
	auditSvc      auditdomain.Service
	parkSvc       parkdomain.Service
	feeSvc        feedomain.Service
	insuranceSvc  insurancedomain.Service
	appSvc        applicationdomain.Service
	invoiceSvc    invoicedomain.Service
	lifecycleSvc  lifecycledomain.Service
	permitSvc     permitdomain.Service
	storage       storage.Provider
	intakeLimiter *ratelimit.IntakeLimiter
	obsMetrics    *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	Log           *zap.Logger
	AuthzSvc      authorization.Service
	AuditSvc      auditdomain.Service
	ParkSvc       parkdomain.Service
	FeeSvc        feedomain.Service
	InsuranceSvc  insurancedomain.Service
	AppSvc        applicationdomain.Service
	InvoiceSvc    invoicedomain.Service
	LifecycleSvc  lifecycledomain.Service
	PermitSvc     permitdomain.Service
	Storage       storage.Provider
	IntakeLimiter *ratelimit.IntakeLimiter
	ObsMetrics    *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		log:           p.Log.Named("http.server"),
		authzSvc:      p.AuthzSvc,
		auditSvc:      p.AuditSvc,
		parkSvc:       p.ParkSvc,
		feeSvc:        p.FeeSvc,
		insuranceSvc:  p.InsuranceSvc,
		appSvc:        p.AppSvc,
		invoiceSvc:    p.InvoiceSvc,
		lifecycleSvc:  p.LifecycleSvc,
		permitSvc:     p.PermitSvc,
		storage:       p.Storage,
		intakeLimiter: p.IntakeLimiter,
		obsMetrics:    p.ObsMetrics,
	}

	svc.registerPublicRoutes()
	svc.registerAdminRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerPublicRoutes() {
	public := s.engine.Group("/public")
	public.Use(PublicActor())

	public.POST("/applications", s.intakeRateLimit(), s.SubmitApplication)
	public.GET("/parks", s.ListActiveParks)
	public.GET("/fees/:category", s.GetFeeOptions)
	public.GET("/insurance/tiers", s.ListInsuranceTiers)
	public.GET("/insurance/activities/:name", s.GetInsuranceTier)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin")
	admin.Use(StaffRequired())

	// -------- Parks --------
	admin.GET("/parks", s.authorize(authorization.ObjectApplication, authorization.ActionApplicationView), s.ListParks)
	admin.GET("/parks/:id", s.authorize(authorization.ObjectApplication, authorization.ActionApplicationView), s.GetPark)

	// -------- Applications --------
	admin.GET("/applications", s.authorize(authorization.ObjectApplication, authorization.ActionApplicationView), s.ListApplications)
	admin.GET("/applications/:id", s.authorize(authorization.ObjectApplication, authorization.ActionApplicationView), s.GetApplication)
	admin.GET("/applications/:id/payment", s.authorize(authorization.ObjectApplication, authorization.ActionApplicationView), s.GetPaymentStatus)
	admin.POST("/applications/:id/approve", s.authorize(authorization.ObjectApplication, authorization.ActionApplicationApprove), s.ApproveApplication)
	admin.POST("/applications/:id/disapprove", s.authorize(authorization.ObjectApplication, authorization.ActionApplicationDisapprove), s.DisapproveApplication)
	admin.DELETE("/applications/:id", s.authorize(authorization.ObjectApplication, authorization.ActionApplicationDelete), s.DeleteApplication)
	admin.POST("/applications/:id/fee-paid", s.authorize(authorization.ObjectPayment, authorization.ActionPaymentRecord), s.MarkApplicationFeePaid)
	admin.POST("/applications/:id/location-fee-paid", s.authorize(authorization.ObjectPayment, authorization.ActionPaymentRecord), s.MarkLocationFeePaid)
	admin.PUT("/applications/:id/insurance-document", s.authorize(authorization.ObjectApplication, authorization.ActionApplicationUpdate), s.UploadInsuranceDocument)
	admin.GET("/applications/:id/insurance-document", s.authorize(authorization.ObjectApplication, authorization.ActionApplicationView), s.GetInsuranceDocument)
	admin.GET("/applications/:id/permit", s.authorize(authorization.ObjectPermit, authorization.ActionPermitPrint), s.RenderPermit)

	// -------- Invoices --------
	admin.GET("/invoices", s.authorize(authorization.ObjectInvoice, authorization.ActionInvoiceView), s.ListInvoices)
	admin.GET("/invoices/:id", s.authorize(authorization.ObjectInvoice, authorization.ActionInvoiceView), s.GetInvoice)
	admin.GET("/invoices/:id/print", s.authorize(authorization.ObjectInvoice, authorization.ActionInvoiceView), s.PrintInvoice)
	admin.GET("/invoices/:id/pdf", s.authorize(authorization.ObjectInvoice, authorization.ActionInvoiceView), s.DownloadInvoicePDF)
	admin.POST("/invoices/:id/mark-paid", s.authorize(authorization.ObjectPayment, authorization.ActionPaymentRecord), s.MarkInvoicePaid)

	// -------- Audit --------
	admin.GET("/audit-logs", s.authorize(authorization.ObjectAuditLog, authorization.ActionAuditLogView), s.ListAuditLogs)
	admin.GET("/applications/:id/history", s.authorize(authorization.ObjectAuditLog, authorization.ActionAuditLogView), s.ApplicationHistory)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
