package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sitepulse/sitepulse/internal/alert"
	alertdomain "github.com/sitepulse/sitepulse/internal/alert/domain"
	"github.com/sitepulse/sitepulse/internal/audit"
	auditdomain "github.com/sitepulse/sitepulse/internal/audit/domain"
	"github.com/sitepulse/sitepulse/internal/auth"
	"github.com/sitepulse/sitepulse/internal/cache"
	"github.com/sitepulse/sitepulse/internal/config"
	"github.com/sitepulse/sitepulse/internal/monitoring"
	monitoringdomain "github.com/sitepulse/sitepulse/internal/monitoring/domain"
	"github.com/sitepulse/sitepulse/internal/notification"
	notificationdomain "github.com/sitepulse/sitepulse/internal/notification/domain"
	"github.com/sitepulse/sitepulse/internal/observability"
	obsmiddleware "github.com/sitepulse/sitepulse/internal/observability/logger"
	obsmetrics "github.com/sitepulse/sitepulse/internal/observability/metrics"
	obstracing "github.com/sitepulse/sitepulse/internal/observability/tracing"
	"github.com/sitepulse/sitepulse/internal/providers/email"
	"github.com/sitepulse/sitepulse/internal/providers/webhook"
	"github.com/sitepulse/sitepulse/internal/ratelimit"
	"github.com/sitepulse/sitepulse/internal/scheduler"
	"github.com/sitepulse/sitepulse/internal/user"
	"github.com/sitepulse/sitepulse/internal/website"
	websitedomain "github.com/sitepulse/sitepulse/internal/website/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	auth.Module,
	cache.Module,
	user.Module,
	website.Module,
	audit.Module,
	monitoring.Module,
	alert.Module,
	notification.Module,
	email.Module,
	webhook.Module,
	ratelimit.Module,
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) { s.RegisterRoutes() }),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type Server struct {
	engine     *gin.Engine
	cfg        config.Config
	log        *zap.Logger
	db         *gorm.DB
	genID      *snowflake.Node
	verifier   *auth.Verifier
	websiteSvc websitedomain.Service
	auditSvc   auditdomain.Service
	configSvc  monitoringdomain.ConfigService
	alertSvc   alertdomain.Service
	notifSvc   notificationdomain.Service
	scheduler  *scheduler.Scheduler
	apiLimiter *ratelimit.APILimiter
	obsMetrics *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	Log        *zap.Logger
	DB         *gorm.DB
	GenID      *snowflake.Node
	Verifier   *auth.Verifier
	WebsiteSvc websitedomain.Service
	AuditSvc   auditdomain.Service
	ConfigSvc  monitoringdomain.ConfigService
	AlertSvc   alertdomain.Service
	NotifSvc   notificationdomain.Service
	Scheduler  *scheduler.Scheduler  `optional:"true"`
	APILimiter *ratelimit.APILimiter `optional:"true"`
	ObsMetrics *obsmetrics.Metrics   `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		log:        p.Log.Named("server"),
		db:         p.DB,
		genID:      p.GenID,
		verifier:   p.Verifier,
		websiteSvc: p.WebsiteSvc,
		auditSvc:   p.AuditSvc,
		configSvc:  p.ConfigSvc,
		alertSvc:   p.AlertSvc,
		notifSvc:   p.NotifSvc,
		scheduler:  p.Scheduler,
		apiLimiter: p.APILimiter,
		obsMetrics: p.ObsMetrics,
	}
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) RegisterRoutes() {
	api := s.engine.Group("/api")
	api.Use(s.AuthRequired())
	api.Use(s.RateLimit())

	// -------- Monitoring --------
	api.GET("/monitor/alerts", s.GetMonitorAlerts)
	api.POST("/monitor/alerts", s.MarkMonitorAlertsRead)
	api.GET("/monitor/config", s.GetMonitorConfig)
	api.POST("/monitor/config", s.UpsertMonitorConfig)
	api.DELETE("/monitor/config", s.DisableMonitorConfig)

	// -------- Websites & audits --------
	api.GET("/websites", s.ListWebsites)
	api.POST("/websites", s.CreateWebsite)
	api.GET("/websites/:id", s.GetWebsiteByID)
	api.GET("/websites/:id/audits", s.ListAudits)
	api.POST("/websites/:id/audits", s.IngestAudit)

	// -------- Notifications --------
	api.GET("/notifications", s.ListNotifications)
	api.GET("/notifications/unread-count", s.GetUnreadNotificationCount)
	api.POST("/notifications/read-all", s.MarkAllNotificationsRead)
	api.POST("/notifications/:id/read", s.MarkNotificationRead)
	api.DELETE("/notifications/:id", s.DeleteNotification)

	// -------- Internal cron --------
	internal := s.engine.Group("/internal")
	internal.Use(s.CronAuthRequired())
	internal.POST("/cron/monitoring", s.RunMonitoringBatch)
}

func run(lc fx.Lifecycle, r *gin.Engine) {
	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
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
