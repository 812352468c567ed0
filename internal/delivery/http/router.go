package http

import (
	"net/http"

	"github.com/frontandrew/plakatakip/internal/delivery/http/middleware"
	"github.com/frontandrew/plakatakip/internal/domain"
	"github.com/frontandrew/plakatakip/internal/pkg/config"
	"github.com/frontandrew/plakatakip/internal/pkg/logger"
	"github.com/frontandrew/plakatakip/internal/pkg/metrics"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Router содержит все зависимости для HTTP роутера
type Router struct {
	authHandler      *AuthHandler
	recordHandler    *RecordHandler
	dashboardHandler *DashboardHandler
	archiveHandler   *ArchiveHandler
	smsHandler       *SMSHandler
	tokenService     middleware.TokenValidator
	loginLimiter     *middleware.RateLimiter
	metrics          *metrics.Metrics
	config           *config.Config
	logger           logger.Logger
}

// Handlers - набор handler'ов API
type Handlers struct {
	Auth      *AuthHandler
	Record    *RecordHandler
	Dashboard *DashboardHandler
	Archive   *ArchiveHandler
	SMS       *SMSHandler
}

// NewRouter создает новый HTTP router; loginLimiter и m могут быть nil
func NewRouter(
	handlers Handlers,
	tokenService middleware.TokenValidator,
	loginLimiter *middleware.RateLimiter,
	m *metrics.Metrics,
	config *config.Config,
	logger logger.Logger,
) *Router {
	return &Router{
		authHandler:      handlers.Auth,
		recordHandler:    handlers.Record,
		dashboardHandler: handlers.Dashboard,
		archiveHandler:   handlers.Archive,
		smsHandler:       handlers.SMS,
		tokenService:     tokenService,
		loginLimiter:     loginLimiter,
		metrics:          m,
		config:           config,
		logger:           logger,
	}
}

// Setup настраивает все маршруты
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Глобальные middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RecoveryMiddleware(rt.logger))
	r.Use(middleware.LoggingMiddleware(rt.logger))
	r.Use(middleware.MetricsMiddleware(rt.metrics))
	r.Use(middleware.CORSMiddleware(middleware.CORSConfig{
		AllowedOrigins: rt.config.CORS.AllowedOrigins,
		AllowedMethods: rt.config.CORS.AllowedMethods,
		AllowedHeaders: rt.config.CORS.AllowedHeaders,
	}))

	// Health check endpoint (публичный)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
		})
	})
	// /metrics открыт для Prometheus, как и /health
	if rt.metrics != nil {
		r.Method(http.MethodGet, "/metrics", rt.metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		// Public routes (без аутентификации)
		r.Group(func(r chi.Router) {
			if rt.loginLimiter != nil {
				r.Use(rt.loginLimiter.Middleware)
			}
			r.Post("/auth/login", rt.authHandler.Login)
		})

		// Protected routes (требуют аутентификации)
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(rt.tokenService))

			r.Get("/auth/me", rt.authHandler.Me)
			r.Get("/categories", rt.recordHandler.Categories)

			r.Route("/licenses/{plateType}", func(r chi.Router) {
				r.Get("/", rt.recordHandler.List)
				r.Get("/export", rt.recordHandler.Export)
				r.Get("/{id}", rt.recordHandler.Get)
				r.With(middleware.RequireRole(domain.RoleEditor)).Post("/", rt.recordHandler.Save)
			})

			r.Get("/dashboard", rt.dashboardHandler.Dashboard)
			r.Route("/reports", func(r chi.Router) {
				r.Get("/", rt.dashboardHandler.Report)
				r.Get("/pdf", rt.dashboardHandler.ReportPDF)
				r.Get("/export", rt.dashboardHandler.ReportExport)
			})

			r.Get("/documents", rt.archiveHandler.List)
			r.Get("/documents/{id}/download", rt.archiveHandler.Download)
			r.Get("/sms/history", rt.smsHandler.History)

			// Editor/Admin only endpoints
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(domain.RoleEditor))
				r.Post("/upload", rt.archiveHandler.Upload)
				r.Post("/sms", rt.smsHandler.Send)
			})

			// Admin only endpoints
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(domain.RoleAdmin))
				r.Post("/sms/scan", rt.smsHandler.Scan)
			})
		})
	})

	return r
}
