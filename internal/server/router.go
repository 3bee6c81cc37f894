package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lendcore/backend/internal/auth"
	"github.com/lendcore/backend/internal/config"
	"github.com/lendcore/backend/internal/http/handlers"
	"github.com/lendcore/backend/internal/http/middleware"
	"github.com/lendcore/backend/internal/version"
	"github.com/lendcore/backend/internal/ws"
)

type Dependencies struct {
	Pinger             handlers.Pinger
	AuthHandler        *handlers.AuthHandler
	ApplicationHandler *handlers.ApplicationHandler
	LoanHandler        *handlers.LoanHandler
	PaymentHandler     *handlers.PaymentHandler
	WSHandler          *ws.Handler
	JWTManager         *auth.JWTManager
}

func NewRouter(cfg config.Config, logger *slog.Logger, deps Dependencies) *gin.Engine {
	if cfg.Env == "prod" || cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestBodyLimit(cfg.MaxRequestBodyBytes))
	r.Use(func(c *gin.Context) {
		logger.Info("request", "method", c.Request.Method, "path", c.Request.URL.Path)
		c.Next()
	})

	health := handlers.NewHealthHandler(deps.Pinger)
	meta := handlers.NewMetaHandler(cfg.Env, version.Version)

	r.GET("/health", health.Health)
	r.GET("/ready", health.Ready)
	r.GET("/v1/meta", meta.GetMeta)

	if deps.AuthHandler != nil && deps.JWTManager != nil {
		authGroup := r.Group("/v1/auth")
		authGroup.POST("/login", deps.AuthHandler.Login)

		protected := authGroup.Group("")
		protected.Use(middleware.RequireAuth(deps.JWTManager))
		protected.GET("/me", deps.AuthHandler.Me)

		if deps.ApplicationHandler != nil {
			intakeGroup := r.Group("/v1")
			intakeGroup.Use(middleware.RequireAuth(deps.JWTManager))
			intakeGroup.POST("/applications", deps.ApplicationHandler.Submit)
			intakeGroup.GET("/applications", deps.ApplicationHandler.List)
			intakeGroup.GET("/applications/:applicationId", deps.ApplicationHandler.Get)
			intakeGroup.GET("/applications/:applicationId/status", deps.ApplicationHandler.StatusSteps)

			reviewGroup := r.Group("/v1")
			reviewGroup.Use(middleware.RequireAuth(deps.JWTManager), middleware.RequireRole(auth.RoleLoanOfficer, auth.RoleManager, auth.RoleAdmin))
			reviewGroup.POST("/applications/:applicationId/review", deps.ApplicationHandler.Review)
		}

		if deps.LoanHandler != nil {
			loanGroup := r.Group("/v1")
			loanGroup.Use(middleware.RequireAuth(deps.JWTManager))
			loanGroup.GET("/loans/:loanId", deps.LoanHandler.Get)
			loanGroup.GET("/loans/:loanId/schedule", deps.LoanHandler.GetSchedule)
		}

		if deps.PaymentHandler != nil {
			paymentGroup := r.Group("/v1")
			paymentGroup.Use(middleware.RequireAuth(deps.JWTManager), middleware.RequireRole(auth.RoleTeller, auth.RoleLoanOfficer, auth.RoleManager, auth.RoleAdmin))
			paymentGroup.POST("/loans/:loanId/payments", deps.PaymentHandler.Record)
			paymentGroup.GET("/loans/:loanId/payments", deps.PaymentHandler.ListByLoan)
		}

		if deps.WSHandler != nil {
			wsGroup := r.Group("/v1")
			wsGroup.Use(middleware.RequireAuth(deps.JWTManager))
			wsGroup.GET("/ws", deps.WSHandler.HandleWebSocket)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	})

	return r
}
