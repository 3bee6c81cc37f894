package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lendcore/backend/internal/auth"
	"github.com/lendcore/backend/internal/config"
	"github.com/lendcore/backend/internal/db"
	appdomain "github.com/lendcore/backend/internal/domain/application"
	loandomain "github.com/lendcore/backend/internal/domain/loan"
	paymentdomain "github.com/lendcore/backend/internal/domain/payment"
	"github.com/lendcore/backend/internal/http/handlers"
	"github.com/lendcore/backend/internal/observability"
	postgresrepo "github.com/lendcore/backend/internal/repository/postgres"
	"github.com/lendcore/backend/internal/server"
	"github.com/lendcore/backend/internal/ws"
)

func main() {
	cfg := config.Load()
	logger := observability.NewLogger(cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect postgres", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	applicationRepo := postgresrepo.NewApplicationRepository(pool)
	loanRepo := postgresrepo.NewLoanRepository(pool)
	paymentRepo := postgresrepo.NewPaymentRepository(pool)
	customerRepo := postgresrepo.NewCustomerRepository(pool)
	productRepo := postgresrepo.NewProductRepository(pool)
	employeeRepo := postgresrepo.NewEmployeeRepository(pool)
	outboxRepo := postgresrepo.NewOutboxRepository(pool)

	jwtManager := auth.NewJWTManager(cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTSigningKey)
	authService := auth.NewService(employeeRepo, jwtManager, cfg.JWTAccessTTL)

	loanService := loandomain.NewService(loanRepo, applicationRepo, productRepo, outboxRepo, logger, cfg.DefaultProductRateBPS)
	applicationService := appdomain.NewService(applicationRepo, customerRepo, productRepo, loanService, loanRepo, outboxRepo, logger)
	paymentService := paymentdomain.NewService(paymentRepo, loanRepo, customerRepo, outboxRepo, logger)

	hub := ws.NewHub()
	wsNotifier := ws.NewNotifier(paymentRepo, hub, cfg.WSPollInterval)
	notifierCtx, notifierCancel := context.WithCancel(context.Background())
	defer notifierCancel()
	go func() {
		if err := wsNotifier.Run(notifierCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("ws notifier stopped", "err", err)
		}
	}()

	r := server.NewRouter(cfg, logger, server.Dependencies{
		Pinger:             pool,
		AuthHandler:        handlers.NewAuthHandler(authService),
		ApplicationHandler: handlers.NewApplicationHandler(applicationService),
		LoanHandler:        handlers.NewLoanHandler(loanService),
		PaymentHandler:     handlers.NewPaymentHandler(paymentService),
		WSHandler:          ws.NewHandler(hub),
		JWTManager:         jwtManager,
	})
	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("api server starting", "addr", cfg.Addr())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = httpServer.Shutdown(shutdownCtx)
	logger.Info("api server stopped")
}
