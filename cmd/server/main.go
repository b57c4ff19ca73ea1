package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appfinance "github.com/himfirm/backend/internal/application/finance"
	"github.com/himfirm/backend/internal/infrastructure/auth"
	"github.com/himfirm/backend/internal/infrastructure/config"
	"github.com/himfirm/backend/internal/infrastructure/event"
	"github.com/himfirm/backend/internal/infrastructure/logger"
	"github.com/himfirm/backend/internal/infrastructure/persistence"
	"github.com/himfirm/backend/internal/interfaces/http/handler"
	"github.com/himfirm/backend/internal/interfaces/http/router"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server exited: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Info("starting server",
		zap.String("app", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
		zap.String("version", version),
	)

	db, err := persistence.NewDatabase(cfg.Database, log)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close() //nolint:errcheck

	if err := db.AutoMigrate(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bus := event.NewInMemoryEventBus(log)
	if err := bus.Start(ctx); err != nil {
		return fmt.Errorf("start event bus: %w", err)
	}

	// Repositories
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	accountRepo := persistence.NewGormBankAccountRepository(db.DB)
	ledgerRepo := persistence.NewGormBankTransactionRepository(db.DB)
	pettyCashRepo := persistence.NewGormPettyCashRepository(db.DB)
	vendorRepo := persistence.NewGormVendorRepository(db.DB)
	orderRepo := persistence.NewGormPurchaseOrderRepository(db.DB)
	expenseRepo := persistence.NewGormExpenseRepository(db.DB)
	budgetRepo := persistence.NewGormBudgetRepository(db.DB)
	costRepo := persistence.NewGormProjectCostRepository(db.DB)
	commissionRepo := persistence.NewGormCommissionRepository(db.DB)
	periodRepo := persistence.NewGormFinancialPeriodRepository(db.DB)
	taxRepo := persistence.NewGormTaxConfigurationRepository(db.DB)
	txManager := persistence.NewGormTransactionManager(db.DB)

	// Application services
	invoiceService := appfinance.NewInvoiceService(invoiceRepo, paymentRepo, periodRepo, bus)
	paymentService := appfinance.NewPaymentService(paymentRepo, invoiceRepo, accountRepo, ledgerRepo, periodRepo, txManager, bus)
	bankService := appfinance.NewBankService(accountRepo, ledgerRepo, periodRepo, txManager, bus)
	expenseService := appfinance.NewExpenseService(expenseRepo, accountRepo, ledgerRepo, taxRepo, periodRepo, txManager, bus)
	pettyCashService := appfinance.NewPettyCashService(pettyCashRepo, accountRepo, ledgerRepo, periodRepo, txManager)
	orderService := appfinance.NewPurchaseOrderService(orderRepo, vendorRepo)
	budgetService := appfinance.NewBudgetService(budgetRepo, costRepo, bus)
	commissionService := appfinance.NewCommissionService(commissionRepo)
	periodService := appfinance.NewPeriodService(periodRepo, taxRepo)
	dashboardService := appfinance.NewDashboardService(invoiceRepo, accountRepo, expenseRepo)

	// Event handlers keep budget consumption in sync with paid expenses
	// and actualized project costs
	bus.Subscribe(appfinance.NewExpensePaidHandler(budgetRepo, bus, log))
	bus.Subscribe(appfinance.NewCostActualizedHandler(budgetRepo, bus, log))

	tokenService := auth.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTokenTTL, cfg.JWT.RefreshTokenTTL)

	engine := router.New(router.Config{
		Logger:         log,
		TokenService:   tokenService,
		AllowedOrigins: cfg.Server.AllowedOrigins,

		System:        handler.NewSystemHandler(db, version),
		Invoice:       handler.NewInvoiceHandler(invoiceService),
		Payment:       handler.NewPaymentHandler(paymentService),
		Bank:          handler.NewBankHandler(bankService),
		PettyCash:     handler.NewPettyCashHandler(pettyCashService),
		Expense:       handler.NewExpenseHandler(expenseService),
		PurchaseOrder: handler.NewPurchaseOrderHandler(orderService),
		Budget:        handler.NewBudgetHandler(budgetService),
		Commission:    handler.NewCommissionHandler(commissionService),
		Period:        handler.NewPeriodHandler(periodService),
		Dashboard:     handler.NewDashboardHandler(dashboardService),
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down", zap.Duration("timeout", cfg.Server.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", zap.Error(err))
	}
	if err := bus.Stop(shutdownCtx); err != nil {
		log.Error("event bus shutdown failed", zap.Error(err))
	}

	log.Info("server stopped")
	return nil
}
