package main

//go:generate swag init -g main.go -d .,../../internal/handlers,../../internal/models,../../internal/services,../../internal/pagination -o ../../internal/docs --outputTypes go

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taxledger/internal/attachments"
	"taxledger/internal/config"
	"taxledger/internal/database"
	"taxledger/internal/handlers"
	"taxledger/internal/kv"
	"taxledger/internal/logger"
	"taxledger/internal/mailer"
	"taxledger/internal/services"
	"taxledger/internal/store"
	"taxledger/internal/validator"

	_ "taxledger/internal/docs" // Import swagger docs
)

// @title           Tax Ledger API
// @version         1.0
// @description     Tax Ledger records income and expenses with receipts, estimates tax for a year and generates client invoices.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

const shutdownTimeout = 15 * time.Second

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbManager, err := database.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnw("database close failed", "error", err)
		}
	}()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ledger, err := store.Open(ctx, kv.NewGormStore(dbManager.DB()), logger.Named("store"))
	if err != nil {
		return fmt.Errorf("failed to load ledger: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := ledger.Close(closeCtx); err != nil {
			log.Errorw("ledger close failed", "error", err)
		}
	}()

	receipts, err := attachments.NewManager(cfg.ReceiptsDir, logger.Named("attachments"))
	if err != nil {
		return fmt.Errorf("failed to prepare receipts directory: %w", err)
	}

	var mail mailer.Mailer
	if cfg.MailEnabled() {
		mail = mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.InvoiceFrom)
	} else {
		log.Info("SMTP not configured, invoice e-mail disabled")
	}

	// Initialize services
	transactionService := services.NewTransactionService(ledger, receipts)
	summaryService := services.NewSummaryService(ledger, cfg.TaxRate)
	svc := handlers.Services{
		Transactions: transactionService,
		Attachments:  services.NewAttachmentService(ledger, receipts, cfg.ExportDir),
		Categories:   services.NewCategoryService(ledger),
		Summary:      summaryService,
		Invoices:     services.NewInvoiceService(transactionService, receipts, services.HTMLRenderer{}, mail, logger.Named("invoice")),
		Export:       services.NewExportService(ledger, summaryService),
		Settings:     services.NewSettingsService(ledger),
		Audit:        services.NewAuditService(dbManager.DB()),
	}

	validator.Register()

	var secret []byte
	if cfg.AuthEnabled() {
		secret = []byte(cfg.AuthSecret)
	} else {
		log.Warn("AUTH_SECRET not set, API is unauthenticated")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.NewRouter(svc, secret),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("Starting Tax Ledger server on port %s", cfg.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
