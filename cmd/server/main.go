package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/api"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/config"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/database"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/payout"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/repository"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	log.Printf("Connected to database: %s", cfg.Database.Path)

	// Apply schema migrations
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Create repositories
	assetRepo := repository.NewAssetRepository(db)
	holdingRepo := repository.NewHoldingRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	distributionRepo := repository.NewDistributionRepository(db)
	claimRepo := repository.NewClaimRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	settlementRepo := repository.NewSettlementRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	summaryRepo := repository.NewSummaryRepository(db)

	systemService, err := service.NewSystemService(
		db,
		settingRepo,
		cfg.Platform,
		cfg.Payout.FernetKey,
		cfg.Payout.URL != "",
		cfg.Scheduler.Enabled,
	)
	if err != nil {
		log.Fatalf("Failed to create system service: %v", err)
	}

	// Select the payout client: the HTTP provider when configured,
	// internal settlement only otherwise.
	var payoutClient payout.Client
	if cfg.Payout.URL != "" {
		token, found, err := systemService.PayoutToken()
		if err != nil {
			log.Fatalf("Failed to read payout token: %v", err)
		}
		if !found {
			log.Printf("Payout provider configured without a stored token")
		}
		payoutClient = payout.NewProviderClient(cfg.Payout.URL, token)
	} else {
		payoutClient = payout.NewNoopClient()
	}

	// Create services
	locker := service.NewAssetLocker()
	ledgerService := service.NewLedgerService(
		assetRepo,
		holdingRepo,
	)
	settlementService := service.NewSettlementService(
		accountRepo,
		settlementRepo,
		payoutClient,
		cfg.Scheduler.SettlementMaxRetries,
	)
	registryService := service.NewRegistryService(
		assetRepo,
		ledgerService,
		locker,
		cfg.Platform.AdminAccountID,
	)
	tradingService := service.NewTradingService(
		db,
		assetRepo,
		purchaseRepo,
		ledgerService,
		settlementService,
		systemService,
		locker,
		cfg.Platform.MinPurchaseShares,
	)
	distributionService := service.NewDistributionService(
		db,
		assetRepo,
		distributionRepo,
		claimRepo,
		ledgerService,
		settlementService,
		systemService,
		locker,
	)
	snapshotService := service.NewSnapshotService(
		assetRepo,
		holdingRepo,
		purchaseRepo,
		distributionRepo,
		claimRepo,
		summaryRepo,
	)

	// Start the background scheduler
	if cfg.Scheduler.Enabled {
		scheduler, err := service.NewScheduler(cfg.Scheduler, settlementService, snapshotService)
		if err != nil {
			log.Fatalf("Failed to create scheduler: %v", err)
		}
		scheduler.Start()
		defer func() {
			<-scheduler.Stop().Done()
		}()
	}

	// Create router
	router := api.NewRouter(systemService, registryService, tradingService, distributionService, settlementService, snapshotService, ledgerService, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
