package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/api/handlers"
	custommiddleware "github.com/rvanlent/Property-Share-Ledger-Backend/internal/api/middleware"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/config"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	systemService *service.SystemService,
	registryService *service.RegistryService,
	tradingService *service.TradingService,
	distributionService *service.DistributionService,
	settlementService *service.SettlementService,
	snapshotService *service.SnapshotService,
	ledgerService *service.LedgerService,
	cfg *config.Config,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	requireAdmin := custommiddleware.RequireAdmin(cfg.Platform.AdminAccountID)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(systemService, settlementService)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
			r.Get("/settings", systemHandler.Settings)

			// Admin-only platform controls
			r.Group(func(r chi.Router) {
				r.Use(custommiddleware.RequireIdentity)
				r.Use(requireAdmin)
				r.Put("/settings/fee", systemHandler.SetFee)
				r.Put("/settings/fee-recipient", systemHandler.SetFeeRecipient)
				r.Put("/settings/emergency-stop", systemHandler.SetEmergencyStop)
				r.Put("/settings/payout-token", systemHandler.SetPayoutToken)
				r.Get("/settlements/pending", systemHandler.PendingSettlements)
				r.Post("/settlements/retry", systemHandler.RetrySettlements)
			})
		})

		// Asset namespace
		r.Route("/asset", func(r chi.Router) {
			assetHandler := handlers.NewAssetHandler(registryService, snapshotService, tradingService)
			tradeHandler := handlers.NewTradeHandler(tradingService)
			distributionHandler := handlers.NewDistributionHandler(distributionService)

			r.Get("/", assetHandler.Assets)
			r.With(custommiddleware.RequireIdentity).Post("/", assetHandler.RegisterAsset)

			r.Route("/{assetID}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateAssetID)

				r.Get("/", assetHandler.Asset)
				r.Get("/holders", assetHandler.Holders)
				r.Get("/purchases", assetHandler.Purchases)
				r.Get("/summary", assetHandler.Summary)
				r.Get("/distribution", distributionHandler.Distributions)

				// Mutations require a caller identity
				r.Group(func(r chi.Router) {
					r.Use(custommiddleware.RequireIdentity)
					r.Put("/valuation", assetHandler.UpdateValuation)
					r.Put("/pause", assetHandler.SetPaused)
					r.Delete("/", assetHandler.Deactivate)
					r.Post("/purchase", tradeHandler.Purchase)
					r.Post("/transfer", tradeHandler.Transfer)
					r.Post("/distribution", distributionHandler.Distribute)
					r.Get("/distribution/claimable", distributionHandler.Claimable)
					r.Post("/distribution/claim-all", distributionHandler.ClaimAll)
					r.Post("/distribution/{index}/claim", distributionHandler.Claim)
				})
			})
		})

		// Trade namespace
		r.Route("/trade", func(r chi.Router) {
			tradeHandler := handlers.NewTradeHandler(tradingService)
			r.With(custommiddleware.RequireIdentity).Post("/bulk", tradeHandler.BulkPurchase)
		})

		// Account namespace
		r.Route("/account", func(r chi.Router) {
			accountHandler := handlers.NewAccountHandler(settlementService, ledgerService)
			r.Use(custommiddleware.RequireIdentity)
			r.Get("/me", accountHandler.Account)
			r.Get("/me/positions", accountHandler.Positions)
		})
	})

	return r
}
