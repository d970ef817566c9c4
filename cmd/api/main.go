package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_pos/internal/cache"
	"github.com/GTDGit/gtd_pos/internal/config"
	"github.com/GTDGit/gtd_pos/internal/database"
	"github.com/GTDGit/gtd_pos/internal/handler"
	"github.com/GTDGit/gtd_pos/internal/middleware"
	"github.com/GTDGit/gtd_pos/internal/models"
	"github.com/GTDGit/gtd_pos/internal/repository"
	"github.com/GTDGit/gtd_pos/internal/rules"
	"github.com/GTDGit/gtd_pos/internal/service"
	"github.com/GTDGit/gtd_pos/internal/sse"
	"github.com/GTDGit/gtd_pos/internal/worker"
)

// main is the application entrypoint for the shop back office API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Str("shop", cfg.Shop.Name).Msg("starting gtd pos")

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := database.RunMigrations(db); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Str("driver", cfg.DB.Driver).Msg("migrations completed successfully")

	// 3b. Connect to Redis (optional)
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Error().Err(err).Msg("redis connection failed")
		fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	if redisClient == nil {
		log.Info().Msg("redis disabled, warranty lookups are not cached")
	} else {
		log.Info().Msg("redis connected successfully")
	}

	// 4. Build services and handlers
	clock := rules.SystemClock{Location: cfg.Location()}
	hub := sse.NewHub()
	app := newApp(cfg, db, redisClient, clock, hub)

	// 5. Bootstrap admin account
	if err := app.staff.EnsureAdmin(context.Background(), cfg.Admin); err != nil {
		log.Error().Err(err).Msg("admin bootstrap failed")
		fmt.Fprintf(os.Stderr, "admin bootstrap failed: %v\n", err)
		os.Exit(1)
	}

	// 6. Setup router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := app.router(cfg)

	// 7. Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 8. Start workers
	go worker.NewAlertWorker(app.reports, app.notifier, cfg.Worker.AlertInterval).Start(ctx)
	go app.loginLimiter.Run(ctx, 5*time.Minute)

	// 9. Start HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 10. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 11. Cancel context to stop workers
	cancel()

	// 12. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// app holds the wired services and handlers.
type app struct {
	handlers     *Handlers
	jwt          *middleware.JWTMiddleware
	loginLimiter *middleware.LoginLimiter
	staff        *service.StaffService
	reports      *service.ReportService
	notifier     sse.Notifier
}

func newApp(cfg *config.Config, db *sqlx.DB, redisClient *cache.RedisClient, clock rules.Clock, hub *sse.Hub) *app {
	loc := cfg.Location()
	store := repository.NewStore(db)
	notifier := sse.NewHubNotifier(hub)
	lookups := cache.NewLookupCache(redisClient, cfg.Redis.TTL)

	authSvc := service.NewAuthService(store, clock, cfg.JWTSecret, cfg.JWTTTL)
	staffSvc := service.NewStaffService(store, clock)
	catalogSvc := service.NewCatalogService(store, clock, cfg.Shop.DefaultWarrantyMonths)
	inventorySvc := service.NewInventoryService(store, clock, cfg.Shop.DebtDueDays)
	saleSvc := service.NewSaleService(store, clock, cfg.Shop, notifier)
	warrantySvc := service.NewWarrantyService(store, clock, lookups, cfg.Shop.WarrantyExpiringDays)
	repairSvc := service.NewRepairService(store, clock, cfg.Shop, notifier)
	pawnSvc := service.NewPawnService(store, clock, cfg.Shop, notifier)
	ledgerSvc := service.NewLedgerService(store, clock, loc)
	debtSvc := service.NewDebtService(store, clock, cfg.Shop.DebtDueDays)
	reportSvc := service.NewReportService(store, clock, loc, cfg.Shop)

	return &app{
		handlers: &Handlers{
			Health:    handler.NewHealthHandler(db, redisClient),
			Auth:      handler.NewAuthHandler(authSvc, staffSvc),
			Staff:     handler.NewStaffHandler(staffSvc),
			Catalog:   handler.NewCatalogHandler(catalogSvc),
			Inventory: handler.NewInventoryHandler(inventorySvc),
			Sale:      handler.NewSaleHandler(saleSvc, loc),
			Warranty:  handler.NewWarrantyHandler(warrantySvc),
			Repair:    handler.NewRepairHandler(repairSvc),
			Pawn:      handler.NewPawnHandler(pawnSvc),
			Ledger:    handler.NewLedgerHandler(ledgerSvc, debtSvc, loc),
			Report:    handler.NewReportHandler(reportSvc),
			SSE:       handler.NewSSEHandler(hub),
		},
		jwt:          middleware.NewJWTMiddleware(authSvc),
		loginLimiter: middleware.NewLoginLimiter(5, time.Minute),
		staff:        staffSvc,
		reports:      reportSvc,
		notifier:     notifier,
	}
}

func (a *app) router(cfg *config.Config) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	router.Use(middleware.LoggingMiddleware())
	setupRoutes(router, a.handlers, a.jwt, a.loginLimiter)
	return router
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health    *handler.HealthHandler
	Auth      *handler.AuthHandler
	Staff     *handler.StaffHandler
	Catalog   *handler.CatalogHandler
	Inventory *handler.InventoryHandler
	Sale      *handler.SaleHandler
	Warranty  *handler.WarrantyHandler
	Repair    *handler.RepairHandler
	Pawn      *handler.PawnHandler
	Ledger    *handler.LedgerHandler
	Report    *handler.ReportHandler
	SSE       *handler.SSEHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers, jwtMiddleware *middleware.JWTMiddleware, loginLimiter *middleware.LoginLimiter) {
	router.GET("/v1/health", handlers.Health.GetHealth)
	router.POST("/v1/auth/login", loginLimiter.Handle(), handlers.Auth.Login)

	// Public warranty check for customers holding a printed card
	router.GET("/v1/warranties/lookup", handlers.Warranty.Lookup)

	api := router.Group("/v1")
	api.Use(jwtMiddleware.Handle())
	managers := middleware.RequireRole(models.RoleAdmin, models.RoleManager)
	{
		api.GET("/auth/me", handlers.Auth.Me)
		api.PUT("/auth/password", handlers.Auth.ChangePassword)
		api.GET("/events", handlers.SSE.Stream)
		api.GET("/dashboard", handlers.Ledger.Dashboard)

		// Staff
		api.GET("/staff", managers, handlers.Staff.List)
		api.POST("/staff", middleware.RequireRole(models.RoleAdmin), handlers.Staff.Create)
		api.PUT("/staff/:id", middleware.RequireRole(models.RoleAdmin), handlers.Staff.Update)

		// Catalog
		api.GET("/categories", handlers.Catalog.ListCategories)
		api.POST("/categories", managers, handlers.Catalog.CreateCategory)
		api.PUT("/categories/:id", managers, handlers.Catalog.UpdateCategory)
		api.GET("/products", handlers.Catalog.ListProducts)
		api.GET("/products/:id", handlers.Catalog.GetProduct)
		api.POST("/products", managers, handlers.Catalog.CreateProduct)
		api.PUT("/products/:id", managers, handlers.Catalog.UpdateProduct)
		api.GET("/suppliers", handlers.Catalog.ListSuppliers)
		api.POST("/suppliers", managers, handlers.Catalog.CreateSupplier)
		api.PUT("/suppliers/:id", managers, handlers.Catalog.UpdateSupplier)
		api.GET("/customers", handlers.Catalog.ListCustomers)
		api.GET("/customers/:id", handlers.Catalog.GetCustomer)
		api.POST("/customers", handlers.Catalog.CreateCustomer)
		api.PUT("/customers/:id", handlers.Catalog.UpdateCustomer)

		// Inventory
		api.GET("/inventory", handlers.Inventory.List)
		api.GET("/inventory/imei/:imei", handlers.Inventory.GetByIMEI)
		api.GET("/inventory/import/template", handlers.Inventory.Template)
		api.GET("/inventory/:id", handlers.Inventory.Get)
		api.POST("/inventory", managers, handlers.Inventory.Receive)
		api.POST("/inventory/batch", managers, handlers.Inventory.ReceiveBatch)
		api.POST("/inventory/import", managers, handlers.Inventory.Import)
		api.PUT("/inventory/:id/status", handlers.Inventory.Transition)

		// Sales
		api.POST("/sales/quote", handlers.Sale.Quote)
		api.POST("/sales", handlers.Sale.Checkout)
		api.GET("/sales", handlers.Sale.List)
		api.GET("/sales/:invoice", handlers.Sale.Get)

		// Warranties
		api.GET("/warranties", handlers.Warranty.List)
		api.GET("/warranties/expiring", handlers.Warranty.Expiring)
		api.POST("/warranties", handlers.Warranty.Issue)
		api.POST("/warranties/:number/claim", handlers.Warranty.Claim)
		api.POST("/warranties/:number/void", managers, handlers.Warranty.Void)

		// Repairs
		api.POST("/repairs", handlers.Repair.Intake)
		api.GET("/repairs", handlers.Repair.List)
		api.GET("/repairs/:number", handlers.Repair.Get)
		api.PUT("/repairs/:number/status", handlers.Repair.Transition)
		api.PUT("/repairs/:number/costs", handlers.Repair.UpdateCosts)
		api.POST("/repairs/:number/payments", handlers.Repair.CollectPayment)

		// Pawn
		api.GET("/pawns/suggest", handlers.Pawn.Suggest)
		api.POST("/pawns", handlers.Pawn.Open)
		api.GET("/pawns", handlers.Pawn.List)
		api.GET("/pawns/:number", handlers.Pawn.Get)
		api.POST("/pawns/:number/redeem", handlers.Pawn.Redeem)
		api.POST("/pawns/:number/extend", handlers.Pawn.Extend)
		api.POST("/pawns/:number/interest", handlers.Pawn.CollectInterest)
		api.POST("/pawns/:number/liquidate", managers, handlers.Pawn.Liquidate)

		// Cash book and debts
		api.GET("/transactions", managers, handlers.Ledger.ListTransactions)
		api.POST("/transactions", managers, handlers.Ledger.RecordTransaction)
		api.GET("/debts", handlers.Ledger.ListDebts)
		api.GET("/debts/:id", handlers.Ledger.GetDebt)
		api.POST("/debts", managers, handlers.Ledger.CreateDebt)
		api.POST("/debts/:id/payments", handlers.Ledger.SettleDebt)

		// Reports
		reports := api.Group("/reports", managers)
		reports.GET("/sales", handlers.Report.Sales)
		reports.GET("/sales/daily", handlers.Report.Daily)
		reports.GET("/sales/export", handlers.Report.ExportSales)
		reports.GET("/stock", handlers.Report.Stock)
		reports.GET("/stock/export", handlers.Report.ExportLowStock)
		reports.GET("/profit-loss", handlers.Report.ProfitLoss)
		reports.GET("/profit-loss/export", handlers.Report.ExportProfitLoss)
		reports.GET("/debts", handlers.Report.CustomerDebts)
		reports.GET("/pawns", handlers.Report.Pawns)
	}
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
