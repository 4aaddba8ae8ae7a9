package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LovationAdmin/superapp-api/config"
	"github.com/LovationAdmin/superapp-api/handlers"
	"github.com/LovationAdmin/superapp-api/middleware"
	"github.com/LovationAdmin/superapp-api/routes"
	"github.com/LovationAdmin/superapp-api/services"
	"github.com/LovationAdmin/superapp-api/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const version = "1.0.0"

func main() {
	if err := godotenv.Load(); err != nil {
		utils.SafeInfo("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		utils.SafeError("Invalid configuration: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := config.InitDB(ctx, cfg.DatabaseURL)
	if err != nil {
		utils.SafeError("Failed to connect to database: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	utils.SafeInfo("✅ Database connected successfully")

	if err := config.RunMigrations(ctx, db); err != nil {
		utils.SafeError("Failed to run migrations: %v", err)
		os.Exit(1)
	}

	cipher, err := utils.NewCipher(cfg.DataEncryptionKey)
	if err != nil {
		utils.SafeError("Failed to init credential cipher: %v", err)
		os.Exit(1)
	}

	verifier, err := newVerifier(cfg)
	if err != nil {
		utils.SafeError("Failed to init token verifier: %v", err)
		os.Exit(1)
	}

	plaidService := services.NewPlaidService(services.PlaidConfig{
		ClientID:    cfg.PlaidClientID,
		Secret:      cfg.PlaidSecret,
		Env:         cfg.PlaidEnv,
		RedirectURL: cfg.FrontendURL,
	})
	accounts := services.NewBankingService(db, cipher)
	transactions := services.NewTransactionService(db)
	budgets := services.NewBudgetService(db)
	orchestrator := services.NewOrchestrator(plaidService, accounts, transactions, cfg.ImportWindowDays)

	hub := handlers.NewHub()
	defer hub.Close()

	if utils.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.Metrics())
	router.Use(middleware.RequestLogger())

	limiter := middleware.NewIPRateLimiter(cfg.RateLimitPerMinute)
	go limiter.Run(ctx)
	router.Use(middleware.RateLimiter(limiter))

	router.GET("/health", func(c *gin.Context) {
		status, code := "healthy", http.StatusOK
		if err := db.PingContext(c.Request.Context()); err != nil {
			status, code = "degraded", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":  status,
			"version": version,
			"time":    time.Now().Format(time.RFC3339),
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	routes.Register(router.Group("/api/v1"), routes.Dependencies{
		Verifier:     verifier,
		Links:        plaidService,
		Importer:     orchestrator,
		Accounts:     accounts,
		Transactions: transactions,
		Budgets:      budgets,
		Categories:   budgets,
		Profiles:     services.NewProfileService(db),
		Hub:          hub,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.LogStartup("superapp-api", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.SafeError("Failed to start server: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	utils.SafeInfo("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.SafeError("Graceful shutdown failed: %v", err)
	}
}

// newVerifier checks tokens locally when the JWT secret is known, otherwise asks Supabase.
func newVerifier(cfg *config.Config) (middleware.TokenVerifier, error) {
	if cfg.SupabaseJWTSecret != "" {
		return middleware.NewJWTVerifier(cfg.SupabaseJWTSecret), nil
	}
	return middleware.NewSupabaseVerifier(cfg.SupabaseURL, cfg.SupabaseServiceRoleKey)
}
