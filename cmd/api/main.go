package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-todo-backend/config"
	_ "go-todo-backend/docs" // Important for Swagger
	v1 "go-todo-backend/internal/delivery/http/v1"
	"go-todo-backend/internal/domain"
	"go-todo-backend/internal/repository/cache"
	"go-todo-backend/internal/repository/postgres"
	"go-todo-backend/internal/repository/supabase"
	"go-todo-backend/internal/usecase"
	"go-todo-backend/pkg/auth"
	"go-todo-backend/pkg/database"
	"go-todo-backend/pkg/logger"
	"go-todo-backend/pkg/redis"
	"go-todo-backend/pkg/security"
)

// @title           Todo Backend API
// @version         1.0
// @description     Task dashboard with hosted identity, admin user management and XLSX export.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	policy, err := domain.ParseTaskMutationPolicy(cfg.TaskMutationPolicy)
	if err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// 2. Setup Loggers
	logger.Init()
	logger.Log.Info("Starting todo backend", "port", cfg.Port, "task_policy", policy)

	env := "development"
	if cfg.IsProduction() {
		env = "production"
	}
	secLog := security.InitSecurityLogger("go-todo-backend", env)
	defer secLog.Sync()

	// 3. Setup Database
	ctx := context.Background()
	dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// 4. Setup Redis (optional; in-memory fallbacks otherwise)
	var redisPinger usecase.Pinger
	if cfg.UpstashRedisURL != "" {
		if err := redis.Initialize(redis.Config{URL: cfg.UpstashRedisURL, Password: cfg.UpstashRedisPassword}); err != nil {
			logger.Log.Warn("Redis unavailable, using in-memory fallback", "error", err)
		} else {
			redisPinger = usecase.PingFunc(redis.HealthCheck)
			defer redis.Close()
		}
	}

	// 5. Setup Identity Clients
	identity := supabase.NewClient(cfg.SupabaseUrl, cfg.SupabaseAnonKey, cfg.IdentityTimeout)
	identityAdmin := supabase.NewAdminClient(cfg.SupabaseUrl, cfg.SupabaseServiceRoleKey, cfg.IdentityTimeout)

	// Local verification: HS256 via the project secret, RS256/ES256 via JWKS
	var jwksProvider *auth.Provider
	if cfg.SupabaseUrl != "" {
		jwksProvider = auth.NewProvider(cfg.SupabaseUrl+"/auth/v1/.well-known/jwks.json", nil)
	}
	verifier := auth.NewVerifier(cfg.SupabaseJWTSecret, jwksProvider)

	// 6. Setup Repositories
	profileRepo := postgres.NewProfileRepository(dbPool)
	taskRepo := postgres.NewTaskRepository(dbPool)
	deletionRepo := postgres.NewDeletionRepository(dbPool)

	revocations := cache.NewRevocationStore(redis.Client())
	leases := cache.NewDeletionLease(redis.Client())

	// 7. Setup UseCases
	authUC := usecase.NewAuthUsecase(identity, profileRepo, revocations, secLog, cfg.BlockCheckFailClosed)
	taskUC := usecase.NewTaskUsecase(taskRepo, profileRepo, policy)
	deletionUC := usecase.NewUserDeletionUsecase(identityAdmin, deletionRepo, leases, usecase.DeletionConfig{
		Attempts: cfg.DeleteRetryAttempts,
		Backoff:  cfg.DeleteRetryBackoff,
	}, secLog)
	adminUC := usecase.NewAdminUsecase(profileRepo, deletionUC, secLog)
	healthUC := usecase.NewHealthUsecase(dbPool, redisPinger)

	// 8. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		AuthUC:     authUC,
		TaskUC:     taskUC,
		AdminUC:    adminUC,
		DeletionUC: deletionUC,
		HealthUC:   healthUC,
		Verifier:   verifier,
		Identity:   identity,
		Revoker:    revocations,
		Config:     cfg,
	})

	// 9. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
