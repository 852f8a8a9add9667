package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/smsi-platform/smsi-backend/internal/certificate"
	"github.com/smsi-platform/smsi-backend/internal/config"
	"github.com/smsi-platform/smsi-backend/internal/database"
	"github.com/smsi-platform/smsi-backend/internal/handler"
	"github.com/smsi-platform/smsi-backend/internal/logger"
	"github.com/smsi-platform/smsi-backend/internal/middleware"
	"github.com/smsi-platform/smsi-backend/internal/repository"
	"github.com/smsi-platform/smsi-backend/internal/router"
	"github.com/smsi-platform/smsi-backend/internal/service"
	"github.com/smsi-platform/smsi-backend/internal/validator"
	"github.com/smsi-platform/smsi-backend/internal/worker"
)

const limiterSweepInterval = time.Minute

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Str("auth_verifier", cfg.AuthVerifier).
		Str("rate_limit_backend", cfg.RateLimitBackend).
		Msg("Starting SMSI Backend")

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Migrations ────────────────────────────────────────────────────
	if cfg.MigrateOnStart {
		if err := database.MigrateUp(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
	}

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis (optional) ───────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	moduleRepo := repository.NewModuleRepository(pool)
	quizRepo := repository.NewQuizRepository(pool)
	resultRepo := repository.NewResultRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)
	analyticsRepo := repository.NewAnalyticsRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	renderer := certificate.NewPDFRenderer(cfg.CertificateFontPath)
	if err := renderer.Check(); err != nil {
		log.Warn().Err(err).Msg("Certificate font unavailable, certificate generation will fail")
	}

	questionCache := service.NewQuestionCache(quizRepo, rdb, cfg.QuestionCacheTTL, log)
	authService := service.NewAuthService(cfg, userRepo, rdb, log)
	auditService := service.NewAuditService(auditRepo, rdb, log)
	moduleService := service.NewModuleService(moduleRepo, quizRepo, resultRepo, questionCache, log)
	quizService := service.NewQuizService(moduleRepo, questionCache, resultRepo, log)
	certificateService := service.NewCertificateService(userRepo, moduleRepo, resultRepo, renderer, log)
	userService := service.NewUserService(userRepo, authService)
	privacyService := service.NewPrivacyService(userRepo, resultRepo, auditRepo, authService)
	analyticsService := service.NewAnalyticsService(analyticsRepo)

	// ─── Request Gate ──────────────────────────────────────────────────
	edgeVerifier := middleware.NewEdgeVerifier(cfg.JWTSecret)

	gate := &router.Gate{
		Verifier:   authService,
		Revocation: authService,
	}
	if cfg.AuthVerifier == config.AuthVerifierEdge {
		gate.Verifier = edgeVerifier
	}

	var memLimiter *middleware.MemoryLimiter
	if cfg.RateLimitBackend == config.RateLimitBackendRedis && rdb != nil {
		gate.Limiter = middleware.NewRedisLimiter(rdb, cfg.RateLimitRequests, cfg.RateLimitWindow)
	} else {
		memLimiter = middleware.NewMemoryLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
		gate.Limiter = memLimiter
	}

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:        handler.NewAuthHandler(authService, edgeVerifier, auditService, cfg, log),
		Module:      handler.NewModuleHandler(moduleService, auditService),
		Quiz:        handler.NewQuizHandler(quizService, auditService),
		Certificate: handler.NewCertificateHandler(certificateService, auditService),
		Privacy:     handler.NewPrivacyHandler(privacyService, auditService, cfg),
		Admin:       handler.NewAdminHandler(analyticsService, auditService),
		AdminUser:   handler.NewAdminUserHandler(userService, auditService),
		AdminModule: handler.NewAdminModuleHandler(moduleService, auditService),
		WS:          handler.NewWSHandler(rdb, log, cfg.AllowedOrigins),
		System:      handler.NewSystemHandler(pool, rdb),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	if rdb != nil {
		auditWorker := worker.NewAuditWorker(auditRepo, rdb, log)
		workers.Add(1)
		go func() {
			defer workers.Done()
			auditWorker.Start(workerCtx)
		}()
	}

	if memLimiter != nil {
		workers.Add(1)
		go func() {
			defer workers.Done()
			memLimiter.StartSweeper(workerCtx, limiterSweepInterval)
		}()
	}

	scheduler, err := worker.NewScheduler(
		cfg.AuditRetentionCron,
		worker.NewRetentionJob(auditService, cfg.AuditRetentionDays, log),
		log,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid AUDIT_RETENTION_CRON")
	}
	scheduler.Start()

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(gate, handlers, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the scheduler, letting a running purge finish.
	<-scheduler.Stop().Done()

	// 3. Stop background workers and wait for the audit queue to flush.
	workerCancel()
	workers.Wait()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
