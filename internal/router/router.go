package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/smsi-platform/smsi-backend/internal/config"
	"github.com/smsi-platform/smsi-backend/internal/handler"
	"github.com/smsi-platform/smsi-backend/internal/middleware"
	"github.com/smsi-platform/smsi-backend/internal/model"
	"github.com/smsi-platform/smsi-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth        *handler.AuthHandler
	Module      *handler.ModuleHandler
	Quiz        *handler.QuizHandler
	Certificate *handler.CertificateHandler
	Privacy     *handler.PrivacyHandler
	Admin       *handler.AdminHandler
	AdminUser   *handler.AdminUserHandler
	AdminModule *handler.AdminModuleHandler
	WS          *handler.WSHandler
	System      *handler.SystemHandler
}

// Gate is the request admission chain shared by every protected group.
type Gate struct {
	Limiter    middleware.Limiter
	Verifier   middleware.TokenVerifier
	Revocation middleware.RevocationChecker
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	gate *Gate,
	handlers *Handlers,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// Client addresses come from X-Forwarded-For only behind listed proxies.
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		log.Warn().Err(err).Msg("Invalid TRUSTED_PROXIES, trusting none")
		_ = router.SetTrustedProxies(nil)
	}

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = true
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", response.HeaderRequestID}
	corsConfig.ExposeHeaders = []string{response.HeaderRequestID, "Content-Disposition", "Retry-After", "X-Certificate-Id"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.SecurityHeaders())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", handlers.System.Health)

	// Every API and WebSocket route is rate limited per client address
	// before any token work happens.
	limited := router.Group("/")
	limited.Use(middleware.RateLimit(gate.Limiter, log))

	authenticated := []gin.HandlerFunc{
		middleware.Authenticate(gate.Verifier),
		middleware.RejectRevoked(gate.Revocation, log),
	}

	// ─── 1. Auth Group ─────────────────────────────────────────────────
	auth := limited.Group("/api/v1/auth")
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)
		auth.GET("/forward", handlers.Auth.Forward)

		session := auth.Group("", authenticated...)
		session.Use(middleware.RequireAuthenticated(), middleware.NoStore())
		session.POST("/logout", handlers.Auth.Logout)
		session.GET("/me", handlers.Auth.Me)
	}

	// ─── 2. Learner Group (any authenticated user) ─────────────────────
	learner := limited.Group("/api/v1", authenticated...)
	learner.Use(middleware.RequireRole(model.RoleUser), middleware.NoStore())
	{
		learner.GET("/modules", handlers.Module.ListModules)
		learner.GET("/modules/:id", handlers.Module.GetModule)
		learner.GET("/progress", handlers.Module.Progress)

		learner.GET("/quiz/:module_id", handlers.Quiz.GetQuiz)
		learner.POST("/quiz/submit", handlers.Quiz.SubmitQuiz)

		learner.GET("/certificates", handlers.Certificate.ListCertificates)
		learner.POST("/certificates/generate", handlers.Certificate.GenerateCertificate)

		learner.GET("/rgpd/export", handlers.Privacy.ExportData)
		learner.DELETE("/rgpd/delete", handlers.Privacy.DeleteAccount)
	}

	// ─── 3. Admin Group ────────────────────────────────────────────────
	adminAPI := limited.Group("/api/v1/admin", authenticated...)
	adminAPI.Use(middleware.RequireRole(model.RoleAdmin), middleware.NoStore())
	{
		adminAPI.GET("/users", handlers.AdminUser.ListUsers)
		adminAPI.POST("/users", handlers.AdminUser.CreateUser)
		adminAPI.GET("/users/:id", handlers.AdminUser.GetUser)
		adminAPI.PUT("/users/:id", handlers.AdminUser.UpdateUser)
		adminAPI.DELETE("/users/:id", handlers.AdminUser.DeleteUser)

		adminAPI.GET("/modules", handlers.AdminModule.ListModules)
		adminAPI.POST("/modules", handlers.AdminModule.CreateModule)
		adminAPI.PUT("/modules/:id", handlers.AdminModule.UpdateModule)
		adminAPI.DELETE("/modules/:id", handlers.AdminModule.DeleteModule)

		adminAPI.GET("/modules/:id/questions", handlers.AdminModule.ListQuestions)
		adminAPI.POST("/modules/:id/questions", handlers.AdminModule.AddQuestion)
		adminAPI.PUT("/modules/:id/questions/:quiz_id", handlers.AdminModule.UpdateQuestion)
		adminAPI.DELETE("/modules/:id/questions/:quiz_id", handlers.AdminModule.DeleteQuestion)

		adminAPI.GET("/analytics", handlers.Admin.Analytics)
		adminAPI.GET("/analytics/export", handlers.Admin.ExportAnalytics)
		adminAPI.GET("/audit-logs", handlers.Admin.AuditLogs)

		adminAPI.GET("/system/metrics", handlers.System.Metrics)
	}

	// ─── 4. WebSocket Group (token may come as ?token=) ────────────────
	ws := limited.Group("/ws/v1")
	ws.Use(
		middleware.AuthenticateWS(gate.Verifier),
		middleware.RejectRevoked(gate.Revocation, log),
		middleware.RequireRole(model.RoleAdmin),
	)
	{
		ws.GET("/admin/activity", handlers.WS.ActivityStream)
	}

	return router
}
