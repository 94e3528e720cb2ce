package v1

import (
	"net/http"
	"time"

	"go-todo-backend/config"
	"go-todo-backend/internal/delivery/http/middleware"
	"go-todo-backend/internal/delivery/http/response"
	"go-todo-backend/internal/domain"
	"go-todo-backend/pkg/auth"
	"go-todo-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	AuthUC     domain.AuthUsecase
	TaskUC     domain.TaskUsecase
	AdminUC    domain.AdminUsecase
	DeletionUC domain.UserDeletionUsecase
	HealthUC   domain.HealthUsecase
	// Tokens the verifier has no key for are checked with the identity service.
	Verifier *auth.Verifier
	Identity domain.IdentityService
	Revoker  domain.SessionRevoker
	Config   *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validation.RegisterValidators(v)
	}

	cfg := deps.Config
	window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second

	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(cfg.FrontendURL, cfg.IsProduction())) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.RateLimitMiddleware(middleware.GlobalRateLimitConfig(cfg.RateLimitGlobalThreshold, window)))
	r.Use(middleware.ErrorHandler())

	guard := middleware.SessionGuard(deps.Verifier, deps.Identity, deps.Revoker)
	adminOnly := middleware.RequireRole(deps.AuthUC, domain.RoleAdmin)

	v1 := r.Group("/v1")

	// Health Check
	v1.GET("/health", func(c *gin.Context) {
		report := deps.HealthUC.Check(c.Request.Context())
		if report.Status != "operational" {
			response.Success(c, http.StatusServiceUnavailable, "System degraded", report)
			return
		}
		response.Success(c, http.StatusOK, "System operational", report)
	})

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	loginLimiter := middleware.RateLimitMiddleware(middleware.LoginRateLimitConfig(cfg.RateLimitLoginThreshold, window))

	// Protected routes
	protected := v1.Group("")
	protected.Use(guard)
	{
		NewAuthHandler(v1, protected, deps.AuthUC, loginLimiter, cfg.IsProduction())
		NewDashboardHandler(protected, deps.TaskUC)
	}

	admin := v1.Group("")
	admin.Use(guard, adminOnly)
	NewAdminHandler(admin, deps.AdminUC)

	// Server-side deletion endpoint keeps its historical path outside /v1
	api := r.Group("/api/admin")
	api.Use(guard, adminOnly)
	NewDeleteUserHandler(api, deps.DeletionUC)

	return r
}
