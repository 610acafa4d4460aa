package router

import (
	"database/sql"

	"caa_portal_backend/internal/cache"
	"caa_portal_backend/internal/config"
	"caa_portal_backend/internal/handlers"
	"caa_portal_backend/internal/repositories"
	"caa_portal_backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Setup initializes the routing for the application. optionsCache may be nil
// when Redis is not configured.
func Setup(engine *gin.Engine, db *sql.DB, cfg *config.Config, optionsCache *cache.OptionsCache) {
	// Initialize Repositories
	applicationRepo := repositories.NewApplicationRepository(db)
	optionRepo := repositories.NewOptionRepository(db)
	organizationRepo := repositories.NewOrganizationRepository(db)
	userRepo := repositories.NewUserRepository(db)

	// A nil *cache.OptionsCache must not become a non-nil interface.
	var optCache services.OptionsCache
	var cachePinger handlers.CachePinger
	if optionsCache != nil {
		optCache = optionsCache
		cachePinger = optionsCache
	}

	// Initialize Services
	optionService := services.NewOptionService(optionRepo, db, optCache)
	applicationService := services.NewApplicationService(applicationRepo, db)
	organizationService := services.NewOrganizationService(organizationRepo, userRepo, optionService, db)
	userService := services.NewUserService(userRepo, organizationRepo, optionService, db)

	// Initialize Handlers
	healthHandler := handlers.NewHealthHandler(db, cachePinger)
	applicationHandler := handlers.NewApplicationHandler(applicationService)
	optionHandler := handlers.NewOptionHandler(optionService)
	organizationHandler := handlers.NewOrganizationHandler(organizationService)
	userHandler := handlers.NewUserHandler(userService)

	engine.GET("/ping", healthHandler.Ping)
	engine.GET("/health", healthHandler.Health)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api")
	secret := cfg.Auth.JWTSecret

	SetupApplicationRoutes(api, applicationHandler, secret)
	SetupOptionRoutes(api, optionHandler, secret)
	SetupOrganizationRoutes(api, organizationHandler, secret)
	SetupUserRoutes(api, userHandler, secret)
}
