package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"caa_portal_backend/internal/cache"
	"caa_portal_backend/internal/config"
	"caa_portal_backend/internal/database"
	"caa_portal_backend/internal/metrics"
	"caa_portal_backend/internal/router"
	"caa_portal_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger is not configured yet; zerolog's default writer is fine here
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize Logger
	utils.InitLogger(cfg.Log.Level, cfg.Log.Pretty)
	gin.SetMode(cfg.Server.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Database
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		utils.LogError(err, "Failed to connect to database")
		os.Exit(1)
	}
	defer db.Close()

	if cfg.Database.Migrate {
		if err := database.Migrate(db, true); err != nil {
			utils.LogError(err, "Failed to apply database migrations")
			os.Exit(1)
		}
	}

	var optionsCache *cache.OptionsCache
	if cfg.Redis.Enabled() {
		client := cache.NewRedisClient(cfg.Redis)
		defer client.Close()
		optionsCache = cache.NewOptionsCache(client, cfg.Redis.OptionsTTL)
		if err := optionsCache.Ping(ctx); err != nil {
			// reads fall back to PostgreSQL while Redis is down
			utils.LogWarn("Redis not reachable at startup", map[string]interface{}{"addr": cfg.Redis.Addr, "error": err.Error()})
		} else {
			utils.LogInfo("Options cache enabled", map[string]interface{}{"addr": cfg.Redis.Addr, "ttl": cfg.Redis.OptionsTTL.String()})
		}
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(utils.RequestID())
	engine.Use(utils.GinLogger())
	engine.Use(metrics.GinMiddleware())

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	if origins := cfg.AllowedOrigins(); len(origins) > 0 {
		corsConfig.AllowOrigins = origins
		corsConfig.AllowCredentials = true
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", utils.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{utils.RequestIDHeader}
	engine.Use(cors.New(corsConfig))

	// Setup all application routes
	router.Setup(engine, db, cfg, optionsCache)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.LogInfo("Server starting", map[string]interface{}{
			"port":        cfg.Server.Port,
			"environment": cfg.Environment,
			"auth":        cfg.Auth.JWTSecret != "",
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.LogError(err, "Failed to start server")
			stop()
		}
	}()

	<-ctx.Done()
	utils.LogInfo("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.LogError(err, "Server forced to shutdown")
	}
}
