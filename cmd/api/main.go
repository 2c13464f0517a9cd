package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/harentsoaR/lipi-scribe-api/internal/config"
	"github.com/harentsoaR/lipi-scribe-api/internal/database"
	"github.com/harentsoaR/lipi-scribe-api/internal/handlers"
	"github.com/harentsoaR/lipi-scribe-api/internal/middleware"
	"github.com/harentsoaR/lipi-scribe-api/internal/services"
	"github.com/harentsoaR/lipi-scribe-api/internal/session"
	"github.com/harentsoaR/lipi-scribe-api/internal/utils"
	"github.com/harentsoaR/lipi-scribe-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	logger.Init(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	gin.SetMode(gin.ReleaseMode)

	// --- Database Connection ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	client, db, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		cancel()
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer database.Disconnect(client)

	if err := database.EnsureIndexes(ctx, db); err != nil {
		log.Error().Err(err).Msg("failed to create indexes")
	}
	if cfg.SeedDemoUsers {
		if _, err := database.SeedDemoUsers(ctx, db, cfg.BcryptCost); err != nil {
			log.Error().Err(err).Msg("failed to seed demo users")
		}
	}
	cancel()

	// --- Scribe session store ---
	var store session.Store
	if cfg.RedisAddr != "" {
		rctx, rcancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisStore, err := session.NewRedisStore(rctx, session.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.SessionTTL,
		})
		rcancel()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer redisStore.Close()
		store = redisStore
		log.Info().Str("addr", cfg.RedisAddr).Msg("scribe sessions stored in Redis")
	} else {
		store = session.NewMemoryStore(cfg.SessionTTL)
		log.Info().Dur("ttl", cfg.SessionTTL).Msg("scribe sessions stored in memory")
	}

	// --- Initialize Services ---
	notificationSvc := services.NewNotificationService(cfg.TextbeltAPIKey, cfg.TextbeltURL)
	if !cfg.SMSEnabled() {
		log.Info().Msg("TEXTBELT_API_KEY not set, follow-up SMS disabled")
	}
	scribeSvc := services.NewScribeService(store, database.NewRecordStore(db), notificationSvc)

	// --- Initialize Handlers with DB and Services ---
	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	h := handlers.NewHandler(db, tokens, cfg.BcryptCost, scribeSvc, notificationSvc)

	router := handlers.NewRouter(h, handlers.RouterConfig{
		CORSOrigins:    cfg.CORSOrigins,
		TrustedProxies: cfg.TrustedProxies,
		AuthLimiter:    middleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	notificationSvc.Wait()
}
