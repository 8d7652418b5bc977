package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cityguide/internal/config"
	"cityguide/internal/db"
	"cityguide/internal/identity"
	"cityguide/internal/logging"
	"cityguide/internal/middleware"
	"cityguide/internal/router"
	"cityguide/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

const sessionCacheSize = 100000

func main() {
	cfg := config.Load()
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log := logging.Component("server")
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if names := cfg.DefaultSecrets(); len(names) > 0 {
		log.Warn().Strs("vars", names).Msg("using development secrets")
	}

	// Initialize Database
	gdb, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}
	if cfg.SeedPosts {
		if err := db.SeedPosts(gdb); err != nil {
			log.Fatal().Err(err).Msg("failed to seed posts")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 异步排名服务
	store := services.NewGormStore(gdb)
	ranking := services.NewRankingService(store, services.RankingConfig{Threshold: cfg.TrendingThreshold})
	rankingDone := make(chan struct{})
	go func() {
		ranking.Run(ctx)
		close(rankingDone)
	}()

	ledger := services.NewLedger(store, services.LedgerConfig{
		DedupWindow: cfg.ViewDedupWindow,
		Scheduler:   ranking,
	})

	sessionCache, err := identity.NewSessionCache(sessionCacheSize, cfg.SessionTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create session cache")
	}
	toggleLimiter, err := middleware.NewRateLimiter(cfg.ToggleRate)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create rate limiter")
	}
	if cfg.FingerprintSecret == "" {
		log.Warn().Msg("FINGERPRINT_SECRET is not set, fingerprints are unkeyed hashes")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	// Setup Sessions
	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("cityguide_session", sessionStore))

	router.RegisterRoutes(r, router.Deps{
		Store:          store,
		Ledger:         ledger,
		Ranking:        ranking,
		Resolver:       identity.NewResolver(sessionCache),
		Auth:           middleware.NewAuth(cfg.JWTSecret),
		ToggleLimiter:  toggleLimiter,
		FingerprintKey: identity.NewFingerprintKey(cfg.FingerprintSecret),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.AppEnv).Msg("cityguide server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	ledger.Wait()
	<-rankingDone

	if sqlDB, err := gdb.DB(); err == nil {
		sqlDB.Close()
	}
}
