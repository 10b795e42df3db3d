package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"authgate/backend/internal/config"
	"authgate/backend/internal/db"
	handlerhttp "authgate/backend/internal/handler/http"
	"authgate/backend/internal/identity/service"
	"authgate/backend/internal/logger"
	"authgate/backend/internal/ratelimit"
	"authgate/backend/internal/security"
	sessionrepo "authgate/backend/internal/session/repository"
	"authgate/backend/internal/telemetry/otel"
	userrepo "authgate/backend/internal/user/repository"
)

const shutdownTimeout = 10 * time.Second

func main() {
	log := logger.New("server")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	if cfg.DatabaseURL == "" {
		log.Fatal().Msg("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	ctx := context.Background()

	providers, err := otel.NewProviders(ctx, cfg.OTLPEndpoint, "authgate", cfg.OTLPInsecure)
	if err != nil {
		log.Fatal().Err(err).Msg("telemetry")
	}
	providers.SetGlobal()

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database")
	}
	defer database.Close()

	var limiter service.RateLimiter
	if cfg.RedisURL != "" {
		redisClient, err := ratelimit.Connect(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		limiter = ratelimit.NewRedisLimiter(redisClient, cfg.LoginRateLimit, cfg.LoginRateWindowDuration())
	} else {
		log.Warn().Msg("REDIS_URL is not set; login rate limiting disabled")
	}

	auth := service.NewAuthService(service.Dependencies{
		Users:      userrepo.NewPostgresRepository(database),
		Sessions:   sessionrepo.NewPostgresRepository(database),
		Hasher:     security.NewHasher(cfg.BcryptCost),
		Limiter:    limiter,
		SessionTTL: cfg.SessionTTLDuration(),
	})

	handler := handlerhttp.NewHandler(auth, log, cfg.SecureCookies)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           otelhttp.NewHandler(handler.Init(), "authgate"),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("serve")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down http server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("telemetry shutdown")
	}
	log.Info().Msg("http server stopped")
}
