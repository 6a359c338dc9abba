package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tailview/community-service/internal/broadcast"
	"github.com/tailview/community-service/internal/config"
	"github.com/tailview/community-service/internal/discussions"
	"github.com/tailview/community-service/internal/domain"
	"github.com/tailview/community-service/internal/infrastructure/memory"
	"github.com/tailview/community-service/internal/infrastructure/redis"
	"github.com/tailview/community-service/internal/pkg/logger"
	"github.com/tailview/community-service/internal/presence"
	"github.com/tailview/community-service/internal/transport/rest"
	"github.com/tailview/community-service/internal/transport/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	if cfg.LogLevel != "" {
		_ = os.Setenv("LOG_LEVEL", cfg.LogLevel)
	}

	logger.Init()
	log := logger.Logger.With().
		Str("service", "community-service").
		Str("env", cfg.AppEnv).
		Logger()

	// Root ctx with signal cancellation
	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Cache backend ----
	var cache domain.CacheStore
	switch cfg.CacheBackend {
	case "memory":
		cache = memory.NewCache()
		log.Info().Msg("using in-memory cache")
	default:
		client := redis.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer client.Close()

		if err := client.Ping(rootCtx); err != nil {
			log.Fatal().Err(err).Msg("redis ping failed")
		}
		log.Info().Str("addr", cfg.RedisAddr).Msg("redis connected")
		cache = redis.NewCacheStore(client)
	}

	// ---- Domain services ----
	registry := presence.NewRegistry(cache, presence.WithTTL(cfg.PresenceTTL))
	store := discussions.NewStore(cache, discussions.WithTTL(cfg.DiscussionsTTL))
	broker := broadcast.NewBroker()
	fanout := broadcast.NewFeedBroadcaster(broker, registry)

	// ---- Transports ----
	wsHandler := ws.NewHandler(ws.NewGateway(registry, fanout), broker, cfg.HeartbeatInterval)

	httpHandler := rest.NewRouter(rest.RouterDeps{
		Handler:       rest.NewHandler(store, registry, fanout),
		WS:            wsHandler,
		CookieSecret:  cfg.CookieSecret,
		CookieTTL:     cfg.CookieTTL,
		SecureCookies: cfg.SecureCookies(),
		SubmitLimit:   cfg.SubmitLimit,
		SubmitWindow:  cfg.SubmitWindow,
	})

	// ---- HTTP server ----
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// WriteTimeout stays 0: it would cut long-lived websocket connections.
		IdleTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Port).Msg("http server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-rootCtx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		log.Error().Err(err).Msg("http server crashed")
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info().Msg("shutdown complete")
}
