package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ndewijer/Conversions-Report-Backend/internal/api"
	"github.com/ndewijer/Conversions-Report-Backend/internal/cache"
	"github.com/ndewijer/Conversions-Report-Backend/internal/config"
	"github.com/ndewijer/Conversions-Report-Backend/internal/heureka"
	"github.com/ndewijer/Conversions-Report-Backend/internal/logging"
	"github.com/ndewijer/Conversions-Report-Backend/internal/scheduler"
	"github.com/ndewijer/Conversions-Report-Backend/internal/service"
	"github.com/ndewijer/Conversions-Report-Backend/internal/session"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logging.Setup(os.Stdout, cfg.Log.Level)

	if cfg.Heureka.APIKey == "" {
		slog.Warn("HEUREKA_API_KEY is not set, uncached fetches will fail with 401")
	}

	// Create cache and upstream client
	dayCache := cache.NewDayCache(cfg.Cache.TTL, cache.WithCapacity(cfg.Cache.Capacity))
	reportsClient := heureka.NewReportsClient(
		cfg.Heureka.BaseURL,
		cfg.Heureka.APIKey,
		heureka.WithTimeout(cfg.Heureka.Timeout),
	)

	// Create services
	conversionsService := service.NewConversionsService(dayCache, reportsClient, cfg.Range.MaxDays)
	systemService := service.NewSystemService(conversionsService, reportsClient.HasCredential())

	sessionKey, generated, err := session.LoadKey(cfg.Session.Key)
	if err != nil {
		log.Fatalf("Failed to load session key: %v", err)
	}
	if generated && cfg.Session.Password != "" {
		slog.Warn("SESSION_KEY is not set, sessions will not survive a restart")
	}
	sessions := session.NewManager(cfg.Session.Password, sessionKey, cfg.Session.TTL)
	if !sessions.Enabled() {
		slog.Warn("ACCESS_PASSWORD is not set, the conversions API is open")
	}

	// Schedule cache maintenance
	var purger *scheduler.Scheduler
	if cfg.Cache.PurgeSchedule != "" {
		purger, err = scheduler.New(cfg.Cache.PurgeSchedule, dayCache)
		if err != nil {
			log.Fatalf("Failed to schedule cache purge: %v", err)
		}
		purger.Start()
	}

	// Create router
	router := api.NewRouter(systemService, conversionsService, sessions, cfg)

	// Create HTTP server. A range fetch may take one upstream timeout per day,
	// so no write timeout is set.
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("starting server", "addr", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")

	if purger != nil {
		purger.Stop()
	}

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	slog.Info("server exited")
}
