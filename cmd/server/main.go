package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/phishing-dashboard/internal/api"
	"github.com/ignite/phishing-dashboard/internal/config"
	"github.com/ignite/phishing-dashboard/internal/dashboard"
	"github.com/ignite/phishing-dashboard/internal/entitystore"
	"github.com/ignite/phishing-dashboard/internal/metrics"
	"github.com/ignite/phishing-dashboard/internal/pkg/distlock"
	"github.com/ignite/phishing-dashboard/internal/pkg/logger"
	"github.com/ignite/phishing-dashboard/internal/repository/postgres"
	"github.com/ignite/phishing-dashboard/internal/viewstate"
)

// changeDebounce collapses bursts of table notifications into one refresh.
const changeDebounce = 500 * time.Millisecond

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	logger.SetRedactPII(cfg.Logging.ShouldRedactPII())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Entity store: the backend API, or the simulation tables directly.
	var (
		store entitystore.Store
		db    *sql.DB
	)
	switch cfg.EntityStore.Type {
	case "postgres":
		if cfg.Database.URL == "" {
			log.Fatalf("entity_store.type is postgres but no database URL is configured")
		}
		db, err = postgres.Open(cfg.Database)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer db.Close()
		pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
		if err := db.PingContext(pingCtx); err != nil {
			logger.Warn("server: database ping failed, continuing", "error", err)
		}
		pingCancel()
		store = postgres.NewStore(db)
		logger.Info("server: reading simulation data from postgres")
	case "http", "":
		store = entitystore.NewClient(cfg.EntityStore)
		logger.Info("server: reading simulation data from backend", "base_url", cfg.EntityStore.BaseURL)
	default:
		log.Fatalf("Unknown entity store type %q", cfg.EntityStore.Type)
	}

	// Redis is optional and only backs the wipe lock.
	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.URL})
		} else {
			redisClient = redis.NewClient(opts)
		}
		pingCtx, pingCancel := context.WithTimeout(ctx, 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			logger.Warn("server: redis unavailable, falling back for the wipe lock", "error", err)
			redisClient.Close()
			redisClient = nil
		} else {
			logger.Info("server: redis connected, wipe lock is distributed")
		}
		pingCancel()
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	collector := metrics.NewCollector("phishing_dashboard")
	lockTTL := cfg.Redis.LockTTL()
	svc := dashboard.New(store, dashboard.Options{
		TrendDepartment:   cfg.Dashboard.TrendDepartment,
		LiveInterval:      cfg.Live.Interval(),
		RefreshTimeout:    cfg.Dashboard.RefreshTimeout(),
		NotificationLimit: cfg.Dashboard.NotificationLimit,
		Metrics:           collector,
		Locks: func(key string) distlock.DistLock {
			return distlock.NewLock(redisClient, db, key, lockTTL)
		},
	})

	// The first refresh may fail when the backend is still starting; the
	// all-zero view-model is served until a later refresh succeeds.
	if err := svc.RefreshNow(ctx); err != nil {
		logger.Warn("server: initial refresh failed", "error", err)
	}
	if cfg.Live.StartLive {
		svc.StartLive()
	}

	if db != nil {
		changes, err := postgres.ListenForChanges(ctx, cfg.Database.URL)
		if err != nil {
			logger.Warn("server: change notifications disabled", "error", err)
		} else {
			go svc.RefreshOnChange(ctx, changes, changeDebounce)
		}
	}

	handlers := api.NewHandlers(svc, viewstate.NewSessions(24*time.Hour))
	health := api.NewHealthChecker(db, redisClient, svc, 3*cfg.Live.Interval())
	server := api.NewServer(cfg.Server, handlers, health, collector.Handler())

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.GetHost(), cfg.Server.Port)
		logger.Info("server: listening", "addr", addr)
		if err := server.ListenAndServe(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	logger.Info("server: shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server: shutdown error", "error", err)
	}
	if err := svc.Close(); err != nil {
		logger.Error("server: dashboard close error", "error", err)
	}
	logger.Info("server: stopped")
}
