package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	afhttp "github.com/Strob0t/AdForge/internal/adapter/http"
	"github.com/Strob0t/AdForge/internal/adapter/memstore"
	"github.com/Strob0t/AdForge/internal/adapter/natskv"
	"github.com/Strob0t/AdForge/internal/adapter/openai"
	afotel "github.com/Strob0t/AdForge/internal/adapter/otel"
	"github.com/Strob0t/AdForge/internal/adapter/postgres"
	"github.com/Strob0t/AdForge/internal/adapter/ristretto"
	"github.com/Strob0t/AdForge/internal/adapter/tiered"
	"github.com/Strob0t/AdForge/internal/adapter/ws"
	"github.com/Strob0t/AdForge/internal/config"
	"github.com/Strob0t/AdForge/internal/domain/actor"
	"github.com/Strob0t/AdForge/internal/graph"
	"github.com/Strob0t/AdForge/internal/logger"
	"github.com/Strob0t/AdForge/internal/middleware"
	"github.com/Strob0t/AdForge/internal/port/archive"
	"github.com/Strob0t/AdForge/internal/port/cache"
	"github.com/Strob0t/AdForge/internal/resilience"
	"github.com/Strob0t/AdForge/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	slog.SetDefault(logger.New(cfg.Logging))
	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"worker_budget", cfg.Scheduler.WorkerBudget,
	)

	ctx := context.Background()

	shutdownTracer := afotel.InitTracer(cfg.Logging.Service)
	defer func() { _ = shutdownTracer(ctx) }()

	// --- Topology ---

	g, err := graph.LoadTopology(cfg.Topology.GraphFile)
	if err != nil {
		return fmt.Errorf("topology: %w", err)
	}
	registry, err := actor.LoadRegistry(cfg.Topology.PersonasFile)
	if err != nil {
		return fmt.Errorf("personas: %w", err)
	}
	slog.Info("topology loaded", "actors", registry.Len(), "nodes", g.Len())

	// --- Infrastructure ---

	// PostgreSQL archive is optional; an empty DSN runs in-memory only.
	var arch archive.Archive
	if cfg.Postgres.DSN != "" {
		pool, err := postgres.NewPool(ctx, cfg.Postgres)
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		defer pool.Close()

		if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		arch = postgres.NewStore(pool)
		slog.Info("postgres archive connected")
	}

	// Report cache: L1 ristretto always, L2 NATS KV when configured.
	l1, err := ristretto.New(cfg.Cache.L1MaxSizeMB << 20)
	if err != nil {
		return fmt.Errorf("l1 cache: %w", err)
	}
	var reports cache.Cache = l1
	if cfg.NATS.URL != "" {
		l2, err := natskv.Connect(ctx, cfg.NATS.URL, cfg.NATS.Bucket, cfg.Cache.L2TTL)
		if err != nil {
			return fmt.Errorf("nats kv: %w", err)
		}
		defer func() { _ = l2.Close() }()
		reports = tiered.New(l1, l2, cfg.Cache.L1TTL)
		slog.Info("tiered report cache enabled", "bucket", cfg.NATS.Bucket)
	}

	// --- Scoring backend ---

	client := openai.NewClient(cfg.Scorer)
	client.SetBreaker(resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Cooloff))
	backend := resilience.NewInvoker(client, client, resilience.RetryPolicy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		Cooldown:    cfg.Retry.Cooldown,
	})

	// --- Services ---

	hub := ws.NewHub()
	evalSvc, err := service.NewEvaluationService(
		registry, g, memstore.New(), backend, hub, arch, cfg.Scheduler,
	)
	if err != nil {
		return fmt.Errorf("evaluation service: %w", err)
	}

	// --- HTTP ---

	handlers := &afhttp.Handlers{
		Evaluations: evalSvc,
		Registry:    registry,
		Graph:       g,
		Archive:     arch,
		Reports:     reports,
		ReportTTL:   cfg.Cache.L2TTL,
	}

	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(afhttp.Logger)
	r.Use(afhttp.CORS(cfg.Server.CORSOrigin))
	r.Use(afhttp.SecurityHeaders)
	r.Use(chimw.Recoverer)

	r.Get("/health", healthHandler(cfg))
	r.Get("/ws", hub.HandleWS)

	afhttp.MountRoutes(r, handlers, cfg.Auth.APIKeyHash)

	addr := ":" + cfg.Server.Port

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-done
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// healthHandler returns an http.HandlerFunc that reports service health.
func healthHandler(cfg *config.Config) http.HandlerFunc {
	type healthStatus struct {
		Status  string `json:"status"`
		Archive bool   `json:"archive"`
		L2Cache bool   `json:"l2_cache"`
		Scorer  string `json:"scorer"`
	}

	return func(w http.ResponseWriter, _ *http.Request) {
		status := healthStatus{
			Status:  "ok",
			Archive: cfg.Postgres.DSN != "",
			L2Cache: cfg.NATS.URL != "",
			Scorer:  cfg.Scorer.URL,
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(status)
	}
}
