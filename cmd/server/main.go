package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"github.com/consciencex/lhb-ubo/internal/audit"
	"github.com/consciencex/lhb-ubo/internal/platform/config"
	"github.com/consciencex/lhb-ubo/internal/platform/httpserver"
	"github.com/consciencex/lhb-ubo/internal/platform/kafka"
	"github.com/consciencex/lhb-ubo/internal/platform/logger"
	platformredis "github.com/consciencex/lhb-ubo/internal/platform/redis"
	"github.com/consciencex/lhb-ubo/internal/registry"
	"github.com/consciencex/lhb-ubo/internal/registry/cache"
	"github.com/consciencex/lhb-ubo/internal/registry/enlite"
	"github.com/consciencex/lhb-ubo/internal/servicetoken"
	"github.com/consciencex/lhb-ubo/internal/ubo/handler"
	"github.com/consciencex/lhb-ubo/internal/ubo/metrics"
	"github.com/consciencex/lhb-ubo/internal/ubo/service"
	"github.com/consciencex/lhb-ubo/internal/ubo/store"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if cfg.JWTSigningKey == "" {
		log.Error("UBO_JWT_SIGNING_KEY is required")
		os.Exit(1)
	}

	ctx := context.Background()

	redisClient, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	producer, err := kafka.NewProducer(cfg.Kafka)
	if err != nil {
		log.Error("kafka producer setup failed", "error", err)
		os.Exit(1)
	}
	if producer != nil {
		defer producer.Close()
	}

	var runs store.RunStore = store.NewMemory()
	if cfg.Postgres.DSN != "" {
		db, err := sql.Open("postgres", cfg.Postgres.DSN)
		if err != nil {
			log.Error("postgres open failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Error("postgres ping failed", "error", err)
			os.Exit(1)
		}
		pg := store.NewPostgres(db)
		if err := pg.Migrate(ctx); err != nil {
			log.Error("postgres migration failed", "error", err)
			os.Exit(1)
		}
		runs = pg
	}

	var lookup registry.Lookup = enlite.NewClient(cfg.Registry, enlite.WithLogger(log))
	if redisClient != nil {
		lookup = cache.NewRedis(lookup, redisClient, cfg.Registry.CacheTTL, log)
	} else {
		lookup = cache.NewMemory(lookup, cfg.Registry.CacheTTL)
	}

	auditMemory := audit.NewInMemoryStore()
	var auditStore audit.Store = auditMemory
	if producer != nil {
		auditStore = audit.NewFanoutStore(auditMemory, audit.NewKafkaStore(producer))
	}
	publisher := audit.NewPublisher(auditStore)

	screeningMetrics := metrics.New()

	svc := service.New(lookup, runs,
		service.Defaults{
			MaxDepth:     cfg.Screening.MaxDepth,
			Threshold:    cfg.Screening.Threshold,
			LookupBudget: cfg.Screening.LookupBudget,
			Concurrency:  cfg.Screening.Concurrency,
		},
		service.WithLogger(log),
		service.WithMetrics(screeningMetrics),
		service.WithAuditPublisher(publisher),
		service.WithTracer(otel.Tracer("lhb-ubo/screening")),
	)

	tokens := servicetoken.New(cfg.JWTSigningKey, "lhb-ubo", "screening-api")

	router := chi.NewRouter()
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"degraded"}`))
				return
			}
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	router.Handle("/metrics", promhttp.Handler())
	handler.New(svc, tokens, log).Register(router)
	handler.NewAdmin(publisher, cfg.AdminToken, log).Register(router)

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting ubo screening service", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
