// cmd/engine/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	awsclient "match-engine/internal/common/aws"
	"match-engine/internal/common/config"
	"match-engine/internal/common/database"
	"match-engine/internal/common/logger"
	"match-engine/internal/common/observability"
	"match-engine/internal/engine/combine"
	"match-engine/internal/monitor"
	"match-engine/internal/notify"
	"match-engine/internal/queue"
	"match-engine/internal/similarity"
	"match-engine/internal/store"
	"match-engine/pkg/rules"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting match engine...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("match-engine")
	defer obs.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Scoring ruleset ---
	ruleset, err := rules.Load(cfg.Scoring.RulesetPath)
	if err != nil {
		zapLog.Fatal("ruleset load failed", zap.Error(err))
	}
	zapLog.Info("Scoring ruleset loaded", zap.String("version", ruleset.Version))

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		// Test the connection with context
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		// Test the connection with context
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Record store with counterparty cache ---
	pgStore := store.NewPostgresStore(pg.DB, log)
	cacheTTL := time.Duration(cfg.Scoring.CacheTTL) * time.Minute
	engineStore := store.NewCachedStore(pgStore, redis.Client, cacheTTL, log)

	// --- Similarity provider ---
	var provider similarity.Provider
	if cfg.Similarity.Endpoint != "" {
		provider = similarity.NewHTTPProvider(
			cfg.Similarity.Endpoint,
			time.Duration(cfg.Similarity.Timeout)*time.Millisecond,
		)
		zapLog.Info("Using external similarity service", zap.String("endpoint", cfg.Similarity.Endpoint))
	} else {
		provider = similarity.NewLocalProvider()
		zapLog.Info("Using local cosine similarity")
	}

	// --- Notification publisher ---
	var publisher notify.Publisher = notify.NoopPublisher{}
	if cfg.Notifications.Enabled {
		snsClient, err := awsclient.NewSNSClient(ctx, cfg.Notifications.Region)
		if err != nil {
			zapLog.Fatal("sns client failed", zap.Error(err))
		}
		publisher = notify.NewSNSPublisher(snsClient, cfg.Notifications.TopicARN, log)
		zapLog.Info("SNS match event publisher initialized")
	}

	// --- Scoring pipeline ---
	handler := combine.NewHandler(
		&combine.Config{
			MaxMatches:     cfg.Scoring.MaxMatches,
			MinScore:       cfg.Scoring.MinScore,
			NotifyMinScore: cfg.Notifications.MinScore,
			Rules:          ruleset,
		},
		engineStore, provider, publisher, log,
	)

	// --- Scoring queue worker ---
	if cfg.Queue.Enabled {
		worker := queue.NewWorker(engineStore, handler, cfg.Queue, obs, log)
		go worker.Run(ctx)
	} else {
		zapLog.Info("Scoring queue worker disabled")
	}

	// --- Match quality monitor ---
	if cfg.Monitor.Enabled {
		analyzer := monitor.NewAnalyzer(engineStore, ruleset, cfg.Monitor.WindowDays, log)
		go analyzer.RunPeriodic(ctx, time.Duration(cfg.Monitor.Interval)*time.Millisecond)
	} else {
		zapLog.Info("Match quality monitor disabled")
	}

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := pg.Ping(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "not ready",
					"error":  err.Error(),
				})
				return
			}
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
		zapLog.Info("Health/Metrics server listening", zap.String("addr", addr))
		if err := http.ListenAndServe(addr, nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping...")
	cancel()

	// Give the in-flight batch a moment to finish before the defers close
	// the database clients.
	time.Sleep(2 * time.Second)

	zapLog.Info("Match engine stopped gracefully")
}
