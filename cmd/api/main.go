// cmd/api/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"lending-backend/internal/common/config"
	"lending-backend/internal/common/database"
	"lending-backend/internal/common/dynamo"
	"lending-backend/internal/common/logger"
	"lending-backend/internal/identity"
	"lending-backend/internal/lending"
	"lending-backend/internal/notify"
	"lending-backend/internal/reporting"
	"lending-backend/internal/requestlog"
	"lending-backend/internal/server"
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
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting lending backend...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	ctx := context.Background()

	// --- Init DynamoDB ---
	db, err := dynamo.New(ctx, cfg, log)
	if err != nil {
		zapLog.Fatal("dynamo client failed", zap.Error(err))
	}
	zapLog.Info("DynamoDB client initialized")

	// --- Init Redis with retry ---
	// The status catalog cache degrades to direct store reads, so a dead
	// Redis only costs latency; still retried here to catch bad config.
	var redisClient *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redisClient, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redisClient.Ping(ctx)
	}, 5, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Warn("redis unavailable, status catalog reads go to the store", zap.Error(err))
	} else {
		defer redisClient.Close()
		zapLog.Info("Redis connected successfully")
	}

	// --- Init PostgreSQL with retry (reporting mirror) ---
	var pg *database.PostgresClient
	if cfg.Reporting.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "PostgreSQL connection")

		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		zapLog.Info("PostgreSQL connected successfully")
	}

	// --- Core wiring ---
	store := lending.NewStore(db, cacheOrNil(redisClient), cfg, log)

	auditor := requestlog.NewDynamoRecorder(db, cfg.Tables.RequestLog, log)
	identityClient := identity.NewClient(cfg.Partners.Identity, auditor, log)

	resolver := lending.NewAccessResolver(store, log)
	reconciler := lending.NewReconciler(store, identityClient, log)
	registrar := notify.NewRegistrar(store, cfg.Notifications, log)

	dispatcher, err := notify.NewDispatcher(ctx, cfg.AWS.Region, cfg.Notifications, log)
	if err != nil {
		zapLog.Fatal("notification dispatcher failed", zap.Error(err))
	}

	var access server.AccessValidator = resolver
	var reconcile server.ClientReconciler = reconciler

	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()

	if cfg.Reporting.Enabled {
		reports := reporting.NewStore(pg.DB, log)
		access = reporting.NewAccessMirror(resolver, reports)
		reconcile = reporting.NewReconcileMirror(reconciler, reports)

		go reporting.RepairWatch(watchCtx, reports, dispatcher,
			cfg.Reporting.AlertRecipient,
			time.Duration(cfg.Reporting.RepairWindowMinutes)*time.Minute,
			cfg.Reporting.RepairAlertThreshold,
			log)
	}

	srv := server.New(access, reconcile, registrar, store, log)

	// --- Metrics Server ---
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Metrics server listening", zap.String("address", cfg.Server.MetricsAddress))
		if err := http.ListenAndServe(cfg.Server.MetricsAddress, mux); err != nil {
			zapLog.Error("Metrics server failed", zap.Error(err))
		}
	}()

	// --- HTTP Server ---
	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := srv.Start(cfg.Server.Address); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stopWatch()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}

	zapLog.Info("Shutdown complete")
}

func cacheOrNil(c *database.RedisClient) *redis.Client {
	if c == nil {
		return nil
	}
	return c.GetClient()
}
