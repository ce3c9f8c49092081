// Command server starts the interview report aggregation HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	rediscache "github.com/fairyhunter13/ai-interview-reporter/internal/adapter/cache/redis"
	httpserver "github.com/fairyhunter13/ai-interview-reporter/internal/adapter/httpserver"
	"github.com/fairyhunter13/ai-interview-reporter/internal/adapter/observability"
	"github.com/fairyhunter13/ai-interview-reporter/internal/adapter/queue/redpanda"
	"github.com/fairyhunter13/ai-interview-reporter/internal/adapter/repo/mongodb"
	"github.com/fairyhunter13/ai-interview-reporter/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/ai-interview-reporter/internal/app"
	"github.com/fairyhunter13/ai-interview-reporter/internal/config"
	"github.com/fairyhunter13/ai-interview-reporter/internal/report"
	"github.com/fairyhunter13/ai-interview-reporter/internal/usecase"
)

// mongoPinger adapts *mongo.Client to the app.Pinger shape.
type mongoPinger struct{ client *mongo.Client }

func (m mongoPinger) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Relational store
	pool, err := postgres.NewPool(ctx, cfg.DBURL)
	if err != nil {
		slog.Error("db connect failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()
	sessionRepo := postgres.NewSessionRepo(pool)

	// Document store
	mongoClient, err := mongodb.NewClient(ctx, cfg.MongoURI)
	if err != nil {
		slog.Error("mongo connect failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()
	docStore := mongodb.NewSessionStore(
		mongoClient.Database(cfg.MongoDBName).Collection(cfg.MongoCollection))

	// Report cache
	rdb := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
	defer func() { _ = rdb.Close() }()
	cache := rediscache.NewReportCache(rdb, cfg.ReportCacheTTL)

	// Aggregation pipeline
	thresholds, err := report.LoadThresholds(cfg.ThresholdsFile)
	if err != nil {
		slog.Error("thresholds load failed", slog.Any("error", err), slog.String("path", cfg.ThresholdsFile))
		os.Exit(1)
	}
	builder := report.NewBuilder(thresholds)
	merger := report.NewMerger(builder, cfg.SourceTimeout, sessionRepo, docStore)
	merger.MaxRetries = uint64(cfg.SourceMaxRetries)

	reportSvc := usecase.NewReportService(cache, sessionRepo, merger)

	// Event-driven refresh: session completions force a regeneration so
	// dashboards see new candidates immediately.
	if cfg.ConsumerEnabled {
		consumer, err := redpanda.NewSessionEventConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, cfg.KafkaTopic, reportSvc)
		if err != nil {
			slog.Warn("session event consumer unavailable; relying on staleness probe", slog.Any("error", err))
		} else {
			defer consumer.Close()
			go func() {
				if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					slog.Error("session event consumer stopped", slog.Any("error", err))
				}
			}()
		}
	}

	dbCheck, mongoCheck, redisCheck := app.BuildReadinessChecks(pool, mongoPinger{mongoClient}, cache)

	srv := &httpserver.Server{
		Cfg:        cfg,
		Reports:    reportSvc,
		DBCheck:    dbCheck,
		MongoCheck: mongoCheck,
		RedisCheck: redisCheck,
	}
	handler := app.BuildRouter(cfg, srv)

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port))
		errCh <- srvHTTP.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	_ = srvHTTP.Shutdown(shutdownCtx)
}
