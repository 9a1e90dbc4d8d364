// gateway serves signup, login, logout and cookie-authenticated routes on
// top of the goGate engine.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goGate "github.com/MrEthical07/goGate"
	"github.com/MrEthical07/goGate/directory"
	"github.com/MrEthical07/goGate/internal/config"
	"github.com/MrEthical07/goGate/internal/server"
	"github.com/MrEthical07/goGate/internal/telemetry"
	"github.com/MrEthical07/goGate/metrics/export/otel"
	"github.com/MrEthical07/goGate/metrics/export/prometheus"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := run(); err != nil {
		slog.Error("gateway exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, closeRedis, err := openRedis(cfg, logger)
	if err != nil {
		return err
	}
	defer closeRedis()

	dir, closeDir, err := openDirectory(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeDir()

	engine, err := goGate.New().
		WithConfig(cfg.EngineConfig()).
		WithRedis(rdb).
		WithUserDirectory(dir).
		WithAuditSink(goGate.NewSlogSink(logger.With("component", "audit"))).
		WithLogger(logger).
		Build()
	if err != nil {
		return err
	}
	defer engine.Close()

	provider, err := telemetry.NewMeterProvider(ctx, cfg.OTLPEndpoint, "gogate", cfg.OTLPInsecure, cfg.ExportInterval())
	if err != nil {
		return err
	}
	if provider != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := provider.Shutdown(shutdownCtx); err != nil {
				logger.Warn("otel meter provider shutdown", "error", err)
			}
		}()
		otelExporter, err := otel.NewOTelExporter(provider.Meter("github.com/MrEthical07/goGate"), engine)
		if err != nil {
			return err
		}
		defer func() { _ = otelExporter.Close() }()
		logger.Info("pushing metrics over otlp", "endpoint", cfg.OTLPEndpoint, "interval", cfg.ExportInterval())
	}

	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: server.NewHandler(engine, server.Options{
			Metrics: prometheus.NewPrometheusExporter(engine).Handler(),
			Logger:  logger,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("gateway listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down gateway")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openRedis(cfg *config.Config, logger *slog.Logger) (redis.UniversalClient, func(), error) {
	if cfg.InMemoryRedis() {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, nil, err
		}
		logger.Warn("using in-process redis; refresh records are lost on restart", "addr", mr.Addr())
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		return client, func() {
			_ = client.Close()
			mr.Close()
		}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return client, func() { _ = client.Close() }, nil
}

func openDirectory(ctx context.Context, cfg *config.Config, logger *slog.Logger) (goGate.UserDirectory, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set; using in-memory user directory")
		return directory.NewMemory(), func() {}, nil
	}

	db, err := directory.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return directory.NewPostgres(db), func() { _ = db.Close() }, nil
}
