// Package main is the entry point for the match server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/onnwee/ideamatch/internal/api"
	"github.com/onnwee/ideamatch/internal/config"
	"github.com/onnwee/ideamatch/internal/health"
	"github.com/onnwee/ideamatch/internal/match"
	"github.com/onnwee/ideamatch/internal/middleware"
	"github.com/onnwee/ideamatch/internal/ranking"
	"github.com/onnwee/ideamatch/internal/tracing"
)

const (
	serviceName     = "ideamatch"
	shutdownTimeout = 10 * time.Second
)

func main() {
	help := flag.Bool("help", false, "display help message")
	configPath := flag.String("config", "", "path to a YAML config file (environment variables take precedence)")
	envFile := flag.String("env-file", ".env", "path to a .env file loaded before reading the environment")
	flag.Parse()

	if *help {
		fmt.Println("Idea Match Server")
		fmt.Println()
		fmt.Println("Ranks candidate user texts against an idea by TF-IDF cosine similarity.")
		fmt.Println()
		fmt.Println("Usage: api [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if err := config.LoadDotEnv(*envFile); err != nil {
		slog.Error("failed to load env file", "error", err)
		os.Exit(1)
	}

	cfg, errs := config.Load(*configPath)
	if len(errs) > 0 {
		for _, err := range errs {
			slog.Error("invalid configuration", "error", err)
		}
		os.Exit(1)
	}

	logger := middleware.NewLogger(cfg.Env, cfg.LogLevel)
	slog.SetDefault(logger)
	logger.Info("configuration loaded", "config", cfg.LogSummary())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, nil); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// run wires the server from cfg and serves until ctx is cancelled, then
// shuts down gracefully. A nil listener listens on cfg.Port.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, ln net.Listener) error {
	tp, err := tracing.NewProvider(tracing.Config{
		ServiceName:  serviceName,
		Enabled:      cfg.TracingEnabled,
		Environment:  cfg.Env,
		ExporterType: cfg.TracingExporter,
		OTLPEndpoint: cfg.TracingEndpoint,
		SamplingRate: cfg.TracingSampleRate,
		InsecureMode: cfg.TracingInsecure,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer shutdownTracing(tp, logger)

	handler, cleanup, err := newHandler(ctx, cfg, logger, prometheus.NewRegistry())
	if err != nil {
		return err
	}
	defer cleanup()

	if ln == nil {
		ln, err = net.Listen("tcp", ":"+strconv.Itoa(cfg.Port))
		if err != nil {
			return fmt.Errorf("failed to listen on port %d: %w", cfg.Port, err)
		}
	}

	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting server", "addr", ln.Addr().String())
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// shutdownTracing flushes and stops the tracer provider within
// shutdownTimeout. It runs on every return from run once the provider exists.
func shutdownTracing(tp *tracing.Provider, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := tp.Shutdown(ctx); err != nil {
		logger.Warn("failed to shut down tracing", "error", err)
	}
}

// newHandler builds the router and its collaborators. The returned cleanup
// releases the Redis client, if any.
func newHandler(ctx context.Context, cfg *config.Config, logger *slog.Logger, reg *prometheus.Registry) (http.Handler, func(), error) {
	cleanup := func() {}

	opts, err := ranking.LoadOptionsOver(ranking.Options{
		Normalize:      cfg.RankingNormalize,
		StopWords:      cfg.RankingStopWords,
		MinTokenLength: cfg.RankingMinTokenLength,
	}, cfg.RankingOptionsFile)
	if err != nil {
		return nil, cleanup, fmt.Errorf("failed to load ranking options: %w", err)
	}

	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := middleware.NewMetrics()
	if err := httpMetrics.Register(reg); err != nil {
		return nil, cleanup, fmt.Errorf("failed to register http metrics: %w", err)
	}
	matchMetrics := match.NewMetrics()
	if err := matchMetrics.Register(reg); err != nil {
		return nil, cleanup, fmt.Errorf("failed to register match metrics: %w", err)
	}

	var store middleware.RateLimitStore
	var healthCfg api.HealthHandlersConfig
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, cleanup, fmt.Errorf("failed to parse redis url: %w", err)
		}
		client := redis.NewClient(redisOpts)
		cleanup = func() {
			if err := client.Close(); err != nil {
				logger.Warn("failed to close redis client", "error", err)
			}
		}
		store = middleware.NewRedisRateLimitStore(client)
		healthCfg.RedisChecker = health.NewRedisChecker(client, 0)
		logger.Info("rate limiting backed by redis", "addr", redisOpts.Addr)
	} else {
		memStore := middleware.NewInMemoryRateLimitStore()
		memStore.StartCleanup(ctx, 5*cfg.RateLimitWindow)
		store = memStore
		logger.Info("rate limiting in memory")
	}

	service := match.NewService(match.ServiceConfig{
		Options: opts,
		Limits: match.Limits{
			MaxCandidates: cfg.MaxCandidates,
			MaxTextLength: cfg.MaxTextLength,
			MaxIDLength:   match.DefaultLimits().MaxIDLength,
		},
		Metrics: matchMetrics,
	})

	tracingName := ""
	if cfg.TracingEnabled {
		tracingName = serviceName
	}

	handler := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		Service:        service,
		MaxBodyBytes:   cfg.MaxBodyBytes,
		Health:         healthCfg,
		Metrics:        httpMetrics,
		Gatherer:       reg,
		RateLimitStore: store,
		RateLimit: middleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimitRequests,
			WindowDuration:    cfg.RateLimitWindow,
		},
		CORS: middleware.CORSConfig{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			MaxAge:         600,
		},
		Profiling: middleware.ProfilingConfig{
			Enabled:     cfg.ProfilingEnabled,
			Environment: cfg.Env,
		},
		TracingServiceName: tracingName,
	})

	return handler, cleanup, nil
}
