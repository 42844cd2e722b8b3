// cmd/cinema-sage/app.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cinema-sage/internal/catalog"
	"cinema-sage/internal/common/camunda"
	"cinema-sage/internal/common/config"
	"cinema-sage/internal/common/database"
	"cinema-sage/internal/common/errors"
	"cinema-sage/internal/common/logger"
	"cinema-sage/internal/common/observability"
	"cinema-sage/internal/recommend"
	"cinema-sage/internal/session"

	rm "cinema-sage/internal/workers/recommendation/recommend-movie"
)

// app holds everything both commands share.
type app struct {
	cfg      *config.Config
	log      logger.Logger
	obs      *observability.Observability
	pipeline *recommend.Pipeline
	closers  []func() error
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}

	zapLog := logger.NewWithOutput(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	log := logger.NewZapAdapter(zapLog)

	a := &app{
		cfg: cfg,
		log: log,
		obs: observability.New(cfg.App.Name),
	}
	a.closers = append(a.closers, func() error {
		a.obs.Shutdown()
		return zapLog.Sync()
	})

	gateway, err := a.buildGateway(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.pipeline = recommend.NewPipeline(recommend.PipelineOptions{
		Extractor: recommend.NewExtractor(recommend.ExtractorConfigFrom(cfg.Extraction.Genre)),
		Catalog:   catalog.NewRepository(gateway),
		SortBy:    cfg.TMDB.SortBy,
		Logger:    &recommendLoggerAdapter{log},
		Recorder:  a.obs,
	})

	log.Info("pipeline ready", map[string]interface{}{
		"app":         cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
		"catalog":     cfg.TMDB.BaseURL,
		"cache":       cfg.Cache.Enabled,
	})
	return a, nil
}

// buildGateway stacks cache -> breaker -> HTTP.
func (a *app) buildGateway(ctx context.Context) (catalog.Gateway, error) {
	cfg := a.cfg

	var gateway catalog.Gateway = catalog.NewHTTPGateway(
		cfg.TMDB.BaseURL,
		cfg.TMDB.APIKey,
		config.GetDuration(cfg.TMDB.Timeout),
		a.log,
	)
	gateway = catalog.NewBreakerGateway(gateway, catalog.BreakerSettings{
		Name:                "tmdb",
		ConsecutiveFailures: uint32(cfg.Breaker.ConsecutiveFailures),
		OpenTimeout:         config.GetDuration(cfg.Breaker.OpenTimeout),
	}, a.log)

	if !cfg.Cache.Enabled {
		return gateway, nil
	}

	var redis *database.RedisClient
	err := retryWithBackoff(ctx, func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		if err := redis.Ping(ctx); err != nil {
			_ = redis.Close()
			return err
		}
		return nil
	}, 5, 500*time.Millisecond, a.log, "Redis connection")
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, redis.Close)
	a.log.Info("Redis connected successfully", map[string]interface{}{
		"address": cfg.Database.Redis.Address,
	})

	return catalog.NewCachingGateway(gateway, redis, config.GetDuration(cfg.Cache.TTL), a.log), nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
}

// serveMetrics exposes /metrics and /health until ctx is done. An empty
// address disables the listener.
func (a *app) serveMetrics(ctx context.Context) {
	addr := a.cfg.Metrics.Address
	if addr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		a.log.Info("Health/Metrics server listening", map[string]interface{}{"address": addr})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Error("Health/Metrics server failed", map[string]interface{}{"error": err.Error()})
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}

func runChat(parent context.Context, in io.Reader, out io.Writer) error {
	ctx, stop := withSignals(parent)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	a.serveMetrics(ctx)

	cfg := a.cfg
	retrier := session.NewRetrier(cfg.Session.MaxAttempts, config.GetDuration(cfg.Session.RetryBackoff))
	retrier.OnRetry(func(attempt int, err error) {
		a.log.Warn("retrying request", map[string]interface{}{
			"attempt":     attempt,
			"maxAttempts": cfg.Session.MaxAttempts,
			"error":       err.Error(),
		})
	})

	s := session.New(session.Options{
		In:       in,
		Out:      out,
		Pipeline: a.pipeline,
		Throttle: session.NewThrottle(config.GetDuration(cfg.Session.MinInterval)),
		Retrier:  retrier,
		Logger:   a.log,
	})

	err = s.Run(ctx)
	if err == context.Canceled {
		return nil
	}
	return err
}

func runWorker(parent context.Context) error {
	ctx, stop := withSignals(parent)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := a.cfg
	if err := config.ValidateWorker(cfg); err != nil {
		return err
	}

	zeebe, err := camunda.NewClientWithConfig(&camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: true,
		ConnectionTimeout:      10 * time.Second,
		RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
		RetryConfig:            camunda.DefaultRetryConfig,
	})
	if err != nil {
		return fmt.Errorf("zeebe client failed: %w", err)
	}
	defer zeebe.Close()
	a.log.Info("Zeebe client connected successfully", map[string]interface{}{
		"broker": cfg.Camunda.BrokerAddress,
	})

	wcfg := config.GetWorkerConfig(cfg, rm.TaskType)
	handler := rm.NewHandler(
		rm.ConfigFrom(wcfg),
		a.pipeline,
		errors.NewErrorHandler(a.log),
		&recommendMovieLoggerAdapter{a.log},
	)
	w := camunda.StartWorker(zeebe.GetClient(), rm.TaskType, wcfg, handler, a.log)

	a.serveMetrics(ctx)

	<-ctx.Done()
	a.log.Info("Shutdown signal received, stopping workers...", nil)
	w.Stop()
	a.log.Info("Worker stopped", nil)
	return nil
}

// withSignals cancels the returned context on SIGINT or SIGTERM.
func withSignals(parent context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, func() {
		signal.Stop(sigCh)
		cancel()
	}
}

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(ctx context.Context, operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err.Error(),
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

type recommendLoggerAdapter struct {
	logger.Logger
}

func (a *recommendLoggerAdapter) With(fields map[string]interface{}) recommend.Logger {
	return &recommendLoggerAdapter{a.Logger.With(fields)}
}

type recommendMovieLoggerAdapter struct {
	logger.Logger
}

func (a *recommendMovieLoggerAdapter) With(fields map[string]interface{}) rm.Logger {
	return &recommendMovieLoggerAdapter{a.Logger.With(fields)}
}
