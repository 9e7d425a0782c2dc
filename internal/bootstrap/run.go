package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/tenugui-collection/tenugui-api/config"
	"golang.org/x/sync/errgroup"
)

// Run connects infrastructure, serves HTTP and blocks until ctx is cancelled
// or the server fails. Resources are released before it returns.
func Run(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (err error) {
	if cfg == nil {
		return errors.New("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	metrics, err := NewMetricsClient(cfg.Observability.Metrics, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := metrics.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close statsd client failed", "error", cerr)
		}
	}()

	redisClient, err := ConnectRedis(ctx, RedisConnectConfig{Redis: cfg.Redis, Logger: logger})
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() {
		if cerr := redisClient.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close redis: %w", cerr))
		}
	}()

	auth, err := BuildAuth(AuthConfig{
		App:         cfg,
		RedisClient: redisClient,
		Metrics:     metrics,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	server, err := NewHTTPServer(&HTTPServerConfig{
		Config:  cfg,
		Auth:    auth,
		Metrics: metrics,
		Ready:   redisReadiness(redisClient),
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "starting tenugui auth gate",
		"addr", server.Addr,
		"auth_mode", string(cfg.Auth.Mode),
		"provider", auth.Provider,
		"allowed_emails", auth.Policy.Len(),
		"dev", cfg.IsDev,
	)

	return Serve(ctx, server, cfg.HTTP, logger)
}

// Serve runs server until ctx is done, then shuts it down within the
// configured timeout.
func Serve(ctx context.Context, server *http.Server, cfg config.HTTPConfig, logger *slog.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return ShutdownHTTPServer(ctx, server, cfg.ShutdownTimeout, logger)
	})

	return g.Wait()
}

func redisReadiness(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}
