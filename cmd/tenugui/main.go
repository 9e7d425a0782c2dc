package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/tenugui-collection/tenugui-api/internal/bootstrap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	logger := bootstrap.InitLogger()
	err := run(ctx, logger)
	stop()
	if err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "starting tenugui service",
		"auth_mode", string(cfg.Auth.Mode),
		"http_addr", cfg.HTTP.Addr,
		"redis_cluster", cfg.Redis.UseCluster,
		"redis_sentinel", cfg.Redis.UseSentinel)

	return bootstrap.Run(ctx, &cfg, logger)
}
