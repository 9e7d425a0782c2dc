package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/tenugui-collection/tenugui-api/config"
	"github.com/tenugui-collection/tenugui-api/internal/observability/statsd"
)

// NewMetricsClient creates the StatsD client. A disabled config yields a
// client that drops every metric.
func NewMetricsClient(cfg config.ObservabilityMetricsConfig, logger *slog.Logger) (*statsd.Client, error) {
	client, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.IsEnabled(),
		Address: cfg.StatsdAddress,
		Prefix:  cfg.Prefix,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init statsd client: %w", err)
	}
	if logger != nil && client.Enabled() {
		logger.Info("statsd metrics enabled", "addr", cfg.StatsdAddress, "prefix", cfg.Prefix)
	}
	return client, nil
}
