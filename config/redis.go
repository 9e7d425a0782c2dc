package config

import (
	"errors"
	"strings"
)

// RedisConfig contains configuration for the Redis session backend.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	DB                 int      `env:"DB"                   envDefault:"0"`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`
}

// Sanitize trims node lists and drops empty entries.
func (r *RedisConfig) Sanitize() {
	r.URI = strings.TrimSpace(r.URI)
	r.SentinelNodes = compactStrings(r.SentinelNodes)
	r.ClusterNodes = compactStrings(r.ClusterNodes)
	if r.DB < 0 {
		r.DB = 0
	}
}

// Validate ensures the selected topology has an address to dial.
func (r *RedisConfig) Validate() error {
	switch {
	case r.UseCluster:
		if len(r.ClusterNodes) == 0 && r.URI == "" {
			return errors.New("missing config: REDIS_CLUSTER_NODES")
		}
	case r.UseSentinel:
		if len(r.SentinelNodes) == 0 {
			return errors.New("missing config: REDIS_SENTINEL_NODES")
		}
	default:
		if r.URI == "" {
			return errors.New("missing config: REDIS_URI")
		}
	}
	return nil
}

func compactStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
