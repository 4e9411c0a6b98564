package server

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// defaults cover every plugin so a bare install runs without a config file.
var defaults = map[string]any{
	"server.host":     "0.0.0.0",
	"server.port":     8080,
	"server.dev_mode": false,
	"logging.level":   "info",
	"logging.format":  "json",
	"database.path":   "driftscope.db",

	"plugins.drift.baseline":             "ewma",
	"plugins.drift.ewma_alpha":           0.1,
	"plugins.drift.rolling_window":       120,
	"plugins.drift.min_samples":          30,
	"plugins.drift.chart_limit":          3.0,
	"plugins.drift.cusum_shift":          0.5,
	"plugins.drift.cusum_threshold":      5.0,
	"plugins.drift.hw_alpha":             0.3,
	"plugins.drift.hw_beta":              0.1,
	"plugins.drift.hw_gamma":             0.3,
	"plugins.drift.hw_season_len":        24,
	"plugins.drift.hw_confidence":        0.95,
	"plugins.drift.trend_window":         "24h",
	"plugins.drift.trend_min_r2":         0.6,
	"plugins.drift.trend_min_slope":      1.0,
	"plugins.drift.correlation_window":   "5m",
	"plugins.drift.staleness_window":     "30m",
	"plugins.drift.archive_after":        "24h",
	"plugins.drift.archive_retention":    "720h",
	"plugins.drift.anomaly_retention":    "720h",
	"plugins.drift.maintenance_interval": "5m",

	"plugins.bench.fp_cost":     1.0,
	"plugins.bench.fn_cost":     5.0,
	"plugins.bench.max_samples": 100000,

	"plugins.probe.interval":     "30s",
	"plugins.probe.ping_timeout": "5s",
	"plugins.probe.ping_count":   3,

	"plugins.seed.enabled":     false,
	"plugins.seed.series_id":   "demo.latency_ms",
	"plugins.seed.points":      240,
	"plugins.seed.spacing":     "1m",
	"plugins.seed.base_value":  20,
	"plugins.seed.noise":       2,
	"plugins.seed.shift_after": 200,
	"plugins.seed.shift_by":    15,

	"plugins.webhook.enabled": true,
	"plugins.webhook.url":     "",
	"plugins.webhook.timeout": "10s",
}

// LoadConfig layers defaults, an optional YAML file, and DS_ environment
// variables, later sources winning. Running without a config file is fine.
func LoadConfig(configPath string) (*viper.Viper, error) {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("driftscope")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/driftscope")
	}

	// Environment variable support: DS_SERVER_PORT=9090
	v.SetEnvPrefix("DS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	return v, nil
}
