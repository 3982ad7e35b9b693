// Copyright (C) 2026 the quixsi maintainers
// See root-dir/LICENSE for more information

package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the service configuration, loaded from the environment.
// Flags in cmd/server override individual fields.
type Config struct {
	ServiceName string `env:"MUSTER_SERVICE_NAME" envDefault:"muster"`
	Addr        string `env:"MUSTER_ADDR" envDefault:"0.0.0.0:8080"`
	DB          string `env:"MUSTER_DB" envDefault:"kvdb://testdata/muster.db"`
	OTLPAddr    string `env:"MUSTER_OTLP_GRPC"`
	LogLevel    string `env:"MUSTER_LOG_LEVEL" envDefault:"INFO"`
	BaseURL     string `env:"MUSTER_BASE_URL" envDefault:"http://localhost:8080"`

	AdminUser string `env:"MUSTER_ADMIN_USER" envDefault:"admin"`
	AdminPass string `env:"MUSTER_ADMIN_PASS" envDefault:"admin"`

	CampaignWorkers    int           `env:"MUSTER_CAMPAIGN_WORKERS" envDefault:"4"`
	NotifyTimeout      time.Duration `env:"MUSTER_NOTIFY_TIMEOUT" envDefault:"10s"`
	NotifyMaxAttempts  int           `env:"MUSTER_NOTIFY_MAX_ATTEMPTS" envDefault:"3"`
	NotifyRetryBackoff time.Duration `env:"MUSTER_NOTIFY_RETRY_BACKOFF" envDefault:"500ms"`
	NotifyRetryMax     time.Duration `env:"MUSTER_NOTIFY_RETRY_MAX_DELAY" envDefault:"5s"`
}

// FromEnv loads configuration from environment variables.
func FromEnv() (Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
