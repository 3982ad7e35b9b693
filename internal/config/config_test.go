// Copyright (C) 2026 the quixsi maintainers
// See root-dir/LICENSE for more information

package config

import (
	"testing"
	"time"
)

func TestFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := FromEnv()
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if cfg.ServiceName != "muster" {
			t.Fatalf("service name = %q", cfg.ServiceName)
		}
		if cfg.Addr != "0.0.0.0:8080" {
			t.Fatalf("addr = %q", cfg.Addr)
		}
		if cfg.CampaignWorkers != 4 {
			t.Fatalf("workers = %d", cfg.CampaignWorkers)
		}
		if cfg.NotifyTimeout != 10*time.Second {
			t.Fatalf("timeout = %s", cfg.NotifyTimeout)
		}
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("MUSTER_ADDR", "127.0.0.1:9999")
		t.Setenv("MUSTER_CAMPAIGN_WORKERS", "16")
		t.Setenv("MUSTER_NOTIFY_RETRY_BACKOFF", "2s")

		cfg, err := FromEnv()
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if cfg.Addr != "127.0.0.1:9999" {
			t.Fatalf("addr = %q", cfg.Addr)
		}
		if cfg.CampaignWorkers != 16 {
			t.Fatalf("workers = %d", cfg.CampaignWorkers)
		}
		if cfg.NotifyRetryBackoff != 2*time.Second {
			t.Fatalf("backoff = %s", cfg.NotifyRetryBackoff)
		}
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Setenv("MUSTER_NOTIFY_TIMEOUT", "not-a-duration")
		if _, err := FromEnv(); err == nil {
			t.Fatal("expected an error")
		}
	})
}
