package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.TableCount != 20 {
		t.Errorf("expected 20 tables, got %d", cfg.TableCount)
	}
	if cfg.PollInterval != 5*time.Second {
		t.Errorf("expected 5s poll interval, got %s", cfg.PollInterval)
	}
	if cfg.ChangefeedDriver != "postgres" {
		t.Errorf("expected postgres changefeed, got %q", cfg.ChangefeedDriver)
	}
	if cfg.RecentCompletedWindow != 48*time.Hour {
		t.Errorf("expected 48h window, got %s", cfg.RecentCompletedWindow)
	}
	if cfg.StrictStatusTransitions {
		t.Error("strict transitions should be off by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("TABLE_COUNT", "12")
	t.Setenv("POLL_INTERVAL", "10s")
	t.Setenv("CHANGEFEED_DRIVER", "redis")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("STRICT_STATUS_TRANSITIONS", "true")

	cfg := Load()

	if cfg.TableCount != 12 {
		t.Errorf("expected 12 tables, got %d", cfg.TableCount)
	}
	if cfg.PollInterval != 10*time.Second {
		t.Errorf("expected 10s, got %s", cfg.PollInterval)
	}
	if cfg.ChangefeedDriver != "redis" {
		t.Errorf("expected redis, got %q", cfg.ChangefeedDriver)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("unexpected origins: %v", cfg.AllowedOrigins)
	}
	if !cfg.StrictStatusTransitions {
		t.Error("expected strict transitions")
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("TABLE_COUNT", "-3")
	t.Setenv("POLL_INTERVAL", "soon")
	t.Setenv("RUN_MIGRATIONS", "maybe")

	cfg := Load()

	if cfg.TableCount != 20 {
		t.Errorf("expected fallback to 20, got %d", cfg.TableCount)
	}
	if cfg.PollInterval != 5*time.Second {
		t.Errorf("expected fallback to 5s, got %s", cfg.PollInterval)
	}
	if !cfg.RunMigrations {
		t.Error("expected RUN_MIGRATIONS fallback to true")
	}
}
