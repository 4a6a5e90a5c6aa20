package config

import (
	"testing"
	"time"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg := FromEnv()
	if cfg.Addr != ":8050" {
		t.Fatalf("addr=%q want :8050", cfg.Addr)
	}
	if cfg.RenderCacheTimeout != 10*time.Minute {
		t.Fatalf("timeout=%v want 10m", cfg.RenderCacheTimeout)
	}
	if cfg.RedisAddr != "" {
		t.Fatalf("redis should be disabled by default, got %q", cfg.RedisAddr)
	}
	if cfg.SnapshotFeed.Enabled || cfg.SnapshotFeed.Topic != "trh-snapshots" {
		t.Fatalf("unexpected feed cfg %+v", cfg.SnapshotFeed)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("RENDER_CACHE_TIMEOUT", "90s")
	t.Setenv("RENDER_CACHE_SIZE", "-3")
	t.Setenv("SNAPSHOT_FEED_ENABLED", "yes")
	t.Setenv("REDIS_ADDR", " localhost:6379 ")
	t.Setenv("CACHE_OP_TIMEOUT", "not-a-duration")

	cfg := FromEnv()
	if cfg.RenderCacheTimeout != 90*time.Second {
		t.Fatalf("timeout=%v want 90s", cfg.RenderCacheTimeout)
	}
	if cfg.RenderCacheSize != 512 {
		t.Fatalf("non-positive size should fall back to default, got %d", cfg.RenderCacheSize)
	}
	if !cfg.SnapshotFeed.Enabled {
		t.Fatalf("feed should be enabled")
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Fatalf("redis addr=%q", cfg.RedisAddr)
	}
	if cfg.CacheOpTimeout != 250*time.Millisecond {
		t.Fatalf("bad duration should fall back, got %v", cfg.CacheOpTimeout)
	}
}

func TestSplitCSV(t *testing.T) {
	got := SplitCSV(" a:1, ,b:2,")
	if len(got) != 2 || got[0] != "a:1" || got[1] != "b:2" {
		t.Fatalf("got %v", got)
	}
}
