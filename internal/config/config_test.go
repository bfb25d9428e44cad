package config

import (
    "testing"
    "time"
)

func TestLoadCacheConfigDefaults(t *testing.T) {
    for _, k := range []string{"CACHE_ENABLED", "CACHE_METHODS", "CACHE_TTL", "CACHE_KEY_STRATEGY", "CACHE_PREFIX", "CACHE_MAX_BODY_BYTES"} {
        t.Setenv(k, "")
    }
    cfg := LoadCacheConfig()
    if !cfg.Enabled {
        t.Error("Enabled = false, want true by default")
    }
    if cfg.Prefix != "loft:cache" {
        t.Errorf("Prefix = %q, want loft:cache", cfg.Prefix)
    }
    if !cfg.Methods["GET"] {
        t.Error("GET should be cacheable by default")
    }
    if cfg.TTL != 30*time.Second {
        t.Errorf("TTL = %v, want 30s", cfg.TTL)
    }
}

func TestLoadRateLimitConfigDefaults(t *testing.T) {
    for _, k := range []string{"RATE_LIMIT_ENABLED", "RATE_LIMIT_CAPACITY", "RATE_LIMIT_PREFIX", "RATE_LIMIT_BURST", "RATE_LIMIT_REFILL_EVERY"} {
        t.Setenv(k, "")
    }
    cfg := LoadRateLimitConfig()
    if cfg.Prefix != "loft:rl" {
        t.Errorf("Prefix = %q, want loft:rl", cfg.Prefix)
    }
    if cfg.Capacity != 60 {
        t.Errorf("Capacity = %d, want 60", cfg.Capacity)
    }
    if cfg.TTL < 5*cfg.RefillInterval {
        t.Errorf("TTL = %v, want at least 5x refill interval %v", cfg.TTL, cfg.RefillInterval)
    }
}
