package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/evcraddock/gatepass/internal/client"
)

func TestConfigSaveAndLoad(t *testing.T) {
	// Use a temp dir as home
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	cfg := CLIConfig{
		ServerURL:       "http://myhost:9090",
		Username:        "desk",
		AccessToken:     "access",
		RefreshToken:    "refresh",
		RedisAddr:       "localhost:6379",
		CacheTTLSeconds: 5,
	}

	if err := saveConfig(cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	path := filepath.Join(tmp, ".config", "gp", "config.yaml")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config file not found: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("config mode = %v, want 0600", info.Mode().Perm())
	}

	loaded, err := loadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded != cfg {
		t.Errorf("loaded = %+v, want %+v", loaded, cfg)
	}
	if loaded.cacheTTL() != 5*time.Second {
		t.Errorf("cacheTTL = %v", loaded.cacheTTL())
	}
	if loaded.pollInterval() != 30*time.Second {
		t.Errorf("pollInterval default = %v", loaded.pollInterval())
	}
}

func TestConfigLoadMissing(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("load missing: %v", err)
	}
	if cfg != (CLIConfig{}) {
		t.Error("expected zero-value config for missing file")
	}
}

func TestGetServerURL(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("GP_SERVER_URL", "")

	if got := getServerURL(); got != defaultServerURL {
		t.Errorf("default url = %q", got)
	}

	if err := saveConfig(CLIConfig{ServerURL: "http://config:8000"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got := getServerURL(); got != "http://config:8000" {
		t.Errorf("config url = %q", got)
	}

	t.Setenv("GP_SERVER_URL", "http://custom:1234")
	if got := getServerURL(); got != "http://custom:1234" {
		t.Errorf("env url = %q", got)
	}
}

func TestGetRedisAddr(t *testing.T) {
	t.Setenv("GP_REDIS_ADDR", "")
	if got := getRedisAddr(CLIConfig{RedisAddr: "cfg:6379"}); got != "cfg:6379" {
		t.Errorf("addr = %q", got)
	}
	t.Setenv("GP_REDIS_ADDR", "env:6379")
	if got := getRedisAddr(CLIConfig{RedisAddr: "cfg:6379"}); got != "env:6379" {
		t.Errorf("addr = %q", got)
	}
}

func TestConfigTokens(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("GP_ACCESS_TOKEN", "")

	if err := saveConfig(CLIConfig{Username: "desk", ServerURL: "http://x"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	var store client.TokenStore = newConfigTokens()
	if err := store.SaveTokens(client.Tokens{Access: "a1", Refresh: "r1"}); err != nil {
		t.Fatalf("save tokens: %v", err)
	}
	if got := store.Tokens(); got != (client.Tokens{Access: "a1", Refresh: "r1"}) {
		t.Errorf("tokens = %+v", got)
	}

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Username != "desk" || cfg.ServerURL != "http://x" {
		t.Errorf("saving tokens lost other fields: %+v", cfg)
	}

	t.Setenv("GP_ACCESS_TOKEN", "override")
	if got := store.Tokens().Access; got != "override" {
		t.Errorf("access = %q, want env override", got)
	}

	if err := store.ClearTokens(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	cfg, _ = loadConfig()
	if cfg.AccessToken != "" || cfg.RefreshToken != "" {
		t.Errorf("tokens not cleared: %+v", cfg)
	}
}

func TestIsDevMode(t *testing.T) {
	t.Setenv("GP_DEV_MODE", "true")
	if !isDevMode() {
		t.Error("expected dev mode")
	}
	t.Setenv("GP_DEV_MODE", "nope")
	if isDevMode() {
		t.Error("unexpected dev mode")
	}
}
