package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/evcraddock/gatepass/internal/client"
)

const defaultServerURL = "http://localhost:8000"

// CLIConfig holds CLI configuration persisted to disk.
type CLIConfig struct {
	ServerURL           string `yaml:"server_url,omitempty"`
	Username            string `yaml:"username,omitempty"`
	AccessToken         string `yaml:"access_token,omitempty"`
	RefreshToken        string `yaml:"refresh_token,omitempty"`
	RedisAddr           string `yaml:"redis_addr,omitempty"`
	CacheTTLSeconds     int    `yaml:"cache_ttl_seconds,omitempty"`
	PollIntervalSeconds int    `yaml:"poll_interval_seconds,omitempty"`
}

func (c CLIConfig) cacheTTL() time.Duration {
	if c.CacheTTLSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

func (c CLIConfig) pollInterval() time.Duration {
	if c.PollIntervalSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// configPath returns the path to the CLI config file.
func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "gp", "config.yaml"), nil
}

// loadConfig reads the CLI config from disk.
// Returns a zero-value config if the file doesn't exist.
func loadConfig() (CLIConfig, error) {
	path, err := configPath()
	if err != nil {
		return CLIConfig{}, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return CLIConfig{}, nil
	}
	if err != nil {
		return CLIConfig{}, fmt.Errorf("reading config: %w", err)
	}

	var cfg CLIConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return CLIConfig{}, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// saveConfig writes the CLI config to disk.
func saveConfig(cfg CLIConfig) error {
	path, err := configPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// loadEnv reads .env from the working directory when present.
func loadEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: loading .env: %v\n", err)
	}
}

// isDevMode reports whether GP_DEV_MODE is set to a true value.
func isDevMode() bool {
	dev, _ := strconv.ParseBool(os.Getenv("GP_DEV_MODE"))
	return dev
}

// getServerURL returns the server URL from env var, config, or default.
func getServerURL() string {
	if v := os.Getenv("GP_SERVER_URL"); v != "" {
		return v
	}
	cfg, err := loadConfig()
	if err == nil && cfg.ServerURL != "" {
		return cfg.ServerURL
	}
	return defaultServerURL
}

// getRedisAddr returns the Redis address from env var or config.
func getRedisAddr(cfg CLIConfig) string {
	if v := os.Getenv("GP_REDIS_ADDR"); v != "" {
		return v
	}
	return cfg.RedisAddr
}

// configTokens is a client.TokenStore persisted in the CLI config file.
// GP_ACCESS_TOKEN overrides the stored access token.
type configTokens struct {
	mu sync.Mutex
}

func newConfigTokens() *configTokens {
	return &configTokens{}
}

// Tokens implements client.TokenStore.
func (t *configTokens) Tokens() client.Tokens {
	t.mu.Lock()
	defer t.mu.Unlock()

	cfg, err := loadConfig()
	if err != nil {
		cfg = CLIConfig{}
	}
	tokens := client.Tokens{Access: cfg.AccessToken, Refresh: cfg.RefreshToken}
	if v := os.Getenv("GP_ACCESS_TOKEN"); v != "" {
		tokens.Access = v
	}
	return tokens
}

// SaveTokens implements client.TokenStore.
func (t *configTokens) SaveTokens(tokens client.Tokens) error {
	return t.update(func(cfg *CLIConfig) {
		cfg.AccessToken = tokens.Access
		cfg.RefreshToken = tokens.Refresh
	})
}

// ClearTokens implements client.TokenStore.
func (t *configTokens) ClearTokens() error {
	return t.update(func(cfg *CLIConfig) {
		cfg.AccessToken = ""
		cfg.RefreshToken = ""
	})
}

func (t *configTokens) update(fn func(*CLIConfig)) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	fn(&cfg)
	return saveConfig(cfg)
}
