package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/pkg/logger"
	"gopkg.in/yaml.v3"
)

// Config application configuration shared by the chat client and the gateway
type Config struct {
	App     AppConfig     `yaml:"app"`
	Backend BackendConfig `yaml:"backend"`
	Session SessionConfig `yaml:"session"`
	Chat    ChatConfig    `yaml:"chat"`
	Gateway GatewayConfig `yaml:"gateway"`
	Redis   RedisConfig   `yaml:"redis"`
	Log     LogConfig     `yaml:"log"`
}

type AppConfig struct {
	Env string `yaml:"env"`
}

// BackendConfig external marketplace API
type BackendConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// SessionConfig local persisted session storage
type SessionConfig struct {
	DBPath string `yaml:"db_path"`
}

// ChatConfig messaging client tuning
type ChatConfig struct {
	ThreadPageSize  int           `yaml:"thread_page_size"`
	RefreshInterval time.Duration `yaml:"refresh_interval"` // 0 disables periodic refresh
	ResolveWorkers  int           `yaml:"resolve_workers"`
}

// GatewayConfig API proxy
type GatewayConfig struct {
	Port               int           `yaml:"port"`
	AllowOrigins       []string      `yaml:"allow_origins"`
	UserCacheTTL       time.Duration `yaml:"user_cache_ttl"`
	RateLimitPerMinute int           `yaml:"rate_limit_per_minute"` // per caller; 0 disables limiting
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns a configuration usable without any file
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Config{
		App: AppConfig{Env: "local"},
		Backend: BackendConfig{
			BaseURL: "http://localhost:8080",
			Timeout: 30 * time.Second,
		},
		Session: SessionConfig{DBPath: filepath.Join(home, ".freelancer-chat", "session.db")},
		Chat: ChatConfig{
			ThreadPageSize: 50,
			ResolveWorkers: 4,
		},
		Gateway: GatewayConfig{
			Port:               3001,
			AllowOrigins:       []string{"http://localhost:3000"},
			UserCacheTTL:       5 * time.Minute,
			RateLimitPerMinute: 120,
		},
		Redis: RedisConfig{
			Host:     "localhost",
			Port:     6379,
			PoolSize: 10,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Path returns the config file path for APP_ENV
func Path() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

// Load reads the YAML file at path (a missing file keeps defaults) and applies
// environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnv(cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.App.Env, "APP_ENV")
	setString(&cfg.Backend.BaseURL, "BACKEND_URL")
	setDuration(&cfg.Backend.Timeout, "BACKEND_TIMEOUT")
	setString(&cfg.Session.DBPath, "SESSION_DB_PATH")
	setDuration(&cfg.Chat.RefreshInterval, "CHAT_REFRESH_INTERVAL")
	setInt(&cfg.Gateway.Port, "GATEWAY_PORT")
	setInt(&cfg.Gateway.RateLimitPerMinute, "GATEWAY_RATE_LIMIT")
	setString(&cfg.Redis.Host, "REDIS_HOST")
	setInt(&cfg.Redis.Port, "REDIS_PORT")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.File, "LOG_FILE")
	if v := os.Getenv("REDIS_ENABLED"); v != "" {
		cfg.Redis.Enabled, _ = strconv.ParseBool(v)
	}
}

func (c *Config) validate() error {
	if c.Backend.BaseURL == "" {
		return errors.New("backend.base_url is required")
	}
	if c.Chat.ThreadPageSize <= 0 {
		c.Chat.ThreadPageSize = 50
	}
	if c.Chat.ResolveWorkers <= 0 {
		c.Chat.ResolveWorkers = 4
	}
	if c.Backend.Timeout <= 0 {
		c.Backend.Timeout = 30 * time.Second
	}
	c.Session.DBPath = expandHome(c.Session.DBPath)
	c.Log.File = expandHome(c.Log.File)
	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// IsDev reports whether the app runs in a development environment
func (c *Config) IsDev() bool {
	return c.App.Env == "local" || c.App.Env == "dev" || c.App.Env == "development"
}

// LogResolved logs the effective non-secret settings
func LogResolved(cfg *Config) {
	logger.GetLogger().Info().
		Str("env", cfg.App.Env).
		Str("backend", cfg.Backend.BaseURL).
		Dur("backend_timeout", cfg.Backend.Timeout).
		Str("session_db", cfg.Session.DBPath).
		Bool("redis", cfg.Redis.Enabled).
		Msg("config resolved")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
