package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	AppName    = "Polyglot"
	AppVersion = "1.0.0"
)

const (
	DefaultAddr           = ":8080"
	DefaultDataDir        = "./data"
	DefaultLogLevel       = "info"
	DefaultAIProvider     = "gemini"
	DefaultDebounce       = 500 * time.Millisecond
	DefaultRequestTimeout = 30 * time.Second
	DefaultRateLimit      = 5
	DefaultSessionIdle    = 30 * time.Minute
)

// AIConfig is the provider configuration from the environment. Settings saved
// through the API take precedence over it.
type AIConfig struct {
	Provider string `yaml:"provider"`
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
	Model    string `yaml:"model"`
}

type Config struct {
	Addr           string        `yaml:"addr"`
	DataDir        string        `yaml:"data_dir"`
	DBPath         string        `yaml:"db_path"`
	StaticDir      string        `yaml:"static_dir"`
	LogLevel       string        `yaml:"log_level"`
	AI             AIConfig      `yaml:"ai"`
	Debounce       time.Duration `yaml:"debounce"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	RateLimit      int           `yaml:"rate_limit"`
	ProxyURL       string        `yaml:"proxy_url"`
	SessionIdle    time.Duration `yaml:"session_idle"`
	CORSOrigins    []string      `yaml:"cors_origins"`
}

// Load builds the configuration from defaults, then the YAML file named by
// POLYGLOT_CONFIG (if any), then POLYGLOT_* environment variables.
func Load() (Config, error) {
	cfg := Config{
		Addr:           DefaultAddr,
		DataDir:        DefaultDataDir,
		LogLevel:       DefaultLogLevel,
		AI:             AIConfig{Provider: DefaultAIProvider},
		Debounce:       DefaultDebounce,
		RequestTimeout: DefaultRequestTimeout,
		RateLimit:      DefaultRateLimit,
		SessionIdle:    DefaultSessionIdle,
	}

	if path := os.Getenv("POLYGLOT_CONFIG"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.DataDir, "polyglot.db")
	}
	if cfg.StaticDir == "" {
		cfg.StaticDir = detectStaticDir()
	}
	cfg.DataDir = filepath.Clean(cfg.DataDir)
	cfg.DBPath = filepath.Clean(cfg.DBPath)
	cfg.StaticDir = filepath.Clean(cfg.StaticDir)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Addr, "POLYGLOT_ADDR")
	setString(&cfg.DataDir, "POLYGLOT_DATA_DIR")
	setString(&cfg.DBPath, "POLYGLOT_DB_PATH")
	setString(&cfg.StaticDir, "POLYGLOT_STATIC_DIR")
	setString(&cfg.LogLevel, "POLYGLOT_LOG_LEVEL")
	setString(&cfg.AI.Provider, "POLYGLOT_AI_PROVIDER")
	setString(&cfg.AI.APIKey, "API_KEY")
	setString(&cfg.AI.APIKey, "POLYGLOT_AI_API_KEY")
	setString(&cfg.AI.BaseURL, "POLYGLOT_AI_BASE_URL")
	setString(&cfg.AI.Model, "POLYGLOT_AI_MODEL")
	setString(&cfg.ProxyURL, "POLYGLOT_PROXY_URL")
	if v := os.Getenv("POLYGLOT_CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitList(v)
	}

	if v := os.Getenv("POLYGLOT_DEBOUNCE_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("POLYGLOT_DEBOUNCE_MS: %w", err)
		}
		cfg.Debounce = time.Duration(ms) * time.Millisecond
	}
	if v := os.Getenv("POLYGLOT_RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("POLYGLOT_RATE_LIMIT: %w", err)
		}
		cfg.RateLimit = n
	}
	if err := setDuration(&cfg.RequestTimeout, "POLYGLOT_REQUEST_TIMEOUT"); err != nil {
		return err
	}
	return setDuration(&cfg.SessionIdle, "POLYGLOT_SESSION_IDLE")
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

func (c Config) validate() error {
	var errs []error
	if c.Debounce <= 0 {
		errs = append(errs, fmt.Errorf("debounce must be positive, got %s", c.Debounce))
	}
	if c.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("request timeout must not be negative, got %s", c.RequestTimeout))
	}
	if c.RateLimit <= 0 {
		errs = append(errs, fmt.Errorf("rate limit must be positive, got %d", c.RateLimit))
	}
	if c.SessionIdle <= 0 {
		errs = append(errs, fmt.Errorf("session idle timeout must be positive, got %s", c.SessionIdle))
	}
	return errors.Join(errs...)
}

func detectStaticDir() string {
	candidates := []string{
		"./frontend/dist",
		"../frontend/dist",
	}
	for _, candidate := range candidates {
		indexPath := filepath.Join(candidate, "index.html")
		if info, err := os.Stat(indexPath); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return "./frontend/dist"
}
