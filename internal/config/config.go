package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	APIBaseURL      string `yaml:"apiBaseURL"`
	LogLevel        string `yaml:"logLevel"`
	RequestTimeout  string `yaml:"requestTimeout"`
	CredentialsFile string `yaml:"credentialsFile"`
	RedisAddr       string `yaml:"redisAddr"`
	RedisPassword   string `yaml:"redisPassword"`
}

// Load reads config from path. An empty path falls back to
// $SHOPFRONT_CONFIG, then to config.yaml next to the user config dir, then
// to built-in defaults; a missing file is not an error in that case.
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	explicit := path != ""
	if path == "" {
		path = os.Getenv("SHOPFRONT_CONFIG")
		explicit = path != ""
	}
	if path == "" {
		path = DefaultConfigPath()
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	case os.IsNotExist(err) && !explicit:
		// Defaults plus env overrides below.
	default:
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if v := os.Getenv("SHOPFRONT_API_BASE_URL"); v != "" {
		cfg.APIBaseURL = strings.TrimSpace(v)
	}
	if v := os.Getenv("SHOPFRONT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.TrimSpace(v)
	}
	if v := os.Getenv("SHOPFRONT_REQUEST_TIMEOUT"); v != "" {
		cfg.RequestTimeout = strings.TrimSpace(v)
	}
	if v := os.Getenv("SHOPFRONT_CREDENTIALS_FILE"); v != "" {
		cfg.CredentialsFile = strings.TrimSpace(v)
	}
	if v := os.Getenv("SHOPFRONT_REDIS_ADDR"); v != "" {
		cfg.RedisAddr = strings.TrimSpace(v)
	}
	if v := os.Getenv("SHOPFRONT_REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	applyDefaults(&cfg)
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyDefaults(cfg *FileConfig) {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "http://localhost:8000"
	}
	if cfg.RequestTimeout == "" {
		cfg.RequestTimeout = "10s"
	}
	if cfg.CredentialsFile == "" {
		cfg.CredentialsFile = filepath.Join(userConfigDir(), "credentials")
	}
}

func validateConfig(cfg FileConfig) error {
	if !strings.HasPrefix(cfg.APIBaseURL, "http://") && !strings.HasPrefix(cfg.APIBaseURL, "https://") {
		return fmt.Errorf("config: apiBaseURL must be an http(s) URL, got %q", cfg.APIBaseURL)
	}
	if _, err := time.ParseDuration(cfg.RequestTimeout); err != nil {
		return fmt.Errorf("config: invalid requestTimeout: %w", err)
	}
	if cfg.CredentialsFile == "" && cfg.RedisAddr == "" {
		return errors.New("config: credentialsFile or redisAddr is required for token storage")
	}
	return nil
}

// Timeout returns the parsed request timeout. Call after Load has validated.
func (c FileConfig) Timeout() time.Duration {
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// DefaultConfigPath returns the per-user config file location.
func DefaultConfigPath() string {
	return filepath.Join(userConfigDir(), "config.yaml")
}

func userConfigDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "shopfront")
}
