package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ServiceURLEnv overrides service.url when set.
const ServiceURLEnv = "ATSCAN_SERVICE_URL"

const (
	defaultServiceURL   = "http://127.0.0.1:3000"
	defaultProxyListen  = "127.0.0.1:5173"
	defaultBodyLimit    = 10 << 20
	defaultErrorDismiss = 1 * time.Second
)

// Config is the root configuration for atscan.
type Config struct {
	Service ServiceConfig
	UI      UIConfig
	Proxy   ProxyConfig
}

// ServiceConfig locates the prediction service.
type ServiceConfig struct {
	URL     string        // base URL; the client posts to URL + "/predict"
	Timeout time.Duration // zero means no client-side timeout
}

// UIConfig controls the interactive client.
type UIConfig struct {
	ErrorDismiss time.Duration // how long the error banner stays visible
	StartDir     string        // initial directory of the file chooser
}

// ProxyConfig controls the development proxy that forwards /predict.
type ProxyConfig struct {
	Listen    string
	Target    string
	BodyLimit int // bytes
}

// rawConfig is used for YAML unmarshaling (snake_case fields and durations as strings).
type rawConfig struct {
	Service rawServiceConfig `yaml:"service"`
	UI      rawUIConfig      `yaml:"ui"`
	Proxy   rawProxyConfig   `yaml:"proxy"`
}

type rawServiceConfig struct {
	URL     string `yaml:"url"`
	Timeout string `yaml:"timeout"`
}

type rawUIConfig struct {
	ErrorDismiss string `yaml:"error_dismiss"`
	StartDir     string `yaml:"start_dir"`
}

type rawProxyConfig struct {
	Listen    string `yaml:"listen"`
	Target    string `yaml:"target"`
	BodyLimit int    `yaml:"body_limit"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Service: ServiceConfig{URL: defaultServiceURL},
		UI: UIConfig{
			ErrorDismiss: defaultErrorDismiss,
			StartDir:     ".",
		},
		Proxy: ProxyConfig{
			Listen:    defaultProxyListen,
			Target:    defaultServiceURL,
			BodyLimit: defaultBodyLimit,
		},
	}
}

// LoadDefault returns Default with .env and environment overrides applied.
// Used when no config file exists.
func LoadDefault() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	cfg := Default()
	applyEnv(cfg)
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
// A .env file in the working directory, if present, is loaded first so its
// variables are available for ${VAR} expansion.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	var timeout time.Duration // default: none
	if raw.Service.Timeout != "" {
		timeout, err = time.ParseDuration(raw.Service.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse service.timeout %q: %w", raw.Service.Timeout, err)
		}
	}

	dismiss := defaultErrorDismiss
	if raw.UI.ErrorDismiss != "" {
		dismiss, err = time.ParseDuration(raw.UI.ErrorDismiss)
		if err != nil {
			return nil, fmt.Errorf("parse ui.error_dismiss %q: %w", raw.UI.ErrorDismiss, err)
		}
	}

	serviceURL := raw.Service.URL
	if serviceURL == "" {
		serviceURL = defaultServiceURL
	}

	startDir := raw.UI.StartDir
	if startDir == "" {
		startDir = "."
	}

	listen := raw.Proxy.Listen
	if listen == "" {
		listen = defaultProxyListen
	}

	target := raw.Proxy.Target
	if target == "" {
		target = serviceURL
	}

	bodyLimit := raw.Proxy.BodyLimit
	if bodyLimit == 0 {
		bodyLimit = defaultBodyLimit
	}

	cfg := &Config{
		Service: ServiceConfig{
			URL:     serviceURL,
			Timeout: timeout,
		},
		UI: UIConfig{
			ErrorDismiss: dismiss,
			StartDir:     startDir,
		},
		Proxy: ProxyConfig{
			Listen:    listen,
			Target:    target,
			BodyLimit: bodyLimit,
		},
	}
	applyEnv(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadDotEnv() error {
	// godotenv.Load never overrides variables already set in the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(ServiceURLEnv); v != "" {
		cfg.Service.URL = v
	}
}

func validate(cfg *Config) error {
	if err := validateURL("service.url", cfg.Service.URL); err != nil {
		return err
	}
	if cfg.Service.Timeout < 0 {
		return fmt.Errorf("service.timeout must not be negative, got %v", cfg.Service.Timeout)
	}
	if cfg.UI.ErrorDismiss <= 0 {
		return fmt.Errorf("ui.error_dismiss must be positive, got %v", cfg.UI.ErrorDismiss)
	}
	if err := validateURL("proxy.target", cfg.Proxy.Target); err != nil {
		return err
	}
	if cfg.Proxy.BodyLimit <= 0 {
		return fmt.Errorf("proxy.body_limit must be positive, got %d", cfg.Proxy.BodyLimit)
	}
	return nil
}

func validateURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse %s %q: %w", field, raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be an absolute http(s) URL, got %q", field, raw)
	}
	return nil
}
