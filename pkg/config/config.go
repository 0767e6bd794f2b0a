// Package config loads qrwizard settings from a YAML file with environment
// overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvRendererURL   = "QRWIZARD_RENDERER_URL"
	EnvRendererToken = "QRWIZARD_RENDERER_TOKEN"
	EnvStateDir      = "QRWIZARD_STATE_DIR"
	EnvBasePath      = "QRWIZARD_BASE_PATH"
)

const (
	DefaultRendererURL  = "http://localhost:3000"
	DefaultRendererPath = "/api/qr/preview"
	DefaultDebounce     = 500 * time.Millisecond
	DefaultCacheSize    = 50
	DefaultBasePath     = "/create"
	DefaultStaleAfter   = 24 * time.Hour
	DefaultPort         = 8080
)

type Config struct {
	Renderer RendererConfig `yaml:"renderer"`
	Preview  PreviewConfig  `yaml:"preview"`
	Wizard   WizardConfig   `yaml:"wizard"`
	Server   ServerConfig   `yaml:"server"`

	// QRTypesFile replaces the built-in QR type registry when set.
	QRTypesFile string `yaml:"qr_types_file"`
}

type RendererConfig struct {
	BaseURL string `yaml:"base_url"`
	Path    string `yaml:"path"`
	Token   string `yaml:"token"`
}

type PreviewConfig struct {
	Debounce  time.Duration `yaml:"debounce"`
	CacheSize int           `yaml:"cache_size"`
}

type WizardConfig struct {
	StateDir   string        `yaml:"state_dir"`
	BasePath   string        `yaml:"base_path"`
	StaleAfter time.Duration `yaml:"stale_after"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		Renderer: RendererConfig{BaseURL: DefaultRendererURL, Path: DefaultRendererPath},
		Preview:  PreviewConfig{Debounce: DefaultDebounce, CacheSize: DefaultCacheSize},
		Wizard:   WizardConfig{StateDir: defaultStateDir(), BasePath: DefaultBasePath, StaleAfter: DefaultStaleAfter},
		Server:   ServerConfig{Port: DefaultPort},
	}
}

func defaultStateDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "qrwizard", "state")
	}
	return filepath.Join(".qrwizard", "state")
}

// SearchPaths lists where Load looks for a config file when none is given.
func SearchPaths() []string {
	paths := []string{"qrwizard.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "qrwizard", "config.yaml"))
	}
	return paths
}

// Load reads path, or the first existing file from SearchPaths when path is
// empty, then applies environment overrides and validates the result. A
// missing default file is not an error; a missing explicit one is.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, src, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}
	if data != nil {
		if err := decode(data, cfg); err != nil {
			return nil, fmt.Errorf("config %s: %w", src, err)
		}
	}

	cfg.applyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readConfigFile(path string) ([]byte, string, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, "", fmt.Errorf("read config: %w", err)
		}
		return data, path, nil
	}
	for _, p := range SearchPaths() {
		data, err := os.ReadFile(p)
		if err == nil {
			return data, p, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, "", fmt.Errorf("read config: %w", err)
		}
	}
	return nil, "", nil
}

func decode(data []byte, cfg *Config) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvRendererURL)); v != "" {
		c.Renderer.BaseURL = v
	}
	if v := strings.TrimSpace(getenv(EnvRendererToken)); v != "" {
		c.Renderer.Token = v
	}
	if v := strings.TrimSpace(getenv(EnvStateDir)); v != "" {
		c.Wizard.StateDir = v
	}
	if v := strings.TrimSpace(getenv(EnvBasePath)); v != "" {
		c.Wizard.BasePath = v
	}
}

// Validate fills zero values with defaults and rejects settings that cannot
// work.
func (c *Config) Validate() error {
	c.Renderer.BaseURL = strings.TrimRight(strings.TrimSpace(c.Renderer.BaseURL), "/")
	if c.Renderer.BaseURL == "" {
		return errors.New("config: renderer.base_url is required")
	}
	if !strings.HasPrefix(c.Renderer.BaseURL, "http://") && !strings.HasPrefix(c.Renderer.BaseURL, "https://") {
		return fmt.Errorf("config: renderer.base_url must be an http(s) url, got %q", c.Renderer.BaseURL)
	}
	if c.Renderer.Path == "" {
		c.Renderer.Path = DefaultRendererPath
	}
	if !strings.HasPrefix(c.Renderer.Path, "/") {
		c.Renderer.Path = "/" + c.Renderer.Path
	}

	if c.Preview.Debounce < 0 {
		return fmt.Errorf("config: preview.debounce must not be negative, got %s", c.Preview.Debounce)
	}
	if c.Preview.Debounce == 0 {
		c.Preview.Debounce = DefaultDebounce
	}
	if c.Preview.CacheSize <= 0 {
		c.Preview.CacheSize = DefaultCacheSize
	}

	if c.Wizard.StateDir == "" {
		c.Wizard.StateDir = defaultStateDir()
	}
	c.Wizard.BasePath = "/" + strings.Trim(strings.TrimSpace(c.Wizard.BasePath), "/")
	if c.Wizard.StaleAfter <= 0 {
		c.Wizard.StaleAfter = DefaultStaleAfter
	}

	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port out of range: %d", c.Server.Port)
	}
	return nil
}
