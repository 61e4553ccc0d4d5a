// Package config loads the per-user configuration file, layering it over
// built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jp-to-en/jp-to-en/detect"
	"github.com/jp-to-en/jp-to-en/lockfile"
	"github.com/jp-to-en/jp-to-en/settings"
	"github.com/jp-to-en/jp-to-en/translate"
)

// ConfigFileName is the name of the configuration file inside the settings
// directory.
const ConfigFileName = "config.yaml"

// TranslatorConfig controls the translation client.
type TranslatorConfig struct {
	// Model is the chat-completions model name.
	Model string `yaml:"model"`
	// BaseURL is the API root, e.g. https://api.openai.com/v1.
	BaseURL string `yaml:"base_url"`
	// Proxy is an optional proxy URL for API requests.
	Proxy string `yaml:"proxy"`
	// MaxRetries bounds how often a failed request is retried.
	MaxRetries int `yaml:"max_retries"`
	// RetryDelay is the base backoff delay in seconds.
	RetryDelay float64 `yaml:"retry_delay"`
	// Timeout is the per-request timeout in seconds.
	Timeout int `yaml:"timeout"`
}

// RetryDelayDuration returns the base backoff delay as a duration.
func (t TranslatorConfig) RetryDelayDuration() time.Duration {
	return time.Duration(t.RetryDelay * float64(time.Second))
}

// TimeoutDuration returns the request timeout as a duration.
func (t TranslatorConfig) TimeoutDuration() time.Duration {
	return time.Duration(t.Timeout) * time.Second
}

// DetectorConfig controls Japanese text detection.
type DetectorConfig struct {
	// ContextSize is how many runes of surrounding comment text are sent
	// along with each segment.
	ContextSize int `yaml:"context_size"`
}

// CacheConfig controls the translation cache.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	File    string `yaml:"file"`
}

// Config is the full application configuration.
type Config struct {
	Translator TranslatorConfig `yaml:"translator"`
	Detector   DetectorConfig   `yaml:"detector"`
	Cache      CacheConfig      `yaml:"cache"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Translator: TranslatorConfig{
			Model:      translate.DefaultModel,
			BaseURL:    translate.DefaultBaseURL,
			MaxRetries: translate.DefaultMaxRetries,
			RetryDelay: translate.DefaultRetryDelay.Seconds(),
			Timeout:    int(translate.DefaultTimeout.Seconds()),
		},
		Detector: DetectorConfig{
			ContextSize: detect.DefaultContextSize,
		},
		Cache: CacheConfig{
			File: lockfile.LockFileName,
		},
	}
}

// DefaultPath returns the location of the per-user config file.
func DefaultPath() string {
	return filepath.Join(settings.Dir(), ConfigFileName)
}

// Load reads the configuration at path, layering it over Default(). An empty
// path selects DefaultPath(). A missing file yields the defaults unchanged.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate(path string) error {
	if c.Translator.MaxRetries < 0 {
		return fmt.Errorf("%s: translator.max_retries must not be negative", path)
	}
	if c.Translator.RetryDelay < 0 {
		return fmt.Errorf("%s: translator.retry_delay must not be negative", path)
	}
	if c.Translator.Timeout < 0 {
		return fmt.Errorf("%s: translator.timeout must not be negative", path)
	}
	if c.Detector.ContextSize < 0 {
		return fmt.Errorf("%s: detector.context_size must not be negative", path)
	}
	return nil
}
