// Package config loads engine configuration from a YAML file with
// environment overrides for secrets.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/forager/pkg/domain"
)

// Duration wraps time.Duration so YAML values like "10s" parse.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std converts back to a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full engine configuration. Zero values defer to the
// built-in defaults throughout the stack.
type Config struct {
	LogLevel string `yaml:"log_level"`

	CatalogDir string `yaml:"catalog_dir"`
	TopK       int    `yaml:"top_k"`

	Budget   int      `yaml:"budget"`
	Deadline Duration `yaml:"deadline"`
	MaxSteps int      `yaml:"max_steps"`

	Criteria []domain.Criterion `yaml:"criteria"`

	Tool struct {
		Timeout    Duration `yaml:"timeout"`
		MaxRetries int      `yaml:"max_retries"`
		BaseDelay  Duration `yaml:"base_delay"`
	} `yaml:"tool"`

	Breaker struct {
		Threshold int      `yaml:"threshold"`
		Cooldown  Duration `yaml:"cooldown"`
	} `yaml:"breaker"`

	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`

	Redis struct {
		Addr     string   `yaml:"addr"`
		Password string   `yaml:"password"`
		DB       int      `yaml:"db"`
		TTL      Duration `yaml:"ttl"`
	} `yaml:"redis"`

	OpenAI struct {
		APIKey  string `yaml:"api_key"`
		BaseURL string `yaml:"base_url"`
		Model   string `yaml:"model"`
	} `yaml:"openai"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	var cfg Config
	cfg.LogLevel = "info"
	cfg.CatalogDir = "catalogs"
	cfg.HTTP.Addr = ":8080"
	return cfg
}

// Load reads a YAML config file. An empty path yields Default. Secrets
// may also come from the environment: FORAGER_OPENAI_API_KEY and
// FORAGER_REDIS_PASSWORD override the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if v := os.Getenv("FORAGER_OPENAI_API_KEY"); v != "" {
		cfg.OpenAI.APIKey = v
	}
	if v := os.Getenv("FORAGER_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	for _, cr := range c.Criteria {
		if cr.Name == "" {
			return fmt.Errorf("criterion with empty name")
		}
		if cr.Weight < 0 || cr.Weight > 1 {
			return fmt.Errorf("criterion %s: weight %v out of [0,1]", cr.Name, cr.Weight)
		}
	}
	if c.Budget < 0 {
		return fmt.Errorf("budget must be >= 0")
	}
	return nil
}
