// Package config loads service settings from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix prefixes every environment override, e.g. OCCUPANCY_HTTP_PORT or
// OCCUPANCY_MODEL_SCHEMA_PATH. Unprefixed variables are never read.
const EnvPrefix = "OCCUPANCY"

type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Log       LogConfig       `yaml:"log"`
	Model     ModelConfig     `yaml:"model"`
	Cache     CacheConfig     `yaml:"cache"`
	Templates TemplatesConfig `yaml:"templates"`
}

type HTTPConfig struct {
	Port           int           `yaml:"port" split_words:"true"`
	Timeout        time.Duration `yaml:"timeout" split_words:"true"`
	AllowedOrigins []string      `yaml:"allowed_origins" split_words:"true"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes" split_words:"true"`
}

type LogConfig struct {
	Level      string `yaml:"level" split_words:"true"`
	Format     string `yaml:"format" split_words:"true"`
	File       string `yaml:"file" split_words:"true"`
	MaxSizeMB  int    `yaml:"max_size_mb" split_words:"true"`
	MaxBackups int    `yaml:"max_backups" split_words:"true"`
	MaxAgeDays int    `yaml:"max_age_days" split_words:"true"`
}

type ModelConfig struct {
	Type       string   `yaml:"type" split_words:"true"`
	Path       string   `yaml:"path" split_words:"true"`
	SchemaPath string   `yaml:"schema_path" split_words:"true"`
	Threshold  float64  `yaml:"threshold" split_words:"true"`
	Labels     []string `yaml:"labels" split_words:"true"`
	// ONNX only
	RuntimeLibrary    string `yaml:"runtime_library" split_words:"true"`
	InputName         string `yaml:"input_name" split_words:"true"`
	ProbabilityOutput string `yaml:"probability_output" split_words:"true"`
}

type CacheConfig struct {
	Size int `yaml:"size" split_words:"true"`
}

type TemplatesConfig struct {
	Dir    string `yaml:"dir" split_words:"true"`
	Reload bool   `yaml:"reload" split_words:"true"`
}

// Default returns settings that serve the artifacts in ./artifacts on port 8000.
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Port:           8000,
			Timeout:        30 * time.Second,
			AllowedOrigins: []string{"*"},
			MaxBodyBytes:   1 << 20,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 28,
		},
		Model: ModelConfig{
			Type:       "decision_tree",
			Path:       "artifacts/model.json",
			SchemaPath: "artifacts/feature_order.json",
			Threshold:  0.5,
		},
		Cache: CacheConfig{Size: 1024},
	}
}

// Load reads path (if non-empty) over the defaults, then applies .env and
// OCCUPANCY_* environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()
		if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
	}

	// .env is optional
	_ = godotenv.Load()

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("process env config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("http.port %d out of range", c.HTTP.Port))
	}
	if c.HTTP.Timeout <= 0 {
		errs = append(errs, errors.New("http.timeout must be positive"))
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("http.max_body_bytes must be positive"))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not one of console, json", c.Log.Format))
	}
	switch c.Model.Type {
	case "decision_tree":
	case "onnx":
		if len(c.Model.Labels) == 0 {
			errs = append(errs, errors.New("model.labels is required for onnx models"))
		}
	default:
		errs = append(errs, fmt.Errorf("model.type %q is not supported", c.Model.Type))
	}
	if c.Model.Path == "" {
		errs = append(errs, errors.New("model.path is required"))
	}
	if c.Model.SchemaPath == "" {
		errs = append(errs, errors.New("model.schema_path is required"))
	}
	if c.Model.Threshold <= 0 || c.Model.Threshold > 1 {
		errs = append(errs, fmt.Errorf("model.threshold %v outside (0, 1]", c.Model.Threshold))
	}
	if c.Cache.Size < 0 {
		errs = append(errs, errors.New("cache.size must not be negative"))
	}
	if c.Templates.Reload && c.Templates.Dir == "" {
		errs = append(errs, errors.New("templates.reload needs templates.dir"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
