package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds process-level settings for the server and engine.
type Config struct {
	// Listen is the HTTP listen address, e.g. ":8080".
	Listen string `yaml:"listen"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	Engine EngineConfig `yaml:"engine"`
	Redis  RedisConfig  `yaml:"redis"`
}

// EngineConfig tunes the execution engine.
type EngineConfig struct {
	// MaxIterations is the process-wide default iteration bound for a
	// run. A run can lower or raise it via the "max_iterations" key in
	// its initial state.
	MaxIterations int `yaml:"max_iterations"`
}

// RedisConfig configures the optional Redis run store. When Addr is
// empty, runs are kept in memory only.
type RedisConfig struct {
	Addr     string   `yaml:"addr"`
	Password string   `yaml:"password"`
	DB       int      `yaml:"db"`
	RunTTL   Duration `yaml:"run_ttl"`
}

// Duration is a time.Duration that unmarshals from YAML strings like
// "90s" or "1h".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Listen:   ":8080",
		LogLevel: "info",
		Engine: EngineConfig{
			MaxIterations: 25,
		},
	}
}

// Load reads a YAML config file, layering it over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("error parsing config file: %w", err)
	}

	if cfg.Engine.MaxIterations <= 0 {
		return cfg, fmt.Errorf("engine.max_iterations must be positive, got %d", cfg.Engine.MaxIterations)
	}

	return cfg, nil
}
