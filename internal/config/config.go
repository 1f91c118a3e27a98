// Package config loads planfirst settings from .planfirst/config.yaml,
// PLANFIRST_* environment variables and a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// FileName is the config file inside the .planfirst directory.
	FileName  = "config.yaml"
	envPrefix = "PLANFIRST"
)

// AI providers
const (
	ProviderClaudeCLI = "claude-cli"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config is the full planfirst configuration.
type Config struct {
	AI           AIConfig           `mapstructure:"ai" yaml:"ai"`
	Verification VerificationConfig `mapstructure:"verification" yaml:"verification"`
	Logging      LoggingConfig      `mapstructure:"logging" yaml:"logging"`
	Telemetry    TelemetryConfig    `mapstructure:"telemetry" yaml:"telemetry"`
}

// AIConfig selects the language model used to draft plans.
type AIConfig struct {
	Provider string        `mapstructure:"provider" yaml:"provider" validate:"oneof=claude-cli openai anthropic"`
	Model    string        `mapstructure:"model" yaml:"model"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"gt=0"`
}

// VerificationConfig controls verify runs.
type VerificationConfig struct {
	StrictMode bool `mapstructure:"strictMode" yaml:"strictMode"`
	SaveReport bool `mapstructure:"saveReport" yaml:"saveReport"`
}

// LoggingConfig controls diagnostic logging to stderr.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=console json"`
}

// TelemetryConfig controls OpenTelemetry export.
type TelemetryConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
}

var validate = validator.New()

// Default returns the configuration used when no file or environment
// overrides exist.
func Default() Config {
	return Config{
		AI: AIConfig{
			Provider: ProviderClaudeCLI,
			Timeout:  5 * time.Minute,
		},
		Verification: VerificationConfig{
			StrictMode: false,
			SaveReport: true,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
		Telemetry: TelemetryConfig{
			Endpoint: "localhost:4317",
		},
	}
}

// Path returns the default config file location for a project root.
func Path(root string) string {
	return filepath.Join(root, ".planfirst", FileName)
}

// Load reads configuration for the project at root into v. Sources, lowest
// priority first: defaults, the config file, .env, PLANFIRST_* variables.
// An explicit configFile must exist; the default file may be absent.
func Load(v *viper.Viper, root, configFile string) (*Config, error) {
	if err := godotenv.Load(filepath.Join(root, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	setDefaults(v, Default())
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := configFile != ""
	if !explicit {
		configFile = Path(root)
	}
	v.SetConfigFile(configFile)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
		if explicit || !missing {
			return nil, fmt.Errorf("failed to read config %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("ai.provider", d.AI.Provider)
	v.SetDefault("ai.model", d.AI.Model)
	v.SetDefault("ai.timeout", d.AI.Timeout)
	v.SetDefault("verification.strictMode", d.Verification.StrictMode)
	v.SetDefault("verification.saveReport", d.Verification.SaveReport)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("telemetry.enabled", d.Telemetry.Enabled)
	v.SetDefault("telemetry.endpoint", d.Telemetry.Endpoint)
}

// Write saves cfg as YAML at path, creating parent directories.
func Write(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// APIKey returns the API key for a hosted provider from the environment.
// Keys are never read from or written to the config file.
func APIKey(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return os.Getenv("OPENAI_API_KEY")
	case ProviderAnthropic:
		return os.Getenv("ANTHROPIC_API_KEY")
	default:
		return ""
	}
}
