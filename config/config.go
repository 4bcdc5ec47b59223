package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	ErrInvalidCadence = errors.New("invalid poller cadence")
	ErrInvalidFormula = errors.New("invalid view formula")
	ErrInvalidSign    = errors.New("invalid view sign")
	ErrInvalidMaxAge  = errors.New("history max_age must be positive")
)

const (
	CadenceInterval  = "interval"
	CadenceImmediate = "immediate"
)

type Config struct {
	Feed      FeedConfig      `mapstructure:"feed"`
	Poller    PollerConfig    `mapstructure:"poller"`
	History   HistoryConfig   `mapstructure:"history"`
	View      ViewConfig      `mapstructure:"view"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Log       LogConfig       `mapstructure:"log"`
}

// FeedConfig describes the upstream options-chain endpoint.
type FeedConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	Symbol       string        `mapstructure:"symbol"`
	Timeout      time.Duration `mapstructure:"timeout"`
	SSMParameter string        `mapstructure:"ssm_parameter"` // prod only: parameter holding the base URL
}

type PollerConfig struct {
	Cadence  string        `mapstructure:"cadence"`  // "interval" or "immediate"
	Interval time.Duration `mapstructure:"interval"` // used by "interval" cadence
	MinGap   time.Duration `mapstructure:"min_gap"`  // throttle for "immediate" cadence
}

type HistoryConfig struct {
	MaxAge time.Duration `mapstructure:"max_age"`
}

type ViewConfig struct {
	StrikeRange float64       `mapstructure:"strike_range"`
	Window      time.Duration `mapstructure:"window"`
	Formula     string        `mapstructure:"formula"` // "combined" or "directional"
	Sign        int           `mapstructure:"sign"`    // 1 or -1
}

type DashboardConfig struct {
	Address string `mapstructure:"address"`
}

// LogConfig defines the logger configuration options.
type LogConfig struct {
	Level       string `mapstructure:"level"`       // log level: "debug", "info", "warn", "error"
	Format      string `mapstructure:"format"`      // log format: "json" or "console"
	OutputFile  string `mapstructure:"output_file"` // file path to store logs (optional)
	Environment string `mapstructure:"environment"` // environment: "dev" or "prod"
}

// Load loads application configuration using Viper.
// It reads from config.yaml (when present) and overrides with environment variables.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config") // config.yaml
	v.SetConfigType("yaml")

	ex, _ := os.Executable()
	if strings.Contains(ex, "go-build") {
		pwd, _ := os.Getwd()
		v.AddConfigPath(filepath.Join(pwd, "../../config"))
	} else {
		v.AddConfigPath(filepath.Join(filepath.Dir(ex), "../config"))
	}
	v.AddConfigPath(".")

	setDefaults(v)

	// Support environment variables with dot notation (e.g., FEED_BASE_URL)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("feed.base_url", "https://api-data.quanticocap.com")
	v.SetDefault("feed.symbol", "I:SPX")
	v.SetDefault("feed.timeout", 10*time.Second)

	v.SetDefault("poller.cadence", CadenceInterval)
	v.SetDefault("poller.interval", 10*time.Second)
	v.SetDefault("poller.min_gap", time.Second)

	v.SetDefault("history.max_age", 5*time.Minute)

	v.SetDefault("view.strike_range", 50.0)
	v.SetDefault("view.window", time.Minute)
	v.SetDefault("view.formula", "combined")
	v.SetDefault("view.sign", 1)

	v.SetDefault("dashboard.address", "0.0.0.0:8080")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.environment", "dev")
}

// Validate rejects configurations the poller or projector cannot run with.
func (c *Config) Validate() error {
	switch c.Poller.Cadence {
	case CadenceInterval:
		if c.Poller.Interval <= 0 {
			return fmt.Errorf("%w: interval must be positive", ErrInvalidCadence)
		}
	case CadenceImmediate:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidCadence, c.Poller.Cadence)
	}

	if c.History.MaxAge <= 0 {
		return ErrInvalidMaxAge
	}

	switch c.View.Formula {
	case "combined", "directional":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFormula, c.View.Formula)
	}

	if c.View.Sign != 1 && c.View.Sign != -1 {
		return fmt.Errorf("%w: %d", ErrInvalidSign, c.View.Sign)
	}

	return nil
}
